package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/fasevent/registrations/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens map[string]bool

func (s staticTokens) IsAdmin(tokenStr string) bool {
	return s[tokenStr]
}

func newApp() *fiber.App {
	h := New(logger.Nop(), staticTokens{"good": true})
	app := fiber.New()
	app.Get("/open", h.ResolveAdmin, func(c *fiber.Ctx) error {
		if IsAdmin(c) {
			return c.SendString("admin")
		}
		return c.SendString("guest")
	})
	app.Get("/closed", h.RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestRequireAdmin(t *testing.T) {
	app := newApp()

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{name: "no token", want: fiber.StatusUnauthorized},
		{name: "bad bearer", header: "Bearer bad", want: fiber.StatusUnauthorized},
		{name: "bearer", header: "Bearer good", want: fiber.StatusOK},
		{name: "cookie", cookie: "good", want: fiber.StatusOK},
		{name: "bad header wins over cookie", header: "Bearer bad", cookie: "good", want: fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/closed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.Header.Set("Cookie", AdminCookie+"="+tt.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestResolveAdmin(t *testing.T) {
	app := newApp()

	for token, want := range map[string]string{"": "guest", "bad": "guest", "good": "admin"} {
		req := httptest.NewRequest("GET", "/open", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, want, string(body), token)
	}
}
