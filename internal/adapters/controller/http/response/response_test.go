package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errorz.Validation("bad"), fiber.StatusBadRequest},
		{errorz.NotFound("missing"), fiber.StatusNotFound},
		{errorz.Unauthorized("no"), fiber.StatusUnauthorized},
		{errorz.Forbidden("no"), fiber.StatusForbidden},
		{errorz.InvalidState("unpaid"), fiber.StatusConflict},
		{errorz.Upstream("smtp", errors.New("down")), fiber.StatusBadGateway},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestFromErrorHidesInternalErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return FromError(c, errors.New("pq: connection refused"), "Failed to load")
	})
	app.Get("/domain", func(c *fiber.Ctx) error {
		return FromError(c, errorz.NotFound("registration %s not found", "FAS-000001"), "Failed to load")
	})

	body := func(path string) (int, map[string]interface{}) {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &out))
		return resp.StatusCode, out
	}

	status, out := body("/internal")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Failed to load", out["message"])
	assert.Equal(t, false, out["success"])

	status, out = body("/domain")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "registration FAS-000001 not found", out["message"])
}
