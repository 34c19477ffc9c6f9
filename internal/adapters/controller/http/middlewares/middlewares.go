package middlewares

import (
	"strings"
	"time"

	"github.com/fasevent/registrations/internal/adapters/controller/http/response"
	"github.com/fasevent/registrations/pkg/logger/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const (
	// AdminCookie carries the admin session token set by the login endpoint.
	AdminCookie = "adminToken"

	isAdminKey = "isAdmin"
)

type tokenChecker interface {
	IsAdmin(tokenStr string) bool
}

type Handler struct {
	logger *types.Logger
	tokens tokenChecker
}

func New(logger *types.Logger, tokens tokenChecker) *Handler {
	return &Handler{
		logger: logger,
		tokens: tokens,
	}
}

// Token returns the admin token from the Authorization header or, failing that, the session cookie.
func Token(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Cookies(AdminCookie)
}

// ResolveAdmin marks the request as coming from an admin when it carries a valid token.
// It never rejects; handlers that need the flag read it with IsAdmin.
func (h *Handler) ResolveAdmin(c *fiber.Ctx) error {
	if tokenStr := Token(c); tokenStr != "" {
		c.Locals(isAdminKey, h.tokens.IsAdmin(tokenStr))
	}
	return c.Next()
}

// RequireAdmin rejects requests without a valid admin token.
func (h *Handler) RequireAdmin(c *fiber.Ctx) error {
	tokenStr := Token(c)
	if tokenStr == "" || !h.tokens.IsAdmin(tokenStr) {
		h.logger.Warnf("rejected admin request %s %s from %s", c.Method(), c.Path(), c.IP())
		return response.Unauthorized(c)
	}
	c.Locals(isAdminKey, true)
	return c.Next()
}

func IsAdmin(c *fiber.Ctx) bool {
	isAdmin, _ := c.Locals(isAdminKey).(bool)
	return isAdmin
}

// RateLimit allows max state-changing requests per client IP per minute. GET requests pass freely.
func RateLimit(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodGet
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "Too many requests, try again later")
		},
	})
}
