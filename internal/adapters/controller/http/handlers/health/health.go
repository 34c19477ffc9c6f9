package health

import (
	"context"
	"time"

	"github.com/fasevent/registrations/pkg/logger/types"
	"github.com/gofiber/fiber/v2"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type Handler struct {
	logger   *types.Logger
	services map[string]Pinger
	timeout  time.Duration
}

// New takes the dependencies to check, keyed by the name reported in the response.
func New(logger *types.Logger, services map[string]Pinger) *Handler {
	return &Handler{
		logger:   logger,
		services: services,
		timeout:  2 * time.Second,
	}
}

func (h Handler) check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	status := fiber.StatusOK
	services := fiber.Map{}
	for name, pinger := range h.services {
		if err := pinger.Ping(ctx); err != nil {
			h.logger.Errorf("health check: %s is unavailable: %v", name, err)
			services[name] = "unavailable"
			status = fiber.StatusServiceUnavailable
			continue
		}
		services[name] = "connected"
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   overall,
		"services": services,
	})
}

func (h Handler) Setup(router fiber.Router) {
	router.Get("/health", h.check)
}
