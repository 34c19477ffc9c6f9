package response

import (
	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/gofiber/fiber/v2"
)

// Success writes {"success": true, "message": ..., <fields>} with status 200.
func Success(c *fiber.Ctx, message string, fields fiber.Map) error {
	return Status(c, fiber.StatusOK, message, fields)
}

func Created(c *fiber.Ctx, message string, fields fiber.Map) error {
	return Status(c, fiber.StatusCreated, message, fields)
}

func Status(c *fiber.Ctx, status int, message string, fields fiber.Map) error {
	body := fiber.Map{
		"success": status < fiber.StatusBadRequest,
		"message": message,
	}
	for k, v := range fields {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized: admin access required")
}

// StatusOf maps a domain error kind to an HTTP status.
func StatusOf(err error) int {
	switch errorz.KindOf(err) {
	case errorz.KindValidation:
		return fiber.StatusBadRequest
	case errorz.KindNotFound:
		return fiber.StatusNotFound
	case errorz.KindUnauthorized:
		return fiber.StatusUnauthorized
	case errorz.KindForbidden:
		return fiber.StatusForbidden
	case errorz.KindInvalidState:
		return fiber.StatusConflict
	case errorz.KindUpstream:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// FromError writes err with the status of its kind. Errors without a kind are
// reported as fallback so internal details do not leak.
func FromError(c *fiber.Ctx, err error, fallback string) error {
	status := StatusOf(err)
	if status == fiber.StatusInternalServerError {
		return Error(c, status, fallback)
	}
	return Error(c, status, errorz.MessageOf(err))
}
