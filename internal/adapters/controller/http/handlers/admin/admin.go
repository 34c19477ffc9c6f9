package admin

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/fasevent/registrations/internal/adapters/controller/http/middlewares"
	"github.com/fasevent/registrations/internal/adapters/controller/http/response"
	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/internal/domain/utils/location"
	"github.com/fasevent/registrations/pkg/logger/types"
	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type authService interface {
	Login(password string) (string, time.Time, error)
	IsAdmin(tokenStr string) bool
}

type registrationService interface {
	List(ctx context.Context) ([]entity.Registration, error)
	Get(ctx context.Context, registrationID string) (*entity.Registration, error)
	SetPaymentStatus(ctx context.Context, registrationID string, status entity.PaymentStatus) (*dto.StatusUpdateResult, error)
	Export(ctx context.Context) (*bytes.Buffer, error)
	Stats(ctx context.Context) (map[entity.PaymentStatus]int64, error)
}

type costService interface {
	Get(ctx context.Context) (*entity.CategoryCost, error)
	Update(ctx context.Context, newCosts entity.CategoryCost, isAdmin bool) (*entity.CategoryCost, error)
}

type paymentQRService interface {
	List(ctx context.Context, isAdmin bool) ([]entity.PaymentQR, error)
	Upsert(ctx context.Context, input dto.PaymentQRInput, isAdmin bool) (*entity.PaymentQR, error)
	Delete(ctx context.Context, id uint, isAdmin bool) error
}

type Handler struct {
	logger *types.Logger

	authService         authService
	registrationService registrationService
	costService         costService
	paymentQRService    paymentQRService

	secureCookie bool
}

func New(
	logger *types.Logger,
	authService authService,
	registrationService registrationService,
	costService costService,
	paymentQRService paymentQRService,
	secureCookie bool,
) *Handler {
	return &Handler{
		logger:              logger,
		authService:         authService,
		registrationService: registrationService,
		costService:         costService,
		paymentQRService:    paymentQRService,
		secureCookie:        secureCookie,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h Handler) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	token, expiresAt, err := h.authService.Login(req.Password)
	if err != nil {
		h.logger.Warnf("failed admin login from %s", c.IP())
		if response.StatusOf(err) == fiber.StatusUnauthorized {
			return response.Error(c, fiber.StatusUnauthorized, "Incorrect password")
		}
		return response.FromError(c, err, "Login failed")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.AdminCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return response.Success(c, "Login successful", fiber.Map{"token": token})
}

func (h Handler) check(c *fiber.Ctx) error {
	tokenStr := middlewares.Token(c)
	return c.JSON(fiber.Map{"isAdmin": tokenStr != "" && h.authService.IsAdmin(tokenStr)})
}

func (h Handler) logout(c *fiber.Ctx) error {
	c.ClearCookie(middlewares.AdminCookie)
	return response.Success(c, "Logged out", nil)
}

func (h Handler) registrations(c *fiber.Ctx) error {
	registrations, err := h.registrationService.List(c.UserContext())
	if err != nil {
		h.logger.Errorf("failed to list registrations: %v", err)
		return response.FromError(c, err, "Failed to fetch registrations")
	}
	stats, err := h.registrationService.Stats(c.UserContext())
	if err != nil {
		h.logger.Errorf("failed to count registrations: %v", err)
		return response.FromError(c, err, "Failed to fetch registrations")
	}
	return response.Success(c, "", fiber.Map{
		"registrations": registrations,
		"stats":         stats,
	})
}

func (h Handler) registration(c *fiber.Ctx) error {
	registration, err := h.registrationService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err, "Failed to fetch registration")
	}
	return response.Success(c, "", fiber.Map{"registration": registration})
}

func (h Handler) export(c *fiber.Ctx) error {
	buf, err := h.registrationService.Export(c.UserContext())
	if err != nil {
		h.logger.Errorf("failed to export registrations: %v", err)
		return response.FromError(c, err, "Failed to export registrations")
	}

	filename := fmt.Sprintf("registrations-%s.xlsx", time.Now().In(location.Location()).Format("2006-01-02"))
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}

type statusRequest struct {
	Status entity.PaymentStatus `json:"status"`
}

func (h Handler) updateStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.registrationService.SetPaymentStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		h.logger.Errorf("(registration: %s) failed to set payment status %q: %v", c.Params("id"), req.Status, err)
		return response.FromError(c, err, "Failed to update payment status")
	}
	return response.Success(c, "Payment status updated", fiber.Map{
		"registration": result.Registration,
		"warnings":     result.Warnings,
	})
}

func (h Handler) getCosts(c *fiber.Ctx) error {
	costs, err := h.costService.Get(c.UserContext())
	if err != nil {
		return response.FromError(c, err, "Failed to fetch category costs")
	}
	return response.Success(c, "", fiber.Map{"costs": costs})
}

func (h Handler) updateCosts(c *fiber.Ctx) error {
	var costs entity.CategoryCost
	if err := c.BodyParser(&costs); err != nil {
		return response.BadRequest(c, "Invalid cost values. All costs must be non-negative numbers.")
	}

	updated, err := h.costService.Update(c.UserContext(), costs, middlewares.IsAdmin(c))
	if err != nil {
		return response.FromError(c, err, "Failed to update category costs")
	}
	return response.Success(c, "Category costs updated", fiber.Map{"costs": updated})
}

func (h Handler) paymentQRs(c *fiber.Ctx) error {
	qrs, err := h.paymentQRService.List(c.UserContext(), middlewares.IsAdmin(c))
	if err != nil {
		return response.FromError(c, err, "Failed to fetch payment QR codes")
	}
	return response.Success(c, "", fiber.Map{"qrCodes": qrs})
}

func (h Handler) savePaymentQR(c *fiber.Ctx) error {
	var input dto.PaymentQRInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	qr, err := h.paymentQRService.Upsert(c.UserContext(), input, middlewares.IsAdmin(c))
	if err != nil {
		return response.FromError(c, err, "Failed to save payment QR code")
	}
	return response.Success(c, "Payment QR code saved", fiber.Map{"qrCode": qr})
}

func (h Handler) deletePaymentQR(c *fiber.Ctx) error {
	id := c.QueryInt("id")
	if id <= 0 {
		return response.BadRequest(c, "A valid id is required")
	}

	if err := h.paymentQRService.Delete(c.UserContext(), uint(id), middlewares.IsAdmin(c)); err != nil {
		return response.FromError(c, err, "Failed to delete payment QR code")
	}
	return response.Success(c, "Payment QR code deleted", nil)
}

// Setup registers the admin routes. Everything except login, check and logout
// requires an admin token.
func (h Handler) Setup(router fiber.Router, middle *middlewares.Handler) {
	router.Post("/login", h.login)
	router.Get("/check", h.check)
	router.Post("/logout", h.logout)

	admin := middle.RequireAdmin
	router.Get("/registrations", admin, h.registrations)
	router.Get("/registrations/export", admin, h.export)
	router.Get("/registrations/:id", admin, h.registration)
	router.Patch("/registrations/:id/status", admin, h.updateStatus)

	router.Get("/costs", admin, h.getCosts)
	router.Put("/costs", admin, h.updateCosts)

	router.Get("/payment-qr", admin, h.paymentQRs)
	router.Post("/payment-qr", admin, h.savePaymentQR)
	router.Delete("/payment-qr", admin, h.deletePaymentQR)
}
