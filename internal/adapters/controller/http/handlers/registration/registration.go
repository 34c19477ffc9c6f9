package registration

import (
	"context"

	"github.com/fasevent/registrations/internal/adapters/controller/http/middlewares"
	"github.com/fasevent/registrations/internal/adapters/controller/http/response"
	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/pkg/logger/types"
	"github.com/gofiber/fiber/v2"
)

type registrationService interface {
	Create(ctx context.Context, input dto.RegistrationInput) (*dto.RegistrationResult, error)
	GetByIdWithTicket(ctx context.Context, registrationID string) (*entity.Registration, error)
	RegenerateTicket(ctx context.Context, registrationID string) (*entity.Registration, error)
	VerifyEntry(ctx context.Context, registrationID string, requesterIsAdmin bool) (*dto.EntryVerification, error)
	VerifyEntryByTicketScan(ctx context.Context, payload string, requesterIsAdmin bool) (*dto.TicketScan, error)
}

type Handler struct {
	logger              *types.Logger
	registrationService registrationService
}

func New(logger *types.Logger, registrationService registrationService) *Handler {
	return &Handler{
		logger:              logger,
		registrationService: registrationService,
	}
}

func (h Handler) create(c *fiber.Ctx) error {
	var input dto.RegistrationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.registrationService.Create(c.UserContext(), input)
	if err != nil {
		h.logger.Errorf("failed to create registration for %s: %v", input.Email, err)
		return response.FromError(c, err, "Registration failed")
	}

	return response.Created(c, "Registration successful", fiber.Map{
		"registrationId": result.RegistrationID,
		"totalAmount":    result.TotalAmount,
		"qrCodeImage":    result.QRCodeImage,
		"warnings":       result.Warnings,
	})
}

func (h Handler) get(c *fiber.Ctx) error {
	registration, err := h.registrationService.GetByIdWithTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err, "Error fetching registration")
	}
	return response.Success(c, "", fiber.Map{"registration": registration})
}

func (h Handler) qrCode(c *fiber.Ctx) error {
	registration, err := h.registrationService.RegenerateTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		h.logger.Errorf("(registration: %s) failed to regenerate ticket: %v", c.Params("id"), err)
		return response.FromError(c, err, "Error generating QR code")
	}
	return response.Success(c, "", fiber.Map{"qrCodeImage": registration.QRCodeImage})
}

func (h Handler) verifyEntry(c *fiber.Ctx) error {
	verification, err := h.registrationService.VerifyEntry(c.UserContext(), c.Params("id"), middlewares.IsAdmin(c))
	if err != nil {
		return response.FromError(c, err, "Failed to verify entry")
	}
	if verification.AlreadyVerified {
		return response.Status(c, fiber.StatusBadRequest, "Entry already verified", fiber.Map{
			"entryTimestamp":  verification.Timestamp,
			"alreadyVerified": true,
		})
	}
	return response.Success(c, "Entry verified successfully", fiber.Map{
		"entryTimestamp": verification.Timestamp,
	})
}

type ticketRequest struct {
	RegistrationID string `json:"registrationId"`
}

// verifyTicket admits the holder of a scanned ticket. Like verify-entry it requires an
// admin token; a ticket link alone cannot consume an entry.
func (h Handler) verifyTicket(c *fiber.Ctx) error {
	var req ticketRequest
	if err := c.BodyParser(&req); err != nil || req.RegistrationID == "" {
		return response.BadRequest(c, "registrationId is required")
	}

	scan, err := h.registrationService.VerifyEntryByTicketScan(c.UserContext(), req.RegistrationID, middlewares.IsAdmin(c))
	if err != nil {
		return response.FromError(c, err, "Verification failed")
	}
	if scan.AlreadyVerified {
		return response.Status(c, fiber.StatusBadRequest, "Ticket has already been used", fiber.Map{
			"registration":    scan,
			"alreadyVerified": true,
		})
	}
	return response.Success(c, "Entry verified successfully", fiber.Map{"registration": scan})
}

// Setup registers the participant routes. limit throttles only the public create route;
// entry verification requires an admin token and is not rate limited.
func (h Handler) Setup(router fiber.Router, middle *middlewares.Handler, limit fiber.Handler) {
	router.Post("/registration", limit, h.create)
	router.Get("/registration/:id", h.get)
	router.Get("/registration/:id/qrcode", h.qrCode)
	router.Post("/registration/:id/verify-entry", middle.RequireAdmin, h.verifyEntry)
	router.Post("/tickets/verify", middle.RequireAdmin, h.verifyTicket)
}
