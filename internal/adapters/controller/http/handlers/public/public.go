package public

import (
	"context"
	"io"

	"github.com/fasevent/registrations/internal/adapters/controller/http/response"
	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/internal/domain/service"
	"github.com/fasevent/registrations/pkg/logger/types"
	"github.com/gofiber/fiber/v2"
)

const maxUploadBytes = service.MaxUploadSize

type paymentQRService interface {
	Lookup(ctx context.Context, flags entity.Categories) (*dto.PaymentQRLookup, error)
}

type costService interface {
	Get(ctx context.Context) (*entity.CategoryCost, error)
}

type uploadService interface {
	UploadImage(ctx context.Context, filename string, data []byte) (string, error)
}

type emailVerificationService interface {
	Send(ctx context.Context, email, name string) error
	Resend(ctx context.Context, email, name string) error
	Verify(ctx context.Context, email, otp string) error
}

type Handler struct {
	logger *types.Logger

	paymentQRService         paymentQRService
	costService              costService
	uploadService            uploadService
	emailVerificationService emailVerificationService
}

func New(
	logger *types.Logger,
	paymentQRService paymentQRService,
	costService costService,
	uploadService uploadService,
	emailVerificationService emailVerificationService,
) *Handler {
	return &Handler{
		logger:                   logger,
		paymentQRService:         paymentQRService,
		costService:              costService,
		uploadService:            uploadService,
		emailVerificationService: emailVerificationService,
	}
}

func (h Handler) paymentQR(c *fiber.Ctx) error {
	flags := entity.Categories{
		ModelWalk:      c.QueryBool("modelWalk"),
		Dance:          c.QueryBool("dance"),
		MovieSelection: c.QueryBool("movieSelection"),
	}
	qr, err := h.paymentQRService.Lookup(c.UserContext(), flags)
	if err != nil {
		return response.FromError(c, err, "Failed to fetch payment QR code")
	}
	return response.Success(c, "", fiber.Map{"qrCode": qr})
}

func (h Handler) costs(c *fiber.Ctx) error {
	costs, err := h.costService.Get(c.UserContext())
	if err != nil {
		h.logger.Errorf("failed to load category costs: %v", err)
		return response.FromError(c, err, "Failed to fetch category costs")
	}
	return response.Success(c, "", fiber.Map{"costs": costs})
}

func (h Handler) upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file provided")
	}

	file, err := header.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read file")
	}
	defer file.Close()

	// one byte over the limit lets the service reject oversized files
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return response.BadRequest(c, "Failed to read file")
	}

	url, err := h.uploadService.UploadImage(c.UserContext(), header.Filename, data)
	if err != nil {
		h.logger.Errorf("failed to upload %s: %v", header.Filename, err)
		return response.FromError(c, err, "Upload failed")
	}
	return response.Success(c, "", fiber.Map{"url": url})
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	OTP   string `json:"otp"`
}

func (h Handler) sendCode(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.emailVerificationService.Send(c.UserContext(), req.Email, req.Name); err != nil {
		return response.FromError(c, err, "Failed to send verification code")
	}
	return response.Success(c, "Verification code sent", nil)
}

func (h Handler) verifyCode(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.emailVerificationService.Verify(c.UserContext(), req.Email, req.OTP); err != nil {
		return response.FromError(c, err, "Failed to verify email")
	}
	return response.Success(c, "Email verified successfully", fiber.Map{"verified": true})
}

func (h Handler) resendCode(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.emailVerificationService.Resend(c.UserContext(), req.Email, req.Name); err != nil {
		return response.FromError(c, err, "Failed to resend verification code")
	}
	return response.Success(c, "Verification code resent", nil)
}

func (h Handler) Setup(router fiber.Router) {
	router.Get("/payment-qr", h.paymentQR)
	router.Get("/costs", h.costs)
	router.Post("/upload", h.upload)
	router.Post("/verify-email", h.sendCode)
	router.Put("/verify-email", h.verifyCode)
	router.Patch("/verify-email", h.resendCode)
}
