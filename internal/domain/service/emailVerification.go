package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/fasevent/registrations/internal/domain/utils/validator"
	"github.com/fasevent/registrations/pkg/generator"
	"github.com/fasevent/registrations/pkg/logger/types"
)

type codeStorage interface {
	Get(ctx context.Context, email string) (string, string, error)
	Set(ctx context.Context, email string, code string, codeContext string, expiration time.Duration) error
	Clear(ctx context.Context, email string) error
}

type verifiedEmailStorage interface {
	MarkVerified(ctx context.Context, email string, expiration time.Duration) error
	IsVerified(ctx context.Context, email string) (bool, error)
}

type codeSender interface {
	EmailVerificationCode(ctx context.Context, email, name, code string) error
}

type EmailVerificationService struct {
	logger *types.Logger

	codes    codeStorage
	verified verifiedEmailStorage
	sender   codeSender

	codeTTL     time.Duration
	verifiedTTL time.Duration
}

func NewEmailVerificationService(
	logger *types.Logger,
	codes codeStorage,
	verified verifiedEmailStorage,
	sender codeSender,
	codeTTL time.Duration,
	verifiedTTL time.Duration,
) *EmailVerificationService {
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	if verifiedTTL <= 0 {
		verifiedTTL = 24 * time.Hour
	}
	return &EmailVerificationService{
		logger:      logger,
		codes:       codes,
		verified:    verified,
		sender:      sender,
		codeTTL:     codeTTL,
		verifiedTTL: verifiedTTL,
	}
}

// Send issues a new 6-digit code for email, replacing any pending one.
func (s *EmailVerificationService) Send(ctx context.Context, email, name string) error {
	email = validator.NormalizeEmail(email)
	if !validator.Email(email) {
		return errorz.Validation("invalid email address")
	}

	code, err := generator.NumericCode(6)
	if err != nil {
		return err
	}
	if err = s.codes.Set(ctx, email, code, name, s.codeTTL); err != nil {
		return err
	}
	if err = s.sender.EmailVerificationCode(ctx, email, name, code); err != nil {
		_ = s.codes.Clear(ctx, email)
		return errorz.Upstream("failed to send verification email", err)
	}
	s.logger.Infof("verification code sent to %s", email)
	return nil
}

// Resend issues a fresh code, reusing the name from the pending request when none is given.
func (s *EmailVerificationService) Resend(ctx context.Context, email, name string) error {
	email = validator.NormalizeEmail(email)
	if name == "" {
		_, codeContext, err := s.codes.Get(ctx, email)
		if err == nil {
			name = codeContext
		}
	}
	return s.Send(ctx, email, name)
}

// Verify checks otp against the pending code. On success the address stays verified
// for the configured period and the code is consumed.
func (s *EmailVerificationService) Verify(ctx context.Context, email, otp string) error {
	email = validator.NormalizeEmail(email)
	if email == "" || otp == "" {
		return errorz.Validation("email and code are required")
	}

	code, _, err := s.codes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, errorz.ErrCodeExpired) || errors.Is(err, errorz.ErrInvalidCode) {
			return errorz.Validation("verification code has expired, request a new one")
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(otp)) != 1 {
		return errorz.Validation("invalid verification code")
	}

	if err = s.verified.MarkVerified(ctx, email, s.verifiedTTL); err != nil {
		return err
	}
	if err = s.codes.Clear(ctx, email); err != nil {
		s.logger.Warnf("failed to clear verification code for %s: %v", email, err)
	}
	s.logger.Infof("email %s verified", email)
	return nil
}

func (s *EmailVerificationService) IsVerified(ctx context.Context, email string) (bool, error) {
	return s.verified.IsVerified(ctx, validator.NormalizeEmail(email))
}
