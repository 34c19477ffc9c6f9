package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/pkg/logger/types"
	"gorm.io/gorm"
)

type paymentQRStorage interface {
	Get(ctx context.Context, id uint) (*entity.PaymentQR, error)
	GetActive(ctx context.Context) ([]entity.PaymentQR, error)
	GetAll(ctx context.Context) ([]entity.PaymentQR, error)
	Upsert(ctx context.Context, qr *entity.PaymentQR) (*entity.PaymentQR, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type blobDeleter interface {
	Delete(ctx context.Context, url string) error
}

type PaymentQRService struct {
	logger *types.Logger

	storage paymentQRStorage
	blobs   blobDeleter
}

// NewPaymentQRService creates the payment QR directory. blobs may be nil.
func NewPaymentQRService(logger *types.Logger, storage paymentQRStorage, blobs blobDeleter) *PaymentQRService {
	return &PaymentQRService{
		logger:  logger,
		storage: storage,
		blobs:   blobs,
	}
}

// Lookup returns the active payment QR for the exact category combination. Without an
// exact match it falls back to the active record agreeing on the most flags; ties go to
// the most recently updated record, then to the lowest id.
func (s *PaymentQRService) Lookup(ctx context.Context, flags entity.Categories) (*dto.PaymentQRLookup, error) {
	qrs, err := s.storage.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	best := selectPaymentQR(qrs, flags)
	if best == nil {
		return nil, errorz.NotFound("no payment QR code found for these categories")
	}
	lookup := dto.NewPaymentQRLookup(best, best.Categories() == flags)
	return &lookup, nil
}

func selectPaymentQR(qrs []entity.PaymentQR, flags entity.Categories) *entity.PaymentQR {
	var best *entity.PaymentQR
	bestScore := -1
	for i := range qrs {
		qr := &qrs[i]
		score := qr.Categories().Overlap(flags)
		switch {
		case best == nil, score > bestScore:
		case score < bestScore:
			continue
		case qr.UpdatedAt.After(best.UpdatedAt):
		case qr.UpdatedAt.Equal(best.UpdatedAt) && qr.ID < best.ID:
		default:
			continue
		}
		best, bestScore = qr, score
	}
	return best
}

// List returns every record, including inactive ones.
func (s *PaymentQRService) List(ctx context.Context, isAdmin bool) ([]entity.PaymentQR, error) {
	if !isAdmin {
		return nil, errorz.Unauthorized("admin access required")
	}
	return s.storage.GetAll(ctx)
}

// Upsert creates or replaces the record for input.Categories.
func (s *PaymentQRService) Upsert(ctx context.Context, input dto.PaymentQRInput, isAdmin bool) (*entity.PaymentQR, error) {
	if !isAdmin {
		return nil, errorz.Unauthorized("admin access required")
	}
	if !input.Categories.Any() {
		return nil, errorz.Validation("select at least one category")
	}
	imageURL := strings.TrimSpace(input.ImageURL)
	if imageURL == "" {
		return nil, errorz.Validation("image URL is required")
	}

	qr := &entity.PaymentQR{
		ImageURL: imageURL,
		Name:     strings.TrimSpace(input.Name),
		IsActive: true,
	}
	qr.SetCategories(input.Categories)

	saved, err := s.storage.Upsert(ctx, qr)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("(payment qr: %d) saved for %s", saved.ID, saved.Categories().String())
	return saved, nil
}

// Delete removes the record and, best-effort, its image.
func (s *PaymentQRService) Delete(ctx context.Context, id uint, isAdmin bool) error {
	if !isAdmin {
		return errorz.Unauthorized("admin access required")
	}

	qr, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorz.NotFound("payment QR code %d not found", id)
		}
		return err
	}

	deleted, err := s.storage.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errorz.NotFound("payment QR code %d not found", id)
	}

	if s.blobs != nil {
		if err = s.blobs.Delete(ctx, qr.ImageURL); err != nil {
			s.logger.Warnf("(payment qr: %d) failed to delete image %s: %v", id, qr.ImageURL, err)
		}
	}
	s.logger.Infof("(payment qr: %d) deleted", id)
	return nil
}
