package postgres

import (
	"context"
	"time"

	"github.com/fasevent/registrations/internal/domain/entity"
	"gorm.io/gorm"
)

type RegistrationStorage struct {
	db *gorm.DB
}

func NewRegistrationStorage(db *gorm.DB) *RegistrationStorage {
	return &RegistrationStorage{
		db: db,
	}
}

// Create inserts a new registration. A taken registration_id surfaces as gorm.ErrDuplicatedKey
// when the connection is opened with TranslateError.
func (s *RegistrationStorage) Create(ctx context.Context, registration *entity.Registration) (*entity.Registration, error) {
	err := s.db.WithContext(ctx).Create(registration).Error
	return registration, err
}

// Get returns the registration with the given public id.
func (s *RegistrationStorage) Get(ctx context.Context, registrationID string) (*entity.Registration, error) {
	var registration entity.Registration
	err := s.db.WithContext(ctx).Where("registration_id = ?", registrationID).First(&registration).Error
	return &registration, err
}

// GetAll returns every registration, newest first.
func (s *RegistrationStorage) GetAll(ctx context.Context) ([]entity.Registration, error) {
	var registrations []entity.Registration
	err := s.db.WithContext(ctx).Order("registration_date DESC").Find(&registrations).Error
	return registrations, err
}

// UpdatePaymentStatus writes the status and, if qrCodeImage is non-nil, the ticket image.
// Only these columns are touched so a concurrent entry check is never overwritten.
func (s *RegistrationStorage) UpdatePaymentStatus(ctx context.Context, registrationID string, status entity.PaymentStatus, qrCodeImage *string) (*entity.Registration, error) {
	updates := map[string]interface{}{
		"payment_status": status,
	}
	if qrCodeImage != nil {
		updates["qr_code_image"] = *qrCodeImage
	}

	res := s.db.WithContext(ctx).
		Model(&entity.Registration{}).
		Where("registration_id = ?", registrationID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return s.Get(ctx, registrationID)
}

// SetQRCodeImage stores the ticket image.
func (s *RegistrationStorage) SetQRCodeImage(ctx context.Context, registrationID string, qrCodeImage string) error {
	return s.db.WithContext(ctx).
		Model(&entity.Registration{}).
		Where("registration_id = ?", registrationID).
		Update("qr_code_image", qrCodeImage).Error
}

// MarkEntryVerified flips entry_verified to true for a paid registration in a single
// conditional update. It reports whether this call performed the transition.
func (s *RegistrationStorage) MarkEntryVerified(ctx context.Context, registrationID string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&entity.Registration{}).
		Where("registration_id = ? AND entry_verified = ? AND payment_status = ?", registrationID, false, entity.PaymentVerified).
		Updates(map[string]interface{}{
			"entry_verified":  true,
			"entry_timestamp": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountByStatus returns the number of registrations per payment status.
func (s *RegistrationStorage) CountByStatus(ctx context.Context) (map[entity.PaymentStatus]int64, error) {
	var rows []struct {
		PaymentStatus entity.PaymentStatus
		Count         int64
	}
	err := s.db.WithContext(ctx).
		Model(&entity.Registration{}).
		Select("payment_status, COUNT(*) AS count").
		Group("payment_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.PaymentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.PaymentStatus] = row.Count
	}
	return counts, nil
}
