package postgres

import (
	"context"

	"github.com/fasevent/registrations/internal/domain/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentQRStorage struct {
	db *gorm.DB
}

func NewPaymentQRStorage(db *gorm.DB) *PaymentQRStorage {
	return &PaymentQRStorage{
		db: db,
	}
}

func (s *PaymentQRStorage) Get(ctx context.Context, id uint) (*entity.PaymentQR, error) {
	var qr entity.PaymentQR
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&qr).Error
	return &qr, err
}

// GetActive returns all active records, most recently updated first.
func (s *PaymentQRStorage) GetActive(ctx context.Context) ([]entity.PaymentQR, error) {
	var qrs []entity.PaymentQR
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		Order("id ASC").
		Find(&qrs).Error
	return qrs, err
}

func (s *PaymentQRStorage) GetAll(ctx context.Context) ([]entity.PaymentQR, error) {
	var qrs []entity.PaymentQR
	err := s.db.WithContext(ctx).Order("updated_at DESC").Find(&qrs).Error
	return qrs, err
}

// Upsert creates the record for its category triple or replaces the image of the existing one.
func (s *PaymentQRStorage) Upsert(ctx context.Context, qr *entity.PaymentQR) (*entity.PaymentQR, error) {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "model_walk"}, {Name: "dance"}, {Name: "movie_selection"}},
			DoUpdates: clause.AssignmentColumns([]string{"image_url", "name", "is_active", "updated_at"}),
		}).
		Create(qr).Error
	if err != nil {
		return nil, err
	}
	return s.getByCategories(ctx, qr.Categories())
}

func (s *PaymentQRStorage) getByCategories(ctx context.Context, c entity.Categories) (*entity.PaymentQR, error) {
	var qr entity.PaymentQR
	err := s.db.WithContext(ctx).
		Where("model_walk = ? AND dance = ? AND movie_selection = ?", c.ModelWalk, c.Dance, c.MovieSelection).
		First(&qr).Error
	return &qr, err
}

// Delete removes the record and reports whether it existed.
func (s *PaymentQRStorage) Delete(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.PaymentQR{})
	return res.RowsAffected > 0, res.Error
}
