package postgres

import (
	"context"

	"github.com/fasevent/registrations/internal/domain/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryCostStorage struct {
	db *gorm.DB
}

func NewCategoryCostStorage(db *gorm.DB) *CategoryCostStorage {
	return &CategoryCostStorage{
		db: db,
	}
}

// GetOrCreate returns the cost row, inserting defaults first if it does not exist yet.
// Concurrent first calls converge on one row.
func (s *CategoryCostStorage) GetOrCreate(ctx context.Context, defaults entity.CategoryCost) (*entity.CategoryCost, error) {
	defaults.ID = entity.CategoryCostID
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&defaults).Error
	if err != nil {
		return nil, err
	}

	var cost entity.CategoryCost
	err = s.db.WithContext(ctx).Where("id = ?", entity.CategoryCostID).First(&cost).Error
	return &cost, err
}

// Save overwrites the cost row.
func (s *CategoryCostStorage) Save(ctx context.Context, cost *entity.CategoryCost) (*entity.CategoryCost, error) {
	cost.ID = entity.CategoryCostID
	err := s.db.WithContext(ctx).Save(cost).Error
	return cost, err
}
