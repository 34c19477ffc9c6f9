package service

import (
	"context"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/pkg/logger/types"
)

type categoryCostStorage interface {
	GetOrCreate(ctx context.Context, defaults entity.CategoryCost) (*entity.CategoryCost, error)
	Save(ctx context.Context, cost *entity.CategoryCost) (*entity.CategoryCost, error)
}

type categoryCostCache interface {
	Get(ctx context.Context) (*entity.CategoryCost, bool, error)
	Set(ctx context.Context, cost *entity.CategoryCost) error
	Invalidate(ctx context.Context) error
}

type CategoryCostService struct {
	logger *types.Logger

	storage categoryCostStorage
	cache   categoryCostCache

	defaultPrice int64
}

// NewCategoryCostService creates the cost table service. cache may be nil.
func NewCategoryCostService(logger *types.Logger, storage categoryCostStorage, cache categoryCostCache, defaultPrice int64) *CategoryCostService {
	if defaultPrice <= 0 {
		defaultPrice = entity.DefaultCategoryPrice
	}
	return &CategoryCostService{
		logger:       logger,
		storage:      storage,
		cache:        cache,
		defaultPrice: defaultPrice,
	}
}

// Get returns the current cost table, creating it with default prices on first use.
func (s *CategoryCostService) Get(ctx context.Context) (*entity.CategoryCost, error) {
	if s.cache != nil {
		cost, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warnf("failed to read cost cache: %v", err)
		} else if ok {
			return cost, nil
		}
	}

	cost, err := s.storage.GetOrCreate(ctx, entity.DefaultCategoryCost(s.defaultPrice))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err = s.cache.Set(ctx, cost); err != nil {
			s.logger.Warnf("failed to write cost cache: %v", err)
		}
	}
	return cost, nil
}

// Update replaces all prices. Only admins may call it and prices must not be negative.
func (s *CategoryCostService) Update(ctx context.Context, newCosts entity.CategoryCost, isAdmin bool) (*entity.CategoryCost, error) {
	if !isAdmin {
		return nil, errorz.Unauthorized("admin access required")
	}
	for _, category := range entity.AllCategories {
		if newCosts.Price(category) < 0 {
			return nil, errorz.Validation("cost for %s must not be negative", category)
		}
	}

	cost, err := s.storage.Save(ctx, &newCosts)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err = s.cache.Invalidate(ctx); err != nil {
			s.logger.Warnf("failed to invalidate cost cache: %v", err)
		}
	}
	s.logger.Infof("category costs updated: modelWalk=%d dance=%d movieSelection=%d", cost.ModelWalk, cost.Dance, cost.MovieSelection)
	return cost, nil
}
