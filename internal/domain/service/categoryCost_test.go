package service

import (
	"context"
	"testing"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/fasevent/registrations/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCostStorage struct {
	row     *entity.CategoryCost
	creates int
	err     error
}

func (f *fakeCostStorage) GetOrCreate(_ context.Context, defaults entity.CategoryCost) (*entity.CategoryCost, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.row == nil {
		f.creates++
		f.row = &defaults
	}
	cp := *f.row
	return &cp, nil
}

func (f *fakeCostStorage) Save(_ context.Context, cost *entity.CategoryCost) (*entity.CategoryCost, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *cost
	f.row = &cp
	return cost, nil
}

type fakeCostCache struct {
	cost        *entity.CategoryCost
	hits        int
	invalidated int
}

func (f *fakeCostCache) Get(context.Context) (*entity.CategoryCost, bool, error) {
	if f.cost == nil {
		return nil, false, nil
	}
	f.hits++
	cp := *f.cost
	return &cp, true, nil
}

func (f *fakeCostCache) Set(_ context.Context, cost *entity.CategoryCost) error {
	cp := *cost
	f.cost = &cp
	return nil
}

func (f *fakeCostCache) Invalidate(context.Context) error {
	f.invalidated++
	f.cost = nil
	return nil
}

func TestCategoryCostDefaults(t *testing.T) {
	storage := &fakeCostStorage{}
	s := NewCategoryCostService(logger.Nop(), storage, nil, 0)

	cost, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5000), cost.ModelWalk)
	assert.Equal(t, int64(5000), cost.Dance)
	assert.Equal(t, int64(5000), cost.MovieSelection)

	_, err = s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, storage.creates)
}

func TestCategoryCostUpdate(t *testing.T) {
	storage := &fakeCostStorage{}
	cache := &fakeCostCache{}
	s := NewCategoryCostService(logger.Nop(), storage, cache, 5000)
	ctx := context.Background()

	_, err := s.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, cache.cost)

	_, err = s.Update(ctx, entity.CategoryCost{ModelWalk: 1, Dance: 2, MovieSelection: 3}, false)
	assert.ErrorIs(t, err, errorz.ErrUnauthorized)

	_, err = s.Update(ctx, entity.CategoryCost{ModelWalk: 1, Dance: -2, MovieSelection: 3}, true)
	assert.Equal(t, errorz.KindValidation, errorz.KindOf(err))
	assert.Equal(t, int64(5000), storage.row.Dance)

	updated, err := s.Update(ctx, entity.CategoryCost{ModelWalk: 0, Dance: 2500, MovieSelection: 3000}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), updated.Dance)
	assert.Equal(t, 1, cache.invalidated)

	cost, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cost.ModelWalk)
	assert.Equal(t, int64(3000), cost.MovieSelection)
	assert.Equal(t, int64(5500), cost.Total(entity.Categories{ModelWalk: true, Dance: true, MovieSelection: true}))
}

func TestCategoryCostServedFromCache(t *testing.T) {
	cache := &fakeCostCache{cost: &entity.CategoryCost{ModelWalk: 7}}
	storage := &fakeCostStorage{err: errUpstream}
	s := NewCategoryCostService(logger.Nop(), storage, cache, 5000)

	cost, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), cost.ModelWalk)
	assert.Equal(t, 1, cache.hits)
}
