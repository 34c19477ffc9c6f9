package costs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/redis/go-redis/v9"
)

const key = "category_costs"

// Storage caches the category cost row.
type Storage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStorage(client *redis.Client, ttl time.Duration) *Storage {
	return &Storage{
		redis: client,
		ttl:   ttl,
	}
}

// Get returns the cached costs. The bool is false on a cache miss.
func (s *Storage) Get(ctx context.Context) (*entity.CategoryCost, bool, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cost entity.CategoryCost
	if err = json.Unmarshal(data, &cost); err != nil {
		return nil, false, err
	}
	return &cost, true, nil
}

func (s *Storage) Set(ctx context.Context, cost *entity.CategoryCost) error {
	data, err := json.Marshal(cost)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, s.ttl).Err()
}

func (s *Storage) Invalidate(ctx context.Context) error {
	return s.redis.Del(ctx, key).Err()
}
