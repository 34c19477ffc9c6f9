package emails

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "verified:"

// Storage remembers addresses that passed email verification.
type Storage struct {
	redis *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		redis: client,
	}
}

func (s *Storage) MarkVerified(ctx context.Context, email string, expiration time.Duration) error {
	return s.redis.Set(ctx, keyPrefix+email, time.Now().UTC().Format(time.RFC3339), expiration).Err()
}

func (s *Storage) IsVerified(ctx context.Context, email string) (bool, error) {
	n, err := s.redis.Exists(ctx, keyPrefix+email).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
