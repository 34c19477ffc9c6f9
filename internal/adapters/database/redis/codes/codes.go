package codes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:"

type Storage struct {
	redis *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		redis: client,
	}
}

// Get returns the pending code for email and the context it was requested with
// (the participant name), or errorz.ErrCodeExpired if none is stored.
func (s *Storage) Get(ctx context.Context, email string) (string, string, error) {
	codeData, err := s.redis.Get(ctx, keyPrefix+email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", errorz.ErrCodeExpired
		}
		return "", "", err
	}

	code, codeContext, _ := strings.Cut(codeData, ":")
	if code == "" {
		return "", "", errorz.ErrInvalidCode
	}
	return code, codeContext, nil
}

func (s *Storage) Set(ctx context.Context, email string, code string, codeContext string, expiration time.Duration) error {
	return s.redis.Set(ctx, keyPrefix+email, fmt.Sprintf("%s:%s", code, codeContext), expiration).Err()
}

func (s *Storage) Clear(ctx context.Context, email string) error {
	return s.redis.Del(ctx, keyPrefix+email).Err()
}
