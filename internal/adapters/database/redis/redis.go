package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/fasevent/registrations/internal/adapters/database/redis/codes"
	"github.com/fasevent/registrations/internal/adapters/database/redis/costs"
	"github.com/fasevent/registrations/internal/adapters/database/redis/emails"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	Codes  *codes.Storage
	Emails *emails.Storage
	Costs  *costs.Storage

	clients []*redis.Client
}

type Options struct {
	Host     string
	Port     string
	Password string
	CostsTTL time.Duration
}

func New(ctx context.Context, opts Options) (*Client, error) {
	connect := func(db int, name string) (*redis.Client, error) {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
			Password: opts.Password,
			DB:       db,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping %s storage: %w", name, err)
		}
		return client, nil
	}

	codeStorage, err := connect(0, "codes")
	if err != nil {
		return nil, err
	}
	emailStorage, err := connect(1, "emails")
	if err != nil {
		return nil, err
	}
	costStorage, err := connect(2, "costs")
	if err != nil {
		return nil, err
	}

	if opts.CostsTTL <= 0 {
		opts.CostsTTL = 5 * time.Minute
	}

	return &Client{
		Codes:   codes.NewStorage(codeStorage),
		Emails:  emails.NewStorage(emailStorage),
		Costs:   costs.NewStorage(costStorage, opts.CostsTTL),
		clients: []*redis.Client{codeStorage, emailStorage, costStorage},
	}, nil
}

// Ping checks every underlying connection.
func (c *Client) Ping(ctx context.Context) error {
	for _, client := range c.clients {
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) Close() error {
	var firstErr error
	for _, client := range c.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
