// Package redis holds Redis-backed helpers.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/nitinder-api/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient builds a client from config. Only Addr is mandatory.
func NewClient(cfg *config.Config) *goredis.Client {
	opts := &goredis.Options{Addr: cfg.RedisAddr}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB != 0 {
		opts.DB = cfg.RedisDB
	}
	return goredis.NewClient(opts)
}

// Throttle allows one action per key within a fixed window.
type Throttle struct {
	client *goredis.Client
	prefix string
	window time.Duration
}

func NewThrottle(client *goredis.Client, prefix string, window time.Duration) *Throttle {
	return &Throttle{client: client, prefix: prefix, window: window}
}

// Allow reports whether key may act now. A true result starts a new window for key.
func (t *Throttle) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.prefix+key, time.Now().Unix(), t.window).Result()
	if err != nil {
		return false, fmt.Errorf("throttle %s: %w", key, err)
	}
	return ok, nil
}

// Reset clears the window for key.
func (t *Throttle) Reset(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.prefix+key).Err()
}
