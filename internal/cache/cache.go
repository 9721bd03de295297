package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the session cache: a shared key-value store holding serialized
// user snapshots keyed by user id. Writes are last-write-wins per key; no
// locking is performed on top of it.
type Cache struct {
	rdb *redis.Client
}

// New connects and pings. An unreachable cache is an unrecoverable startup
// failure, so the error is returned to the caller rather than degraded
// around.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	slog.Info("session cache connected", "addr", opts.Addr)
	return &Cache{rdb: rdb}, nil
}

// Get returns the value and whether the key was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return val, true, nil
}

// Set stores the value; ttl <= 0 means no expiry.
func (c *Cache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

func (c *Cache) Del(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache del %q: %w", key, err)
	}
	return nil
}

func (c *Cache) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
