package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// StatsCache implements ports.StatsCache using Redis.
type StatsCache struct {
	client goredis.Cmdable
	prefix string
}

// NewStatsCache creates a new Redis-backed ledger stats cache.
func NewStatsCache(client goredis.Cmdable) *StatsCache {
	return &StatsCache{
		client: client,
		prefix: "ledger:stats:",
	}
}

// Get retrieves cached stats by filter key.
// Returns nil, nil if the key does not exist.
func (c *StatsCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis stats get: %w", err)
	}
	return val, nil
}

// Set stores serialized stats with TTL.
func (c *StatsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis stats set: %w", err)
	}
	return nil
}
