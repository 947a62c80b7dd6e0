package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aid-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// EventCache implements ports.EventCache using Redis. It only short-cuts
// redeliveries; the processed_events table stays authoritative.
type EventCache struct {
	client goredis.Cmdable
	prefix string
}

// NewEventCache creates a new Redis-backed processed-event cache.
func NewEventCache(client goredis.Cmdable) *EventCache {
	return &EventCache{
		client: client,
		prefix: "event:",
	}
}

// Get returns the recorded outcome for eventID and whether one exists.
func (c *EventCache) Get(ctx context.Context, eventID string) (domain.EventOutcome, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+eventID).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis event get: %w", err)
	}
	return domain.EventOutcome(val), true, nil
}

// Set records the outcome with TTL. An existing entry is kept.
func (c *EventCache) Set(ctx context.Context, eventID string, outcome domain.EventOutcome, ttl time.Duration) error {
	err := c.client.SetArgs(ctx, c.prefix+eventID, string(outcome), goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Err()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis event set: %w", err)
	}
	return nil
}
