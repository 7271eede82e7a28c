// Package cache provides a short-TTL Redis cache for advisory availability
// reads. The cached value is for UI display only and can be stale; the
// authoritative capacity check always happens inside the reservation commit
// transaction. A nil client disables caching entirely.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const availabilityTTL = 10 * time.Second

// Availability is the cached advisory pair.
type Availability struct {
	Available int `json:"available"`
	Total     int `json:"total"`
}

// AvailabilityCache caches advisory availability per date.
type AvailabilityCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewAvailabilityCache creates a cache. Client may be nil; all operations
// then degrade to misses.
func NewAvailabilityCache(client *redis.Client, logger *zap.Logger) *AvailabilityCache {
	return &AvailabilityCache{client: client, logger: logger}
}

// NewRedisClient connects to Redis, returning nil when the address is empty
// or the server is unreachable so callers degrade gracefully.
func NewRedisClient(addr, password string, logger *zap.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, advisory cache disabled", zap.Error(err))
		return nil
	}
	return client
}

func key(date string) string { return "availability:" + date }

// Get returns the cached availability for a date, if present.
func (c *AvailabilityCache) Get(ctx context.Context, date string) (*Availability, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(date)).Bytes()
	if err != nil {
		return nil, false
	}
	var a Availability
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, false
	}
	return &a, true
}

// Set stores the availability for a date with a short TTL.
func (c *AvailabilityCache) Set(ctx context.Context, date string, a Availability) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(date), raw, availabilityTTL).Err(); err != nil {
		c.logger.Debug("availability cache set failed", zap.Error(err))
	}
}

// Invalidate drops the cached entry for a date after a successful write.
func (c *AvailabilityCache) Invalidate(ctx context.Context, date string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key(date)).Err(); err != nil {
		c.logger.Debug("availability cache invalidate failed", zap.Error(err))
	}
}
