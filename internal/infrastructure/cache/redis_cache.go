package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"retentionos/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores metric results under a per-owner version number.
// Invalidate bumps the version, which orphans every older entry until its TTL runs out.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: "retentionos:metrics:", ttl: ttl}
}

var _ ports.MetricsCache = (*RedisCache)(nil)

// Version returns the owner's current cache version, zero before the first Invalidate
func (c *RedisCache) Version(ctx context.Context, ownerID string) (int64, error) {
	version, err := c.client.Get(ctx, c.versionKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache version: %w", err)
	}
	return version, nil
}

func (c *RedisCache) Get(ctx context.Context, ownerID, key string, version int64, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.entryKey(ownerID, key, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached value: %w", err)
	}
	return true, nil
}

// Set stores value under the version the caller read before computing it.
// If the owner was invalidated meanwhile, the entry is never read.
func (c *RedisCache) Set(ctx context.Context, ownerID, key string, version int64, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	if err := c.client.Set(ctx, c.entryKey(ownerID, key, version), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, ownerID string) error {
	if err := c.client.Incr(ctx, c.versionKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

func (c *RedisCache) entryKey(ownerID, key string, version int64) string {
	return fmt.Sprintf("%s%s:v%d:%s", c.prefix, ownerID, version, key)
}

func (c *RedisCache) versionKey(ownerID string) string {
	return c.prefix + ownerID + ":version"
}

// NopCache never stores anything. Used when Redis is not configured.
type NopCache struct{}

var _ ports.MetricsCache = NopCache{}

func (NopCache) Version(context.Context, string) (int64, error)                { return 0, nil }
func (NopCache) Get(context.Context, string, string, int64, any) (bool, error) { return false, nil }
func (NopCache) Set(context.Context, string, string, int64, any) error         { return nil }
func (NopCache) Invalidate(context.Context, string) error                      { return nil }
