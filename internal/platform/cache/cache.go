// Package cache provides a small Redis-backed cache used for read-heavy
// lookups such as doctor free-time computations. When no Redis address is
// configured the cache degrades to a no-op so the API keeps working without
// a cache tier.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrMiss is returned by Get when the key is absent or the cache is disabled.
var ErrMiss = errors.New("cache: miss")

// Cache wraps a Redis client with JSON serialization. A nil Cache or a Cache
// built without a client is safe to use; every operation becomes a no-op.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
}

// New connects to Redis at addr. An empty addr yields a disabled cache.
// Connection failures are logged but do not fail startup; the cache simply
// stays disabled.
func New(ctx context.Context, addr string, logger zerolog.Logger) *Cache {
	if addr == "" {
		return &Cache{logger: logger}
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("redis unreachable, caching disabled")
		_ = client.Close()
		return &Cache{logger: logger}
	}
	logger.Info().Str("addr", addr).Msg("redis cache connected")
	return &Cache{client: client, logger: logger}
}

// Enabled reports whether a Redis backend is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get unmarshals the cached JSON value for key into dest. Returns ErrMiss
// when the key is absent or the cache is disabled.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if !c.Enabled() {
		return ErrMiss
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		c.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return ErrMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, dropping")
		_ = c.client.Del(ctx, key).Err()
		return ErrMiss
	}
	return nil
}

// Set stores value as JSON under key with the given TTL. Failures are logged
// and swallowed; the cache is advisory.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Delete removes keys from the cache. Used to invalidate derived values
// after a write.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache delete failed")
	}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
