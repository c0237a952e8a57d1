package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in a shared Redis instance. It exists for CI
// farms where many workers regenerate the same library and a local file
// cache would be cold on every machine.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to addr and verifies the connection with a ping
// before returning.
func NewRedisCache(ctx context.Context, addr string) (Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping %s: %v", ErrNetwork, addr, err)
	}
	return &RedisCache{client: client}, nil
}

// Get returns the stored bytes. A missing key is a plain miss; transport
// failures surface as errors so callers can decide whether to continue
// uncached.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return data, true, nil
}

// Set stores a value, retrying transient transport failures. Losing a
// cache write is harmless, so after the retries are exhausted the last
// error is reported and the caller moves on.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		err := c.client.Set(ctx, key, data, ttl).Err()
		if err == nil || ctx.Err() != nil {
			return err
		}
		return Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close closes the client connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
