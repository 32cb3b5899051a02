package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"edoquery/pkg/circuitbreaker"
	"edoquery/pkg/config"
)

const defaultTTL = time.Hour

// NewRedisClient returns a client for cfg, or nil when no address is
// configured.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// ReferenceCache stores encoded reference query results with a fixed TTL.
// Repeated Redis failures trip a breaker so callers fail fast and go
// straight to the database until Redis recovers.
type ReferenceCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

// NewReferenceCache wraps rdb. A non-positive ttl falls back to one hour.
func NewReferenceCache(rdb *redis.Client, ttl time.Duration, opts ...circuitbreaker.Option) *ReferenceCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ReferenceCache{
		rdb:     rdb,
		ttl:     ttl,
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig(), opts...),
	}
}

// Get returns the cached value; ok is false on a miss.
func (c *ReferenceCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if data == nil {
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores value under key until the TTL expires.
func (c *ReferenceCache) Set(ctx context.Context, key string, value []byte) error {
	err := c.breaker.Execute(func() error {
		return c.rdb.Set(ctx, key, value, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// TTL returns the expiry applied to new entries.
func (c *ReferenceCache) TTL() time.Duration {
	return c.ttl
}
