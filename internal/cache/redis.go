// internal/cache/redis.go
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RedisCache is the external key-value Worker variant: server-side TTL via
// `SET key value PX <ms>`, grounded on the original Rust source's
// charted:sessions hash/TTL-key pattern but generalized here to the cache
// worker's flat keyspace rather than the session manager's hash.
type RedisCache struct {
	conn          *respConn
	defaultTTL    time.Duration
	maxObjectSize int
	logger        *zap.Logger
}

// NewRedisCache builds a RedisCache dialing addr lazily on first use.
func NewRedisCache(addr string, defaultTTL time.Duration, maxObjectSize int, logger *zap.Logger) *RedisCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if maxObjectSize <= 0 {
		maxObjectSize = DefaultMaxObjectSize
	}

	return &RedisCache{
		conn:          newRespConn(addr, 5*time.Second),
		defaultTTL:    defaultTTL,
		maxObjectSize: maxObjectSize,
		logger:        logger,
	}
}

func (c *RedisCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := c.conn.do("GET", key)
	if err != nil {
		return nil, false, fmt.Errorf("redis GET %s: %w", key, err)
	}
	if v.kind == respNil {
		return nil, false, nil
	}
	if v.kind == respError {
		return nil, false, fmt.Errorf("redis GET %s: %s", key, v.str)
	}
	return []byte(v.str), true, nil
}

func (c *RedisCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if len(value) > c.maxObjectSize {
		return ObjectTooLarge(len(value), c.maxObjectSize)
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	ms := strconv.FormatInt(ttl.Milliseconds(), 10)
	v, err := c.conn.do("SET", key, string(value), "PX", ms)
	if err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	if v.kind == respError {
		return fmt.Errorf("redis SET %s: %s", key, v.str)
	}
	return nil
}

func (c *RedisCache) Delete(_ context.Context, key string) error {
	v, err := c.conn.do("DEL", key)
	if err != nil {
		return fmt.Errorf("redis DEL %s: %w", key, err)
	}
	if v.kind == respError {
		return fmt.Errorf("redis DEL %s: %s", key, v.str)
	}
	return nil
}

func (c *RedisCache) Exists(_ context.Context, key string) (bool, error) {
	v, err := c.conn.do("EXISTS", key)
	if err != nil {
		return false, fmt.Errorf("redis EXISTS %s: %w", key, err)
	}
	if v.kind == respError {
		return false, fmt.Errorf("redis EXISTS %s: %s", key, v.str)
	}
	return v.kind == respInteger && v.num == 1, nil
}

// Close releases the underlying connection, if any.
func (c *RedisCache) Close() {
	c.conn.reset()
}
