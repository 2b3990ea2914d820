// internal/cache/memory.go
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is a process-local Worker backed by a map, generalized from the
// teacher's LRU capacity eviction into TTL-based expiry: a background
// sweeper goroutine evicts entries past their deadline instead of evicting
// on a capacity bound.
type MemoryCache struct {
	mu            sync.RWMutex
	items         map[string]memoryEntry
	defaultTTL    time.Duration
	maxObjectSize int
	logger        *zap.Logger

	sweepInterval time.Duration
	stop          chan struct{}
	stopped       chan struct{}
}

// NewMemoryCache builds a MemoryCache and starts its sweeper goroutine.
// Call Close to stop the sweeper.
func NewMemoryCache(defaultTTL time.Duration, maxObjectSize int, logger *zap.Logger) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if maxObjectSize <= 0 {
		maxObjectSize = DefaultMaxObjectSize
	}

	c := &MemoryCache{
		items:         make(map[string]memoryEntry),
		defaultTTL:    defaultTTL,
		maxObjectSize: maxObjectSize,
		logger:        logger,
		sweepInterval: time.Minute,
		stop:          make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go c.sweep()
	return c
}

func (c *MemoryCache) sweep() {
	defer close(c.stopped)
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.evictExpired(now)
		}
	}
}

func (c *MemoryCache) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for k, v := range c.items {
		if now.After(v.expires) {
			delete(c.items, k)
			evicted++
		}
	}
	if evicted > 0 {
		c.logger.Debug("swept expired cache entries", zap.Int("count", evicted))
	}
}

// Close stops the sweeper goroutine. Safe to call once.
func (c *MemoryCache) Close() {
	close(c.stop)
	<-c.stopped
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false, nil
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, true, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if len(value) > c.maxObjectSize {
		return ObjectTooLarge(len(value), c.maxObjectSize)
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.items[key] = memoryEntry{value: stored, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if time.Now().After(entry.expires) {
		return false, nil
	}
	return true, nil
}
