// Package memory holds research context between workflow runs so that
// retries and batches over the same topic do not repeat searches.
package memory

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval paces background eviction. Expired entries are
// also filtered on read, so the sweep only bounds memory growth.
const DefaultSweepInterval = 5 * time.Minute

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is an in-memory store with per-entry TTL and a background
// sweep. Safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]entry
	stopChan chan struct{}
	stopped  bool
}

func New() *Cache {
	return NewWithContext(context.Background())
}

func NewWithContext(ctx context.Context) *Cache {
	return NewWithSweep(ctx, DefaultSweepInterval)
}

// NewWithSweep starts the cache with a caller-chosen eviction pace.
// Tests use short intervals; long-running batch jobs may want longer.
func NewWithSweep(ctx context.Context, interval time.Duration) *Cache {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	c := &Cache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}
	go c.sweep(ctx, interval)
	return c
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len counts live entries; expired ones waiting for the sweep are
// excluded.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *Cache) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.stopChan)
	}
	c.mu.Unlock()
}

func (c *Cache) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
