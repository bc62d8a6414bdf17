package history

// This file contains the preparation history: an in-memory record of which
// tools have already completed their preparation step in this process.

import (
	"sync"
	"time"
)

// Cache remembers successful preparations per tool key. It is safe for
// concurrent use by several runners.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL makes entries expire after d. The default of zero keeps entries
// until Reset or Forget is called.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		c.ttl = d
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ShouldPrepare reports whether the tool still needs to run its preparation.
func (c *Cache) ShouldPrepare(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	preparedAt, ok := c.entries[key]
	if !ok {
		return true
	}
	return c.expired(preparedAt)
}

// RecordSuccess marks the tool's preparation as satisfied as of now.
func (c *Cache) RecordSuccess(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = c.now()
}

// PreparedAt returns when the tool last recorded a success.
func (c *Cache) PreparedAt(key string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.entries[key]
	return t, ok
}

// Forget drops the entry for a single tool.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Reset clears every entry, forcing all tools to prepare again.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]time.Time)
}

// Len returns the number of recorded tools.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) expired(preparedAt time.Time) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.now().Sub(preparedAt) >= c.ttl
}
