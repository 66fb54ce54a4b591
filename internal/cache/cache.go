// Package cache provides a small TTL cache used to bound the cost of
// repeated aggregation reads.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the lifetime of an entry unless the caller picks another.
const DefaultTTL = 30 * time.Second

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache maps string keys to values that expire a fixed TTL after they were
// stored. Expired entries are purged lazily on read; reads never extend an
// entry's lifetime. Concurrent writers to the same key race and the last
// write wins.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[V]
}

func New[V any](ttl time.Duration) *Cache[V] {
	return NewWithClock[V](ttl, time.Now)
}

// NewWithClock is New with an injectable clock.
func NewWithClock[V any](ttl time.Duration, now func() time.Time) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache[V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry[V]),
	}
}

func (c *Cache[V]) TTL() time.Duration { return c.ttl }

// Get returns the stored value, or false once now is past storedAt+ttl.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops the given keys, or every entry when called without keys.
func (c *Cache[V]) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		clear(c.entries)
		return
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Len reports the number of stored entries, including expired ones not yet purged.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
