// Package cache provides the bounded TTL store shared by the auth pipeline
// for validated tokens and hydrated user records.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTLCache is a concurrency-safe key-value store with a fixed time-to-live
// and a capacity bound. Expired entries are evicted lazily on read; when the
// cache is full, expired entries are dropped first, then the oldest entry.
//
// Time never comes from the wall clock: callers pass `now` explicitly so all
// TTL decisions are deterministic under test.
type TTLCache[V any] struct {
	mu       sync.RWMutex
	entries  map[string]entry[V]
	ttl      time.Duration
	capacity int
}

// New creates a cache with the given TTL and maximum entry count. A
// non-positive capacity disables the bound.
func New[V any](ttl time.Duration, capacity int) *TTLCache[V] {
	return &TTLCache[V]{
		entries:  make(map[string]entry[V]),
		ttl:      ttl,
		capacity: capacity,
	}
}

// Get returns the value stored under key if it was written less than one TTL
// before now. A stale entry is removed and reported as a miss.
func (c *TTLCache[V]) Get(key string, now time.Time) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if now.Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, still := c.entries[key]; still && now.Sub(cur.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with storedAt = now, evicting as needed to
// respect the capacity bound. Writes are idempotent per key.
func (c *TTLCache[V]) Set(key string, value V, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.capacity > 0 && len(c.entries) >= c.capacity {
		c.evictExpiredLocked(now)
		if len(c.entries) >= c.capacity {
			c.evictOldestLocked()
		}
	}
	c.entries[key] = entry[V]{value: value, storedAt: now}
}

// Purge drops every entry.
func (c *TTLCache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Len reports the number of stored entries, including any not yet lazily
// evicted.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL returns the configured time-to-live.
func (c *TTLCache[V]) TTL() time.Duration { return c.ttl }

// Capacity returns the configured entry bound (0 = unbounded).
func (c *TTLCache[V]) Capacity() int { return c.capacity }

func (c *TTLCache[V]) evictExpiredLocked(now time.Time) {
	for k, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
}

func (c *TTLCache[V]) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
