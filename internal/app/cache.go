package app

import (
	"sync"
	"time"
)

// resultCache is a small TTL cache for computed views; entries are advisory.
type resultCache struct {
	mu      sync.Mutex
	clock   Clock
	entries map[string]cacheEntry
}

// cacheEntry stores one cached value and its expiry.
type cacheEntry struct {
	value     any
	expiresAt time.Time
}

func newResultCache(clock Clock) *resultCache {
	return &resultCache{clock: clock, entries: map[string]cacheEntry{}}
}

// get returns a live entry and drops an expired one.
func (c *resultCache) get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.clock().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// set stores a value for ttl; a non-positive ttl disables caching.
func (c *resultCache) set(key string, value any, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.clock().Add(ttl)}
}

// purge drops every entry.
func (c *resultCache) purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
