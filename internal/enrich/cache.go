package enrich

import (
	"sync"
	"time"

	"github.com/centime-app/centime/internal/service"
)

// cacheEntry represents one cached merchant lookup. A nil hint (the
// directory knows nothing about this merchant) is cached too, so repeated
// misses don't burn rate-limit tokens.
type cacheEntry struct {
	expiry time.Time
	hint   *service.EnrichmentHint
}

// hintCache provides thread-safe TTL caching for merchant lookups.
type hintCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newHintCache creates a new cache with the specified TTL.
func newHintCache(ttl time.Duration) *hintCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &hintCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// get retrieves a hint from the cache if present and not expired. The second
// return distinguishes "not cached" from a cached miss.
func (c *hintCache) get(key string) (*service.EnrichmentHint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.expiry) {
		return nil, false
	}
	return entry.hint, true
}

// set stores a hint (or a nil miss) in the cache.
func (c *hintCache) set(key string, hint *service.EnrichmentHint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		hint:   hint,
		expiry: time.Now().Add(c.ttl),
	}
}

// size returns the number of entries in the cache.
func (c *hintCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cleanup periodically removes expired entries.
func (c *hintCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (c *hintCache) Close() {
	close(c.stopCh)
}
