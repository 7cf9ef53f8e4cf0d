package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the in-process Cache, with eviction handled by the
// underlying TTL cache.
type MemoryCache struct {
	entries *gocache.Cache
}

// NewMemoryCache creates a memory cache with the given default TTL
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{entries: gocache.New(defaultTTL, cleanupInterval)}
}

// Get returns the cached text for a key
func (c *MemoryCache) Get(key string) (string, bool) {
	v, found := c.entries.Get(key)
	if !found {
		return "", false
	}
	text, ok := v.(string)
	return text, ok
}

// Set stores text under a key. A non-positive ttl means the cache's
// default TTL.
func (c *MemoryCache) Set(key, value string, ttl time.Duration) {
	if ttl <= 0 {
		c.entries.SetDefault(key, value)
		return
	}
	c.entries.Set(key, value, ttl)
}

// Delete removes a key
func (c *MemoryCache) Delete(key string) {
	c.entries.Delete(key)
}

// Clear drops every entry
func (c *MemoryCache) Clear() {
	c.entries.Flush()
}
