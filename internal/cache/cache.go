// Package cache provides TTL-evicted caching of derived text. Entries
// are keyed by content hash, so identical inputs share one entry no
// matter who computed it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores derived text under content-hash keys
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Delete(key string)
	Clear()
}

// Key derives the cache key for a piece of source content
func Key(content string) string {
	hash := sha256.Sum256([]byte(content))
	return "planproof:v1:" + hex.EncodeToString(hash[:])
}
