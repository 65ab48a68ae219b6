package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/use-agent/jobscout/models"
)

// Cache holds successful extraction results for a short time so repeated
// submissions of the same posting skip the outbound fetch. It is safe for
// concurrent use. A nil *Cache is a disabled cache.
type Cache struct {
	lru *expirable.LRU[string, *models.ScrapeResult]
}

// New creates a Cache bounded to maxEntries with entries expiring after ttl.
// It returns nil (caching disabled) when either limit is not positive.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 || ttl <= 0 {
		return nil
	}
	return &Cache{lru: expirable.NewLRU[string, *models.ScrapeResult](maxEntries, nil, ttl)}
}

// Key derives the cache key from the normalized URL and description format.
func Key(url, format string) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte("|"))
	h.Write([]byte(format))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a copy of the cached result for key.
func (c *Cache) Get(key string) (*models.ScrapeResult, bool) {
	if c == nil {
		return nil, false
	}
	r, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Set stores a copy of r. Failed extractions are not cached.
func (c *Cache) Set(key string, r *models.ScrapeResult) {
	if c == nil || r == nil || !r.Success {
		return
	}
	c.lru.Add(key, r.Clone())
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
