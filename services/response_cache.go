// services/response_cache.go
package services

import (
	"sync"
	"time"

	"github.com/visiq-ai/visiq-workflows/internal/models"
)

// ResponseCache is an advisory in-process TTL cache for raw model responses,
// keyed by model and prompt. Concurrent-safe; stale entries expire lazily on
// read. Losing a write under contention is acceptable.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	response models.RawResponse
	storedAt time.Time
}

// NewResponseCache creates a cache with the given TTL
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return NewResponseCacheWithClock(ttl, time.Now)
}

// NewResponseCacheWithClock injects the clock so tests can control expiry
func NewResponseCacheWithClock(ttl time.Duration, now func() time.Time) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

func cacheKey(model, prompt string) string {
	return model + "|" + prompt
}

// Get returns a copy of the cached response for the model/prompt pair, or
// false when absent or expired
func (c *ResponseCache) Get(model, prompt string) (*models.RawResponse, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(model, prompt)]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a fresher Put may have landed
		if current, still := c.entries[cacheKey(model, prompt)]; still && current.storedAt.Equal(entry.storedAt) {
			delete(c.entries, cacheKey(model, prompt))
		}
		c.mu.Unlock()
		return nil, false
	}

	response := entry.response
	return &response, true
}

// Put stores a response for the model/prompt pair, overwriting any prior entry
func (c *ResponseCache) Put(model, prompt string, response models.RawResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(model, prompt)] = cacheEntry{
		response: response,
		storedAt: c.now(),
	}
}

// Size returns the number of entries currently held, including any not yet
// expired lazily
func (c *ResponseCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
