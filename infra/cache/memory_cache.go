package cache

import (
	"sync"
	"time"

	"github.com/coinwatch/coinwatch/pkg/domain"
)

// MemoryCache implements cache.RateCache using in-memory storage.
// Entries are evicted lazily on read once their hard TTL has passed.
type MemoryCache struct {
	entries map[string]*cacheEntry
	mu      sync.RWMutex
}

type cacheEntry struct {
	rate      *domain.ExchangeRate
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory rate cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*cacheEntry),
	}
}

// Get retrieves a rate from the cache. A miss returns (nil, nil).
func (c *MemoryCache) Get(key string) (*domain.ExchangeRate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, nil
	}

	// Hard eviction bound; the engine applies the precise TTL itself.
	if time.Now().After(entry.expiresAt) {
		return nil, nil
	}

	return entry.rate, nil
}

// Set stores a rate with the given TTL.
func (c *MemoryCache) Set(key string, rate *domain.ExchangeRate, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		rate:      rate,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a rate from the cache.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	return nil
}
