// Package cache defines the rate-cache contract used by the resolution engine.
package cache

import (
	"time"

	"github.com/coinwatch/coinwatch/pkg/domain"
)

// RateCache stores resolved exchange rates keyed by the ordered "from:to"
// pair. There is no background eviction; expiry is checked lazily by the
// caller on lookup.
type RateCache interface {
	// Get returns the cached rate for key, or nil on a miss. An expired
	// entry may still be returned; the engine owns the TTL decision.
	Get(key string) (*domain.ExchangeRate, error)
	Set(key string, rate *domain.ExchangeRate, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds the ordered cache key for a currency pair. The reverse pair is
// a distinct key on purpose: inverses are recomputed, never derived.
func Key(from, to string) string {
	return from + ":" + to
}
