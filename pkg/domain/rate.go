package domain

import "time"

// DefaultRateTTL is the validity window applied to freshly resolved rates.
const DefaultRateTTL = 60 * time.Second

// ExchangeRate is a directed conversion factor between two currencies at a
// point in time: 1 unit of From equals Rate units of To.
//
// Rates are cached under the ordered (From, To) key; the reverse direction is
// never derived from a cached forward rate.
type ExchangeRate struct {
	From       string        `json:"from"`
	To         string        `json:"to"`
	Rate       float64       `json:"rate"`
	Source     string        `json:"source"`
	ResolvedAt time.Time     `json:"resolved_at"`
	TTL        time.Duration `json:"ttl"`
}

// Expired reports whether the rate is older than its TTL at the given time.
// A rate aged exactly TTL is still valid.
func (r *ExchangeRate) Expired(now time.Time) bool {
	return now.Sub(r.ResolvedAt) > r.TTL
}
