// Package quotes defines the narrow interface the conversion core uses to
// talk to upstream market-data providers.
package quotes

import "context"

// Coin is one listing entry from an upstream provider.
type Coin struct {
	ID      string `json:"id"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

// PriceTable maps coin id to a map of vs-currency code to price.
type PriceTable map[string]map[string]float64

// Price returns the quoted price for (id, vs). A missing key yields 0, which
// downstream validation rejects as an invalid rate.
func (t PriceTable) Price(id, vs string) float64 {
	if row, ok := t[id]; ok {
		return row[vs]
	}
	return 0
}

// Source is a uniform adapter over one upstream market-data provider.
// All prices are asymmetric trading-pair quotes: crypto quoted in a
// vs-currency, never the other way around.
type Source interface {
	// ListCoins returns the provider's full crypto listing.
	ListCoins(ctx context.Context) ([]Coin, error)

	// ListVsCurrencies returns the quote-currency codes the provider
	// supports (lowercase).
	ListVsCurrencies(ctx context.Context) ([]string, error)

	// GetPrice returns latest quotes for every (id, vs) combination in a
	// single batched call. Combinations absent from the upstream response
	// are simply absent from the table.
	GetPrice(ctx context.Context, ids, vs []string) (PriceTable, error)

	// GetCoin returns a single coin by id, or domain.ErrCurrencyNotFound.
	GetCoin(ctx context.Context, id string) (*Coin, error)

	// Name identifies the source in logs and rate metadata.
	Name() string
}
