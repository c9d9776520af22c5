// Package catalog resolves opaque currency identifiers to display metadata,
// backed by a quote source's listing endpoints and cached in memory for the
// process lifetime.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/coinwatch/coinwatch/pkg/domain"
	"github.com/coinwatch/coinwatch/pkg/quotes"
)

// Catalog caches currency metadata resolved from a quote source. The crypto
// and fiat caches are independent stores; neither is ever partially populated
// on a failed fetch.
type Catalog struct {
	source quotes.Source
	logger *slog.Logger

	mu          sync.RWMutex
	crypto      map[string]domain.Currency
	fiat        map[string]domain.Currency
	cryptoOrder []string
	fiatOrder   []string
}

// New creates a catalog backed by the given quote source.
func New(source quotes.Source, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		source: source,
		logger: logger,
		crypto: make(map[string]domain.Currency),
		fiat:   make(map[string]domain.Currency),
	}
}

// Normalize lowercases an identifier and applies the static alias table.
// Every lookup goes through this before any cache or network access.
func Normalize(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if canonical, ok := aliases[id]; ok {
		return canonical
	}
	return id
}

// IsFiatID classifies an identifier as fiat using a deny-list of known
// crypto tickers and ids. Anything not recognizably crypto is fiat.
func IsFiatID(id string) bool {
	_, isCrypto := cryptoIdentifiers[Normalize(id)]
	return !isCrypto
}

// ListCrypto returns the supported cryptocurrencies, fetching and caching the
// upstream listing on first use.
func (c *Catalog) ListCrypto(ctx context.Context) ([]domain.Currency, error) {
	c.mu.RLock()
	if len(c.cryptoOrder) > 0 {
		out := c.snapshotLocked(c.cryptoOrder, c.crypto)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	coins, err := c.source.ListCoins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cryptocurrencies: %w", err)
	}

	var order []string
	byID := make(map[string]domain.Currency)
	for _, coin := range coins {
		id := Normalize(coin.ID)
		if _, ok := supportedCrypto[id]; !ok {
			continue
		}
		if _, dup := byID[id]; dup {
			continue
		}
		byID[id] = domain.Currency{
			ID:      id,
			Symbol:  strings.ToUpper(coin.Symbol),
			Name:    coin.Name,
			IsFiat:  false,
			IconURL: coin.IconURL,
		}
		order = append(order, id)
	}

	c.mu.Lock()
	for id, cur := range byID {
		c.crypto[id] = cur
	}
	c.cryptoOrder = order
	out := c.snapshotLocked(c.cryptoOrder, c.crypto)
	c.mu.Unlock()

	c.logger.Debug("crypto catalog populated", "count", len(order))
	return out, nil
}

// ListFiat returns the supported fiat currencies from the source's
// vs-currency listing, excluding known crypto tickers.
func (c *Catalog) ListFiat(ctx context.Context) ([]domain.Currency, error) {
	c.mu.RLock()
	if len(c.fiatOrder) > 0 {
		out := c.snapshotLocked(c.fiatOrder, c.fiat)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	codes, err := c.source.ListVsCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fiat currencies: %w", err)
	}

	var order []string
	byID := make(map[string]domain.Currency)
	for _, code := range codes {
		id := Normalize(code)
		if !IsFiatID(id) {
			continue
		}
		if _, dup := byID[id]; dup {
			continue
		}
		byID[id] = fiatCurrency(id)
		order = append(order, id)
	}

	c.mu.Lock()
	for id, cur := range byID {
		c.fiat[id] = cur
	}
	c.fiatOrder = order
	out := c.snapshotLocked(c.fiatOrder, c.fiat)
	c.mu.Unlock()

	c.logger.Debug("fiat catalog populated", "count", len(order))
	return out, nil
}

// PopularCrypto returns the curated crypto subset, delegating to ListCrypto
// on a cold cache.
func (c *Catalog) PopularCrypto(ctx context.Context) ([]domain.Currency, error) {
	all, err := c.ListCrypto(ctx)
	if err != nil {
		return nil, err
	}
	return filterByIDs(all, popularCrypto), nil
}

// PopularFiat returns the curated fiat subset.
func (c *Catalog) PopularFiat(ctx context.Context) ([]domain.Currency, error) {
	all, err := c.ListFiat(ctx)
	if err != nil {
		return nil, err
	}
	return filterByIDs(all, popularFiat), nil
}

// Lookup resolves a single identifier, consulting both caches first and
// falling back to a single-currency fetch from the appropriate endpoint. The
// fetched result is inserted into the matching cache as a side effect.
func (c *Catalog) Lookup(ctx context.Context, id string) (domain.Currency, error) {
	id = Normalize(id)

	c.mu.RLock()
	if cur, ok := c.crypto[id]; ok {
		c.mu.RUnlock()
		return cur, nil
	}
	if cur, ok := c.fiat[id]; ok {
		c.mu.RUnlock()
		return cur, nil
	}
	c.mu.RUnlock()

	if IsFiatID(id) {
		return c.lookupFiat(ctx, id)
	}
	return c.lookupCrypto(ctx, id)
}

// Invalidate clears both caches.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.crypto = make(map[string]domain.Currency)
	c.fiat = make(map[string]domain.Currency)
	c.cryptoOrder = nil
	c.fiatOrder = nil
}

func (c *Catalog) lookupCrypto(ctx context.Context, id string) (domain.Currency, error) {
	coin, err := c.source.GetCoin(ctx, id)
	if err != nil {
		return domain.Currency{}, fmt.Errorf("lookup %q: %w", id, err)
	}
	cur := domain.Currency{
		ID:      Normalize(coin.ID),
		Symbol:  strings.ToUpper(coin.Symbol),
		Name:    coin.Name,
		IsFiat:  false,
		IconURL: coin.IconURL,
	}
	c.mu.Lock()
	c.crypto[cur.ID] = cur
	c.mu.Unlock()
	return cur, nil
}

func (c *Catalog) lookupFiat(ctx context.Context, id string) (domain.Currency, error) {
	codes, err := c.source.ListVsCurrencies(ctx)
	if err != nil {
		return domain.Currency{}, fmt.Errorf("lookup %q: %w", id, err)
	}
	for _, code := range codes {
		if Normalize(code) == id {
			cur := fiatCurrency(id)
			c.mu.Lock()
			c.fiat[id] = cur
			c.mu.Unlock()
			return cur, nil
		}
	}
	return domain.Currency{}, fmt.Errorf("lookup %q: %w", id, domain.ErrCurrencyNotFound)
}

func (c *Catalog) snapshotLocked(order []string, byID map[string]domain.Currency) []domain.Currency {
	out := make([]domain.Currency, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

func fiatCurrency(id string) domain.Currency {
	name, ok := fiatNames[id]
	if !ok {
		name = strings.ToUpper(id)
	}
	return domain.Currency{
		ID:     id,
		Symbol: strings.ToUpper(id),
		Name:   name,
		IsFiat: true,
	}
}

func filterByIDs(all []domain.Currency, ids []string) []domain.Currency {
	byID := make(map[string]domain.Currency, len(all))
	for _, cur := range all {
		byID[cur.ID] = cur
	}
	out := make([]domain.Currency, 0, len(ids))
	for _, id := range ids {
		if cur, ok := byID[id]; ok {
			out = append(out, cur)
		}
	}
	return out
}
