// Package rates implements the rate-resolution engine: given two arbitrary
// currencies, each independently fiat or crypto, it computes a bidirectional
// exchange rate from asymmetric crypto-in-fiat quotes, with a TTL cache and
// multi-hop resolution through reference currencies.
package rates

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/coinwatch/coinwatch/pkg/cache"
	"github.com/coinwatch/coinwatch/pkg/catalog"
	"github.com/coinwatch/coinwatch/pkg/domain"
	"github.com/coinwatch/coinwatch/pkg/quotes"
)

// Config tunes the engine's cache and reference currencies.
type Config struct {
	// TTL is the validity window for cached rates.
	TTL time.Duration
	// PivotCoin is the reference crypto used for fiat→fiat two-hop
	// resolution (both legs of one batched quote).
	PivotCoin string
	// PivotVs is the vs-currency code matching PivotCoin, used for the
	// reference→crypto shortcut.
	PivotVs string
	// ReferenceFiat is the reference unit for crypto→crypto cross rates.
	ReferenceFiat string
}

func (c *Config) applyDefaults() {
	if c.TTL <= 0 {
		c.TTL = domain.DefaultRateTTL
	}
	if c.PivotCoin == "" {
		c.PivotCoin = "bitcoin"
	}
	if c.PivotVs == "" {
		c.PivotVs = "btc"
	}
	if c.ReferenceFiat == "" {
		c.ReferenceFiat = "usd"
	}
}

// Engine resolves exchange rates between currency pairs. Cache writes happen
// only after full validation, so a cancelled or failed resolution never
// leaves a partial entry behind.
type Engine struct {
	source  quotes.Source
	catalog *catalog.Catalog
	cache   cache.RateCache
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

// New creates an engine over the given source, catalog and rate cache.
func New(source quotes.Source, cat *catalog.Catalog, rc cache.RateCache, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	return &Engine{
		source:  source,
		catalog: cat,
		cache:   rc,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Resolve returns the exchange rate from one currency to another, serving a
// fresh cached rate when available.
func (e *Engine) Resolve(ctx context.Context, from, to string) (*domain.ExchangeRate, error) {
	return e.resolve(ctx, from, to, false)
}

// Refresh resolves a pair bypassing the cache read; the result still
// replaces the cached entry.
func (e *Engine) Refresh(ctx context.Context, from, to string) (*domain.ExchangeRate, error) {
	return e.resolve(ctx, from, to, true)
}

// Cached returns the non-expired cached rate for a pair, if any. It never
// touches the network.
func (e *Engine) Cached(from, to string) (*domain.ExchangeRate, bool) {
	key := cache.Key(catalog.Normalize(from), catalog.Normalize(to))
	rate, err := e.cache.Get(key)
	if err != nil || rate == nil {
		return nil, false
	}
	if rate.Expired(e.now()) {
		return nil, false
	}
	return rate, true
}

// InvalidateCache drops every cached rate.
func (e *Engine) InvalidateCache() error {
	return e.cache.Clear()
}

func (e *Engine) resolve(ctx context.Context, from, to string, skipCache bool) (*domain.ExchangeRate, error) {
	fromID := catalog.Normalize(from)
	toID := catalog.Normalize(to)

	// Same currency both sides: exactly 1.0, no network, no cache write.
	if fromID == toID {
		return &domain.ExchangeRate{
			From:       fromID,
			To:         toID,
			Rate:       1.0,
			Source:     "identity",
			ResolvedAt: e.now(),
			TTL:        e.cfg.TTL,
		}, nil
	}

	key := cache.Key(fromID, toID)
	if !skipCache {
		if rate, ok := e.Cached(fromID, toID); ok {
			e.logger.Debug("rate served from cache", "from", fromID, "to", toID, "rate", rate.Rate)
			return rate, nil
		}
	}

	fromCur, err := e.catalog.Lookup(ctx, fromID)
	if err != nil {
		return nil, fmt.Errorf("resolve %s->%s: %w", fromID, toID, err)
	}
	toCur, err := e.catalog.Lookup(ctx, toID)
	if err != nil {
		return nil, fmt.Errorf("resolve %s->%s: %w", fromID, toID, err)
	}

	value, err := e.crossRate(ctx, fromCur, toCur)
	if err != nil {
		return nil, fmt.Errorf("resolve %s->%s: %w", fromID, toID, err)
	}

	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		e.logger.Warn("rejected invalid rate", "from", fromID, "to", toID, "rate", value)
		return nil, fmt.Errorf("resolve %s->%s: %w", fromID, toID, domain.ErrInvalidRate)
	}

	rate := &domain.ExchangeRate{
		From:       fromID,
		To:         toID,
		Rate:       value,
		Source:     e.source.Name(),
		ResolvedAt: e.now(),
		TTL:        e.cfg.TTL,
	}
	if err := e.cache.Set(key, rate, e.cfg.TTL); err != nil {
		e.logger.Warn("failed to cache rate", "key", key, "error", err)
	}

	e.logger.Info("rate resolved", "from", fromID, "to", toID, "rate", value, "source", rate.Source)
	return rate, nil
}

// crossRate selects the resolution strategy from the (fromIsFiat, toIsFiat)
// split. Every branch issues exactly one quote request.
func (e *Engine) crossRate(ctx context.Context, from, to domain.Currency) (float64, error) {
	// Shortcuts for pairs involving the pivot coin itself.
	if from.ID == e.cfg.PivotCoin {
		if to.IsFiat {
			return e.pivotToFiat(ctx, to.ID)
		}
		return e.pivotToCrypto(ctx, to.ID)
	}

	switch {
	case from.IsCrypto() && to.IsFiat:
		// Direct: the crypto's price quoted in the fiat code.
		table, err := e.source.GetPrice(ctx, []string{from.ID}, []string{to.ID})
		if err != nil {
			return 0, err
		}
		price := table.Price(from.ID, to.ID)
		if price <= 0 {
			return 0, domain.ErrQuoteUnavailable
		}
		return price, nil

	case from.IsFiat && to.IsCrypto():
		// The adapter only quotes crypto-in-fiat, so the query runs in the
		// same direction as above and the result must be inverted. A zero or
		// missing inverse is a failure, never a divide-by-zero.
		table, err := e.source.GetPrice(ctx, []string{to.ID}, []string{from.ID})
		if err != nil {
			return 0, err
		}
		inverse := table.Price(to.ID, from.ID)
		if inverse <= 0 {
			return 0, domain.ErrQuoteUnavailable
		}
		return 1 / inverse, nil

	case from.IsCrypto() && to.IsCrypto():
		// Cross through the reference fiat, one batched call.
		table, err := e.source.GetPrice(ctx, []string{from.ID, to.ID}, []string{e.cfg.ReferenceFiat})
		if err != nil {
			return 0, err
		}
		fromPrice := table.Price(from.ID, e.cfg.ReferenceFiat)
		toPrice := table.Price(to.ID, e.cfg.ReferenceFiat)
		if fromPrice <= 0 || toPrice <= 0 {
			return 0, domain.ErrQuoteUnavailable
		}
		// 1 from = fromPrice ref units = fromPrice/toPrice units of to.
		return fromPrice / toPrice, nil

	default:
		// fiat→fiat: neither code is quotable against the other. Two-hop
		// through the pivot coin quoted in both fiat codes at once.
		table, err := e.source.GetPrice(ctx, []string{e.cfg.PivotCoin}, []string{from.ID, to.ID})
		if err != nil {
			return 0, err
		}
		inFrom := table.Price(e.cfg.PivotCoin, from.ID)
		inTo := table.Price(e.cfg.PivotCoin, to.ID)
		if inFrom <= 0 || inTo <= 0 {
			return 0, domain.ErrQuoteUnavailable
		}
		return inTo / inFrom, nil
	}
}

// pivotToFiat handles pivot→fiat with the fiat quote directly.
func (e *Engine) pivotToFiat(ctx context.Context, fiatID string) (float64, error) {
	table, err := e.source.GetPrice(ctx, []string{e.cfg.PivotCoin}, []string{fiatID})
	if err != nil {
		return 0, err
	}
	price := table.Price(e.cfg.PivotCoin, fiatID)
	if price <= 0 {
		return 0, domain.ErrQuoteUnavailable
	}
	return price, nil
}

// pivotToCrypto handles pivot→crypto by inverting the crypto's quote in the
// pivot's own vs-currency.
func (e *Engine) pivotToCrypto(ctx context.Context, cryptoID string) (float64, error) {
	table, err := e.source.GetPrice(ctx, []string{cryptoID}, []string{e.cfg.PivotVs})
	if err != nil {
		return 0, err
	}
	inverse := table.Price(cryptoID, e.cfg.PivotVs)
	if inverse <= 0 {
		return 0, domain.ErrQuoteUnavailable
	}
	return 1 / inverse, nil
}
