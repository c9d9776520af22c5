// Package watchlist manages the user's favorite currencies.
package watchlist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coinwatch/coinwatch/pkg/catalog"
	"github.com/coinwatch/coinwatch/pkg/domain"
)

// Entry is one favorited currency.
type Entry struct {
	CurrencyID string    `json:"currency_id"`
	AddedAt    time.Time `json:"added_at"`
}

// Repository is the persistence contract for watchlist entries.
type Repository interface {
	Add(ctx context.Context, currencyID string) error
	Remove(ctx context.Context, currencyID string) error
	List(ctx context.Context) ([]Entry, error)
	Contains(ctx context.Context, currencyID string) (bool, error)
}

// Service validates ids against the catalog before persisting them.
type Service struct {
	repo    Repository
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New creates a watchlist service.
func New(repo Repository, cat *catalog.Catalog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, catalog: cat, logger: logger}
}

// Add favorites a currency. Unknown ids are rejected via the catalog.
func (s *Service) Add(ctx context.Context, id string) (domain.Currency, error) {
	cur, err := s.catalog.Lookup(ctx, id)
	if err != nil {
		return domain.Currency{}, fmt.Errorf("add to watchlist: %w", err)
	}
	if err := s.repo.Add(ctx, cur.ID); err != nil {
		return domain.Currency{}, fmt.Errorf("add to watchlist: %w", err)
	}
	s.logger.Info("currency added to watchlist", "id", cur.ID)
	return cur, nil
}

// Remove unfavorites a currency.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.repo.Remove(ctx, catalog.Normalize(id)); err != nil {
		return fmt.Errorf("remove from watchlist: %w", err)
	}
	return nil
}

// List returns the favorited currencies with display metadata resolved.
func (s *Service) List(ctx context.Context) ([]domain.Currency, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	out := make([]domain.Currency, 0, len(entries))
	for _, e := range entries {
		cur, err := s.catalog.Lookup(ctx, e.CurrencyID)
		if err != nil {
			s.logger.Warn("watchlist entry no longer resolvable", "id", e.CurrencyID, "error", err)
			continue
		}
		out = append(out, cur)
	}
	return out, nil
}

// Contains reports whether a currency is favorited.
func (s *Service) Contains(ctx context.Context, id string) (bool, error) {
	return s.repo.Contains(ctx, catalog.Normalize(id))
}
