// Package pairstore serves quotes from a local relational table of
// trading-pair last prices. It sits behind the same quotes.Source interface
// as the network adapters, so the engine can resolve rates offline from
// whatever the surrounding app last synced.
package pairstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coinwatch/coinwatch/pkg/catalog"
	"github.com/coinwatch/coinwatch/pkg/domain"
	"github.com/coinwatch/coinwatch/pkg/quotes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const sourceName = "pairstore"

// PairPrice is one cached trading-pair quote row.
type PairPrice struct {
	ID        uint      `gorm:"primarykey"`
	CoinID    string    `gorm:"column:coin_id;uniqueIndex:idx_pair;not null"`
	Vs        string    `gorm:"column:vs_currency;uniqueIndex:idx_pair;not null"`
	Price     float64   `gorm:"not null"`
	Symbol    string    `gorm:"column:symbol"`
	Name      string    `gorm:"column:name"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName fixes the table name for gorm.
func (PairPrice) TableName() string { return "pair_prices" }

// Store implements quotes.Source over the pair_prices table.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New creates a store over an opened gorm connection.
func New(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Migrate creates the pair_prices table.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&PairPrice{})
}

// Upsert writes one pair quote, replacing any prior price for the same pair.
func (s *Store) Upsert(ctx context.Context, p PairPrice) error {
	p.CoinID = catalog.Normalize(p.CoinID)
	p.Vs = catalog.Normalize(p.Vs)
	p.UpdatedAt = time.Now()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "coin_id"}, {Name: "vs_currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return fmt.Errorf("upsert pair %s/%s: %w", p.CoinID, p.Vs, err)
	}
	return nil
}

// ListCoins returns the distinct coins present in the table.
func (s *Store) ListCoins(ctx context.Context) ([]quotes.Coin, error) {
	var rows []PairPrice
	err := s.db.WithContext(ctx).
		Select("DISTINCT ON (coin_id) coin_id, symbol, name").
		Order("coin_id").
		Find(&rows).Error
	if err != nil {
		return nil, &domain.SourceError{Source: sourceName, Err: err}
	}
	coins := make([]quotes.Coin, 0, len(rows))
	for _, r := range rows {
		coins = append(coins, quotes.Coin{ID: r.CoinID, Symbol: r.Symbol, Name: r.Name})
	}
	return coins, nil
}

// ListVsCurrencies returns the distinct vs-currency codes present.
func (s *Store) ListVsCurrencies(ctx context.Context) ([]string, error) {
	var codes []string
	err := s.db.WithContext(ctx).
		Model(&PairPrice{}).
		Distinct("vs_currency").
		Order("vs_currency").
		Pluck("vs_currency", &codes).Error
	if err != nil {
		return nil, &domain.SourceError{Source: sourceName, Err: err}
	}
	return codes, nil
}

// GetPrice reads every requested (id, vs) combination present in the table.
// Missing combinations are simply absent, as with the network sources.
func (s *Store) GetPrice(ctx context.Context, ids, vs []string) (quotes.PriceTable, error) {
	normIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		normIDs = append(normIDs, catalog.Normalize(id))
	}
	normVs := make([]string, 0, len(vs))
	for _, code := range vs {
		normVs = append(normVs, catalog.Normalize(code))
	}

	var rows []PairPrice
	err := s.db.WithContext(ctx).
		Where("coin_id IN ? AND vs_currency IN ?", normIDs, normVs).
		Find(&rows).Error
	if err != nil {
		return nil, &domain.SourceError{Source: sourceName, Err: err}
	}

	table := make(quotes.PriceTable)
	for _, r := range rows {
		if table[r.CoinID] == nil {
			table[r.CoinID] = make(map[string]float64)
		}
		table[r.CoinID][r.Vs] = r.Price
	}
	return table, nil
}

// GetCoin returns one coin by id, or domain.ErrCurrencyNotFound.
func (s *Store) GetCoin(ctx context.Context, id string) (*quotes.Coin, error) {
	id = catalog.Normalize(id)
	var row PairPrice
	err := s.db.WithContext(ctx).
		Where("coin_id = ?", id).
		Order("updated_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.SourceError{Source: sourceName, Err: domain.ErrCurrencyNotFound}
	}
	if err != nil {
		return nil, &domain.SourceError{Source: sourceName, Err: err}
	}
	return &quotes.Coin{ID: row.CoinID, Symbol: row.Symbol, Name: row.Name}, nil
}

// Name identifies the source.
func (s *Store) Name() string { return sourceName }

// Ensure Store implements quotes.Source.
var _ quotes.Source = (*Store)(nil)
