// Package watchlist persists favorites in the local relational cache.
package watchlist

import (
	"context"
	"errors"
	"time"

	"github.com/coinwatch/coinwatch/pkg/watchlist"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// row is the gorm model backing watchlist entries.
type row struct {
	ID         uint      `gorm:"primarykey"`
	CurrencyID string    `gorm:"column:currency_id;uniqueIndex;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

// TableName fixes the table name for gorm.
func (row) TableName() string { return "watchlist_entries" }

// Repository implements watchlist.Repository on gorm.
type Repository struct {
	db *gorm.DB
}

// New creates a repository over an opened gorm connection.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the watchlist_entries table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&row{})
}

// Add inserts an entry; adding an already-favorited currency is a no-op.
func (r *Repository) Add(ctx context.Context, currencyID string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "currency_id"}},
		DoNothing: true,
	}).Create(&row{CurrencyID: currencyID, CreatedAt: time.Now()}).Error
}

// Remove deletes an entry; removing an absent currency is a no-op.
func (r *Repository) Remove(ctx context.Context, currencyID string) error {
	return r.db.WithContext(ctx).
		Where("currency_id = ?", currencyID).
		Delete(&row{}).Error
}

// List returns all entries oldest first.
func (r *Repository) List(ctx context.Context) ([]watchlist.Entry, error) {
	var rows []row
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]watchlist.Entry, 0, len(rows))
	for _, e := range rows {
		entries = append(entries, watchlist.Entry{CurrencyID: e.CurrencyID, AddedAt: e.CreatedAt})
	}
	return entries, nil
}

// Contains reports whether an entry exists.
func (r *Repository) Contains(ctx context.Context, currencyID string) (bool, error) {
	var found row
	err := r.db.WithContext(ctx).Where("currency_id = ?", currencyID).First(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Ensure Repository implements watchlist.Repository.
var _ watchlist.Repository = (*Repository)(nil)
