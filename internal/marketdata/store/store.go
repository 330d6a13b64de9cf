// Package store persists symbol metadata and price snapshots via GORM.
package store

import (
	"time"

	"gorm.io/gorm"
)

// SymbolMetadata is the upsert target for a fetched symbol's last-known
// vendor and interval, matching _persist_metadata's write.
type SymbolMetadata struct {
	Symbol      string `gorm:"primaryKey"`
	LastVendor  string
	LastInterval string
	UpdatedAt   time.Time
}

// PriceSnapshot is one persisted bar row, keyed by symbol+timestamp so
// repeated fetches of overlapping ranges upsert rather than duplicate.
type PriceSnapshot struct {
	Symbol    string    `gorm:"primaryKey"`
	Timestamp time.Time `gorm:"primaryKey"`
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Store wraps a *gorm.DB with the market-data persistence operations the
// DAL facade needs.
type Store struct {
	db *gorm.DB
}

// New constructs a Store and auto-migrates its tables.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&SymbolMetadata{}, &PriceSnapshot{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// UpsertMetadata records which vendor/interval last served symbol.
func (s *Store) UpsertMetadata(symbol, vendor, interval string) error {
	meta := SymbolMetadata{Symbol: symbol, LastVendor: vendor, LastInterval: interval, UpdatedAt: time.Now()}
	return s.db.Save(&meta).Error
}

// UpsertSnapshots writes rows, replacing any existing row for the same
// symbol+timestamp.
func (s *Store) UpsertSnapshots(rows []PriceSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.Save(&rows).Error
}
