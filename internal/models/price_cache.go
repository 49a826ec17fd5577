package models

import "time"

// PriceCacheEntry is a cached closing price (or FX rate) for a symbol on a
// date. The (symbol, date) pair is the primary key; writes are
// insert-or-replace, last write wins, no history kept.
type PriceCacheEntry struct {
	Symbol    string  `gorm:"primaryKey"`
	Date      string  `gorm:"primaryKey"` // YYYY-MM-DD
	Price     float64 `gorm:"not null"`
	Currency  string
	UpdatedAt time.Time
}
