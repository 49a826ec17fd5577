package marketdata

import (
	"time"

	"stock-vote-sim-go/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cache is the injected price cache. The provider reads it before any
// network fetch and writes after every successful fetch. Writes are
// insert-or-replace: last write wins.
type Cache interface {
	Get(symbol, date string) (float64, bool)
	Put(symbol, date string, price float64, currency string) error
}

// GormCache persists cache entries in the price_cache_entries table.
type GormCache struct {
	db *gorm.DB
}

var _ Cache = (*GormCache)(nil)

// NewGormCache creates a database-backed price cache.
func NewGormCache(db *gorm.DB) *GormCache {
	return &GormCache{db: db}
}

// Get returns the cached price for (symbol, date), if present.
func (c *GormCache) Get(symbol, date string) (float64, bool) {
	var entry models.PriceCacheEntry
	err := c.db.Where("symbol = ? AND date = ?", symbol, date).First(&entry).Error
	if err != nil {
		return 0, false
	}
	return entry.Price, true
}

// Put stores the price for (symbol, date), replacing any previous value.
func (c *GormCache) Put(symbol, date string, price float64, currency string) error {
	entry := models.PriceCacheEntry{
		Symbol:    symbol,
		Date:      date,
		Price:     price,
		Currency:  currency,
		UpdatedAt: time.Now(),
	}
	return c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(&entry).Error
}

// MemoryCache is an in-process Cache for tests and dry runs.
type MemoryCache struct {
	entries map[string]float64
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]float64)}
}

func (c *MemoryCache) key(symbol, date string) string {
	return symbol + "@" + date
}

// Get returns the cached price for (symbol, date), if present.
func (c *MemoryCache) Get(symbol, date string) (float64, bool) {
	v, ok := c.entries[c.key(symbol, date)]
	return v, ok
}

// Put stores the price for (symbol, date), replacing any previous value.
func (c *MemoryCache) Put(symbol, date string, price float64, _ string) error {
	c.entries[c.key(symbol, date)] = price
	return nil
}
