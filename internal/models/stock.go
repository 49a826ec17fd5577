package models

import "gorm.io/gorm"

// Stock maps a stock code to its display name.
// Japanese tickers are all-digit codes ("7203"), US tickers are letters ("AAPL").
type Stock struct {
	gorm.Model
	StockCode string `gorm:"uniqueIndex;not null"`
	StockName string
}
