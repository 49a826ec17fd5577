package models

import "gorm.io/gorm"

// Vote is a single community vote for a stock on a given vote date.
// Tallies group these rows by stock code.
type Vote struct {
	gorm.Model
	VoteDate  string `gorm:"index;not null"` // YYYY-MM-DD
	StockCode string `gorm:"index;not null"`
}
