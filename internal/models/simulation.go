package models

import "gorm.io/gorm"

// SimulationTrade is a persisted trade ledger row for a simulation run.
type SimulationTrade struct {
	gorm.Model
	RunID        string   `gorm:"index;not null" json:"run_id"`
	TradeDate    string   `gorm:"not null" json:"trade_date"` // YYYY-MM-DD
	VoteDate     string   `json:"vote_date"`
	StockCode    string   `json:"stock_code"`
	StockName    string   `json:"stock_name"`
	Action       string   `json:"action"` // "BUY" or "SELL"
	Shares       int64    `json:"shares"`
	Price        float64  `json:"price"`
	Value        float64  `json:"value"`
	Currency     string   `json:"currency"`      // "JPY" or "USD"
	ExchangeRate *float64 `json:"exchange_rate"` // nil for JPY trades
}

// SimulationSnapshot is a persisted daily snapshot row for a simulation run.
// Position maps are stored as JSON text.
type SimulationSnapshot struct {
	gorm.Model
	RunID          string  `gorm:"index;not null" json:"run_id"`
	Date           string  `gorm:"not null" json:"date"` // YYYY-MM-DD
	IsRebalanceDay bool    `json:"is_rebalance_day"`
	JPYPositions   string  `json:"jpy_positions"` // JSON: ticker -> shares
	USDPositions   string  `json:"usd_positions"`
	JPYCash        float64 `json:"jpy_cash"`
	USDCash        float64 `json:"usd_cash"`
	ExchangeRate   float64 `json:"exchange_rate"`
	TotalValueJPY  float64 `json:"total_value_jpy"`
	JPYValue       float64 `json:"jpy_value"`
	USDValue       float64 `json:"usd_value"` // JPY-converted
	TradingCostJPY float64 `json:"trading_cost_jpy"`
	DailyPnLRate   float64 `json:"daily_pnl_rate"`
}
