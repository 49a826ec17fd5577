package simulation

import "time"

const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"

	CurrencyJPY = "JPY"
	CurrencyUSD = "USD"
)

// Position maps ticker -> whole share count. Fractional shares are never
// held; purchases truncate.
type Position map[string]int64

// Clone returns an independent copy, so stored snapshots are not altered by
// later rebalances.
func (p Position) Clone() Position {
	c := make(Position, len(p))
	for code, shares := range p {
		c[code] = shares
	}
	return c
}

// Trade is one immutable row of the append-only trade ledger.
type Trade struct {
	TradeDate    time.Time
	VoteDate     time.Time
	StockCode    string
	StockName    string
	Action       string // ActionBuy or ActionSell
	Shares       int64
	Price        float64
	Value        float64 // Shares * Price, in the trade's own currency
	Currency     string
	ExchangeRate *float64 // USD/JPY rate on the trade date, nil for JPY trades
}

// Snapshot is the end-of-day state of the portfolio for one trading day.
// The snapshot series is the authoritative input for risk metrics.
type Snapshot struct {
	Date           time.Time
	VoteDate       time.Time // zero unless IsRebalanceDay
	IsRebalanceDay bool
	JPYPositions   Position
	USDPositions   Position
	JPYCash        float64 // yen
	USDCash        float64 // dollars
	ExchangeRate   float64
	TotalValueJPY  float64
	JPYValue       float64 // positions only, yen
	USDValue       float64 // positions only, JPY-converted
	TradingCostJPY float64 // costs charged on this day, JPY-converted
	DailyPnLRate   float64 // percent vs previous snapshot
}

// Result is the complete outcome of one simulation run.
type Result struct {
	RunID     string
	Snapshots []Snapshot
	Trades    []Trade
}

// RankedStock is one entry of a vote tally, ordered by vote count.
type RankedStock struct {
	StockCode string
	StockName string
	Votes     int
}

// VoteSource supplies ranked vote results for a vote date, split into the
// JPY and USD buckets.
type VoteSource interface {
	RankedVotes(date time.Time) (jpy, usd []RankedStock, err error)
}

// PriceSource resolves a closing price for a stock code nearest to a date.
// A false return means the price could not be resolved; the caller skips.
type PriceSource interface {
	PriceOn(code string, date time.Time) (float64, bool)
}

// RateSource resolves the USD/JPY exchange rate nearest to a date.
type RateSource interface {
	RateOn(date time.Time) (float64, bool)
}

// IsJPYTicker reports whether a stock code belongs to the JPY bucket.
// Japanese codes are all-digit strings, so the leading byte decides.
func IsJPYTicker(code string) bool {
	return len(code) > 0 && code[0] >= '0' && code[0] <= '9'
}
