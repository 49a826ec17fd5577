package votes

import (
	"fmt"
	"time"

	"stock-vote-sim-go/internal/models"
	"stock-vote-sim-go/internal/simulation"

	"gorm.io/gorm"
)

// bucketSize is how many ranked tickers each currency bucket keeps.
const bucketSize = 10

// Tally aggregates community votes into ranked per-currency lists.
// It implements simulation.VoteSource.
type Tally struct {
	db    *gorm.DB
	names map[string]string // stock code -> name memo
}

var _ simulation.VoteSource = (*Tally)(nil)

// NewTally creates a vote tally over the given database.
func NewTally(db *gorm.DB) *Tally {
	return &Tally{db: db, names: make(map[string]string)}
}

// RankedVotes returns the vote results for a date split into JPY and USD
// buckets, each ordered by vote count and truncated to the top ten.
func (t *Tally) RankedVotes(date time.Time) (jpy, usd []simulation.RankedStock, err error) {
	type tallyRow struct {
		StockCode string
		VoteCount int
	}

	var rows []tallyRow
	err = t.db.Model(&models.Vote{}).
		Select("stock_code, COUNT(*) as vote_count").
		Where("vote_date = ?", date.Format("2006-01-02")).
		Group("stock_code").
		Order("vote_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("could not tally votes for %s: %w", date.Format("2006-01-02"), err)
	}

	for _, row := range rows {
		ranked := simulation.RankedStock{
			StockCode: row.StockCode,
			StockName: t.stockName(row.StockCode),
			Votes:     row.VoteCount,
		}
		if simulation.IsJPYTicker(row.StockCode) {
			jpy = append(jpy, ranked)
		} else {
			usd = append(usd, ranked)
		}
	}

	if len(jpy) > bucketSize {
		jpy = jpy[:bucketSize]
	}
	if len(usd) > bucketSize {
		usd = usd[:bucketSize]
	}
	return jpy, usd, nil
}

// stockName resolves a display name from the stock master, falling back to
// the code itself.
func (t *Tally) stockName(code string) string {
	if name, ok := t.names[code]; ok {
		return name
	}

	name := code
	var stock models.Stock
	if err := t.db.Where("stock_code = ?", code).First(&stock).Error; err == nil && stock.StockName != "" {
		name = stock.StockName
	}
	t.names[code] = name
	return name
}
