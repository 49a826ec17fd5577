package simulation

import "time"

// Reconstructor replays a trade ledger to split cumulative P&L as of any
// date into realized and unrealized components, in yen. Each query replays
// the full ledger, so cost grows with trades squared; fine at the expected
// ledger sizes.
type Reconstructor struct {
	trades []Trade // ordered by trade date
	prices PriceSource
	rates  RateSource
}

// NewReconstructor creates a reconstructor over an ordered trade ledger.
func NewReconstructor(trades []Trade, prices PriceSource, rates RateSource) *Reconstructor {
	return &Reconstructor{trades: trades, prices: prices, rates: rates}
}

// RealizedThrough returns the cumulative realized P&L of all sells at or
// before asOf. Each sell is matched to the most recent buy of the same
// ticker strictly before the sell's date, even if that buy was already
// matched to an earlier sell. This mirrors the historical
// matching rule; switching to lot tracking would change reported figures.
func (r *Reconstructor) RealizedThrough(asOf time.Time) float64 {
	var total float64
	for _, sell := range r.trades {
		if sell.Action != ActionSell || sell.TradeDate.After(asOf) {
			continue
		}
		buy, ok := r.matchingBuy(sell)
		if !ok {
			continue
		}
		pnl := (sell.Price - buy.Price) * float64(sell.Shares)
		if sell.Currency == CurrencyUSD && sell.ExchangeRate != nil {
			pnl *= *sell.ExchangeRate
		}
		total += pnl
	}
	return total
}

func (r *Reconstructor) matchingBuy(sell Trade) (Trade, bool) {
	var match Trade
	var found bool
	for _, t := range r.trades {
		if t.Action != ActionBuy || t.StockCode != sell.StockCode {
			continue
		}
		if !t.TradeDate.Before(sell.TradeDate) {
			continue
		}
		if !found || t.TradeDate.After(match.TradeDate) {
			match = t
			found = true
		}
	}
	return match, found
}

// openLot is the weighted-average-cost book entry for one ticker.
type openLot struct {
	shares   int64
	cost     float64 // in the ticker's trade currency
	currency string
}

// UnrealizedThrough returns the cumulative mark-to-market P&L of positions
// still open as of asOf, against their weighted-average cost. A sell
// reduces the cost basis proportionally to the fraction of shares sold.
// Tickers whose as-of price (or FX rate, for USD) cannot be resolved are
// excluded rather than failing the total.
func (r *Reconstructor) UnrealizedThrough(asOf time.Time) float64 {
	book := make(map[string]*openLot)
	for _, t := range r.trades {
		if t.TradeDate.After(asOf) {
			continue
		}
		lot := book[t.StockCode]
		if lot == nil {
			lot = &openLot{currency: t.Currency}
			book[t.StockCode] = lot
		}
		switch t.Action {
		case ActionBuy:
			lot.shares += t.Shares
			lot.cost += float64(t.Shares) * t.Price
		case ActionSell:
			if lot.shares <= 0 {
				continue
			}
			fraction := float64(t.Shares) / float64(lot.shares)
			if fraction > 1 {
				fraction = 1
			}
			lot.cost -= lot.cost * fraction
			lot.shares -= t.Shares
			if lot.shares < 0 {
				lot.shares = 0
			}
		}
	}

	fx, fxOK := r.rates.RateOn(asOf)

	var total float64
	for code, lot := range book {
		if lot.shares <= 0 {
			continue
		}
		price, ok := r.prices.PriceOn(code, asOf)
		if !ok {
			continue
		}
		market := float64(lot.shares) * price
		cost := lot.cost
		if lot.currency == CurrencyUSD {
			if !fxOK {
				continue
			}
			market *= fx
			cost *= fx
		}
		total += market - cost
	}
	return total
}

// PnLDelta is one day's change in realized and unrealized P&L.
type PnLDelta struct {
	Date       time.Time
	Realized   float64
	Unrealized float64
}

// DailyDeltas subtracts each date's cumulative figures from the previous
// date's, yielding the per-day changes surfaced in calendars and tables.
// Dates must be in ascending order.
func (r *Reconstructor) DailyDeltas(dates []time.Time) []PnLDelta {
	deltas := make([]PnLDelta, 0, len(dates))
	var prevRealized, prevUnrealized float64
	for _, d := range dates {
		realized := r.RealizedThrough(d)
		unrealized := r.UnrealizedThrough(d)
		deltas = append(deltas, PnLDelta{
			Date:       d,
			Realized:   realized - prevRealized,
			Unrealized: unrealized - prevUnrealized,
		})
		prevRealized, prevUnrealized = realized, unrealized
	}
	return deltas
}
