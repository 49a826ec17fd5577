package simulation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Params are the inputs of a simulation run.
type Params struct {
	StartDate     time.Time
	EndDate       time.Time
	InitialJPY    float64 // yen seeding the JPY bucket
	InitialUSDJPY float64 // yen seeding the USD bucket, converted at the start rate
	JPYAllocation []float64
	USDAllocation []float64
	VoteWeekdays  []time.Weekday
	Costs         CostModel
}

// Engine walks the date range day by day, rebalancing on the business day
// after each vote day and appending one snapshot per trading day. It is a
// pure function of its params and injected sources: no state survives
// between runs.
type Engine struct {
	logger *zap.Logger
	params Params
	votes  VoteSource
	prices PriceSource
	rates  RateSource
}

// NewEngine creates a simulation engine.
func NewEngine(logger *zap.Logger, params Params, votes VoteSource, prices PriceSource, rates RateSource) *Engine {
	return &Engine{
		logger: logger,
		params: params,
		votes:  votes,
		prices: prices,
		rates:  rates,
	}
}

// bucket is the mutable per-currency state of the simulation loop.
type bucket struct {
	currency       string
	positions      Position
	cash           float64
	initialCapital float64 // in the bucket's own currency
	allocation     []float64
}

// Run executes the simulation and returns the snapshot series plus the
// trade ledger.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	p := e.params
	e.warnAllocation("jpy", p.JPYAllocation)
	e.warnAllocation("usd", p.USDAllocation)

	startRate, ok := e.rates.RateOn(p.StartDate)
	if !ok || startRate <= 0 {
		return nil, fmt.Errorf("could not resolve USD/JPY rate at simulation start %s",
			p.StartDate.Format("2006-01-02"))
	}

	jpy := &bucket{
		currency:       CurrencyJPY,
		positions:      Position{},
		cash:           p.InitialJPY,
		initialCapital: p.InitialJPY,
		allocation:     p.JPYAllocation,
	}
	usd := &bucket{
		currency:       CurrencyUSD,
		positions:      Position{},
		cash:           p.InitialUSDJPY / startRate,
		initialCapital: p.InitialUSDJPY / startRate,
		allocation:     p.USDAllocation,
	}

	initialTotal := p.InitialJPY + p.InitialUSDJPY
	prevTotal := initialTotal

	// Display names travel with votes; remember them so later exits can
	// still label their trades.
	names := make(map[string]string)

	result := &Result{RunID: uuid.NewString()}
	e.logger.Info("Starting simulation",
		zap.String("run_id", result.RunID),
		zap.String("start", p.StartDate.Format("2006-01-02")),
		zap.String("end", p.EndDate.Format("2006-01-02")),
		zap.Float64("initial_total_jpy", initialTotal))

	for day := p.StartDate; !day.After(p.EndDate); day = day.AddDate(0, 0, 1) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if isWeekend(day) {
			continue
		}

		fx, ok := e.rates.RateOn(day)
		if !ok {
			// No snapshot for this day; the loop advances.
			e.logger.Warn("No USD/JPY rate, skipping day", zap.String("date", day.Format("2006-01-02")))
			continue
		}

		voteDate, due := e.rebalanceDue(day)
		var jpyRanked, usdRanked []RankedStock
		if due {
			var err error
			jpyRanked, usdRanked, err = e.votes.RankedVotes(voteDate)
			if err != nil {
				return nil, fmt.Errorf("vote tally failed for %s: %w", voteDate.Format("2006-01-02"), err)
			}
		}
		isRebalance := due && (len(jpyRanked) > 0 || len(usdRanked) > 0)

		var dayCostJPY float64
		if isRebalance {
			// The capital ceiling is judged on the pre-rebalance grand
			// total, JPY-converted.
			preTotal := e.grandTotal(jpy, usd, day, fx)
			ceilingExceeded := preTotal > CapitalCeilingMultiple*initialTotal
			if ceilingExceeded {
				e.logger.Warn("Portfolio value beyond sanity ceiling, sizing from initial capital",
					zap.String("date", day.Format("2006-01-02")),
					zap.Float64("total_jpy", preTotal))
			}

			for _, rs := range jpyRanked {
				names[rs.StockCode] = rs.StockName
			}
			for _, rs := range usdRanked {
				names[rs.StockCode] = rs.StockName
			}

			jpyTrades, jpyCost := e.rebalanceBucket(jpy, jpyRanked, day, voteDate, fx, ceilingExceeded, names)
			usdTrades, usdCost := e.rebalanceBucket(usd, usdRanked, day, voteDate, fx, ceilingExceeded, names)

			result.Trades = append(result.Trades, jpyTrades...)
			result.Trades = append(result.Trades, usdTrades...)
			dayCostJPY = jpyCost + usdCost*fx
		}

		jpyValue := Value(jpy.positions, e.priceMap(jpy.positions, day), 0)
		usdValueJPY := Value(usd.positions, e.priceMap(usd.positions, day), fx)
		totalJPY := jpyValue + jpy.cash + usdValueJPY + usd.cash*fx

		var pnlRate float64
		if prevTotal > 0 {
			pnlRate = (totalJPY - prevTotal) / prevTotal * 100
		}

		snap := Snapshot{
			Date:           day,
			IsRebalanceDay: isRebalance,
			JPYPositions:   jpy.positions.Clone(),
			USDPositions:   usd.positions.Clone(),
			JPYCash:        jpy.cash,
			USDCash:        usd.cash,
			ExchangeRate:   fx,
			TotalValueJPY:  totalJPY,
			JPYValue:       jpyValue,
			USDValue:       usdValueJPY,
			TradingCostJPY: dayCostJPY,
			DailyPnLRate:   pnlRate,
		}
		if isRebalance {
			snap.VoteDate = voteDate
		}
		result.Snapshots = append(result.Snapshots, snap)
		prevTotal = totalJPY

		e.logger.Debug("Simulated day",
			zap.String("date", day.Format("2006-01-02")),
			zap.Bool("rebalance", isRebalance),
			zap.Float64("total_jpy", totalJPY))
	}

	e.logger.Info("Simulation complete",
		zap.String("run_id", result.RunID),
		zap.Int("snapshots", len(result.Snapshots)),
		zap.Int("trades", len(result.Trades)))
	return result, nil
}

// rebalanceBucket runs the exit, trim, and buy passes for one currency
// bucket. It mutates the bucket and returns the emitted trades plus the
// total trading cost charged, in the bucket's own currency.
func (e *Engine) rebalanceBucket(b *bucket, ranked []RankedStock, day, voteDate time.Time, fx float64, ceilingExceeded bool, names map[string]string) ([]Trade, float64) {
	var trades []Trade
	var totalCost float64

	inVote := make(map[string]bool, len(ranked))
	for _, rs := range ranked {
		inVote[rs.StockCode] = true
	}

	nameOf := func(code string) string {
		if name, ok := names[code]; ok && name != "" {
			return name
		}
		return code
	}

	record := func(code, action string, shares int64, price float64) {
		t := Trade{
			TradeDate: day,
			VoteDate:  voteDate,
			StockCode: code,
			StockName: nameOf(code),
			Action:    action,
			Shares:    shares,
			Price:     price,
			Value:     float64(shares) * price,
			Currency:  b.currency,
		}
		if b.currency == CurrencyUSD {
			rate := fx
			t.ExchangeRate = &rate
		}
		trades = append(trades, t)
	}

	// Exit pass: liquidate holdings that dropped out of the vote. A ticker
	// whose price cannot be resolved is carried to the next cycle instead
	// of being forced out.
	for _, code := range sortedCodes(b.positions) {
		if inVote[code] {
			continue
		}
		price, ok := e.prices.PriceOn(code, day)
		if !ok {
			e.logger.Warn("No price for exiting position, carrying forward",
				zap.String("code", code), zap.String("date", day.Format("2006-01-02")))
			continue
		}
		shares := b.positions[code]
		proceeds := float64(shares) * price
		cost := e.params.Costs.Cost(proceeds)
		b.cash += proceeds - cost
		totalCost += cost
		delete(b.positions, code)
		record(code, ActionSell, shares, price)
	}

	postExitValue := Value(b.positions, e.priceMap(b.positions, day), 0)
	investable := InvestableCapital(postExitValue, b.cash, b.initialCapital, ceilingExceeded)

	// Target computation from ranked votes and allocation weights. A
	// missing price drops the ticker from this cycle's targets entirely,
	// which also shields it from the trim pass below.
	type target struct {
		shares int64
		price  float64
	}
	targets := make(map[string]target)
	var order []string
	for i, rs := range ranked {
		if i >= len(b.allocation) {
			break
		}
		price, ok := e.prices.PriceOn(rs.StockCode, day)
		if !ok || price <= 0 {
			continue
		}
		notional := investable * b.allocation[i] / 100
		shares := int64((notional - e.params.Costs.Cost(notional)) / price)
		if shares < 0 {
			shares = 0
		}
		targets[rs.StockCode] = target{shares: shares, price: price}
		order = append(order, rs.StockCode)
	}

	// Trim pass: sell down overweight holdings.
	for _, code := range sortedCodes(b.positions) {
		t, ok := targets[code]
		if !ok {
			// Either unranked beyond the allocation table or unpriceable
			// today. Without a price there is nothing safe to do; with one,
			// the ticker has no target and is sold off.
			price, priced := e.prices.PriceOn(code, day)
			if !priced {
				continue
			}
			t = target{shares: 0, price: price}
		}
		excess := b.positions[code] - t.shares
		if excess <= 0 {
			continue
		}
		proceeds := float64(excess) * t.price
		cost := e.params.Costs.Cost(proceeds)
		b.cash += proceeds - cost
		totalCost += cost
		if b.positions[code] == excess {
			delete(b.positions, code)
		} else {
			b.positions[code] -= excess
		}
		record(code, ActionSell, excess, t.price)
	}

	// Buy pass: fill shortfalls, falling back to the largest affordable
	// whole-share buy at 99% of cash when the pool cannot cover the full
	// amount.
	for _, code := range order {
		t := targets[code]
		shortfall := t.shares - b.positions[code]
		if shortfall <= 0 {
			continue
		}

		gross := float64(shortfall) * t.price
		spend := gross + e.params.Costs.Cost(gross)
		qty := shortfall
		if spend > b.cash {
			budget := b.cash * 0.99
			qty = int64((budget - e.params.Costs.Cost(budget)) / t.price)
			if qty <= 0 {
				e.logger.Debug("Insufficient cash for any shares",
					zap.String("code", code), zap.Float64("cash", b.cash))
				continue
			}
			gross = float64(qty) * t.price
			spend = gross + e.params.Costs.Cost(gross)
		}

		b.cash -= spend
		totalCost += e.params.Costs.Cost(gross)
		b.positions[code] += qty
		record(code, ActionBuy, qty, t.price)
	}

	return trades, totalCost
}

// grandTotal values both buckets plus cash at the day's prices, in yen.
func (e *Engine) grandTotal(jpy, usd *bucket, day time.Time, fx float64) float64 {
	jpyValue := Value(jpy.positions, e.priceMap(jpy.positions, day), 0)
	usdValue := Value(usd.positions, e.priceMap(usd.positions, day), fx)
	return jpyValue + jpy.cash + usdValue + usd.cash*fx
}

// priceMap resolves today's price for every held ticker. Unresolvable
// tickers are simply absent.
func (e *Engine) priceMap(positions Position, day time.Time) map[string]float64 {
	prices := make(map[string]float64, len(positions))
	for code := range positions {
		if price, ok := e.prices.PriceOn(code, day); ok {
			prices[code] = price
		}
	}
	return prices
}

// rebalanceDue reports whether day is the business day following a
// designated vote day, and which vote day that is.
func (e *Engine) rebalanceDue(day time.Time) (time.Time, bool) {
	// A weekend vote trades on Monday, so look back across the weekend.
	for back := 1; back <= 3; back++ {
		candidate := day.AddDate(0, 0, -back)
		if !e.isVoteWeekday(candidate.Weekday()) {
			continue
		}
		if nextBusinessDay(candidate).Equal(day) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

func (e *Engine) isVoteWeekday(d time.Weekday) bool {
	for _, w := range e.params.VoteWeekdays {
		if w == d {
			return true
		}
	}
	return false
}

func (e *Engine) warnAllocation(bucket string, allocation []float64) {
	var sum float64
	for _, w := range allocation {
		sum += w
	}
	if sum != 100 {
		e.logger.Warn("Allocation percentages do not sum to 100, proceeding with raw weights",
			zap.String("bucket", bucket), zap.Float64("sum", sum))
	}
}

func isWeekend(day time.Time) bool {
	return day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
}

// nextBusinessDay returns the next calendar day that is not a weekend.
func nextBusinessDay(day time.Time) time.Time {
	next := day.AddDate(0, 0, 1)
	for isWeekend(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func sortedCodes(positions Position) []string {
	codes := make([]string, 0, len(positions))
	for code := range positions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
