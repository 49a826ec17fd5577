package marketdata

import (
	"context"
	"time"

	"stock-vote-sim-go/internal/simulation"

	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"

	// Closing prices are resolved to the nearest business day at or before
	// the target date, within this window.
	lookbackDays = 3
)

// Provider resolves closing prices and FX rates through the cache, fetching
// from the chart API on a miss. It implements simulation.PriceSource and
// simulation.RateSource.
type Provider struct {
	api    ChartAPI
	cache  Cache
	logger *zap.Logger
	fxPair string
}

var (
	_ simulation.PriceSource = (*Provider)(nil)
	_ simulation.RateSource  = (*Provider)(nil)
)

// NewProvider creates a price/FX provider over the given API and cache.
func NewProvider(api ChartAPI, cache Cache, fxPair string, logger *zap.Logger) *Provider {
	return &Provider{
		api:    api,
		cache:  cache,
		logger: logger,
		fxPair: fxPair,
	}
}

// TickerSymbol maps a stock code to its chart API symbol. All-digit Japanese
// codes trade on the Tokyo exchange and take the ".T" suffix.
func TickerSymbol(code string) string {
	if simulation.IsJPYTicker(code) {
		return code + ".T"
	}
	return code
}

// PriceOn resolves the closing price for a stock code nearest to date.
func (p *Provider) PriceOn(code string, date time.Time) (float64, bool) {
	currency := simulation.CurrencyUSD
	if simulation.IsJPYTicker(code) {
		currency = simulation.CurrencyJPY
	}
	return p.resolve(TickerSymbol(code), date, currency, simulation.MaxSharePrice)
}

// RateOn resolves the USD/JPY rate nearest to date.
func (p *Provider) RateOn(date time.Time) (float64, bool) {
	return p.resolve(p.fxPair, date, simulation.CurrencyJPY, simulation.MaxFXRate)
}

func (p *Provider) resolve(symbol string, date time.Time, currency string, maxValid float64) (float64, bool) {
	key := date.Format(dateLayout)

	if price, ok := p.cache.Get(symbol, key); ok {
		if price > 0 && price <= maxValid {
			return price, true
		}
		return 0, false
	}

	closes, err := p.api.DailyCloses(context.Background(),
		symbol, date.AddDate(0, 0, -lookbackDays), date.AddDate(0, 0, lookbackDays))
	if err != nil {
		p.logger.Warn("Failed to fetch daily closes",
			zap.String("symbol", symbol), zap.String("date", key), zap.Error(err))
		return 0, false
	}

	// Latest close at or before the target date wins.
	var price float64
	var found bool
	var best time.Time
	for _, c := range closes {
		if c.Date.After(date) {
			continue
		}
		if !found || c.Date.After(best) {
			price, best, found = c.Price, c.Date, true
		}
	}
	if !found {
		p.logger.Debug("No close at or before target date",
			zap.String("symbol", symbol), zap.String("date", key))
		return 0, false
	}
	if price <= 0 || price > maxValid {
		p.logger.Warn("Discarding out-of-bounds price",
			zap.String("symbol", symbol), zap.String("date", key), zap.Float64("price", price))
		return 0, false
	}

	if err := p.cache.Put(symbol, key, price, currency); err != nil {
		p.logger.Warn("Failed to write price cache entry",
			zap.String("symbol", symbol), zap.String("date", key), zap.Error(err))
	}
	return price, true
}
