package simulation

const (
	// MaxSharePrice is the upper bound for a valid per-share price,
	// JPY-equivalent. Prices outside (0, MaxSharePrice] are treated as
	// unresolved.
	MaxSharePrice = 1_000_000

	// MaxFXRate is the upper bound for a valid USD/JPY rate.
	MaxFXRate = 1000

	// maxPositionValue is the absolute ceiling for a single position's
	// valuation. Anything above it is corrupt feed data and is skipped.
	maxPositionValue = 100_000_000
)

// Value marks a position map to market against a (possibly partial) price
// map. A non-zero fxRate converts non-JPY tickers into yen. Positions with
// missing or out-of-bounds prices, an out-of-bounds fxRate, or a valuation
// beyond the absolute ceiling are skipped rather than failing the sum.
func Value(positions Position, prices map[string]float64, fxRate float64) float64 {
	var total float64
	for code, shares := range positions {
		price, ok := prices[code]
		if !ok {
			continue
		}
		if price <= 0 || price > MaxSharePrice {
			continue
		}

		value := float64(shares) * price

		if !IsJPYTicker(code) && fxRate != 0 {
			if fxRate < 0 || fxRate > MaxFXRate {
				continue
			}
			value *= fxRate
		}

		if value > maxPositionValue {
			continue
		}
		total += value
	}
	return total
}
