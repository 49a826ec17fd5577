package simulation

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	riskFreeRate = 0.02

	// Outlier guards against price-feed glitches.
	dailyReturnClamp = 0.5
	minTotalReturn   = -0.9
	maxTotalReturn   = 10
)

// Metrics summarizes risk and return over a daily value series.
type Metrics struct {
	AnnualReturn     float64 `json:"annual_return_pct"` // percent
	AnnualVolatility float64 `json:"annual_volatility_pct"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown_pct"`
	TradingDays      int     `json:"trading_days"`
}

// ComputeMetrics derives summary metrics from the snapshot series. It
// returns false when the series is too short to say anything.
func ComputeMetrics(snapshots []Snapshot) (Metrics, bool) {
	if len(snapshots) < 2 {
		return Metrics{}, false
	}

	values := make([]float64, len(snapshots))
	for i, s := range snapshots {
		values[i] = s.TotalValueJPY
	}

	var returns []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] <= 0 {
			continue
		}
		r := (values[i] - values[i-1]) / values[i-1]
		if r > dailyReturnClamp {
			r = dailyReturnClamp
		} else if r < -dailyReturnClamp {
			r = -dailyReturnClamp
		}
		returns = append(returns, r)
	}
	if len(returns) == 0 {
		return Metrics{}, false
	}

	var totalReturn float64
	if values[0] > 0 {
		totalReturn = (values[len(values)-1] - values[0]) / values[0]
	}
	if totalReturn > maxTotalReturn {
		totalReturn = maxTotalReturn
	} else if totalReturn < minTotalReturn {
		totalReturn = minTotalReturn
	}

	days := float64(len(values))
	annualReturn := math.Pow(1+totalReturn, 365/days) - 1
	if math.IsInf(annualReturn, 0) || math.IsNaN(annualReturn) {
		// Exponentiation blew up; fall back to the clamp bounds.
		if totalReturn > 0 {
			annualReturn = maxTotalReturn
		} else {
			annualReturn = minTotalReturn
		}
	}

	// Population stdev over the clamped daily returns.
	annualVolatility := stat.PopStdDev(returns, nil) * math.Sqrt(365)

	var sharpe float64
	if annualVolatility > 0 {
		sharpe = (annualReturn - riskFreeRate) / annualVolatility
	}

	peak := values[0]
	var maxDrawdown float64
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}

	return Metrics{
		AnnualReturn:     annualReturn * 100,
		AnnualVolatility: annualVolatility * 100,
		SharpeRatio:      sharpe,
		MaxDrawdown:      maxDrawdown * 100,
		TradingDays:      len(snapshots),
	}, true
}
