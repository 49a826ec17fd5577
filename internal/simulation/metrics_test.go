package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotSeries(values ...float64) []Snapshot {
	snapshots := make([]Snapshot, len(values))
	for i, v := range values {
		snapshots[i] = Snapshot{TotalValueJPY: v}
	}
	return snapshots
}

func TestComputeMetrics_TooShortSeries(t *testing.T) {
	_, ok := ComputeMetrics(nil)
	assert.False(t, ok)

	_, ok = ComputeMetrics(snapshotSeries(100))
	assert.False(t, ok)
}

func TestComputeMetrics_FlatSeries(t *testing.T) {
	m, ok := ComputeMetrics(snapshotSeries(100, 100, 100, 100))
	require.True(t, ok)

	assert.Equal(t, 0.0, m.AnnualReturn)
	assert.Equal(t, 0.0, m.AnnualVolatility)
	assert.Equal(t, 0.0, m.SharpeRatio)
	assert.Equal(t, 0.0, m.MaxDrawdown)
	assert.Equal(t, 4, m.TradingDays)
}

func TestComputeMetrics_MaxDrawdown(t *testing.T) {
	m, ok := ComputeMetrics(snapshotSeries(100, 120, 60, 90))
	require.True(t, ok)

	// Peak 120, trough 60.
	assert.InDelta(t, 50, m.MaxDrawdown, 1e-9)
	assert.Less(t, m.AnnualReturn, 0.0)
}

func TestComputeMetrics_DailyReturnClamp(t *testing.T) {
	// The quadrupling day clamps to +50%, keeping volatility finite.
	m, ok := ComputeMetrics(snapshotSeries(100, 400, 400))
	require.True(t, ok)

	// Clamped returns are [0.5, 0]: population stdev 0.25, annualized.
	assert.InDelta(t, 0.25*math.Sqrt(365)*100, m.AnnualVolatility, 1e-6)
}

func TestComputeMetrics_TotalReturnFloor(t *testing.T) {
	// A 92% wipeout clamps to the -90% floor before annualizing.
	// 0.1^(365/2) underflows to zero, reporting a full -100% year.
	m, ok := ComputeMetrics(snapshotSeries(100, 8))
	require.True(t, ok)

	assert.InDelta(t, -100, m.AnnualReturn, 1e-9)

	// A single clamped daily return leaves no spread to annualize.
	assert.Equal(t, 0.0, m.AnnualVolatility)
}
