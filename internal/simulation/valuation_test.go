package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_JPYOnly(t *testing.T) {
	positions := Position{"7203": 100, "9984": 50}
	prices := map[string]float64{"7203": 2000, "9984": 8000}

	assert.InDelta(t, 100*2000+50*8000, Value(positions, prices, 0), 1e-9)
}

func TestValue_MissingPriceIsSkipped(t *testing.T) {
	positions := Position{"7203": 100, "9984": 50}
	prices := map[string]float64{"7203": 2000} // no price for 9984

	assert.InDelta(t, 200000, Value(positions, prices, 0), 1e-9)
}

func TestValue_OutOfBoundsPriceIsSkipped(t *testing.T) {
	positions := Position{"7203": 1, "9984": 1, "6501": 1}
	prices := map[string]float64{
		"7203": -5,
		"9984": 1_000_001, // beyond per-share ceiling
		"6501": 100,
	}

	assert.InDelta(t, 100, Value(positions, prices, 0), 1e-9)
}

func TestValue_USDConversion(t *testing.T) {
	positions := Position{"AAPL": 10}
	prices := map[string]float64{"AAPL": 200}

	assert.InDelta(t, 10*200*150, Value(positions, prices, 150), 1e-9)

	// Out-of-bounds FX rate invalidates the USD leg entirely.
	assert.Equal(t, 0.0, Value(positions, prices, 1001))

	// fxRate of zero means "no conversion requested".
	assert.InDelta(t, 2000, Value(positions, prices, 0), 1e-9)
}

func TestValue_PositionCeilingIsSkipped(t *testing.T) {
	positions := Position{"7203": 200}
	prices := map[string]float64{"7203": 900_000} // 180M per position, over the ceiling

	assert.Equal(t, 0.0, Value(positions, prices, 0))
}

func TestValue_MonotonicInShares(t *testing.T) {
	prices := map[string]float64{"7203": 2000}

	prev := 0.0
	for shares := int64(0); shares <= 500; shares += 50 {
		v := Value(Position{"7203": shares}, prices, 0)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestInvestableCapital(t *testing.T) {
	assert.Equal(t, 1500.0, InvestableCapital(1000, 500, 100, false))

	// Beyond the sanity ceiling the original investment is used instead.
	assert.Equal(t, 100.0, InvestableCapital(1000, 500, 100, true))
}
