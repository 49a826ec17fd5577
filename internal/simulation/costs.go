package simulation

// CostModel maps a trade notional to its friction cost
// (commission + slippage + spread). It applies identically to buys and
// sells, in either currency.
type CostModel struct {
	CommissionRate float64
	SlippageRate   float64
	SpreadRate     float64
}

// DefaultCostModel returns the standard rates: 0.1% commission,
// 0.05% slippage, 0.02% spread.
func DefaultCostModel() CostModel {
	return CostModel{
		CommissionRate: 0.001,
		SlippageRate:   0.0005,
		SpreadRate:     0.0002,
	}
}

// Rate returns the combined cost rate.
func (m CostModel) Rate() float64 {
	return m.CommissionRate + m.SlippageRate + m.SpreadRate
}

// Cost returns the trading cost for a notional, in the notional's currency.
func (m CostModel) Cost(notional float64) float64 {
	return notional * m.Rate()
}
