package simulation

// CapitalCeilingMultiple bounds runaway compounding: once the portfolio
// grand total exceeds this multiple of the original investment, rebalance
// sizing falls back to the initial capital instead of the inflated total.
const CapitalCeilingMultiple = 50

// InvestableCapital returns the notional available for redistribution
// across target positions in one currency bucket during a rebalance.
// All amounts are in the bucket's own currency.
func InvestableCapital(postExitValue, cash, initialCapital float64, ceilingExceeded bool) float64 {
	if ceilingExceeded {
		return initialCapital
	}
	return postExitValue + cash
}
