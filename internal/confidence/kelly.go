package confidence

// Kelly returns the full-Kelly fraction for win probability p at
// decimal odds. The fraction is zero whenever the edge is not positive;
// a certain win stakes the full bankroll.
func Kelly(p, decimalOdds float64) float64 {
	b := decimalOdds - 1
	if b <= 0 || p <= 0 {
		return 0
	}
	if p > 1 {
		p = 1
	}
	f := (b*p - (1 - p)) / b
	if f <= 0 {
		return 0
	}
	return f
}

// HalfKelly halves the Kelly fraction. Full Kelly assumes the win
// probability is exact; the estimates here come from finite backtest
// samples, so stakes are cut to half to bound the damage of an
// overestimated edge.
func HalfKelly(p, decimalOdds float64) float64 {
	return Kelly(p, decimalOdds) / 2
}
