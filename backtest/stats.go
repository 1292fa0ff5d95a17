package backtest

import "math"

// Report is the fixed-shape summary of a run.
type Report struct {
	InitialBalance float64 `json:"initialBalance"`
	FinalBalance   float64 `json:"finalBalance"`
	TotalReturnPct float64 `json:"totalReturnPct"`
	MaxDrawdownPct float64 `json:"maxDrawdownPct"`
	Sharpe         float64 `json:"sharpe"`
	TotalTrades    int     `json:"totalTrades"`
}

// Summarize reduces an equity curve to a Report. annualization is the
// number of bars per year for the traded timeframe; it scales the Sharpe
// ratio and is supplied by the caller, never assumed here. An empty curve
// yields an empty report.
func Summarize(curve []EquityPoint, initialBalance float64, totalTrades int, annualization float64) Report {
	if len(curve) == 0 {
		return Report{}
	}

	final := curve[len(curve)-1].Equity
	rep := Report{
		InitialBalance: initialBalance,
		FinalBalance:   final,
		TotalTrades:    totalTrades,
	}
	if initialBalance != 0 {
		rep.TotalReturnPct = (final - initialBalance) / initialBalance * 100
	}

	rep.MaxDrawdownPct = maxDrawdown(curve) * 100
	rep.Sharpe = sharpe(curve, annualization)
	return rep
}

// maxDrawdown is the deepest fractional decline from the running equity
// peak, in [-1, 0].
func maxDrawdown(curve []EquityPoint) float64 {
	peak := curve[0].Equity
	worst := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			if dd := (p.Equity - peak) / peak; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// sharpe is the annualized mean/stdev of per-bar returns. A flat curve
// has zero volatility and scores zero rather than dividing by it.
func sharpe(curve []EquityPoint, annualization float64) float64 {
	if len(curve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			return 0
		}
		returns = append(returns, curve[i].Equity/prev-1)
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(annualization)
}
