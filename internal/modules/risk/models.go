// Package risk computes parametric delta-normal Value-at-Risk, its
// per-instrument decomposition and a fixed battery of historical stress
// scenarios over the sized positions.
package risk

// zScore95 and zScore99 are the one-sided normal quantiles used by the
// parametric VaR.
const (
	zScore95 = 1.645
	zScore99 = 2.326
)

// monthlyScalingDays is the trading-day horizon of the monthly VaR.
const monthlyScalingDays = 21

// Component is the VaR attribution of one instrument. The contributions
// approximately sum to the daily 95% VaR (Euler's theorem for the
// homogeneous risk measure).
type Component struct {
	Instrument      string  `json:"instrument"`
	Contribution    float64 `json:"contribution"`     // Currency units
	ContributionPct float64 `json:"contribution_pct"` // Share of daily 95% VaR
	MarginalVaR     float64 `json:"marginal_var"`
}

// StressResult is the P&L of the book under one named historical shock vector.
type StressResult struct {
	Scenario string  `json:"scenario"`
	PnL      float64 `json:"pnl"`     // Currency units, negative is a loss
	PnLPct   float64 `json:"pnl_pct"` // Percent of AUM
}

// Result is the full parametric VaR output.
type Result struct {
	VaRDaily95    float64        `json:"var_daily_95"`
	VaRDaily99    float64        `json:"var_daily_99"`
	VaRMonthly95  float64        `json:"var_monthly_95"`
	VaRMonthly99  float64        `json:"var_monthly_99"`
	VaRDaily95Pct float64        `json:"var_daily_95_pct"` // Percent of AUM
	Components    []Component    `json:"components"`
	StressTests   []StressResult `json:"stress_tests"`
}
