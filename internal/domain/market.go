// Package domain holds shared domain types used across engine modules.
package domain

// MarketData is the market snapshot consumed by the sizing and risk
// engines. It is an external input and is never mutated by the core.
type MarketData struct {
	SpotFX             float64 // BRL per USD
	Yield1Y            float64 // Par yield, decimal (0.139 = 13.90%)
	Yield5Y            float64
	Yield10Y           float64
	SovereignSpreadBps float64 // Sovereign spread in basis points
	FXVol30DPct        float64 // 30-day implied FX vol, percent (12.5 = 12.5%)
	OvernightDaily     float64 // Overnight rate, daily decimal
}

// YieldForTenor returns the par yield for a tenor bucket in years.
// Tenors snap to the closest of the three quoted buckets.
func (m MarketData) YieldForTenor(tenorYears float64) float64 {
	switch {
	case tenorYears <= 2:
		return m.Yield1Y
	case tenorYears <= 7:
		return m.Yield5Y
	default:
		return m.Yield10Y
	}
}

// FXVolFraction returns the 30-day FX vol as a decimal fraction,
// or zero when no live vol is available.
func (m MarketData) FXVolFraction() float64 {
	if m.FXVol30DPct <= 0 {
		return 0
	}
	return m.FXVol30DPct / 100
}
