package risk

import (
	"github.com/mfontana/overlay/internal/modules/instruments"
	"github.com/mfontana/overlay/internal/modules/sizing"
)

// shockVector is one named historical scenario. FX shocks are fractional
// spot moves (BRL per USD, positive = BRL depreciation); rate and spread
// shocks are in basis points per class.
type shockVector struct {
	name   string
	shocks [instruments.NumClasses]float64
}

// stressScenarios is the fixed battery of historical shock vectors,
// in canonical class order (fx, front, belly, long, hard, linker).
var stressScenarios = []shockVector{
	{"2008 Global Financial Crisis", [instruments.NumClasses]float64{0.32, 350, 280, 220, 420, 240}},
	{"2013 Taper Tantrum", [instruments.NumClasses]float64{0.15, 120, 180, 160, 80, 150}},
	{"2015 Sovereign Downgrade", [instruments.NumClasses]float64{0.18, 250, 300, 280, 180, 260}},
	{"2020 COVID Shock", [instruments.NumClasses]float64{0.25, -150, 90, 120, 230, 100}},
	{"2022 Hiking Cycle", [instruments.NumClasses]float64{-0.08, 480, 250, 180, 60, 200}},
	{"Parallel Rates +200bp", [instruments.NumClasses]float64{0, 200, 200, 200, 50, 200}},
	{"BRL -15%", [instruments.NumClasses]float64{0.15, 0, 0, 0, 0, 0}},
}

// stressBattery revalues the book under each scenario using position
// sensitivities. Sign conventions: the signed FX delta gains with spot
// appreciation of the USD leg, and a receiver (long) rate position gains
// when yields decline, so rate P&L is minus signed DV01 times the shock.
func (e *Engine) stressBattery(positions []sizing.Position, aum float64) []StressResult {
	results := make([]StressResult, 0, len(stressScenarios))

	for _, scenario := range stressScenarios {
		pnl := 0.0
		for _, pos := range positions {
			if !pos.Active() {
				continue
			}
			shock := scenario.shocks[pos.Class]
			switch pos.Sensitivity.Kind {
			case sizing.SensitivityFXDelta:
				pnl += pos.Sensitivity.Amount * shock
			case sizing.SensitivityDV01, sizing.SensitivitySpreadDV01:
				pnl += -pos.Sensitivity.Amount * shock
			}
		}

		result := StressResult{Scenario: scenario.name, PnL: pnl}
		if aum > 0 {
			result.PnLPct = pnl / aum * 100
		}
		results = append(results, result)
	}

	return results
}
