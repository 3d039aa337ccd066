// Package exposure aggregates notional, leverage, sensitivity and
// concentration analytics over the sized book.
package exposure

import (
	"math"

	"github.com/mfontana/overlay/internal/modules/budget"
	"github.com/mfontana/overlay/internal/modules/instruments"
	"github.com/mfontana/overlay/internal/modules/sizing"
)

// LadderEntry is one signed DV01 contribution tagged by tenor bucket.
type LadderEntry struct {
	Instrument string  `json:"instrument"`
	Tenor      string  `json:"tenor"`
	DV01       float64 `json:"dv01"`
}

// Analytics is the aggregated exposure view of the book.
type Analytics struct {
	GrossExposure      float64       `json:"gross_exposure"`
	NetExposure        float64       `json:"net_exposure"`
	GrossLeverage      float64       `json:"gross_leverage"`
	NetLeverage        float64       `json:"net_leverage"`
	FXDeltaTotal       float64       `json:"fx_delta_total"`
	DV01Total          float64       `json:"dv01_total"`
	DV01Ladder         []LadderEntry `json:"dv01_ladder"`
	TotalMargin        float64       `json:"total_margin"`
	MarginUtilization  float64       `json:"margin_utilization_pct"`
	LargestPositionPct float64       `json:"largest_position_pct"`
	HerfindahlIndex    float64       `json:"herfindahl_index"`
}

// Analyze computes exposure analytics from the sized positions and the
// risk budget. Leverage and utilization ratios divide by AUM; a zero AUM
// leaves the ratios at zero.
func Analyze(positions []sizing.Position, b budget.Budget) Analytics {
	a := Analytics{}

	totalRisk := 0.0
	largestRisk := 0.0
	sumSquaredShares := 0.0

	for _, pos := range positions {
		notional := math.Abs(pos.NotionalLocal)
		a.GrossExposure += notional
		a.NetExposure += notional * pos.Direction.Sign()
		a.TotalMargin += pos.Margin

		switch pos.Sensitivity.Kind {
		case sizing.SensitivityFXDelta:
			a.FXDeltaTotal += pos.Sensitivity.Amount
		case sizing.SensitivityDV01, sizing.SensitivitySpreadDV01:
			a.DV01Total += pos.Sensitivity.Amount
			if tenor := instruments.TenorBucket(pos.Class); tenor != "" {
				a.DV01Ladder = append(a.DV01Ladder, LadderEntry{
					Instrument: pos.Instrument,
					Tenor:      tenor,
					DV01:       pos.Sensitivity.Amount,
				})
			}
		}

		risk := riskHeld(pos)
		totalRisk += risk
		if risk > largestRisk {
			largestRisk = risk
		}
	}

	if totalRisk > 0 {
		for _, pos := range positions {
			share := riskHeld(pos) / totalRisk
			sumSquaredShares += share * share
		}
		a.HerfindahlIndex = sumSquaredShares
		a.LargestPositionPct = largestRisk / totalRisk * 100
	}

	if b.AUM > 0 {
		a.GrossLeverage = a.GrossExposure / b.AUM
		a.NetLeverage = a.NetExposure / b.AUM
		a.MarginUtilization = a.TotalMargin / b.AUM * 100
	}

	return a
}

// riskHeld is the risk allocation actually deployed. A flat position
// keeps its sub-deadband residual allocation for reporting but holds no
// risk, so it must not dilute the concentration shares.
func riskHeld(pos sizing.Position) float64 {
	if pos.Direction == budget.Flat {
		return 0
	}
	return pos.RiskAllocation
}
