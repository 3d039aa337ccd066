// Package budget converts portfolio configuration and model weights into
// a risk budget split across the instrument classes.
package budget

import (
	"math"

	"github.com/mfontana/overlay/internal/modules/instruments"
)

// TradingDaysPerYear is the annualization convention used throughout the engine.
const TradingDaysPerYear = 252

// directionDeadband is the |weight| below which an instrument is flat.
const directionDeadband = 0.001

// Direction is the side of an instrument position.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
	Flat  Direction = "flat"
)

// Sign returns the position sign carried by a direction.
func (d Direction) Sign() float64 {
	switch d {
	case Long:
		return 1
	case Short:
		return -1
	}
	return 0
}

// DirectionFor classifies a model weight with the deadband.
func DirectionFor(weight float64) Direction {
	switch {
	case weight > directionDeadband:
		return Long
	case weight < -directionDeadband:
		return Short
	}
	return Flat
}

// Allocation is the per-instrument slice of the risk budget.
type Allocation struct {
	Class             instruments.Class `json:"-"`
	Instrument        string            `json:"instrument"`
	Weight            float64           `json:"weight"`
	Direction         Direction         `json:"direction"`
	RiskAllocation    float64           `json:"risk_allocation"`     // Currency units
	RiskAllocationPct float64           `json:"risk_allocation_pct"` // Share of gross, percent
	ExpectedReturn    float64           `json:"expected_return"`     // Annualized, decimal
}

// Budget is the portfolio-level risk budget.
type Budget struct {
	AUM             float64      `json:"aum"`
	VolTargetAnnual float64      `json:"vol_target_annual"`
	RiskBudget      float64      `json:"risk_budget"`       // Currency units, annual
	RiskBudgetDaily float64      `json:"risk_budget_daily"` // RiskBudget / sqrt(252)
	GrossLeverage   float64      `json:"gross_leverage"`    // Sum of |weights|, exact
	Allocations     []Allocation `json:"allocations"`
}

// Allocation returns the allocation for a class.
func (b Budget) Allocation(c instruments.Class) Allocation {
	for _, a := range b.Allocations {
		if a.Class == c {
			return a
		}
	}
	return Allocation{Class: c, Instrument: c.String(), Direction: Flat}
}

// Allocate splits the risk budget across instrument classes in proportion
// to absolute weight. Missing classes get zero weight; zero AUM yields
// all-zero outputs without error.
func Allocate(aum, volTarget float64, weights, expectedReturns map[instruments.Class]float64) Budget {
	riskBudget := aum * volTarget

	grossLeverage := 0.0
	for _, c := range instruments.Classes() {
		grossLeverage += math.Abs(weights[c])
	}

	allocations := make([]Allocation, 0, instruments.NumClasses)
	for _, c := range instruments.Classes() {
		w := weights[c]
		absW := math.Abs(w)

		alloc := Allocation{
			Class:          c,
			Instrument:     c.String(),
			Weight:         w,
			Direction:      DirectionFor(w),
			RiskAllocation: absW * riskBudget,
			ExpectedReturn: expectedReturns[c],
		}
		if grossLeverage > 0 {
			alloc.RiskAllocationPct = absW / grossLeverage * 100
		}
		allocations = append(allocations, alloc)
	}

	return Budget{
		AUM:             aum,
		VolTargetAnnual: volTarget,
		RiskBudget:      riskBudget,
		RiskBudgetDaily: riskBudget / math.Sqrt(TradingDaysPerYear),
		GrossLeverage:   grossLeverage,
		Allocations:     allocations,
	}
}
