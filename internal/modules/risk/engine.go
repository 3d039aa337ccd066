package risk

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/mfontana/overlay/internal/domain"
	"github.com/mfontana/overlay/internal/modules/budget"
	"github.com/mfontana/overlay/internal/modules/instruments"
	"github.com/mfontana/overlay/internal/modules/sizing"
)

// annualVols holds the static annualized volatility assumptions per
// instrument class. The FX vol is overridden by live market data when
// available; the rest are fixed model assumptions.
var annualVols = [instruments.NumClasses]float64{
	instruments.ClassFX:     0.16,
	instruments.ClassFront:  0.025,
	instruments.ClassBelly:  0.055,
	instruments.ClassLong:   0.085,
	instruments.ClassHard:   0.060,
	instruments.ClassLinker: 0.075,
}

// correlations is the fixed symmetric cross-asset correlation matrix in
// canonical class order (fx, front, belly, long, hard, inflation-linked).
// BRL weakness moves with local rate selloffs, hence the negative FX/rate
// entries under the short-USD sign convention.
var correlations = [instruments.NumClasses][instruments.NumClasses]float64{
	{1.00, -0.35, -0.40, -0.45, 0.50, -0.30},
	{-0.35, 1.00, 0.85, 0.75, -0.25, 0.60},
	{-0.40, 0.85, 1.00, 0.90, -0.30, 0.70},
	{-0.45, 0.75, 0.90, 1.00, -0.35, 0.75},
	{0.50, -0.25, -0.30, -0.35, 1.00, -0.20},
	{-0.30, 0.60, 0.70, 0.75, -0.20, 1.00},
}

// Engine computes parametric VaR over the fixed instrument universe.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new risk engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("component", "risk_engine").Logger()}
}

// Compute runs the delta-normal VaR, the Euler-style component
// decomposition and the stress battery for a sized book.
func (e *Engine) Compute(
	positions []sizing.Position,
	b budget.Budget,
	market domain.MarketData,
) Result {
	n := instruments.NumClasses

	// VaR units: |risk allocation| x daily vol per class. A flat
	// direction carries no risk even when the sub-deadband weight left a
	// residual allocation.
	units := make([]float64, n)
	for _, c := range instruments.Classes() {
		alloc := b.Allocation(c)
		if alloc.Direction == budget.Flat {
			continue
		}
		units[c] = alloc.RiskAllocation * e.dailyVol(c, market)
	}

	u := mat.NewVecDense(n, units)
	rho := correlationMatrix()

	// Portfolio variance: u' R u via the quadratic form.
	variance := mat.Inner(u, rho, u)
	if variance < 0 || math.IsNaN(variance) {
		// The static matrix is positive definite; a negative quadratic
		// form can only come from degenerate inputs.
		e.log.Warn().Float64("variance", variance).Msg("Non-positive portfolio variance, degrading to zero")
		variance = 0
	}
	sigma := math.Sqrt(variance)

	varDaily95 := sigma * zScore95
	varDaily99 := sigma * zScore99
	monthly := math.Sqrt(monthlyScalingDays)

	result := Result{
		VaRDaily95:   varDaily95,
		VaRDaily99:   varDaily99,
		VaRMonthly95: varDaily95 * monthly,
		VaRMonthly99: varDaily99 * monthly,
		Components:   e.decompose(units, rho, sigma, varDaily95),
		StressTests:  e.stressBattery(positions, b.AUM),
	}
	if b.AUM > 0 {
		result.VaRDaily95Pct = varDaily95 / b.AUM * 100
	}

	return result
}

// dailyVol returns the daily volatility assumption for a class. Live FX
// vol takes precedence over the static assumption when present.
func (e *Engine) dailyVol(c instruments.Class, market domain.MarketData) float64 {
	annual := annualVols[c]
	if c == instruments.ClassFX {
		if live := market.FXVolFraction(); live > 0 {
			annual = live
		}
	}
	return annual / math.Sqrt(budget.TradingDaysPerYear)
}

// decompose attributes the daily 95% VaR to instruments via marginal
// contributions: marginal_i = sum_j u_j rho_ij, component_i =
// u_i * marginal_i / sigma * z95.
//
// Reusing the 95% z-score inside the marginal formula is not a rigorous
// Euler derivation, but it is the established behavior of this model and
// is kept as-is; the components still sum to the daily 95% VaR.
func (e *Engine) decompose(units []float64, rho *mat.SymDense, sigma, varDaily95 float64) []Component {
	components := make([]Component, 0, instruments.NumClasses)

	var marginals mat.VecDense
	if sigma > 0 {
		u := mat.NewVecDense(len(units), units)
		marginals.MulVec(rho, u)
	}

	for _, c := range instruments.Classes() {
		comp := Component{Instrument: c.String()}
		if sigma > 0 {
			marginal := marginals.AtVec(int(c))
			comp.MarginalVaR = marginal / sigma * zScore95
			comp.Contribution = units[c] * marginal / sigma * zScore95
			if varDaily95 > 0 {
				comp.ContributionPct = comp.Contribution / varDaily95 * 100
			}
		}
		components = append(components, comp)
	}

	return components
}

// correlationMatrix materializes the static table as a gonum symmetric
// matrix.
func correlationMatrix() *mat.SymDense {
	n := instruments.NumClasses
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSym(i, j, correlations[i][j])
		}
	}
	return m
}
