package risk

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfontana/overlay/internal/domain"
	"github.com/mfontana/overlay/internal/modules/budget"
	"github.com/mfontana/overlay/internal/modules/instruments"
	"github.com/mfontana/overlay/internal/modules/sizing"
)

func testMarket() domain.MarketData {
	return domain.MarketData{
		SpotFX:             5.20,
		Yield1Y:            0.139,
		Yield5Y:            0.131,
		Yield10Y:           0.128,
		SovereignSpreadBps: 245,
		FXVol30DPct:        12.5,
	}
}

func testBook(t *testing.T) ([]sizing.Position, budget.Budget) {
	t.Helper()
	b := budget.Allocate(100_000_000, 0.10, map[instruments.Class]float64{
		instruments.ClassFX:     -0.15,
		instruments.ClassFront:  0.25,
		instruments.ClassBelly:  0.30,
		instruments.ClassLong:   -0.10,
		instruments.ClassHard:   0.12,
		instruments.ClassLinker: 0.08,
	}, nil)

	sizer := sizing.New(zerolog.Nop())
	ref := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	return sizer.SizePortfolio(b, testMarket(), instruments.TypeWDO, ref), b
}

func TestComputeVaR(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	positions, b := testBook(t)

	result := engine.Compute(positions, b, testMarket())

	assert.Positive(t, result.VaRDaily95)
	assert.Greater(t, result.VaRDaily99, result.VaRDaily95)

	// Monthly scales the daily number by sqrt(21).
	assert.InDelta(t, result.VaRDaily95*math.Sqrt(21), result.VaRMonthly95, 1e-9)
	assert.InDelta(t, result.VaRDaily99*math.Sqrt(21), result.VaRMonthly99, 1e-9)

	assert.InDelta(t, result.VaRDaily95/b.AUM*100, result.VaRDaily95Pct, 1e-12)

	// Diversification: the correlated portfolio VaR sits below the sum of
	// undiversified stand-alone VaRs.
	standalone := 0.0
	for _, c := range instruments.Classes() {
		alloc := b.Allocation(c)
		standalone += alloc.RiskAllocation * annualVols[c] / math.Sqrt(252) * zScore95
	}
	assert.Less(t, result.VaRDaily95, standalone)
}

func TestComputeVaRIgnoresFlatResidual(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	sizer := sizing.New(zerolog.Nop())
	ref := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	weights := map[instruments.Class]float64{
		instruments.ClassFX:    -0.15,
		instruments.ClassFront: 0.25,
	}
	base := budget.Allocate(100_000_000, 0.10, weights, nil)
	basePositions := sizer.SizePortfolio(base, testMarket(), instruments.TypeWDO, ref)
	baseResult := engine.Compute(basePositions, base, testMarket())

	// A sub-deadband weight sizes to flat but keeps its residual
	// allocation for reporting. Flat holds no risk.
	weights[instruments.ClassBelly] = 0.0009
	flat := budget.Allocate(100_000_000, 0.10, weights, nil)
	require.Equal(t, budget.Flat, flat.Allocation(instruments.ClassBelly).Direction)
	require.Positive(t, flat.Allocation(instruments.ClassBelly).RiskAllocation)

	flatPositions := sizer.SizePortfolio(flat, testMarket(), instruments.TypeWDO, ref)
	flatResult := engine.Compute(flatPositions, flat, testMarket())

	assert.InDelta(t, baseResult.VaRDaily95, flatResult.VaRDaily95, 1e-9)
	assert.InDelta(t, baseResult.VaRDaily99, flatResult.VaRDaily99, 1e-9)
	assert.Zero(t, flatResult.Components[instruments.ClassBelly].Contribution)
}

func TestComputeComponentsSumToVaR(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	positions, b := testBook(t)

	result := engine.Compute(positions, b, testMarket())
	require.Len(t, result.Components, instruments.NumClasses)

	sum := 0.0
	sumPct := 0.0
	for _, comp := range result.Components {
		sum += comp.Contribution
		sumPct += comp.ContributionPct
	}
	assert.InDelta(t, result.VaRDaily95, sum, result.VaRDaily95*0.01)
	assert.InDelta(t, 100.0, sumPct, 1.0)
}

func TestComputeEmptyBook(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	b := budget.Allocate(100_000_000, 0.10, nil, nil)

	result := engine.Compute(nil, b, testMarket())

	assert.Zero(t, result.VaRDaily95)
	assert.Zero(t, result.VaRDaily99)
	assert.Zero(t, result.VaRDaily95Pct)
	require.Len(t, result.Components, instruments.NumClasses)
	for _, comp := range result.Components {
		assert.Zero(t, comp.Contribution)
		assert.False(t, math.IsNaN(comp.ContributionPct))
	}
}

func TestComputeZeroAUM(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	b := budget.Allocate(0, 0.10, map[instruments.Class]float64{instruments.ClassFX: 0.5}, nil)

	result := engine.Compute(nil, b, testMarket())
	assert.Zero(t, result.VaRDaily95Pct)
	assert.False(t, math.IsNaN(result.VaRDaily95))
}

func TestStressBattery(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	positions, b := testBook(t)

	result := engine.Compute(positions, b, testMarket())
	require.Len(t, result.StressTests, len(stressScenarios))

	byName := make(map[string]StressResult, len(result.StressTests))
	for _, sr := range result.StressTests {
		byName[sr.Scenario] = sr
		assert.False(t, math.IsNaN(sr.PnL), sr.Scenario)
		assert.InDelta(t, sr.PnL/b.AUM*100, sr.PnLPct, 1e-9, sr.Scenario)
	}

	// The book is net long local rates and short USD, so the GFC vector
	// (rates up, BRL down) is a loss.
	gfc, ok := byName["2008 Global Financial Crisis"]
	require.True(t, ok)
	assert.Negative(t, gfc.PnL)
}

func TestStressSignConventions(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	receiver := []sizing.Position{{
		Class:       instruments.ClassFront,
		Instrument:  "front",
		Direction:   budget.Long,
		Contracts:   100,
		Sensitivity: sizing.Sensitivity{Kind: sizing.SensitivityDV01, Amount: 1_000},
	}}
	shortUSD := []sizing.Position{{
		Class:       instruments.ClassFX,
		Instrument:  "fx",
		Direction:   budget.Short,
		Contracts:   10,
		Sensitivity: sizing.Sensitivity{Kind: sizing.SensitivityFXDelta, Amount: -2_000_000},
	}}

	b := budget.Allocate(100_000_000, 0.10, nil, nil)

	rates := stressFor(t, engine.Compute(receiver, b, testMarket()), "Parallel Rates +200bp")
	// Receiver loses 1,000 per bp over a +200bp shock.
	assert.InDelta(t, -200_000, rates.PnL, 1e-6)

	brl := stressFor(t, engine.Compute(receiver, b, testMarket()), "BRL -15%")
	// A pure rates book is flat to the FX-only scenario.
	assert.Zero(t, brl.PnL)

	fx := stressFor(t, engine.Compute(shortUSD, b, testMarket()), "BRL -15%")
	// Short USD loses when the BRL depreciates.
	assert.InDelta(t, -300_000, fx.PnL, 1e-6)
}

func stressFor(t *testing.T, result Result, scenario string) StressResult {
	t.Helper()
	for _, sr := range result.StressTests {
		if sr.Scenario == scenario {
			return sr
		}
	}
	t.Fatalf("scenario %q not in battery", scenario)
	return StressResult{}
}
