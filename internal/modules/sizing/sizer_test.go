package sizing

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
)

var sizingRef = time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

func testMarket() domain.MarketData {
	return domain.MarketData{
		SpotFX:             5.20,
		Yield1Y:            0.139,
		Yield5Y:            0.131,
		Yield10Y:           0.128,
		SovereignSpreadBps: 245,
		FXVol30DPct:        12.5,
		OvernightDaily:     0.0005,
	}
}

func positionFor(t *testing.T, positions []Position, c instruments.Class) Position {
	t.Helper()
	for _, pos := range positions {
		if pos.Class == c {
			return pos
		}
	}
	t.Fatalf("no position for class %s", c)
	return Position{}
}

func TestSizePortfolioCoversAllClasses(t *testing.T) {
	sizer := New(zerolog.Nop())
	b := budget.Allocate(100_000_000, 0.10, map[instruments.Class]float64{
		instruments.ClassBelly: 0.3,
	}, nil)

	positions := sizer.SizePortfolio(b, testMarket(), instruments.TypeWDO, sizingRef)
	require.Len(t, positions, instruments.NumClasses)

	for _, pos := range positions {
		if pos.Class == instruments.ClassBelly {
			assert.Greater(t, pos.Contracts, 0)
			continue
		}
		assert.Zero(t, pos.Contracts, "class %s", pos.Class)
		assert.Zero(t, pos.Margin, "class %s", pos.Class)
		assert.NotEmpty(t, pos.Sensitivity.Kind, "class %s", pos.Class)
	}
}

func TestSizeFX(t *testing.T) {
	sizer := New(zerolog.Nop())
	// 100M AUM at 10% vol target, 2.4% short fx weight: 240k risk allocation.
	b := budget.Allocate(100_000_000, 0.10, map[instruments.Class]float64{
		instruments.ClassFX: -0.024,
	}, nil)

	positions := sizer.SizePortfolio(b, testMarket(), instruments.TypeWDO, sizingRef)
	fx := positionFor(t, positions, instruments.ClassFX)

	// The 12.5% live vol is below the floor, so sizing uses 15%:
	// 240k / 0.15 = 1.6M local notional.
	assert.InDelta(t, 1_600_000, fx.NotionalLocal, 1e-6)
	assert.InDelta(t, 1_600_000/5.20, fx.NotionalForeign, 1e-6)
	assert.Equal(t, 31, fx.Contracts) // 307,692 USD / 10,000 per mini
	assert.Equal(t, budget.Short, fx.Direction)
	assert.Equal(t, -31, fx.SignedContracts())

	// Short the USD leg: negative signed fx delta.
	assert.Equal(t, SensitivityFXDelta, fx.Sensitivity.Kind)
	assert.InDelta(t, -1_600_000, fx.Sensitivity.Amount, 1e-6)

	// USD-unit margin converts through spot.
	assert.InDelta(t, 31*10_000*5.20*0.07, fx.Margin, 1e-6)
	assert.Equal(t, 5.20, fx.EntryPrice)
}

func TestSizeFXUsesLiveVolAboveFloor(t *testing.T) {
	sizer := New(zerolog.Nop())
	b := budget.Allocate(100_000_000, 0.10, map[instruments.Class]float64{
		instruments.ClassFX: 0.024,
	}, nil)

	market := testMarket()
	market.FXVol30DPct = 20 // above the 15% floor

	positions := sizer.SizePortfolio(b, market, instruments.TypeWDO, sizingRef)
	fx := positionFor(t, positions, instruments.ClassFX)
	assert.InDelta(t, 240_000/0.20, fx.NotionalLocal, 1e-6)
}

func TestSizeRateFuture(t *testing.T) {
	sizer := New(zerolog.Nop())
	b := budget.Allocate(100_000_000, 0.10, map[instruments.Class]float64{
		instruments.ClassFront: 0.25,
	}, nil)

	positions := sizer.SizePortfolio(b, testMarket(), instruments.TypeWDO, sizingRef)
	front := positionFor(t, positions, instruments.ClassFront)

	require.Greater(t, front.Contracts, 0)
	assert.Equal(t, instruments.TypeDI1, front.ContractType)
	assert.Equal(t, front.Contracts, int(math.Round(math.Abs(front.ContractsExact))))

	// Long rates: positive signed DV01.
	assert.Equal(t, SensitivityDV01, front.Sensitivity.Kind)
	assert.Positive(t, front.Sensitivity.Amount)

	// Unit price is the discounted face value, so below face.
	assert.Less(t, front.EntryPrice, 100_000.0)
	assert.Positive(t, front.EntryPrice)

	// Price-unit margin does not convert through spot.
	assert.InDelta(t, float64(front.Contracts)*100_000*0.04, front.Margin, 1e-6)
}

func TestSizeCurrencyCouponLeverageCap(t *testing.T) {
	sizer := New(zerolog.Nop())
	// 20M risk allocation against a thin 100bp spread blows past the cap.
	b := budget.Allocate(100_000_000, 0.20, map[instruments.Class]float64{
		instruments.ClassHard: 1.0,
	}, nil)

	market := testMarket()
	market.SpotFX = 5.0
	market.SovereignSpreadBps = 100

	positions := sizer.SizePortfolio(b, market, instruments.TypeWDO, sizingRef)
	hard := positionFor(t, positions, instruments.ClassHard)

	// Cap: 2 x 100M / (50,000 x 5.0) = 800 contracts.
	assert.InDelta(t, 800, hard.ContractsExact, 1e-9)
	assert.Equal(t, 800, hard.Contracts)
	assert.InDelta(t, 800*50_000, hard.NotionalForeign, 1e-6)
	assert.InDelta(t, 2*100_000_000.0, hard.NotionalLocal, 1e-3)

	// The spread DV01 is re-derived from the clipped count.
	assert.Equal(t, SensitivitySpreadDV01, hard.Sensitivity.Kind)
	assert.InDelta(t, 800*50_000*4.2/10_000, hard.Sensitivity.Amount, 1e-6)
}

func TestSizeInflationLinkedRealYieldFloor(t *testing.T) {
	sizer := New(zerolog.Nop())
	b := budget.Allocate(100_000_000, 0.10, map[instruments.Class]float64{
		instruments.ClassLinker: 0.2,
	}, nil)

	// Both nominal yields leave the real yield at the 3% floor
	// (0.060 - 0.055 and 0.085 - 0.055 both floor), so the sizing is
	// identical despite the different nominals.
	lowNominal := testMarket()
	lowNominal.Yield10Y = 0.060
	atFloor := testMarket()
	atFloor.Yield10Y = 0.085

	low := positionFor(t, sizer.SizePortfolio(b, lowNominal, instruments.TypeWDO, sizingRef), instruments.ClassLinker)
	floor := positionFor(t, sizer.SizePortfolio(b, atFloor, instruments.TypeWDO, sizingRef), instruments.ClassLinker)
	require.Greater(t, low.Contracts, 0)
	assert.InDelta(t, low.ContractsExact, floor.ContractsExact, 1e-9)

	// Above the floor the real yield moves the sizing.
	high := testMarket()
	high.Yield10Y = 0.128 // real 7.3%
	unfloored := positionFor(t, sizer.SizePortfolio(b, high, instruments.TypeWDO, sizingRef), instruments.ClassLinker)
	assert.NotEqual(t, low.Contracts, unfloored.Contracts)
}

func TestSizeDegradedMarketYieldsZeroContracts(t *testing.T) {
	sizer := New(zerolog.Nop())
	b := budget.Allocate(100_000_000, 0.10, map[instruments.Class]float64{
		instruments.ClassFX:     -0.2,
		instruments.ClassFront:  0.2,
		instruments.ClassBelly:  0.2,
		instruments.ClassLong:   0.2,
		instruments.ClassHard:   0.1,
		instruments.ClassLinker: 0.1,
	}, nil)

	positions := sizer.SizePortfolio(b, domain.MarketData{}, instruments.TypeWDO, sizingRef)
	for _, pos := range positions {
		assert.Zero(t, pos.Contracts, "class %s", pos.Class)
		assert.False(t, math.IsNaN(pos.ContractsExact), "class %s", pos.Class)
		assert.False(t, math.IsInf(pos.ContractsExact, 0), "class %s", pos.Class)
		assert.False(t, math.IsNaN(pos.Sensitivity.Amount), "class %s", pos.Class)
	}
}

func TestSizingScalesLinearlyWithAUM(t *testing.T) {
	sizer := New(zerolog.Nop())
	weights := map[instruments.Class]float64{
		instruments.ClassFX:     -0.10,
		instruments.ClassBelly:  0.25,
		instruments.ClassLinker: 0.10,
	}

	small := sizer.SizePortfolio(budget.Allocate(50_000_000, 0.10, weights, nil), testMarket(), instruments.TypeWDO, sizingRef)
	large := sizer.SizePortfolio(budget.Allocate(100_000_000, 0.10, weights, nil), testMarket(), instruments.TypeWDO, sizingRef)

	for _, c := range []instruments.Class{instruments.ClassFX, instruments.ClassBelly, instruments.ClassLinker} {
		s := positionFor(t, small, c)
		l := positionFor(t, large, c)
		require.Positive(t, s.ContractsExact)
		assert.InDelta(t, 2.0, l.ContractsExact/s.ContractsExact, 1e-9, "class %s", c)
	}
}

func TestPositionActive(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"held long", Position{Contracts: 5, Direction: budget.Long}, true},
		{"zero contracts", Position{Contracts: 0, Direction: budget.Long}, false},
		{"flat", Position{Contracts: 5, Direction: budget.Flat}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.Active(); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}
