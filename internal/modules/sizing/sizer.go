package sizing

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/domain"
	"github.com/mfontana/overlay/internal/modules/budget"
	"github.com/mfontana/overlay/internal/modules/instruments"
)

const (
	// fxVolFloor guards FX sizing against stale or missing vol inputs.
	fxVolFloor = 0.15
	// assumedBreakeven is the inflation breakeven subtracted from nominal
	// yield to size the inflation-linked proxy.
	assumedBreakeven = 0.055
	// minRealYield floors the real-yield denominator of the linker sizing
	// to avoid division blow-up near zero or negative real rates.
	minRealYield = 0.03
	// spreadLeverageCap bounds the DDI notional at this multiple of AUM.
	spreadLeverageCap = 2.0
)

// input carries everything one sizing strategy needs.
type input struct {
	alloc   budget.Allocation
	mapping instruments.Mapping
	spec    instruments.Spec
	market  domain.MarketData
	aum     float64
}

// strategy sizes one instrument class. Each strategy is pure; a
// non-positive or missing denominator degrades to zero contracts rather
// than erroring.
type strategy func(input) Position

// strategies keys each instrument class to its sizing rule. The array is
// indexed by the closed Class enum, so a new class fails to compile until
// a strategy is assigned.
var strategies = [instruments.NumClasses]strategy{
	instruments.ClassFX:     sizeFX,
	instruments.ClassFront:  sizeRateFuture,
	instruments.ClassBelly:  sizeRateFuture,
	instruments.ClassLong:   sizeRateFuture,
	instruments.ClassHard:   sizeCurrencyCoupon,
	instruments.ClassLinker: sizeInflationLinked,
}

// Sizer converts a risk budget plus market data into discretized positions.
type Sizer struct {
	log zerolog.Logger
}

// New creates a new contract sizer.
func New(log zerolog.Logger) *Sizer {
	return &Sizer{log: log.With().Str("component", "sizer").Logger()}
}

// SizePortfolio sizes every instrument class of the budget. All classes
// appear in the output; flat classes carry zero contracts.
func (s *Sizer) SizePortfolio(
	b budget.Budget,
	market domain.MarketData,
	fxPreference instruments.ContractType,
	ref time.Time,
) []Position {
	positions := make([]Position, 0, instruments.NumClasses)

	for _, c := range instruments.Classes() {
		alloc := b.Allocation(c)
		mapping := instruments.Map(c, fxPreference, ref)
		spec := instruments.MustLookup(mapping.Type)

		pos := sizeOne(input{
			alloc:   alloc,
			mapping: mapping,
			spec:    spec,
			market:  market,
			aum:     b.AUM,
		})

		if pos.Contracts == 0 && alloc.Direction != budget.Flat {
			s.log.Debug().
				Str("instrument", c.String()).
				Float64("risk_allocation", alloc.RiskAllocation).
				Msg("Sized to zero contracts")
		}
		positions = append(positions, pos)
	}

	return positions
}

// sizeOne applies the class strategy and the shared discretization and
// margin rules.
func sizeOne(in input) Position {
	if in.alloc.Direction == budget.Flat || in.alloc.RiskAllocation <= 0 {
		return emptyPosition(in)
	}

	pos := strategies[in.alloc.Class](in)

	// Shared discretization: the rounded count is non-negative, the sign
	// lives in the direction.
	pos.Contracts = int(math.Round(math.Abs(pos.ContractsExact)))
	pos.Margin = marginFor(pos.Contracts, in.spec, in.market.SpotFX)
	return pos
}

// emptyPosition is the degraded zero-contract position for a class.
func emptyPosition(in input) Position {
	return Position{
		Class:          in.alloc.Class,
		Instrument:     in.alloc.Instrument,
		Ticker:         in.mapping.Ticker,
		ContractType:   in.mapping.Type,
		Direction:      in.alloc.Direction,
		RiskAllocation: in.alloc.RiskAllocation,
		Sensitivity:    Sensitivity{Kind: sensitivityKindFor(in.alloc.Class)},
	}
}

// sensitivityKindFor returns the single sensitivity kind of a class.
func sensitivityKindFor(c instruments.Class) SensitivityKind {
	switch c {
	case instruments.ClassFX:
		return SensitivityFXDelta
	case instruments.ClassHard:
		return SensitivitySpreadDV01
	}
	return SensitivityDV01
}

// marginFor computes the exchange margin for a rounded contract count.
// USD-unit contracts convert size through spot.
func marginFor(contracts int, spec instruments.Spec, spot float64) float64 {
	unitValue := spec.ContractSize
	if spec.Unit == instruments.UnitUSD {
		if spot <= 0 {
			return 0
		}
		unitValue *= spot
	}
	return float64(contracts) * unitValue * spec.MarginPct
}

// sizeFX sizes the spot-driven FX future. The local notional consumes the
// risk allocation at the (floored) FX vol; the signed FX delta follows the
// short-the-USD convention.
func sizeFX(in input) Position {
	spot := in.market.SpotFX
	if spot <= 0 {
		return emptyPosition(in)
	}

	vol := math.Max(in.market.FXVolFraction(), fxVolFloor)

	notionalLocal := in.alloc.RiskAllocation / vol
	notionalForeign := notionalLocal / spot
	contractsExact := notionalForeign / in.spec.ContractSize

	return Position{
		Class:           in.alloc.Class,
		Instrument:      in.alloc.Instrument,
		Ticker:          in.mapping.Ticker,
		ContractType:    in.mapping.Type,
		Direction:       in.alloc.Direction,
		RiskAllocation:  in.alloc.RiskAllocation,
		NotionalLocal:   notionalLocal,
		NotionalForeign: notionalForeign,
		ContractsExact:  contractsExact,
		Sensitivity: Sensitivity{
			Kind:   SensitivityFXDelta,
			Amount: notionalLocal * in.alloc.Direction.Sign(),
		},
		EntryPrice: spot,
	}
}

// sizeRateFuture sizes a DI-style rate future off the tenor bucket's
// assumed duration. The unit price discounts the face value at the par
// yield over the duration.
func sizeRateFuture(in input) Position {
	yield := in.market.YieldForTenor(in.mapping.TenorYears)
	return sizeDiscountedRate(in, yield)
}

// sizeInflationLinked is the rate-future sizing shape driven by a real
// yield proxy (nominal minus assumed breakeven), floored to keep the
// denominator away from zero.
func sizeInflationLinked(in input) Position {
	nominal := in.market.YieldForTenor(in.mapping.TenorYears)
	if nominal <= 0 {
		return emptyPosition(in)
	}
	real := math.Max(nominal-assumedBreakeven, minRealYield)
	return sizeDiscountedRate(in, real)
}

// sizeDiscountedRate is the shared rate/linker sizing rule.
func sizeDiscountedRate(in input, yield float64) Position {
	duration := in.mapping.Duration
	if yield <= 0 || duration <= 0 {
		return emptyPosition(in)
	}

	unitPrice := in.spec.ContractSize / math.Pow(1+yield, duration)
	dv01PerContract := unitPrice * duration / 10_000
	dv01Target := in.alloc.RiskAllocation / (yield * duration * 10_000)
	contractsExact := dv01Target / dv01PerContract

	return Position{
		Class:          in.alloc.Class,
		Instrument:     in.alloc.Instrument,
		Ticker:         in.mapping.Ticker,
		ContractType:   in.mapping.Type,
		Direction:      in.alloc.Direction,
		RiskAllocation: in.alloc.RiskAllocation,
		NotionalLocal:  contractsExact * unitPrice,
		ContractsExact: contractsExact,
		Sensitivity: Sensitivity{
			Kind:   SensitivityDV01,
			Amount: dv01Target * in.alloc.Direction.Sign(),
		},
		EntryPrice: unitPrice,
	}
}

// sizeCurrencyCoupon sizes the DDI sovereign-spread proxy off a spread
// DV01 and hard-caps the USD notional at spreadLeverageCap times AUM,
// clipping while preserving sign.
func sizeCurrencyCoupon(in input) Position {
	spot := in.market.SpotFX
	spreadBps := in.market.SovereignSpreadBps
	duration := in.mapping.Duration
	if spot <= 0 || spreadBps <= 0 || duration <= 0 {
		return emptyPosition(in)
	}

	spreadDv01Target := in.alloc.RiskAllocation / (spot * spreadBps)
	dv01PerContract := in.spec.ContractSize * duration / 10_000
	contractsExact := spreadDv01Target / dv01PerContract

	// Leverage ceiling specific to the spread-sized class
	maxContracts := spreadLeverageCap * in.aum / (in.spec.ContractSize * spot)
	if math.Abs(contractsExact) > maxContracts {
		contractsExact = math.Copysign(maxContracts, contractsExact)
		spreadDv01Target = contractsExact * dv01PerContract
	}

	notionalForeign := contractsExact * in.spec.ContractSize

	return Position{
		Class:           in.alloc.Class,
		Instrument:      in.alloc.Instrument,
		Ticker:          in.mapping.Ticker,
		ContractType:    in.mapping.Type,
		Direction:       in.alloc.Direction,
		RiskAllocation:  in.alloc.RiskAllocation,
		NotionalLocal:   notionalForeign * spot,
		NotionalForeign: notionalForeign,
		ContractsExact:  contractsExact,
		Sensitivity: Sensitivity{
			Kind:   SensitivitySpreadDV01,
			Amount: spreadDv01Target * in.alloc.Direction.Sign(),
		},
		EntryPrice: spot,
	}
}
