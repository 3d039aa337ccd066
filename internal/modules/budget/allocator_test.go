package budget

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mfontana/overlay/internal/modules/instruments"
)

func TestAllocate(t *testing.T) {
	weights := map[instruments.Class]float64{
		instruments.ClassFX:     -0.15,
		instruments.ClassFront:  0.25,
		instruments.ClassBelly:  0.30,
		instruments.ClassLong:   -0.10,
		instruments.ClassHard:   0.12,
		instruments.ClassLinker: 0.08,
	}

	b := Allocate(100_000_000, 0.10, weights, nil)

	assert.Equal(t, 10_000_000.0, b.RiskBudget)
	assert.InDelta(t, 10_000_000/math.Sqrt(252), b.RiskBudgetDaily, 1e-9)
	assert.InDelta(t, 1.00, b.GrossLeverage, 1e-12)

	// Risk allocations split the budget in proportion to |weight|.
	sumAlloc := 0.0
	sumPct := 0.0
	for _, a := range b.Allocations {
		sumAlloc += a.RiskAllocation
		sumPct += a.RiskAllocationPct
		assert.GreaterOrEqual(t, a.RiskAllocation, 0.0)
	}
	assert.InDelta(t, b.RiskBudget*b.GrossLeverage, sumAlloc, 1e-6)
	assert.InDelta(t, 100.0, sumPct, 1e-9)

	fx := b.Allocation(instruments.ClassFX)
	assert.Equal(t, Short, fx.Direction)
	assert.InDelta(t, 1_500_000.0, fx.RiskAllocation, 1e-6)

	front := b.Allocation(instruments.ClassFront)
	assert.Equal(t, Long, front.Direction)
}

func TestAllocateDeadband(t *testing.T) {
	weights := map[instruments.Class]float64{
		instruments.ClassFX:    0.0005,
		instruments.ClassFront: -0.0009,
		instruments.ClassBelly: 0.0011,
	}
	b := Allocate(50_000_000, 0.08, weights, nil)

	assert.Equal(t, Flat, b.Allocation(instruments.ClassFX).Direction)
	assert.Equal(t, Flat, b.Allocation(instruments.ClassFront).Direction)
	assert.Equal(t, Long, b.Allocation(instruments.ClassBelly).Direction)
}

func TestAllocateMissingClassesAreFlat(t *testing.T) {
	b := Allocate(10_000_000, 0.10, map[instruments.Class]float64{
		instruments.ClassBelly: 0.5,
	}, nil)

	assert.Len(t, b.Allocations, instruments.NumClasses)
	for _, c := range instruments.Classes() {
		a := b.Allocation(c)
		if c == instruments.ClassBelly {
			assert.Equal(t, Long, a.Direction)
			continue
		}
		assert.Equal(t, Flat, a.Direction, "class %s", c)
		assert.Zero(t, a.RiskAllocation)
	}
}

func TestAllocateZeroAUM(t *testing.T) {
	b := Allocate(0, 0.10, map[instruments.Class]float64{instruments.ClassFX: -0.2}, nil)

	assert.Zero(t, b.RiskBudget)
	assert.Zero(t, b.RiskBudgetDaily)
	for _, a := range b.Allocations {
		assert.Zero(t, a.RiskAllocation)
		assert.False(t, math.IsNaN(a.RiskAllocationPct))
	}
}

func TestAllocateExpectedReturnsPassThrough(t *testing.T) {
	b := Allocate(1_000_000, 0.10,
		map[instruments.Class]float64{instruments.ClassLong: -0.3},
		map[instruments.Class]float64{instruments.ClassLong: 0.045},
	)
	assert.Equal(t, 0.045, b.Allocation(instruments.ClassLong).ExpectedReturn)
}

func TestDirectionSign(t *testing.T) {
	tests := []struct {
		direction Direction
		want      float64
	}{
		{Long, 1},
		{Short, -1},
		{Flat, 0},
	}
	for _, tt := range tests {
		if got := tt.direction.Sign(); got != tt.want {
			t.Errorf("%s.Sign() = %v, want %v", tt.direction, got, tt.want)
		}
	}
}
