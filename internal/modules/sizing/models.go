// Package sizing discretizes per-instrument risk allocations into
// exchange-traded futures positions.
package sizing

import (
	"github.com/mfontana/overlay/internal/modules/budget"
	"github.com/mfontana/overlay/internal/modules/instruments"
)

// SensitivityKind tags which sensitivity a position carries. Exactly one
// kind applies per instrument class.
type SensitivityKind string

const (
	SensitivityFXDelta    SensitivityKind = "fx_delta"
	SensitivityDV01       SensitivityKind = "dv01"
	SensitivitySpreadDV01 SensitivityKind = "spread_dv01"
)

// Sensitivity is a tagged sensitivity value. Amount is signed with the
// position direction: a short-USD FX position carries a negative FX
// delta, a payer rate position a negative DV01.
type Sensitivity struct {
	Kind   SensitivityKind `json:"kind"`
	Amount float64         `json:"amount"`
}

// Position is one discretized futures position. The contract count is a
// non-negative integer; the exposure sign is carried by Direction, never
// by a negative count.
type Position struct {
	Class           instruments.Class        `json:"-"`
	Instrument      string                   `json:"instrument"`
	Ticker          string                   `json:"ticker"`
	ContractType    instruments.ContractType `json:"contract_type"`
	Direction       budget.Direction         `json:"direction"`
	RiskAllocation  float64                  `json:"risk_allocation"`
	NotionalLocal   float64                  `json:"notional_local"`   // BRL
	NotionalForeign float64                  `json:"notional_foreign"` // USD, zero for BRL-unit contracts
	ContractsExact  float64                  `json:"contracts_exact"`
	Contracts       int                      `json:"contracts"`
	Sensitivity     Sensitivity              `json:"sensitivity"`
	Margin          float64                  `json:"margin"`
	EntryPrice      float64                  `json:"entry_price"`
}

// SignedContracts returns the direction-signed contract count.
func (p Position) SignedContracts() int {
	return int(p.Direction.Sign()) * p.Contracts
}

// Active reports whether the position holds any contracts.
func (p Position) Active() bool {
	return p.Contracts > 0 && p.Direction != budget.Flat
}
