// Package portfolio composes the risk budgeting, sizing, risk, exposure
// and rebalancing modules into one immutable portfolio result.
package portfolio

import (
	"time"

	"github.com/mfontana/overlay/internal/domain"
	"github.com/mfontana/overlay/internal/modules/budget"
	"github.com/mfontana/overlay/internal/modules/exposure"
	"github.com/mfontana/overlay/internal/modules/instruments"
	"github.com/mfontana/overlay/internal/modules/rebalancing"
	"github.com/mfontana/overlay/internal/modules/risk"
	"github.com/mfontana/overlay/internal/modules/sizing"
)

// ModelMeta carries opaque scalar metadata from the upstream macro model,
// used only for narrative generation. The engine never computes these.
type ModelMeta struct {
	RegimeLabel       string  `json:"regime_label"`
	CompositeScore    float64 `json:"composite_score"`
	PolicyRateGap     float64 `json:"policy_rate_gap"`      // Percentage points vs equilibrium
	FXMisalignmentPct float64 `json:"fx_misalignment_pct"`  // Positive = BRL undervalued
}

// Request is the full input of one orchestration call. All fields are
// treated as immutable.
type Request struct {
	ConfigID         string
	AUM              float64
	VolTarget        float64
	FXPreference     instruments.ContractType
	Weights          map[instruments.Class]float64
	ExpectedReturns  map[instruments.Class]float64
	Enabled          map[instruments.Class]bool // nil enables every class
	MaxDrawdownPct   float64
	MaxGrossLeverage float64
	Market           domain.MarketData
	Current          []sizing.Position // Optional previous book for the rebalancing diff
	Meta             *ModelMeta        // Optional narrative metadata
	ReferenceDate    time.Time         // Zero value means "now"
}

// ConfigEcho is the configuration part echoed back in the result.
type ConfigEcho struct {
	ConfigID         string                   `json:"config_id"`
	AUM              float64                  `json:"aum"`
	VolTarget        float64                  `json:"vol_target"`
	FXPreference     instruments.ContractType `json:"fx_preference"`
	MaxDrawdownPct   float64                  `json:"max_drawdown_pct"`
	MaxGrossLeverage float64                  `json:"max_gross_leverage"`
}

// Result is the immutable output of one orchestration call. It is the
// unit a caller persists as a snapshot and diffs against on the next
// cycle.
type Result struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Config      ConfigEcho         `json:"config"`
	Budget      budget.Budget      `json:"budget"`
	Positions   []sizing.Position  `json:"positions"`
	Risk        risk.Result        `json:"risk"`
	Exposure    exposure.Analytics `json:"exposure"`
	Plan        rebalancing.Plan   `json:"plan"`
	Narrative   string             `json:"narrative"`
}
