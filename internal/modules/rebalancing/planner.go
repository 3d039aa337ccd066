// Package rebalancing diffs current against target sized positions into
// an executable trade list with cost and turnover estimates.
package rebalancing

import (
	"fmt"
	"math"

	"github.com/mfontana/overlay/internal/domain"
	"github.com/mfontana/overlay/internal/modules/instruments"
	"github.com/mfontana/overlay/internal/modules/sizing"
)

// Action is the trade action for one instrument.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// transactionCostBps holds assumed one-way transaction costs in basis
// points of traded notional per contract type. Immutable static
// configuration.
var transactionCostBps = map[instruments.ContractType]float64{
	instruments.TypeDOL:  1.2,
	instruments.TypeWDO:  2.0,
	instruments.TypeDI1:  0.8,
	instruments.TypeFRC:  1.0,
	instruments.TypeDDI:  1.5,
	instruments.TypeNTNB: 3.0,
}

// Trade is one rebalancing order.
type Trade struct {
	Instrument       string                   `json:"instrument"`
	Ticker           string                   `json:"ticker"`
	ContractType     instruments.ContractType `json:"contract_type"`
	Action           Action                   `json:"action"`
	ContractsDelta   int                      `json:"contracts_delta"` // Signed
	NotionalDelta    float64                  `json:"notional_delta"`  // Absolute traded notional
	EstimatedCost    float64                  `json:"estimated_cost"`
	CurrentContracts int                      `json:"current_contracts"` // Signed
	TargetContracts  int                      `json:"target_contracts"`  // Signed
	Reason           string                   `json:"reason"`
}

// Plan is the aggregate rebalancing plan.
type Plan struct {
	Trades           []Trade `json:"trades"`
	EstimatedCost    float64 `json:"estimated_cost"`
	EstimatedCostBps float64 `json:"estimated_cost_bps"`
	TurnoverPct      float64 `json:"turnover_pct"`
	Summary          string  `json:"summary"`
}

// BuildPlan diffs the current book against the target book. The current
// book may be empty (initial allocation). Identical books produce an
// all-HOLD plan with zero cost.
func BuildPlan(current, target []sizing.Position, aum float64, market domain.MarketData) Plan {
	currentByClass := make(map[instruments.Class]sizing.Position, len(current))
	for _, pos := range current {
		currentByClass[pos.Class] = pos
	}

	plan := Plan{Trades: make([]Trade, 0, len(target))}
	totalNotionalTraded := 0.0
	nonHold := 0

	for _, targetPos := range target {
		currentSigned := 0
		if pos, ok := currentByClass[targetPos.Class]; ok {
			currentSigned = pos.SignedContracts()
		}
		targetSigned := targetPos.SignedContracts()
		delta := targetSigned - currentSigned

		trade := Trade{
			Instrument:       targetPos.Instrument,
			Ticker:           targetPos.Ticker,
			ContractType:     targetPos.ContractType,
			ContractsDelta:   delta,
			CurrentContracts: currentSigned,
			TargetContracts:  targetSigned,
		}

		if delta == 0 {
			trade.Action = Hold
			trade.Reason = "position at target"
			plan.Trades = append(plan.Trades, trade)
			continue
		}

		if delta > 0 {
			trade.Action = Buy
		} else {
			trade.Action = Sell
		}
		trade.Reason = fmt.Sprintf("move %d -> %d contracts", currentSigned, targetSigned)

		spec := instruments.MustLookup(targetPos.ContractType)
		unitValue := spec.ContractSize
		if spec.Unit == instruments.UnitUSD {
			unitValue *= market.SpotFX
		}
		trade.NotionalDelta = math.Abs(float64(delta)) * unitValue
		trade.EstimatedCost = trade.NotionalDelta * transactionCostBps[targetPos.ContractType] / 10_000

		totalNotionalTraded += trade.NotionalDelta
		plan.EstimatedCost += trade.EstimatedCost
		nonHold++
		plan.Trades = append(plan.Trades, trade)
	}

	if aum > 0 {
		plan.TurnoverPct = totalNotionalTraded / aum * 100
		plan.EstimatedCostBps = plan.EstimatedCost / aum * 10_000
	}

	if nonHold == 0 {
		plan.Summary = "Book at target, no trades required"
	} else {
		plan.Summary = fmt.Sprintf(
			"%d trade(s), %.1f%% turnover, estimated cost %.0f (%.2f bps of AUM)",
			nonHold, plan.TurnoverPct, plan.EstimatedCost, plan.EstimatedCostBps,
		)
	}

	return plan
}
