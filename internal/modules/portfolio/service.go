package portfolio

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/modules/budget"
	"github.com/mfontana/overlay/internal/modules/exposure"
	"github.com/mfontana/overlay/internal/modules/instruments"
	"github.com/mfontana/overlay/internal/modules/rebalancing"
	"github.com/mfontana/overlay/internal/modules/risk"
	"github.com/mfontana/overlay/internal/modules/sizing"
)

// Service orchestrates one full portfolio computation. It is stateless:
// every call builds a fresh result from its inputs, so concurrent calls
// need no synchronization.
type Service struct {
	sizer  *sizing.Sizer
	engine *risk.Engine
	log    zerolog.Logger
}

// NewService creates a new portfolio orchestrator.
func NewService(sizer *sizing.Sizer, engine *risk.Engine, log zerolog.Logger) *Service {
	return &Service{
		sizer:  sizer,
		engine: engine,
		log:    log.With().Str("service", "portfolio").Logger(),
	}
}

// Compute runs risk budgeting, contract sizing, VaR, exposure analytics
// and rebalancing-plan generation end to end.
func (s *Service) Compute(req Request) *Result {
	ref := req.ReferenceDate
	if ref.IsZero() {
		ref = time.Now()
	}

	weights := s.effectiveWeights(req)

	b := budget.Allocate(req.AUM, req.VolTarget, weights, req.ExpectedReturns)
	positions := s.sizer.SizePortfolio(b, req.Market, req.FXPreference, ref)
	riskResult := s.engine.Compute(positions, b, req.Market)
	analytics := exposure.Analyze(positions, b)
	plan := rebalancing.BuildPlan(req.Current, positions, req.AUM, req.Market)

	result := &Result{
		GeneratedAt: ref,
		Config: ConfigEcho{
			ConfigID:         req.ConfigID,
			AUM:              req.AUM,
			VolTarget:        req.VolTarget,
			FXPreference:     req.FXPreference,
			MaxDrawdownPct:   req.MaxDrawdownPct,
			MaxGrossLeverage: req.MaxGrossLeverage,
		},
		Budget:    b,
		Positions: positions,
		Risk:      riskResult,
		Exposure:  analytics,
		Plan:      plan,
	}
	result.Narrative = buildNarrative(result, req.Meta)

	s.log.Info().
		Float64("risk_budget", b.RiskBudget).
		Float64("var_daily_95", riskResult.VaRDaily95).
		Int("trades", len(plan.Trades)).
		Msg("Portfolio computed")

	return result
}

// effectiveWeights applies the per-class enable flags: a disabled class
// is forced to zero weight (flat) before allocation.
func (s *Service) effectiveWeights(req Request) map[instruments.Class]float64 {
	if req.Enabled == nil {
		return req.Weights
	}

	weights := make(map[instruments.Class]float64, len(req.Weights))
	for c, w := range req.Weights {
		if enabled, ok := req.Enabled[c]; ok && !enabled {
			continue
		}
		weights[c] = w
	}
	return weights
}
