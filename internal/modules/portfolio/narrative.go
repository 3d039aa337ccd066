package portfolio

import (
	"fmt"
	"strings"

	"github.com/mfontana/overlay/internal/modules/rebalancing"
)

// buildNarrative renders the deterministic natural-language summary of a
// result. It uses only the numeric outputs plus the opaque model
// metadata, so identical inputs always produce identical text.
func buildNarrative(r *Result, meta *ModelMeta) string {
	var sb strings.Builder

	// Macro stance
	if meta != nil && meta.RegimeLabel != "" {
		fmt.Fprintf(&sb, "Macro regime: %s (composite score %.2f). ", meta.RegimeLabel, meta.CompositeScore)
		if meta.PolicyRateGap != 0 {
			fmt.Fprintf(&sb, "Policy rate sits %.1fpp %s the model equilibrium. ",
				abs(meta.PolicyRateGap), aboveBelow(meta.PolicyRateGap))
		}
		if meta.FXMisalignmentPct != 0 {
			fmt.Fprintf(&sb, "The model sees the BRL %.1f%% %s fair value. ",
				abs(meta.FXMisalignmentPct), cheapRich(meta.FXMisalignmentPct))
		}
	}
	fmt.Fprintf(&sb, "Risk budget %.1fmm at %.0f%% annual vol target, gross leverage %.2fx.\n",
		r.Budget.RiskBudget/1e6, r.Budget.VolTargetAnnual*100, r.Budget.GrossLeverage)

	// Per-instrument rationale
	for _, pos := range r.Positions {
		if !pos.Active() {
			continue
		}
		fmt.Fprintf(&sb, "- %s %s: %d %s contracts, %.1fmm risk allocation.\n",
			strings.ToUpper(string(pos.Direction)), pos.Instrument,
			pos.Contracts, pos.Ticker, pos.RiskAllocation/1e6)
	}

	// Risk flags
	flags := riskFlags(r)
	if len(flags) > 0 {
		sb.WriteString("Risk flags: " + strings.Join(flags, "; ") + ".\n")
	}

	// Action items
	actions := 0
	for _, trade := range r.Plan.Trades {
		if trade.Action != rebalancing.Hold {
			actions++
		}
	}
	if actions == 0 {
		sb.WriteString("No rebalancing required.")
	} else {
		fmt.Fprintf(&sb, "Action: execute %d trade(s), estimated cost %.2f bps of AUM.", actions, r.Plan.EstimatedCostBps)
	}

	return sb.String()
}

// riskFlags lists threshold breaches worth surfacing in the narrative.
// These are display hints only; alerting proper is handled by the alerts
// module against caller-supplied thresholds.
func riskFlags(r *Result) []string {
	var flags []string

	if r.Risk.VaRDaily95Pct > 1.0 {
		flags = append(flags, fmt.Sprintf("daily 95%% VaR at %.2f%% of AUM", r.Risk.VaRDaily95Pct))
	}
	if r.Config.MaxGrossLeverage > 0 && r.Exposure.GrossLeverage > r.Config.MaxGrossLeverage {
		flags = append(flags, fmt.Sprintf("gross leverage %.2fx exceeds limit %.2fx",
			r.Exposure.GrossLeverage, r.Config.MaxGrossLeverage))
	}
	if r.Exposure.MarginUtilization > 50 {
		flags = append(flags, fmt.Sprintf("margin utilization %.1f%%", r.Exposure.MarginUtilization))
	}
	if r.Exposure.HerfindahlIndex > 0.5 {
		flags = append(flags, fmt.Sprintf("concentrated book (HHI %.2f)", r.Exposure.HerfindahlIndex))
	}

	worst := 0.0
	worstName := ""
	for _, st := range r.Risk.StressTests {
		if st.PnL < worst {
			worst = st.PnL
			worstName = st.Scenario
		}
	}
	if r.Config.MaxDrawdownPct > 0 && r.Config.AUM > 0 && -worst/r.Config.AUM*100 > r.Config.MaxDrawdownPct {
		flags = append(flags, fmt.Sprintf("stress scenario %q loses %.1f%% of AUM, beyond the %.1f%% drawdown limit",
			worstName, -worst/r.Config.AUM*100, r.Config.MaxDrawdownPct))
	}

	return flags
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func aboveBelow(v float64) string {
	if v > 0 {
		return "above"
	}
	return "below"
}

func cheapRich(v float64) string {
	if v > 0 {
		return "cheap to"
	}
	return "rich to"
}
