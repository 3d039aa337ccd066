// Package alerts evaluates portfolio risk metrics against
// caller-supplied thresholds and raises severity-tagged notifications.
// Thresholds are passed in, never hardcoded.
package alerts

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Severity tags the urgency of an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Threshold is a warn/critical pair for one metric. Zero levels disable
// the check.
type Threshold struct {
	Warn     float64 `json:"warn"`
	Critical float64 `json:"critical"`
}

// Thresholds carries the limits for every monitored metric.
type Thresholds struct {
	VaRPct            Threshold `json:"var_pct"`            // Daily 95% VaR as % of AUM
	GrossLeverage     Threshold `json:"gross_leverage"`     // Notional leverage ratio
	MarginUtilization Threshold `json:"margin_utilization"` // Percent of AUM
	DrawdownPct       Threshold `json:"drawdown_pct"`       // Percent of AUM
}

// Metrics is the set of observed values to evaluate.
type Metrics struct {
	VaRPct            float64 `json:"var_pct"`
	GrossLeverage     float64 `json:"gross_leverage"`
	MarginUtilization float64 `json:"margin_utilization"`
	DrawdownPct       float64 `json:"drawdown_pct"`
}

// Alert is one raised notification.
type Alert struct {
	Severity  Severity `json:"severity"`
	Metric    string   `json:"metric"`
	Value     float64  `json:"value"`
	Threshold float64  `json:"threshold"`
	Message   string   `json:"message"`
}

// Service evaluates metrics against thresholds.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new alert evaluation service.
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log.With().Str("service", "alerts").Logger()}
}

// Evaluate checks every metric against its threshold pair and returns
// the raised alerts (critical beats warning per metric). No breach
// returns an empty slice.
func (s *Service) Evaluate(m Metrics, t Thresholds) []Alert {
	var raised []Alert

	checks := []struct {
		metric    string
		value     float64
		threshold Threshold
		unit      string
	}{
		{"var_pct", m.VaRPct, t.VaRPct, "% of AUM"},
		{"gross_leverage", m.GrossLeverage, t.GrossLeverage, "x"},
		{"margin_utilization", m.MarginUtilization, t.MarginUtilization, "% of AUM"},
		{"drawdown_pct", m.DrawdownPct, t.DrawdownPct, "% of AUM"},
	}

	for _, check := range checks {
		alert, ok := evaluateOne(check.metric, check.value, check.threshold, check.unit)
		if !ok {
			continue
		}
		s.log.Warn().
			Str("metric", alert.Metric).
			Str("severity", string(alert.Severity)).
			Float64("value", alert.Value).
			Float64("threshold", alert.Threshold).
			Msg("Risk threshold breached")
		raised = append(raised, alert)
	}

	return raised
}

func evaluateOne(metric string, value float64, t Threshold, unit string) (Alert, bool) {
	switch {
	case t.Critical > 0 && value >= t.Critical:
		return Alert{
			Severity:  SeverityCritical,
			Metric:    metric,
			Value:     value,
			Threshold: t.Critical,
			Message:   fmt.Sprintf("%s at %.2f%s breaches critical level %.2f", metric, value, unit, t.Critical),
		}, true
	case t.Warn > 0 && value >= t.Warn:
		return Alert{
			Severity:  SeverityWarning,
			Metric:    metric,
			Value:     value,
			Threshold: t.Warn,
			Message:   fmt.Sprintf("%s at %.2f%s breaches warning level %.2f", metric, value, unit, t.Warn),
		}, true
	}
	return Alert{}, false
}
