// Package handlers provides HTTP handlers for portfolio computation.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/domain"
	"github.com/mfontana/overlay/internal/modules/alerts"
	"github.com/mfontana/overlay/internal/modules/instruments"
	"github.com/mfontana/overlay/internal/modules/portfolio"
	"github.com/mfontana/overlay/internal/modules/snapshots"
	"github.com/mfontana/overlay/internal/modules/trading"
)

// ComputeRequest is the JSON body of POST /api/portfolio/compute.
type ComputeRequest struct {
	ConfigID         string               `json:"config_id"`
	AUM              float64              `json:"aum"`
	VolTarget        float64              `json:"vol_target"`
	FXPreference     string               `json:"fx_preference"` // "DOL" or "WDO"
	Weights          map[string]float64   `json:"weights"`
	ExpectedReturns  map[string]float64   `json:"expected_returns"`
	Enabled          map[string]bool      `json:"enabled,omitempty"`
	MaxDrawdownPct   float64              `json:"max_drawdown_pct"`
	MaxGrossLeverage float64              `json:"max_gross_leverage"`
	Market           marketPayload        `json:"market"`
	Meta             *portfolio.ModelMeta `json:"metadata,omitempty"`
	Thresholds       *alerts.Thresholds   `json:"thresholds,omitempty"`
	Persist          bool                 `json:"persist"` // Save snapshot and enqueue trades
}

type marketPayload struct {
	SpotFX             float64 `json:"spot_fx"`
	Yield1Y            float64 `json:"yield_1y"`
	Yield5Y            float64 `json:"yield_5y"`
	Yield10Y           float64 `json:"yield_10y"`
	SovereignSpreadBps float64 `json:"sovereign_spread_bps"`
	FXVol30DPct        float64 `json:"fx_vol_30d_pct"`
	OvernightDaily     float64 `json:"overnight_daily"`
}

// Handler handles portfolio HTTP requests.
type Handler struct {
	service      *portfolio.Service
	snapshotRepo *snapshots.Repository
	ticketRepo   *trading.TicketRepository
	alertService *alerts.Service
	alertRepo    *alerts.Repository
	log          zerolog.Logger
}

// NewHandler creates a new portfolio handler.
func NewHandler(
	service *portfolio.Service,
	snapshotRepo *snapshots.Repository,
	ticketRepo *trading.TicketRepository,
	alertService *alerts.Service,
	alertRepo *alerts.Repository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:      service,
		snapshotRepo: snapshotRepo,
		ticketRepo:   ticketRepo,
		alertService: alertService,
		alertRepo:    alertRepo,
		log:          log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleCompute handles POST /api/portfolio/compute. It loads the active
// position set for the config as the current book, runs the full engine,
// and optionally persists the result as a snapshot plus pending trade
// tickets.
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	var body ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.AUM <= 0 || body.VolTarget <= 0 {
		http.Error(w, "aum and vol_target must be positive", http.StatusBadRequest)
		return
	}
	if body.ConfigID == "" {
		body.ConfigID = "default"
	}

	current, err := h.snapshotRepo.ActivePositions(body.ConfigID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load active positions")
		http.Error(w, "Failed to load active positions", http.StatusInternalServerError)
		return
	}

	req := portfolio.Request{
		ConfigID:         body.ConfigID,
		AUM:              body.AUM,
		VolTarget:        body.VolTarget,
		FXPreference:     instruments.ContractType(body.FXPreference),
		Weights:          parseClassMap(body.Weights),
		ExpectedReturns:  parseClassMap(body.ExpectedReturns),
		Enabled:          parseEnabled(body.Enabled),
		MaxDrawdownPct:   body.MaxDrawdownPct,
		MaxGrossLeverage: body.MaxGrossLeverage,
		Market: domain.MarketData{
			SpotFX:             body.Market.SpotFX,
			Yield1Y:            body.Market.Yield1Y,
			Yield5Y:            body.Market.Yield5Y,
			Yield10Y:           body.Market.Yield10Y,
			SovereignSpreadBps: body.Market.SovereignSpreadBps,
			FXVol30DPct:        body.Market.FXVol30DPct,
			OvernightDaily:     body.Market.OvernightDaily,
		},
		Current: current,
		Meta:    body.Meta,
	}

	result := h.service.Compute(req)

	var raised []alerts.Alert
	if body.Thresholds != nil {
		raised = h.alertService.Evaluate(alerts.Metrics{
			VaRPct:            result.Risk.VaRDaily95Pct,
			GrossLeverage:     result.Exposure.GrossLeverage,
			MarginUtilization: result.Exposure.MarginUtilization,
		}, *body.Thresholds)
	}

	snapshotID := ""
	if body.Persist {
		// A failed persist never invalidates the computed result; the
		// response still carries it alongside the error flag.
		id, err := h.snapshotRepo.Save(body.ConfigID, result)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to persist snapshot")
		} else {
			snapshotID = id
			if _, err := h.ticketRepo.EnqueuePlan(body.ConfigID, result.Plan); err != nil {
				h.log.Error().Err(err).Msg("Failed to enqueue trade plan")
			}
		}
		if len(raised) > 0 {
			if err := h.alertRepo.SaveAll(body.ConfigID, raised); err != nil {
				h.log.Error().Err(err).Msg("Failed to persist alerts")
			}
		}
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"result":      result,
			"alerts":      raised,
			"snapshot_id": snapshotID,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// parseClassMap converts a string-keyed weight map into the enum-keyed
// form. Unknown identifiers are dropped (treated as zero weight).
func parseClassMap(in map[string]float64) map[instruments.Class]float64 {
	out := make(map[instruments.Class]float64, len(in))
	for key, value := range in {
		if class, ok := instruments.ParseClass(key); ok {
			out[class] = value
		}
	}
	return out
}

func parseEnabled(in map[string]bool) map[instruments.Class]bool {
	if in == nil {
		return nil
	}
	out := make(map[instruments.Class]bool, len(in))
	for key, value := range in {
		if class, ok := instruments.ParseClass(key); ok {
			out[class] = value
		}
	}
	return out
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
