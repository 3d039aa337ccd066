// Package handlers provides HTTP handlers for raised alerts.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/modules/alerts"
)

// Handler handles alert HTTP requests.
type Handler struct {
	repo *alerts.Repository
	log  zerolog.Logger
}

// NewHandler creates a new alerts handler.
func NewHandler(repo *alerts.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "alerts").Logger(),
	}
}

// RegisterRoutes registers all alert routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/alerts", func(r chi.Router) {
		r.Get("/{configID}", h.HandleRecent)
	})
}

// HandleRecent handles GET /api/alerts/{configID}?limit=50
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	configID := chi.URLParam(r, "configID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	stored, err := h.repo.Recent(configID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load alerts")
		http.Error(w, "Failed to load alerts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]interface{}{
			"alerts": stored,
			"count":  len(stored),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
