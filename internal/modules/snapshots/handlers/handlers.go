// Package handlers provides HTTP handlers for snapshot operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/modules/snapshots"
)

// Handler handles snapshot HTTP requests.
type Handler struct {
	repo *snapshots.Repository
	log  zerolog.Logger
}

// NewHandler creates a new snapshot handler.
func NewHandler(repo *snapshots.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "snapshots").Logger(),
	}
}

// HandleHistory handles GET /api/snapshots/{configID}
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	configID := chi.URLParam(r, "configID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.repo.History(configID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load snapshot history")
		http.Error(w, "Failed to load snapshot history", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"snapshots": history,
			"count":     len(history),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleActive handles GET /api/snapshots/{configID}/active
func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	configID := chi.URLParam(r, "configID")

	positions, err := h.repo.ActivePositions(configID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load active positions")
		http.Error(w, "Failed to load active positions", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"positions": positions,
			"count":     len(positions),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
