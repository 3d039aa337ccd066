// Package handlers provides HTTP handlers for the trade ticket queue.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/modules/trading"
)

// Handler handles trade queue HTTP requests.
type Handler struct {
	repo *trading.TicketRepository
	log  zerolog.Logger
}

// NewHandler creates a new trading handler.
func NewHandler(repo *trading.TicketRepository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "trading").Logger(),
	}
}

// HandleList handles GET /api/trades/{configID}?status=pending
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	configID := chi.URLParam(r, "configID")
	status := trading.Status(r.URL.Query().Get("status"))

	tickets, err := h.repo.ListByStatus(configID, status)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list tickets")
		http.Error(w, "Failed to list tickets", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"tickets": tickets,
			"count":   len(tickets),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleTransition handles POST /api/trades/{id}/{action} for
// approve/cancel/execute.
func (h *Handler) HandleTransition(to trading.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := h.repo.Transition(id, to); err != nil {
			h.log.Error().Err(err).Str("ticket_id", id).Msg("Ticket transition failed")
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{
				"id":     id,
				"status": string(to),
			},
			"metadata": map[string]interface{}{
				"timestamp": time.Now().Format(time.RFC3339),
			},
		})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
