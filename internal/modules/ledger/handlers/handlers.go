// Package handlers provides HTTP handlers for the daily P&L ledger.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/modules/ledger"
)

// Handler handles P&L ledger HTTP requests.
type Handler struct {
	repo *ledger.Repository
	log  zerolog.Logger
}

// NewHandler creates a new ledger handler.
func NewHandler(repo *ledger.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "ledger").Logger(),
	}
}

// RegisterRoutes registers all ledger routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/ledger", func(r chi.Router) {
		r.Get("/{configID}", h.HandleRange)
		r.Post("/{configID}", h.HandleAppend)
	})
}

// HandleRange handles GET /api/ledger/{configID}?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) HandleRange(w http.ResponseWriter, r *http.Request) {
	configID := chi.URLParam(r, "configID")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" {
		from = "0000-01-01"
	}
	if to == "" {
		to = "9999-12-31"
	}

	entries, err := h.repo.Range(configID, from, to)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load ledger range")
		http.Error(w, "Failed to load ledger range", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"entries": entries,
			"count":   len(entries),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleAppend handles POST /api/ledger/{configID} with body
// {"date": "YYYY-MM-DD", "book_value": 123.45}.
func (h *Handler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	configID := chi.URLParam(r, "configID")

	var body struct {
		Date      string  `json:"date"`
		BookValue float64 `json:"book_value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Date == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.repo.Append(configID, body.Date, body.BookValue)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to append ledger entry")
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": entry,
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
