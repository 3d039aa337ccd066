package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/mfontana/overlay/internal/modules/trading"
)

// RegisterRoutes registers all trade queue routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/trades", func(r chi.Router) {
		r.Get("/{configID}", h.HandleList)
		r.Post("/{id}/approve", h.HandleTransition(trading.StatusApproved))
		r.Post("/{id}/cancel", h.HandleTransition(trading.StatusCancelled))
		r.Post("/{id}/execute", h.HandleTransition(trading.StatusExecuted))
	})
}
