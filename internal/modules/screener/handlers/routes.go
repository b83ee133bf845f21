package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all screener routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/screener", func(r chi.Router) {
		r.Get("/", h.HandleScreen)
		r.Post("/portfolio", h.HandlePortfolio)
	})
}
