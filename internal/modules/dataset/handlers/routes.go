package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all dataset routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dataset", func(r chi.Router) {
		r.Get("/", h.HandleGetDataset)
		r.Post("/reload", h.HandleReload)
	})
}
