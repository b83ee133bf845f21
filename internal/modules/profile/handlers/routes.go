package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all profile routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/categories", h.HandleListCategories)
		r.Get("/categories/{category}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetCategory(w, r, chi.URLParam(r, "category"))
		})
		r.Get("/classify", h.HandleClassify)
	})
}
