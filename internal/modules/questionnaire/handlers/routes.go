package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all questionnaire routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/questionnaire", func(r chi.Router) {
		r.Get("/", h.HandleGetQuestionnaire)
		r.Post("/validate", h.HandleValidate)
		r.Post("/score", h.HandleScore)
	})
}
