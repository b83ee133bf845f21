package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the backtest and recommendation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/backtest/{category}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetBacktest(w, r, chi.URLParam(r, "category"))
	})
	r.Delete("/backtest/cache", h.HandlePurgeCache)
	r.Get("/recommendations/{category}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetRecommendations(w, r, chi.URLParam(r, "category"))
	})
}
