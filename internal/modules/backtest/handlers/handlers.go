// Package handlers provides HTTP handlers for backtests and recommendations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/propensity/internal/modules/backtest"
	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/modules/profile"
)

// Handler handles backtest HTTP requests
type Handler struct {
	service *backtest.Service
	log     zerolog.Logger
}

// NewHandler creates a new backtest handler
func NewHandler(service *backtest.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "backtest").Logger(),
	}
}

// HandleGetBacktest handles GET /api/backtest/{category}
// Returns every (year, rule) cell, the category summary and the benchmark comparison
func (h *Handler) HandleGetBacktest(w http.ResponseWriter, r *http.Request, code string) {
	cat, ok := h.eligibleCategory(w, code)
	if !ok {
		return
	}

	outcome, err := h.service.Backtest(r.Context(), cat)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	summary := backtest.Summarize(outcome, h.service.HoldingYears())
	data := map[string]interface{}{
		"outcome":     outcome,
		"summary":     summary,
		"benchmarks":  backtest.Benchmarks(),
		"comparison":  backtest.Compare(summary.Annualised),
		"bench_years": backtest.BenchmarkYears,
		"access":      profile.AccessFor(cat),
	}

	h.writeJSON(w, http.StatusOK, envelope(data))
}

// HandleGetRecommendations handles GET /api/recommendations/{category}
// Requires kyc_acknowledged=true; otherwise returns 428 with the notice to acknowledge
func (h *Handler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request, code string) {
	cat, ok := h.eligibleCategory(w, code)
	if !ok {
		return
	}

	acknowledged, _ := strconv.ParseBool(r.URL.Query().Get("kyc_acknowledged"))
	if !acknowledged {
		h.writeJSON(w, http.StatusPreconditionRequired, map[string]interface{}{
			"error":  "KYC notice must be acknowledged",
			"notice": profile.KYCNotice,
		})
		return
	}

	outcome, err := h.service.Backtest(r.Context(), cat)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	data := map[string]interface{}{
		"category":        cat,
		"label":           cat.Label(),
		"rule":            outcome.Rule,
		"rule_label":      outcome.Rule.Label(),
		"year":            outcome.LatestYear,
		"recommendations": outcome.Recommendations,
		"access":          profile.AccessFor(cat),
		"warnings":        outcome.Warnings,
	}

	h.writeJSON(w, http.StatusOK, envelope(data))
}

// HandlePurgeCache handles DELETE /api/backtest/cache
func (h *Handler) HandlePurgeCache(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.Purge(r.Context(), "manual")
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to purge backtest cache")
		http.Error(w, "Failed to purge backtest cache", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"removed": removed}))
}

func (h *Handler) eligibleCategory(w http.ResponseWriter, code string) (profile.Category, bool) {
	cat, err := profile.ParseCategory(code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	if err := profile.CheckEligible(cat); err != nil {
		h.writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"error":  err.Error(),
			"notice": profile.AccessFor(cat).Notice,
		})
		return 0, false
	}
	return cat, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, dataset.ErrNoDataset) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	h.log.Error().Err(err).Msg("Backtest failed")
	http.Error(w, "Backtest failed", http.StatusInternalServerError)
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
