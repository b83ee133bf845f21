// Package handlers provides HTTP handlers for the security screener.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/modules/screener"
)

// DatasetProvider returns the current dataset snapshot
type DatasetProvider interface {
	Current() (*dataset.Dataset, error)
}

// Handler handles screener HTTP requests
type Handler struct {
	datasets DatasetProvider
	log      zerolog.Logger
}

// NewHandler creates a new screener handler
func NewHandler(datasets DatasetProvider, log zerolog.Logger) *Handler {
	return &Handler{
		datasets: datasets,
		log:      log.With().Str("handler", "screener").Logger(),
	}
}

// PortfolioRequest is the body of POST /api/screener/portfolio
type PortfolioRequest struct {
	Companies []string `json:"companies"`
	Year      int      `json:"year"`
}

// HandleScreen handles GET /api/screener
// Query: target_class=0,1 year=2021 q=삼성 sort=cagr|volatility|company order=asc|desc limit=20
func (h *Handler) HandleScreen(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ds, ok := h.current(w)
	if !ok {
		return
	}

	rows := screener.Screen(ds, query)
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"rows":  rows,
		"count": len(rows),
	}))
}

// HandlePortfolio handles POST /api/screener/portfolio
// Summarizes the selected companies against the benchmark rate
func (h *Handler) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	var req PortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Companies) == 0 {
		http.Error(w, "companies is required", http.StatusBadRequest)
		return
	}

	ds, ok := h.current(w)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(screener.Analyze(ds, req.Companies, req.Year)))
}

func (h *Handler) current(w http.ResponseWriter) (*dataset.Dataset, bool) {
	ds, err := h.datasets.Current()
	if errors.Is(err, dataset.ErrNoDataset) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return nil, false
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get dataset")
		http.Error(w, "Failed to get dataset", http.StatusInternalServerError)
		return nil, false
	}
	return ds, true
}

func parseQuery(r *http.Request) (screener.Query, error) {
	values := r.URL.Query()
	var q screener.Query

	if s := values.Get("target_class"); s != "" {
		for _, part := range strings.Split(s, ",") {
			c, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return q, errors.New("target_class must be a comma-separated list of integers")
			}
			q.TargetClasses = append(q.TargetClasses, c)
		}
	}
	if s := values.Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return q, errors.New("year must be an integer")
		}
		q.Year = year
	}
	if s := values.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			return q, errors.New("limit must be a non-negative integer")
		}
		q.Limit = limit
	}

	var err error
	if q.SortBy, err = screener.ParseSortKey(values.Get("sort")); err != nil {
		return q, err
	}
	if q.Order, err = screener.ParseOrder(values.Get("order")); err != nil {
		return q, err
	}
	q.Search = values.Get("q")
	return q, nil
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
