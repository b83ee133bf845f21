// Package handlers provides HTTP handlers for dataset operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/propensity/internal/modules/dataset"
)

// Handler handles dataset HTTP requests
type Handler struct {
	service *dataset.Service
	log     zerolog.Logger
}

// NewHandler creates a new dataset handler
func NewHandler(service *dataset.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "dataset").Logger(),
	}
}

// HandleGetDataset handles GET /api/dataset
// Returns the current snapshot summary and the recent load history
func (h *Handler) HandleGetDataset(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("history"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	history, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get dataset history")
		http.Error(w, "Failed to get dataset history", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"loaded":  false,
		"history": history,
	}
	if ds, err := h.service.Current(); err == nil {
		data["loaded"] = true
		data["dataset"] = ds.Info()
	}

	h.writeJSON(w, http.StatusOK, envelope(data))
}

// HandleReload handles POST /api/dataset/reload
// Reloads the dataset source; a schema failure keeps the previous snapshot
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Reload(r.Context())
	if err != nil {
		var schemaErr *dataset.SchemaError
		if errors.As(err, &schemaErr) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":           schemaErr.Error(),
				"missing_columns": schemaErr.Missing,
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to reload dataset")
		http.Error(w, "Failed to reload dataset: "+err.Error(), http.StatusBadGateway)
		return
	}
	if len(result.ListenerErrors) > 0 {
		h.log.Warn().Strs("listener_errors", result.ListenerErrors).Msg("Dataset reloaded with listener failures")
	}

	h.writeJSON(w, http.StatusOK, envelope(result))
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
