package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/propensity/internal/database"
	"github.com/aristath/propensity/internal/modules/dataset"
)

// DatasetInfoProvider returns the current dataset snapshot
type DatasetInfoProvider interface {
	Current() (*dataset.Dataset, error)
}

// SystemHandlers serves health and status endpoints
type SystemHandlers struct {
	datasets  DatasetInfoProvider
	dbs       []*database.DB
	log       zerolog.Logger
	startedAt time.Time
	stats     func() (float64, float64)
}

// NewSystemHandlers creates system handlers. datasets may be nil.
func NewSystemHandlers(datasets DatasetInfoProvider, dbs []*database.DB, log zerolog.Logger) *SystemHandlers {
	h := &SystemHandlers{
		datasets:  datasets,
		dbs:       dbs,
		log:       log.With().Str("handler", "system").Logger(),
		startedAt: time.Now(),
	}
	h.stats = h.getSystemStats
	return h
}

// DatabaseStatus reports the health of one database
type DatabaseStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string           `json:"status"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	CPUPercent    float64          `json:"cpu_percent"`
	MemoryPercent float64          `json:"memory_percent"`
	DatasetLoaded bool             `json:"dataset_loaded"`
	Dataset       *dataset.Info    `json:"dataset,omitempty"`
	Databases     []DatabaseStatus `json:"databases"`
}

// HandleHealth handles GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
	})
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.stats()

	resp := SystemStatusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Databases:     h.checkDatabases(r.Context()),
	}

	for _, db := range resp.Databases {
		if !db.Healthy {
			resp.Status = "degraded"
		}
	}

	if h.datasets != nil {
		ds, err := h.datasets.Current()
		switch {
		case err == nil:
			info := ds.Info()
			resp.DatasetLoaded = true
			resp.Dataset = &info
		case errors.Is(err, dataset.ErrNoDataset):
			resp.Status = "degraded"
		default:
			h.log.Error().Err(err).Msg("Failed to read current dataset")
			resp.Status = "degraded"
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": resp,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *SystemHandlers) checkDatabases(ctx context.Context) []DatabaseStatus {
	statuses := make([]DatabaseStatus, 0, len(h.dbs))
	for _, db := range h.dbs {
		status := DatabaseStatus{Name: db.Name(), Healthy: true}
		if err := db.QuickCheck(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// getSystemStats returns CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
