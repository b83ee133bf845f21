// Package handlers provides HTTP handlers for risk categories.
package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/propensity/internal/modules/grouping"
	"github.com/aristath/propensity/internal/modules/profile"
)

// Handler handles profile HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new profile handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "profile").Logger(),
	}
}

// CategoryDetail is everything known about one category
type CategoryDetail struct {
	Category        profile.Category        `json:"category"`
	Label           string                  `json:"label"`
	Band            profile.Band            `json:"band"`
	Gate            profile.Gate            `json:"gate"`
	Characteristics profile.Characteristics `json:"characteristics"`
	Rule            *RuleDetail             `json:"rule"`
}

// RuleDetail describes the group rule a category is recommended from
type RuleDetail struct {
	Rule       grouping.Rule       `json:"rule"`
	Label      string              `json:"label"`
	Membership grouping.Membership `json:"membership"`
}

func detail(c profile.Category) CategoryDetail {
	d := CategoryDetail{
		Category:        c,
		Label:           c.Label(),
		Band:            profile.Bands()[c],
		Gate:            profile.AccessFor(c),
		Characteristics: profile.CharacteristicsFor(c),
	}
	if r, ok := grouping.RuleFor(c); ok {
		d.Rule = &RuleDetail{Rule: r, Label: r.Label(), Membership: r.Membership()}
	}
	return d
}

// HandleListCategories handles GET /api/profile/categories
func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	cats := profile.Categories()
	out := make([]CategoryDetail, len(cats))
	for i, c := range cats {
		out[i] = detail(c)
	}
	h.writeJSON(w, http.StatusOK, envelope(out))
}

// HandleGetCategory handles GET /api/profile/categories/{category}
// Accepts the wire code or the Korean label
func (h *Handler) HandleGetCategory(w http.ResponseWriter, r *http.Request, code string) {
	c, err := profile.ParseCategory(code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(detail(c)))
}

// HandleClassify handles GET /api/profile/classify?score=42.5
func (h *Handler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.ParseFloat(r.URL.Query().Get("score"), 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		http.Error(w, "score must be a finite number", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(profile.Diagnose(score)))
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
