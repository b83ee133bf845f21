// Package handlers provides HTTP handlers for the questionnaire and scoring.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/propensity/internal/modules/profile"
	"github.com/aristath/propensity/internal/modules/questionnaire"
)

// Handler handles questionnaire HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new questionnaire handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "questionnaire").Logger(),
	}
}

// AnswersRequest is the body of the validate and score endpoints
type AnswersRequest struct {
	Answers questionnaire.AnswerSet `json:"answers"`
}

// HandleGetQuestionnaire handles GET /api/questionnaire
func (h *Handler) HandleGetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"questions":  questionnaire.All(),
		"disclaimer": questionnaire.Disclaimer,
	}))
}

// HandleValidate handles POST /api/questionnaire/validate
// Returns the ids of unanswered or invalid questions
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	invalid := questionnaire.Validate(req.Answers)
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"complete": len(invalid) == 0,
		"invalid":  invalid,
	}))
}

// HandleScore handles POST /api/questionnaire/score
// Scores a complete answer set and returns the diagnosis; 422 lists invalid questions
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	result, err := questionnaire.Score(req.Answers)
	if err != nil {
		var verr *questionnaire.ValidationError
		if errors.As(err, &verr) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":   verr.Error(),
				"invalid": verr.Invalid,
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to score answers")
		http.Error(w, "Failed to score answers", http.StatusInternalServerError)
		return
	}

	diagnosis := profile.Diagnose(result.Total)
	h.log.Debug().
		Float64("score", result.Total).
		Str("category", diagnosis.Category.Code()).
		Msg("Questionnaire scored")

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"result":     result,
		"diagnosis":  diagnosis,
		"disclaimer": questionnaire.Disclaimer,
	}))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (AnswersRequest, bool) {
	var req AnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
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
