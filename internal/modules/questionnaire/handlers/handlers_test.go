package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completeAnswers = `{"answers": {
	"age": 1,
	"investment_period": 4,
	"investment_experience": [4],
	"knowledge_level": 2,
	"asset_ratio": 0,
	"income_source": 0,
	"risk_tolerance": 3
}}`

func newRouter() chi.Router {
	router := chi.NewRouter()
	NewHandler(zerolog.New(nil).Level(zerolog.Disabled)).RegisterRoutes(router)
	return router
}

func serve(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w.Code, response
}

func TestHandleGetQuestionnaire(t *testing.T) {
	status, response := serve(t, "GET", "/questionnaire/", "")
	assert.Equal(t, http.StatusOK, status)

	data := response["data"].(map[string]interface{})
	questions := data["questions"].([]interface{})
	require.Len(t, questions, 7)
	third := questions[2].(map[string]interface{})
	assert.Equal(t, "investment_experience", third["id"])
	assert.Equal(t, true, third["multi_select"])
	assert.NotEmpty(t, data["disclaimer"])
}

func TestHandleValidate(t *testing.T) {
	tests := []struct {
		name             string
		body             string
		expectedStatus   int
		expectedComplete bool
		expectedInvalid  []interface{}
	}{
		{
			name:             "complete",
			body:             completeAnswers,
			expectedStatus:   http.StatusOK,
			expectedComplete: true,
			expectedInvalid:  []interface{}{},
		},
		{
			name:            "missing and empty",
			body:            `{"answers": {"age": 1, "investment_experience": []}}`,
			expectedStatus:  http.StatusOK,
			expectedInvalid: []interface{}{"investment_period", "investment_experience", "knowledge_level", "asset_ratio", "income_source", "risk_tolerance"},
		},
		{
			name:           "malformed",
			body:           `{"answers": {"age": "young"}}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, response := serve(t, "POST", "/questionnaire/validate", tt.body)
			assert.Equal(t, tt.expectedStatus, status)
			if status != http.StatusOK {
				return
			}
			data := response["data"].(map[string]interface{})
			assert.Equal(t, tt.expectedComplete, data["complete"])
			assert.Equal(t, tt.expectedInvalid, data["invalid"])
		})
	}
}

func TestHandleScore(t *testing.T) {
	status, response := serve(t, "POST", "/questionnaire/score", completeAnswers)
	require.Equal(t, http.StatusOK, status)

	data := response["data"].(map[string]interface{})
	result := data["result"].(map[string]interface{})
	assert.InDelta(t, 96.6, result["total"], 1e-9)

	breakdown := result["breakdown"].(map[string]interface{})
	assert.InDelta(t, 15.6, breakdown["investment_experience"], 1e-9)

	diagnosis := data["diagnosis"].(map[string]interface{})
	assert.Equal(t, "aggressive", diagnosis["category"])
	assert.Equal(t, "공격투자형", diagnosis["label"])
	gate := diagnosis["gate"].(map[string]interface{})
	assert.Equal(t, "restricted", gate["access"])
}

func TestHandleScore_Incomplete(t *testing.T) {
	status, response := serve(t, "POST", "/questionnaire/score", `{"answers": {"age": 9}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	invalid := response["invalid"].([]interface{})
	assert.Len(t, invalid, 7)
	assert.Equal(t, "age", invalid[0])
}
