package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, path string) (int, map[string]interface{}) {
	t.Helper()
	router := chi.NewRouter()
	NewHandler(zerolog.New(nil).Level(zerolog.Disabled)).RegisterRoutes(router)

	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w.Code, response
}

func TestHandleListCategories(t *testing.T) {
	status, response := get(t, "/profile/categories")
	require.Equal(t, http.StatusOK, status)

	cats := response["data"].([]interface{})
	require.Len(t, cats, 5)

	first := cats[0].(map[string]interface{})
	assert.Equal(t, "conservative", first["category"])
	assert.Nil(t, first["rule"], "안정형 has no group rule")
	assert.Equal(t, "barred", first["gate"].(map[string]interface{})["access"])

	second := cats[1].(map[string]interface{})
	rule := second["rule"].(map[string]interface{})
	assert.Equal(t, "class0", rule["rule"])
	assert.Equal(t, "Class 0 (Q1)", rule["label"])
}

func TestHandleGetCategory(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedLabel  string
		expectedRule   string
	}{
		{name: "by code", path: "/profile/categories/moderately_aggressive", expectedStatus: http.StatusOK, expectedLabel: "적극투자형", expectedRule: "class2"},
		{name: "by label", path: "/profile/categories/위험중립형", expectedStatus: http.StatusOK, expectedLabel: "위험중립형", expectedRule: "class1"},
		{name: "unknown", path: "/profile/categories/yolo", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, response := get(t, tt.path)
			assert.Equal(t, tt.expectedStatus, status)
			if status != http.StatusOK {
				return
			}
			data := response["data"].(map[string]interface{})
			assert.Equal(t, tt.expectedLabel, data["label"])
			assert.Equal(t, tt.expectedRule, data["rule"].(map[string]interface{})["rule"])
		})
	}
}

func TestHandleClassify(t *testing.T) {
	tests := []struct {
		score    string
		status   int
		category string
	}{
		{score: "20", status: http.StatusOK, category: "conservative"},
		{score: "20.01", status: http.StatusOK, category: "moderately_conservative"},
		{score: "80", status: http.StatusOK, category: "moderately_aggressive"},
		{score: "96.6", status: http.StatusOK, category: "aggressive"},
		{score: "abc", status: http.StatusBadRequest},
		{score: "NaN", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.score, func(t *testing.T) {
			status, response := get(t, "/profile/classify?score="+tt.score)
			assert.Equal(t, tt.status, status)
			if status == http.StatusOK {
				assert.Equal(t, tt.category, response["data"].(map[string]interface{})["category"])
			}
		})
	}
}
