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

	"github.com/aristath/propensity/internal/modules/backtest"
	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/modules/dataset/datasettest"
)

func newRouter(t *testing.T, loaded bool) chi.Router {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	store := dataset.NewStore()
	if loaded {
		store.Swap(datasettest.Dataset(
			datasettest.Record("삼성전자", "005930", 2021, 8.5, 0.10, 0),
			datasettest.Record("LG화학", "051910", 2021, 12.3, 0.20, 1),
			datasettest.Record("카카오", "035720", 2021, 3.1, 0.30, 2),
			datasettest.Record("셀트리온", "068270", 2021, 20.4, 0.40, 3),
		))
	}

	svc := backtest.NewService(store, backtest.NewMemoryCache(), nil, backtest.ServiceOptions{}, logger)
	router := chi.NewRouter()
	NewHandler(svc, logger).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router chi.Router, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHandleGetBacktest(t *testing.T) {
	router := newRouter(t, true)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		validate       func(*testing.T, map[string]interface{})
	}{
		{
			name:           "moderate by code",
			path:           "/backtest/moderate",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body map[string]interface{}) {
				data := body["data"].(map[string]interface{})
				outcome := data["outcome"].(map[string]interface{})
				assert.Equal(t, "class1", outcome["rule"])
				assert.Len(t, outcome["cells"], 4)

				summary := data["summary"].(map[string]interface{})
				assert.Equal(t, "Class 1 (Q1~Q2)", summary["rule_label"])
				assert.InDelta(t, 10.4/6, summary["annualised_cagr"], 1e-9)

				assert.Len(t, data["comparison"], 3)
				assert.Len(t, data["benchmarks"], 9)
				assert.NotNil(t, body["metadata"])
			},
		},
		{
			name:           "aggressive by label is restricted",
			path:           "/backtest/공격투자형",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body map[string]interface{}) {
				access := body["data"].(map[string]interface{})["access"].(map[string]interface{})
				assert.Equal(t, "restricted", access["access"])
				assert.NotEmpty(t, access["notice"])
			},
		},
		{
			name:           "conservative is barred",
			path:           "/backtest/conservative",
			expectedStatus: http.StatusForbidden,
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.NotEmpty(t, body["notice"])
			},
		},
		{
			name:           "unknown category",
			path:           "/backtest/reckless",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, router, tt.path)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validate != nil {
				tt.validate(t, body)
			}
		})
	}
}

func TestHandleGetBacktest_NoDataset(t *testing.T) {
	w, _ := do(t, newRouter(t, false), "/backtest/moderate")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleGetRecommendations(t *testing.T) {
	router := newRouter(t, true)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		validate       func(*testing.T, map[string]interface{})
	}{
		{
			name:           "requires KYC acknowledgement",
			path:           "/recommendations/moderate",
			expectedStatus: http.StatusPreconditionRequired,
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.Contains(t, body["notice"], "투자 권유를 목적으로 하지 않습니다")
			},
		},
		{
			name:           "acknowledged",
			path:           "/recommendations/moderate?kyc_acknowledged=true",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body map[string]interface{}) {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, float64(2021), data["year"])
				recs := data["recommendations"].([]interface{})
				require.Len(t, recs, 2)
				first := recs[0].(map[string]interface{})
				assert.Equal(t, "LG화학", first["company"])
				assert.Equal(t, "051910", first["exchange_code"])
			},
		},
		{
			name:           "barred before KYC",
			path:           "/recommendations/안정형",
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, router, tt.path)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validate != nil {
				tt.validate(t, body)
			}
		})
	}
}

func TestHandlePurgeCache(t *testing.T) {
	router := newRouter(t, true)

	w, _ := do(t, router, "/backtest/moderate")
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest("DELETE", "/backtest/cache", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["removed"])
}
