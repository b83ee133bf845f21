package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/modules/dataset/datasettest"
)

func newHandler(loaded bool) *Handler {
	store := dataset.NewStore()
	if loaded {
		store.Swap(datasettest.Dataset(
			datasettest.Record("삼성전자", "005930", 2020, 8.5, 0.25, 0),
			datasettest.Record("LG화학", "051910", 2020, 12.3, 0.30, 1),
			datasettest.Record("카카오", "035720", 2021, 3.1, 0.45, 3),
		))
	}
	return NewHandler(store, zerolog.New(nil).Level(zerolog.Disabled))
}

func TestHandleScreen(t *testing.T) {
	handler := newHandler(true)

	tests := []struct {
		name           string
		query          url.Values
		expectedStatus int
		expectedCount  int
	}{
		{name: "all", query: url.Values{}, expectedStatus: http.StatusOK, expectedCount: 3},
		{name: "classes", query: url.Values{"target_class": {"0,1"}}, expectedStatus: http.StatusOK, expectedCount: 2},
		{name: "year and limit", query: url.Values{"year": {"2020"}, "limit": {"1"}}, expectedStatus: http.StatusOK, expectedCount: 1},
		{name: "search", query: url.Values{"q": {"카카"}}, expectedStatus: http.StatusOK, expectedCount: 1},
		{name: "bad class", query: url.Values{"target_class": {"x"}}, expectedStatus: http.StatusBadRequest},
		{name: "bad sort", query: url.Values{"sort": {"dividend"}}, expectedStatus: http.StatusBadRequest},
		{name: "bad limit", query: url.Values{"limit": {"-1"}}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/screener?"+tt.query.Encode(), nil)
			w := httptest.NewRecorder()
			handler.HandleScreen(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if w.Code != http.StatusOK {
				return
			}
			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			data := response["data"].(map[string]interface{})
			assert.Equal(t, float64(tt.expectedCount), data["count"])
		})
	}
}

func TestHandleScreen_NoDataset(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/screener", nil)
	w := httptest.NewRecorder()
	newHandler(false).HandleScreen(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandlePortfolio(t *testing.T) {
	handler := newHandler(true)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		validate       func(*testing.T, map[string]interface{})
	}{
		{
			name:           "summary",
			body:           `{"companies": ["삼성전자", "LG화학"]}`,
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, float64(2), data["count"])
				assert.InDelta(t, 10.4, data["mean_cagr"], 1e-9)
				assert.InDelta(t, 7.6, data["mean_excess_return"], 1e-9)
				assert.Equal(t, 2.8, data["benchmark_rate"])
			},
		},
		{
			name:           "empty selection",
			body:           `{"companies": []}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/screener/portfolio", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.HandlePortfolio(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validate != nil {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				tt.validate(t, response["data"].(map[string]interface{}))
			}
		})
	}
}
