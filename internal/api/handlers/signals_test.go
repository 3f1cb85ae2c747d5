package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/signals"
	"github.com/wonny/grocer/pkg/logger"
)

func TestSignalsHandler(t *testing.T) {
	h := NewSignalsHandler(signals.NewMockProvider(nil, false), logger.Nop())

	t.Run("stores", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GetStoreMetrics(rr, httptest.NewRequest(http.MethodGet, "/api/signals/stores", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var m []contracts.StoreMetrics
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
		assert.Len(t, m, len(signals.Chains))
	})

	t.Run("trends", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GetMarketTrends(rr, httptest.NewRequest(http.MethodGet, "/api/signals/trends?store=Walmart", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var trends contracts.MarketTrendData
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &trends))
		assert.Contains(t, trends.Trending, signals.StoreHEB)
	})

	t.Run("reviews", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GetProductReviews(rr, httptest.NewRequest(http.MethodGet, "/api/signals/reviews?q=milk&q=eggs", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var reviews []contracts.ProductReview
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reviews))
		assert.Len(t, reviews, 4)
	})

	t.Run("reviews without query", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GetProductReviews(rr, httptest.NewRequest(http.MethodGet, "/api/signals/reviews", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSignalsHandler_ProviderFailure(t *testing.T) {
	h := NewSignalsHandler(failingProvider{}, logger.Nop())

	tests := []struct {
		name string
		call func(w http.ResponseWriter, r *http.Request)
		url  string
	}{
		{"stores", h.GetStoreMetrics, "/api/signals/stores"},
		{"trends", h.GetMarketTrends, "/api/signals/trends"},
		{"reviews", h.GetProductReviews, "/api/signals/reviews?q=milk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.call(rr, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, http.StatusBadGateway, rr.Code)
			assert.NotContains(t, rr.Body.String(), "boom")
		})
	}
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	h := NewHealthHandler(nil, "mock")

	rr := httptest.NewRecorder()
	h.Check(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "mock", body["signal_source"])
	assert.NotContains(t, body, "database")
}
