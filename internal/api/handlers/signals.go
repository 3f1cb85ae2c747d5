package handlers

import (
	"net/http"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/pkg/logger"
)

// SignalsHandler exposes the signal provider over HTTP. The remote
// provider reads these same endpoints from another grocer instance.
type SignalsHandler struct {
	provider contracts.SignalProvider
	logger   *logger.Logger
}

// NewSignalsHandler creates a new signals handler
func NewSignalsHandler(provider contracts.SignalProvider, log *logger.Logger) *SignalsHandler {
	return &SignalsHandler{
		provider: provider,
		logger:   log,
	}
}

// GetStoreMetrics returns the store metrics table
// GET /api/signals/stores
func (h *SignalsHandler) GetStoreMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.provider.FetchStoreMetrics(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch store metrics")
		respondError(w, http.StatusBadGateway, "Failed to fetch store metrics")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// GetMarketTrends returns the market trend data
// GET /api/signals/trends?store=Walmart&store=Target
func (h *SignalsHandler) GetMarketTrends(w http.ResponseWriter, r *http.Request) {
	t, err := h.provider.AnalyzeMarketTrends(r.Context(), r.URL.Query()["store"])
	if err != nil {
		h.logger.WithError(err).Error("Failed to analyze market trends")
		respondError(w, http.StatusBadGateway, "Failed to analyze market trends")
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// GetProductReviews returns reviews matching the given product names
// GET /api/signals/reviews?q=milk&q=eggs
func (h *SignalsHandler) GetProductReviews(w http.ResponseWriter, r *http.Request) {
	names := r.URL.Query()["q"]
	if len(names) == 0 {
		respondError(w, http.StatusBadRequest, "At least one q parameter is required")
		return
	}

	reviews, err := h.provider.FetchProductReviews(r.Context(), names)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch product reviews")
		respondError(w, http.StatusBadGateway, "Failed to fetch product reviews")
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}
