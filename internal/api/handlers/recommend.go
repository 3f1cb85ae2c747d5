package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/recommend"
	"github.com/wonny/grocer/pkg/logger"
)

// Recommender is the service the handlers call
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*contracts.Recommendation, error)
}

// RecommendRequest is the wire form of an analysis request
type RecommendRequest struct {
	StoreTotals        []contracts.StoreTotal `json:"storeTotals" validate:"required,min=1,dive"`
	SubstitutionCounts map[string]int         `json:"substitutionCounts" validate:"omitempty,dive,gte=0"`
	ShoppingType       string                 `json:"shoppingType" validate:"required"`
	CartItems          []contracts.CartItem   `json:"cartItems" validate:"omitempty,dive"`
}

// ToRequest converts the wire form. A store sent with subtotal and fees but
// no total gets its total derived.
func (r RecommendRequest) ToRequest() (recommend.Request, error) {
	st, err := contracts.ParseShoppingType(r.ShoppingType)
	if err != nil {
		return recommend.Request{}, err
	}

	totals := make([]contracts.StoreTotal, len(r.StoreTotals))
	for i, t := range r.StoreTotals {
		if t.Total.IsZero() && !t.Subtotal.IsZero() {
			t.Total = t.Subtotal.Add(t.TaxesAndFees)
		}
		totals[i] = t
	}

	req := recommend.Request{
		StoreTotals:        totals,
		SubstitutionCounts: contracts.SubstitutionCounts(r.SubstitutionCounts),
		ShoppingType:       st,
		CartItems:          r.CartItems,
	}
	if err := recommend.Validate(req); err != nil {
		return recommend.Request{}, err
	}
	return req, nil
}

// RecommendHandler handles recommendation endpoints
// ⭐ SSOT: recommendation API handlers live here
type RecommendHandler struct {
	service Recommender
	origins []string
	logger  *logger.Logger
}

// NewRecommendHandler creates a new recommendation handler.
// origins lists the Origin headers accepted by the stream endpoint.
func NewRecommendHandler(service Recommender, origins []string, log *logger.Logger) *RecommendHandler {
	return &RecommendHandler{
		service: service,
		origins: origins,
		logger:  log,
	}
}

// Recommend runs one analysis and returns the recommendation
// POST /api/recommendations
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var body RecommendRequest
	if err := decodeJSONBody(w, r, &body); err != nil {
		h.respondRequestError(w, err)
		return
	}

	req, err := body.ToRequest()
	if err != nil {
		h.respondRequestError(w, err)
		return
	}

	rec, err := h.service.Recommend(r.Context(), req)
	if err != nil {
		if isInputError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if r.Context().Err() != nil {
			h.logger.WithError(err).Debug("Client went away during analysis")
			return
		}
		h.logger.WithError(err).Error("Recommendation failed")
		respondError(w, http.StatusInternalServerError, "Failed to build recommendation")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

func (h *RecommendHandler) respondRequestError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		respondValidationError(w, verr)
		return
	}
	respondError(w, http.StatusBadRequest, err.Error())
}

func isInputError(err error) bool {
	return errors.Is(err, contracts.ErrNoStores) ||
		errors.Is(err, contracts.ErrInvalidStoreTotal) ||
		errors.Is(err, contracts.ErrInvalidShoppingType)
}
