package contracts

import "strings"

// StoreMetrics is the static quality signal for one store chain.
// Loaded once per analysis run and never mutated.
type StoreMetrics struct {
	Name                string  `json:"name" yaml:"name"`
	OverallRating       float64 `json:"overallRating" yaml:"overall_rating"`
	DeliveryReliability float64 `json:"deliveryReliability" yaml:"delivery_reliability"` // 0 ~ 1
	ProductQuality      float64 `json:"productQuality" yaml:"product_quality"`           // 0 ~ 5
	CustomerService     float64 `json:"customerService" yaml:"customer_service"`         // 0 ~ 5
	SubstitutionRate    float64 `json:"substitutionRate" yaml:"substitution_rate"`       // 0 ~ 1
	AvgDeliveryTime     int     `json:"avgDeliveryTime" yaml:"avg_delivery_time"`        // minutes
}

// MetricsFor returns the metrics entry whose name matches store, if any.
func MetricsFor(all []StoreMetrics, store string) *StoreMetrics {
	for i := range all {
		if all[i].Name == store {
			return &all[i]
		}
	}
	return nil
}

// StoreNamesFromMetrics lists the store names in metrics order.
func StoreNamesFromMetrics(all []StoreMetrics) []string {
	names := make([]string, len(all))
	for i, m := range all {
		names[i] = m.Name
	}
	return names
}

// MarketTrendData is the canned market view used for score bonuses.
type MarketTrendData struct {
	Trending        []string           `json:"trending" yaml:"trending"`
	PriceVolatility map[string]float64 `json:"priceVolatility" yaml:"price_volatility"`
	DemandScore     map[string]float64 `json:"demandScore" yaml:"demand_score"` // 0 ~ 1
}

// IsTrending reports whether store is in the trending set.
func (m *MarketTrendData) IsTrending(store string) bool {
	if m == nil {
		return false
	}
	for _, s := range m.Trending {
		if s == store {
			return true
		}
	}
	return false
}

// Demand returns the demand score for store and whether one was present.
func (m *MarketTrendData) Demand(store string) (float64, bool) {
	if m == nil || m.DemandScore == nil {
		return 0, false
	}
	v, ok := m.DemandScore[store]
	return v, ok
}

// ProductReview is an aggregated review entry for a product at a store.
type ProductReview struct {
	ProductName string  `json:"productName" yaml:"product_name"`
	Store       string  `json:"store" yaml:"store"`
	Rating      float64 `json:"rating" yaml:"rating"` // 0 ~ 5
	ReviewCount int     `json:"reviewCount" yaml:"review_count"`
	Freshness   float64 `json:"freshness" yaml:"freshness"` // 0 ~ 1
	Summary     string  `json:"summary,omitempty" yaml:"summary"`
}

// MatchesAny reports whether the review's product name and any of the
// requested names contain one another, ignoring case.
func (r ProductReview) MatchesAny(names []string) bool {
	product := strings.ToLower(r.ProductName)
	for _, n := range names {
		q := strings.ToLower(strings.TrimSpace(n))
		if q == "" {
			continue
		}
		if strings.Contains(product, q) || strings.Contains(q, product) {
			return true
		}
	}
	return false
}
