package contracts

import "time"

// Recommendation is the final output of one analysis.
// Created fresh per invocation and owned by the caller.
// ⭐ SSOT: recommender → UI result
//
// Confidence mirrors Factors.OverallScore and can exceed 100; display code
// must not assume a percentage.
type Recommendation struct {
	RecommendedStore StoreTotal     `json:"recommendedStore"`
	Reason           string         `json:"reason"`
	Confidence       int            `json:"confidence"`
	Factors          ScoreBreakdown `json:"factors"`

	AnalysisID        string       `json:"analysisId,omitempty"`
	Strategy          Strategy     `json:"strategy"`
	ShoppingType      ShoppingType `json:"shoppingType,omitempty"`
	Ranking           []StoreScore `json:"ranking,omitempty"` // input order
	ReviewsConsidered int          `json:"reviewsConsidered"`
	GeneratedAt       time.Time    `json:"generatedAt"`
}

// RunnerUp returns the best-scoring store other than the recommended one.
// Ties keep input order, same as winner selection.
func (r *Recommendation) RunnerUp() (StoreScore, bool) {
	var best StoreScore
	found := false
	for _, s := range r.Ranking {
		if s.Store.StoreKey == r.RecommendedStore.StoreKey {
			continue
		}
		if !found || s.Factors.OverallScore > best.Factors.OverallScore {
			best = s
			found = true
		}
	}
	return best, found
}
