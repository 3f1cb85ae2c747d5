package recommend

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/grocer/internal/contracts"
)

// defaultFactors are the fixed factors of the static fallback
var defaultFactors = contracts.ScoreBreakdown{
	PriceScore:       85,
	QualityScore:     80,
	ReliabilityScore: 90,
	ConvenienceScore: 85,
	OverallScore:     85,
}

// DefaultRecommendation is the static answer used when analysis fails:
// the first store with confidence 85. totals must not be empty.
func DefaultRecommendation(totals []contracts.StoreTotal, shoppingType contracts.ShoppingType) *contracts.Recommendation {
	first := totals[0]
	return &contracts.Recommendation{
		RecommendedStore: first,
		Reason:           fmt.Sprintf("%s is a solid choice for your cart based on price and availability.", first.Store),
		Confidence:       defaultFactors.OverallScore,
		Factors:          defaultFactors,
		AnalysisID:       uuid.NewString(),
		Strategy:         contracts.StrategyDefault,
		ShoppingType:     shoppingType,
		GeneratedAt:      time.Now(),
	}
}
