package recommend

import (
	"fmt"

	"github.com/wonny/grocer/internal/contracts"
)

// Reason thresholds
const (
	excellentOverall  = 80
	strongQuality     = 80
	strongReliability = 80
)

// BuildReason explains why the winner was picked. Rules are checked in
// order and the first match wins.
func BuildReason(winner contracts.StoreScore, shoppingType contracts.ShoppingType) string {
	f := winner.Factors
	name := winner.Store.Store

	switch {
	case f.OverallScore >= excellentOverall:
		return fmt.Sprintf("%s excels across all metrics with an overall score of %d.", name, f.OverallScore)

	case f.PriceScore >= f.QualityScore && f.PriceScore >= f.ReliabilityScore:
		return fmt.Sprintf("%s offers the best value for your cart at $%s, with a price score of %d.",
			name, winner.Store.Total.StringFixed(2), f.PriceScore)

	case f.QualityScore >= strongQuality:
		return fmt.Sprintf("%s stands out for product quality with a quality score of %d, worth the difference in price.",
			name, f.QualityScore)

	case f.ReliabilityScore >= strongReliability && winner.SubstitutionCount == 0:
		return fmt.Sprintf("%s has no pending substitutions and a reliability score of %d, so your order should arrive as expected.",
			name, f.ReliabilityScore)

	default:
		return fmt.Sprintf("%s offers the best overall balance for %s.", name, shoppingTypeLabel(shoppingType))
	}
}

func shoppingTypeLabel(t contracts.ShoppingType) string {
	switch t {
	case contracts.ShoppingPickup:
		return "pickup"
	case contracts.ShoppingDelivery:
		return "delivery"
	case contracts.ShoppingInStore:
		return "in-store shopping"
	default:
		return "your order"
	}
}
