package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/grocer/internal/contracts"
)

func TestBuildReason_Priority(t *testing.T) {
	st := total("Aldi", "aldi", "42.5")

	tests := []struct {
		name    string
		factors contracts.ScoreBreakdown
		subs    int
		want    string
	}{
		{
			name:    "overall wins over low price",
			factors: contracts.ScoreBreakdown{OverallScore: 85, PriceScore: 10, QualityScore: 50, ReliabilityScore: 50},
			want:    "Aldi excels across all metrics with an overall score of 85.",
		},
		{
			name:    "price led",
			factors: contracts.ScoreBreakdown{OverallScore: 70, PriceScore: 90, QualityScore: 80, ReliabilityScore: 40},
			want:    "Aldi offers the best value for your cart at $42.50, with a price score of 90.",
		},
		{
			name:    "price ties count as price led",
			factors: contracts.ScoreBreakdown{OverallScore: 70, PriceScore: 70, QualityScore: 70, ReliabilityScore: 70},
			want:    "Aldi offers the best value for your cart at $42.50, with a price score of 70.",
		},
		{
			name:    "quality led",
			factors: contracts.ScoreBreakdown{OverallScore: 70, PriceScore: 60, QualityScore: 85, ReliabilityScore: 40},
			want:    "Aldi stands out for product quality with a quality score of 85, worth the difference in price.",
		},
		{
			name:    "reliability led",
			factors: contracts.ScoreBreakdown{OverallScore: 70, PriceScore: 50, QualityScore: 60, ReliabilityScore: 85},
			want:    "Aldi has no pending substitutions and a reliability score of 85, so your order should arrive as expected.",
		},
		{
			name:    "reliability blocked by substitutions",
			factors: contracts.ScoreBreakdown{OverallScore: 70, PriceScore: 50, QualityScore: 60, ReliabilityScore: 85},
			subs:    1,
			want:    "Aldi offers the best overall balance for delivery.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner := contracts.StoreScore{Store: st, Factors: tt.factors, SubstitutionCount: tt.subs}
			assert.Equal(t, tt.want, BuildReason(winner, contracts.ShoppingDelivery))
		})
	}
}

func TestShoppingTypeLabel(t *testing.T) {
	assert.Equal(t, "in-store shopping", shoppingTypeLabel(contracts.ShoppingInStore))
	assert.Equal(t, "pickup", shoppingTypeLabel(contracts.ShoppingPickup))
	assert.Equal(t, "your order", shoppingTypeLabel(""))
}
