package signals

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate())

	assert.Len(t, c.StoreMetrics, len(Chains))
	for i, name := range Chains {
		assert.Equal(t, name, c.StoreMetrics[i].Name)
	}

	assert.ElementsMatch(t, []string{StoreHEB, StoreAldi, StoreTarget}, c.MarketTrends.Trending)
	assert.Equal(t, 0.92, c.MarketTrends.DemandScore[StoreHEB])
}

func TestCatalog_CopiesAreIndependent(t *testing.T) {
	c := DefaultCatalog()

	m := c.Metrics()
	m[0].ProductQuality = 0
	assert.Equal(t, 3.8, c.StoreMetrics[0].ProductQuality)

	tr := c.Trends()
	tr.DemandScore[StoreHEB] = 0
	tr.Trending[0] = "Costco"
	assert.Equal(t, 0.92, c.MarketTrends.DemandScore[StoreHEB])
	assert.Equal(t, StoreHEB, c.MarketTrends.Trending[0])
}

func TestCatalog_Reviews(t *testing.T) {
	c := DefaultCatalog()

	milk := c.Reviews([]string{"milk"})
	require.Len(t, milk, 2)
	for _, r := range milk {
		assert.Equal(t, "Organic Whole Milk", r.ProductName)
	}

	assert.Len(t, c.Reviews([]string{"MILK", "bread"}), 4)
	assert.Empty(t, c.Reviews([]string{"caviar"}))
	assert.NotNil(t, c.Reviews(nil))
}

func TestCatalog_Fingerprint(t *testing.T) {
	a, err := DefaultCatalog().Fingerprint()
	require.NoError(t, err)
	b, err := DefaultCatalog().Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	changed := DefaultCatalog()
	changed.StoreMetrics[0].OverallRating = 1
	c, err := changed.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestCatalog_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Catalog)
	}{
		{"empty metrics", func(c *Catalog) { c.StoreMetrics = nil }},
		{"duplicate store", func(c *Catalog) { c.StoreMetrics[1].Name = c.StoreMetrics[0].Name }},
		{"reliability above 1", func(c *Catalog) { c.StoreMetrics[0].DeliveryReliability = 1.2 }},
		{"quality above 5", func(c *Catalog) { c.StoreMetrics[0].ProductQuality = 6 }},
		{"negative delivery time", func(c *Catalog) { c.StoreMetrics[0].AvgDeliveryTime = -1 }},
		{"demand above 1", func(c *Catalog) { c.MarketTrends.DemandScore[StoreHEB] = 1.5 }},
		{"review without product", func(c *Catalog) { c.ProductReviews[0].ProductName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultCatalog()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

const sampleCatalog = `
store_metrics:
  - name: Walmart
    overall_rating: 4.1
    delivery_reliability: 0.88
    product_quality: 3.8
    customer_service: 3.6
    substitution_rate: 0.12
    avg_delivery_time: 45
market_trends:
  trending: [Walmart]
  price_volatility:
    Walmart: 0.05
  demand_score:
    Walmart: 0.85
product_reviews:
  - product_name: Bananas
    store: Walmart
    rating: 4.1
    review_count: 10
    freshness: 0.8
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	require.Len(t, c.StoreMetrics, 1)
	assert.Equal(t, 45, c.StoreMetrics[0].AvgDeliveryTime)
	assert.True(t, c.MarketTrends.IsTrending("Walmart"))
	assert.Len(t, c.ProductReviews, 1)
}

func TestParseCatalog_UnknownField(t *testing.T) {
	_, err := ParseCatalog([]byte(sampleCatalog + "\nextra_table: []\n"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("store_metrics:\n  - name: Walmart\n    qualty: 4\n"))
	assert.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "Walmart", c.StoreMetrics[0].Name)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := CatalogFromConfig("")
	require.NoError(t, err)
	assert.Len(t, def.StoreMetrics, 6)
}

func TestCanonicalChain(t *testing.T) {
	tests := []struct {
		name, key, want string
	}{
		{"H-E-B", "", StoreHEB},
		{"h-e-b", "whatever", StoreHEB},
		{"HEB Plus", "heb", StoreHEB},
		{"", "sams-club", StoreSamsClub},
		{"Walmart", "walmart", StoreWalmart},
		{"Costco", "costco", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalChain(tt.name, tt.key), "%s/%s", tt.name, tt.key)
	}
}
