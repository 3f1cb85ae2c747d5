package signals

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/grocer/internal/contracts"
)

// Store chain display names. Metrics, trends and reviews are keyed by these.
const (
	StoreWalmart  = "Walmart"
	StoreHEB      = "H-E-B"
	StoreTarget   = "Target"
	StoreKroger   = "Kroger"
	StoreAldi     = "Aldi"
	StoreSamsClub = "Sam's Club"
)

// Chains lists the six supported chains in catalog order.
var Chains = []string{StoreWalmart, StoreHEB, StoreTarget, StoreKroger, StoreAldi, StoreSamsClub}

var chainKeys = map[string]string{
	"walmart":    StoreWalmart,
	"heb":        StoreHEB,
	"h-e-b":      StoreHEB,
	"target":     StoreTarget,
	"kroger":     StoreKroger,
	"aldi":       StoreAldi,
	"sams":       StoreSamsClub,
	"samsclub":   StoreSamsClub,
	"sams-club":  StoreSamsClub,
	"sam's club": StoreSamsClub,
}

// CanonicalChain resolves a store to its chain display name, trying the
// display name first and then the store key. Returns "" for unknown chains.
func CanonicalChain(name, key string) string {
	for _, c := range Chains {
		if strings.EqualFold(c, strings.TrimSpace(name)) {
			return c
		}
	}
	if c, ok := chainKeys[strings.ToLower(strings.TrimSpace(key))]; ok {
		return c
	}
	return ""
}

// Catalog is the canned signal dataset. Treat a loaded Catalog as immutable;
// providers hand out copies.
// ⭐ SSOT: static signal tables
type Catalog struct {
	StoreMetrics   []contracts.StoreMetrics  `json:"storeMetrics" yaml:"store_metrics"`
	MarketTrends   contracts.MarketTrendData `json:"marketTrends" yaml:"market_trends"`
	ProductReviews []contracts.ProductReview `json:"productReviews" yaml:"product_reviews"`
}

// DefaultCatalog returns a fresh copy of the built-in dataset.
func DefaultCatalog() *Catalog {
	return &Catalog{
		StoreMetrics: []contracts.StoreMetrics{
			{Name: StoreWalmart, OverallRating: 4.1, DeliveryReliability: 0.88, ProductQuality: 3.8, CustomerService: 3.6, SubstitutionRate: 0.12, AvgDeliveryTime: 45},
			{Name: StoreHEB, OverallRating: 4.7, DeliveryReliability: 0.94, ProductQuality: 4.4, CustomerService: 4.5, SubstitutionRate: 0.05, AvgDeliveryTime: 50},
			{Name: StoreTarget, OverallRating: 4.3, DeliveryReliability: 0.91, ProductQuality: 4.1, CustomerService: 4.2, SubstitutionRate: 0.08, AvgDeliveryTime: 55},
			{Name: StoreKroger, OverallRating: 4.2, DeliveryReliability: 0.89, ProductQuality: 4.0, CustomerService: 3.9, SubstitutionRate: 0.10, AvgDeliveryTime: 50},
			{Name: StoreAldi, OverallRating: 4.4, DeliveryReliability: 0.85, ProductQuality: 3.9, CustomerService: 3.8, SubstitutionRate: 0.15, AvgDeliveryTime: 65},
			{Name: StoreSamsClub, OverallRating: 4.0, DeliveryReliability: 0.87, ProductQuality: 4.0, CustomerService: 3.7, SubstitutionRate: 0.09, AvgDeliveryTime: 60},
		},
		MarketTrends: contracts.MarketTrendData{
			Trending: []string{StoreHEB, StoreAldi, StoreTarget},
			PriceVolatility: map[string]float64{
				StoreWalmart:  0.05,
				StoreHEB:      0.04,
				StoreTarget:   0.07,
				StoreKroger:   0.06,
				StoreAldi:     0.03,
				StoreSamsClub: 0.08,
			},
			DemandScore: map[string]float64{
				StoreWalmart:  0.85,
				StoreHEB:      0.92,
				StoreTarget:   0.78,
				StoreKroger:   0.74,
				StoreAldi:     0.81,
				StoreSamsClub: 0.69,
			},
		},
		ProductReviews: []contracts.ProductReview{
			{ProductName: "Organic Whole Milk", Store: StoreHEB, Rating: 4.7, ReviewCount: 1243, Freshness: 0.95, Summary: "Consistently fresh, long use-by dates"},
			{ProductName: "Organic Whole Milk", Store: StoreWalmart, Rating: 4.2, ReviewCount: 2210, Freshness: 0.86},
			{ProductName: "Large Brown Eggs", Store: StoreAldi, Rating: 4.5, ReviewCount: 876, Freshness: 0.9},
			{ProductName: "Large Brown Eggs", Store: StoreKroger, Rating: 4.3, ReviewCount: 1032, Freshness: 0.88},
			{ProductName: "Sourdough Bread", Store: StoreHEB, Rating: 4.8, ReviewCount: 654, Freshness: 0.97, Summary: "Baked in store daily"},
			{ProductName: "Sourdough Bread", Store: StoreTarget, Rating: 4.0, ReviewCount: 312, Freshness: 0.8},
			{ProductName: "Bananas", Store: StoreWalmart, Rating: 4.1, ReviewCount: 3120, Freshness: 0.84},
			{ProductName: "Bananas", Store: StoreAldi, Rating: 4.4, ReviewCount: 1450, Freshness: 0.89},
			{ProductName: "Boneless Chicken Breast", Store: StoreSamsClub, Rating: 4.5, ReviewCount: 980, Freshness: 0.9, Summary: "Bulk packs, good value"},
			{ProductName: "Boneless Chicken Breast", Store: StoreHEB, Rating: 4.6, ReviewCount: 1105, Freshness: 0.93},
			{ProductName: "Baby Spinach", Store: StoreTarget, Rating: 4.2, ReviewCount: 540, Freshness: 0.82},
			{ProductName: "Baby Spinach", Store: StoreKroger, Rating: 4.1, ReviewCount: 610, Freshness: 0.8},
			{ProductName: "Greek Yogurt", Store: StoreWalmart, Rating: 4.3, ReviewCount: 1500, Freshness: 0.9},
			{ProductName: "Cheddar Cheese", Store: StoreKroger, Rating: 4.4, ReviewCount: 720, Freshness: 0.92},
			{ProductName: "Ground Coffee", Store: StoreTarget, Rating: 4.6, ReviewCount: 2045, Freshness: 0.95},
			{ProductName: "Avocados", Store: StoreHEB, Rating: 4.3, ReviewCount: 890, Freshness: 0.78},
		},
	}
}

// Validate checks ranges on every entry.
func (c *Catalog) Validate() error {
	if len(c.StoreMetrics) == 0 {
		return fmt.Errorf("catalog: store_metrics is empty")
	}

	seen := make(map[string]bool, len(c.StoreMetrics))
	for _, m := range c.StoreMetrics {
		if m.Name == "" {
			return fmt.Errorf("catalog: store metrics entry without name")
		}
		if seen[m.Name] {
			return fmt.Errorf("catalog: duplicate store metrics for %q", m.Name)
		}
		seen[m.Name] = true

		if m.DeliveryReliability < 0 || m.DeliveryReliability > 1 {
			return fmt.Errorf("catalog: %s delivery_reliability %.2f out of [0,1]", m.Name, m.DeliveryReliability)
		}
		if m.ProductQuality < 0 || m.ProductQuality > 5 {
			return fmt.Errorf("catalog: %s product_quality %.2f out of [0,5]", m.Name, m.ProductQuality)
		}
		if m.CustomerService < 0 || m.CustomerService > 5 {
			return fmt.Errorf("catalog: %s customer_service %.2f out of [0,5]", m.Name, m.CustomerService)
		}
		if m.SubstitutionRate < 0 || m.SubstitutionRate > 1 {
			return fmt.Errorf("catalog: %s substitution_rate %.2f out of [0,1]", m.Name, m.SubstitutionRate)
		}
		if m.AvgDeliveryTime < 0 {
			return fmt.Errorf("catalog: %s avg_delivery_time is negative", m.Name)
		}
	}

	for store, d := range c.MarketTrends.DemandScore {
		if d < 0 || d > 1 {
			return fmt.Errorf("catalog: demand score for %s %.2f out of [0,1]", store, d)
		}
	}

	for _, r := range c.ProductReviews {
		if r.ProductName == "" {
			return fmt.Errorf("catalog: product review without product_name")
		}
		if r.Rating < 0 || r.Rating > 5 {
			return fmt.Errorf("catalog: %s rating %.2f out of [0,5]", r.ProductName, r.Rating)
		}
	}

	return nil
}

// Fingerprint is a SHA-256 over the canonical JSON of the catalog.
// Logged at startup so two deployments can be compared.
func (c *Catalog) Fingerprint() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Metrics returns a copy of the store metrics table.
func (c *Catalog) Metrics() []contracts.StoreMetrics {
	out := make([]contracts.StoreMetrics, len(c.StoreMetrics))
	copy(out, c.StoreMetrics)
	return out
}

// Trends returns a deep copy of the market trend data.
func (c *Catalog) Trends() *contracts.MarketTrendData {
	t := &contracts.MarketTrendData{
		Trending:        append([]string(nil), c.MarketTrends.Trending...),
		PriceVolatility: make(map[string]float64, len(c.MarketTrends.PriceVolatility)),
		DemandScore:     make(map[string]float64, len(c.MarketTrends.DemandScore)),
	}
	for k, v := range c.MarketTrends.PriceVolatility {
		t.PriceVolatility[k] = v
	}
	for k, v := range c.MarketTrends.DemandScore {
		t.DemandScore[k] = v
	}
	return t
}

// Reviews returns the catalog reviews matching any of the product names.
func (c *Catalog) Reviews(productNames []string) []contracts.ProductReview {
	out := make([]contracts.ProductReview, 0)
	for _, r := range c.ProductReviews {
		if r.MatchesAny(productNames) {
			out = append(out, r)
		}
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
