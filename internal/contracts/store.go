package contracts

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// StoreTotal is one store's computed cost for the current cart.
// Produced by the cart/checkout side and treated as immutable input here.
// ⭐ SSOT: cart → recommender price hand-off
type StoreTotal struct {
	Store        string          `json:"store" validate:"required"`
	StoreKey     string          `json:"storeKey" validate:"required"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxesAndFees decimal.Decimal `json:"taxesAndFees"`
	Total        decimal.Decimal `json:"total"`
}

// NewStoreTotal builds a StoreTotal from decimal strings, deriving Total.
func NewStoreTotal(store, storeKey, subtotal, taxesAndFees string) (StoreTotal, error) {
	sub, err := decimal.NewFromString(subtotal)
	if err != nil {
		return StoreTotal{}, fmt.Errorf("%w: subtotal %q: %v", ErrInvalidStoreTotal, subtotal, err)
	}

	fees := decimal.Zero
	if taxesAndFees != "" {
		fees, err = decimal.NewFromString(taxesAndFees)
		if err != nil {
			return StoreTotal{}, fmt.Errorf("%w: taxesAndFees %q: %v", ErrInvalidStoreTotal, taxesAndFees, err)
		}
	}

	return StoreTotal{
		Store:        store,
		StoreKey:     storeKey,
		Subtotal:     sub,
		TaxesAndFees: fees,
		Total:        sub.Add(fees),
	}, nil
}

// Validate checks the total invariant.
// A zero subtotal with zero fees means the caller only supplied a total.
func (s StoreTotal) Validate() error {
	if s.Store == "" {
		return fmt.Errorf("%w: store name is required", ErrInvalidStoreTotal)
	}
	if s.Total.IsNegative() {
		return fmt.Errorf("%w: %s total is negative", ErrInvalidStoreTotal, s.Store)
	}
	if s.Subtotal.IsZero() && s.TaxesAndFees.IsZero() {
		return nil
	}
	if !s.Subtotal.Add(s.TaxesAndFees).Equal(s.Total) {
		return fmt.Errorf("%w: %s total %s != subtotal %s + fees %s",
			ErrInvalidStoreTotal, s.Store, s.Total, s.Subtotal, s.TaxesAndFees)
	}
	return nil
}

// StoreNames returns the display names of the given totals, in order.
func StoreNames(totals []StoreTotal) []string {
	names := make([]string, 0, len(totals))
	for _, t := range totals {
		names = append(names, t.Store)
	}
	return names
}

// MinTotal returns the lowest total among the stores.
// Callers must pass at least one store.
func MinTotal(totals []StoreTotal) decimal.Decimal {
	lowest := totals[0].Total
	for _, t := range totals[1:] {
		if t.Total.LessThan(lowest) {
			lowest = t.Total
		}
	}
	return lowest
}

// SubstitutionCounts maps a storeKey to the number of cart items pending
// a substitution decision at that store.
type SubstitutionCounts map[string]int

// For returns the pending count for a store key; missing keys count as 0.
func (s SubstitutionCounts) For(storeKey string) int {
	if s == nil {
		return 0
	}
	return s[storeKey]
}

// ShoppingType is the fulfillment mode of the order.
type ShoppingType string

const (
	ShoppingPickup   ShoppingType = "pickup"
	ShoppingDelivery ShoppingType = "delivery"
	ShoppingInStore  ShoppingType = "instore"
)

// ParseShoppingType accepts the wire names (case-insensitive).
// "in-store" and "in_store" are accepted as aliases of instore.
func ParseShoppingType(s string) (ShoppingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pickup":
		return ShoppingPickup, nil
	case "delivery":
		return ShoppingDelivery, nil
	case "instore", "in-store", "in_store":
		return ShoppingInStore, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidShoppingType, s)
	}
}

// Valid reports whether t is one of the known fulfillment modes.
func (t ShoppingType) Valid() bool {
	return t == ShoppingPickup || t == ShoppingDelivery || t == ShoppingInStore
}

// CartItem is the part of a cart line the recommender cares about.
type CartItem struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity"`
}

// CartItemNames returns the item names used for review lookups.
func CartItemNames(items []CartItem) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		if it.Name != "" {
			names = append(names, it.Name)
		}
	}
	return names
}
