package commands

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/wonny/grocer/internal/contracts"
)

// parseStoreFlag parses "Name=total" or "Name=subtotal+fees".
// The store key is the lowercased name without punctuation: "H-E-B" → "heb".
func parseStoreFlag(s string) (contracts.StoreTotal, error) {
	name, amount, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return contracts.StoreTotal{}, fmt.Errorf("store %q: want Name=total", s)
	}

	subtotal, fees, _ := strings.Cut(strings.TrimSpace(amount), "+")
	return contracts.NewStoreTotal(name, storeKey(name), strings.TrimSpace(subtotal), strings.TrimSpace(fees))
}

func storeKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseSubsFlags parses repeated "key=n" substitution counts
func parseSubsFlags(values []string) (contracts.SubstitutionCounts, error) {
	counts := make(contracts.SubstitutionCounts, len(values))
	for _, v := range values {
		key, n, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("subs %q: want key=count", v)
		}
		count, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("subs %q: count must be a non-negative integer", v)
		}
		counts[key] = count
	}
	return counts, nil
}

// parseItems turns item flags into cart items, one unit each
func parseItems(values []string) []contracts.CartItem {
	items := make([]contracts.CartItem, 0, len(values))
	for _, v := range values {
		if name := strings.TrimSpace(v); name != "" {
			items = append(items, contracts.CartItem{Name: name, Quantity: 1})
		}
	}
	return items
}
