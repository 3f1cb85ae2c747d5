package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/wonny/grocer/internal/contracts"
)

type fingerprintStore struct {
	Store        string `json:"s"`
	StoreKey     string `json:"k"`
	Subtotal     string `json:"st"`
	TaxesAndFees string `json:"f"`
	Total        string `json:"t"`
	Subs         int    `json:"n"`
}

type fingerprintInput struct {
	Stores       []fingerprintStore `json:"stores"`
	ShoppingType string             `json:"type"`
	Items        []string           `json:"items"`
}

// Fingerprint identifies the inputs that affect a recommendation. Every
// amount is kept at full precision. Store order is kept since it breaks
// ties; item order and case are not.
func Fingerprint(req Request) string {
	in := fingerprintInput{
		Stores:       make([]fingerprintStore, len(req.StoreTotals)),
		ShoppingType: string(req.ShoppingType),
	}
	for i, st := range req.StoreTotals {
		in.Stores[i] = fingerprintStore{
			Store:        st.Store,
			StoreKey:     st.StoreKey,
			Subtotal:     st.Subtotal.String(),
			TaxesAndFees: st.TaxesAndFees.String(),
			Total:        st.Total.String(),
			Subs:         req.SubstitutionCounts.For(st.StoreKey),
		}
	}
	for _, name := range contracts.CartItemNames(req.CartItems) {
		in.Items = append(in.Items, strings.ToLower(strings.TrimSpace(name)))
	}
	sort.Strings(in.Items)

	data, _ := json.Marshal(in)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
