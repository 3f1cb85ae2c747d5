package contracts

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreTotal(t *testing.T) {
	st, err := NewStoreTotal("Walmart", "walmart", "45.50", "4.50")
	require.NoError(t, err)

	assert.True(t, st.Total.Equal(decimal.RequireFromString("50.00")))
	assert.NoError(t, st.Validate())

	_, err = NewStoreTotal("Walmart", "walmart", "abc", "")
	assert.ErrorIs(t, err, ErrInvalidStoreTotal)

	_, err = NewStoreTotal("Walmart", "walmart", "10", "x")
	assert.ErrorIs(t, err, ErrInvalidStoreTotal)
}

func TestStoreTotal_Validate(t *testing.T) {
	tests := []struct {
		name    string
		st      StoreTotal
		wantErr bool
	}{
		{
			name: "total only",
			st:   StoreTotal{Store: "Target", StoreKey: "target", Total: decimal.RequireFromString("60.00")},
		},
		{
			name: "consistent",
			st: StoreTotal{Store: "Target", StoreKey: "target",
				Subtotal: decimal.RequireFromString("55"), TaxesAndFees: decimal.RequireFromString("5"),
				Total: decimal.RequireFromString("60")},
		},
		{
			name: "inconsistent",
			st: StoreTotal{Store: "Target", StoreKey: "target",
				Subtotal: decimal.RequireFromString("55"), TaxesAndFees: decimal.RequireFromString("4"),
				Total: decimal.RequireFromString("60")},
			wantErr: true,
		},
		{
			name:    "negative",
			st:      StoreTotal{Store: "Target", Total: decimal.RequireFromString("-1")},
			wantErr: true,
		},
		{
			name:    "no name",
			st:      StoreTotal{Total: decimal.RequireFromString("1")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.st.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStoreTotal)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStoreTotal_JSONCurrencyStrings(t *testing.T) {
	var st StoreTotal
	require.NoError(t, json.Unmarshal([]byte(`{"store":"H-E-B","storeKey":"heb","total":"52.00"}`), &st))
	assert.True(t, st.Total.Equal(decimal.NewFromInt(52)))

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total":"52"`)
}

func TestMinTotalAndNames(t *testing.T) {
	totals := []StoreTotal{
		{Store: "Walmart", Total: decimal.RequireFromString("50")},
		{Store: "H-E-B", Total: decimal.RequireFromString("49.99")},
		{Store: "Target", Total: decimal.RequireFromString("60")},
	}

	assert.True(t, MinTotal(totals).Equal(decimal.RequireFromString("49.99")))
	assert.Equal(t, []string{"Walmart", "H-E-B", "Target"}, StoreNames(totals))
}

func TestSubstitutionCounts_For(t *testing.T) {
	var nilCounts SubstitutionCounts
	assert.Equal(t, 0, nilCounts.For("heb"))

	counts := SubstitutionCounts{"heb": 2}
	assert.Equal(t, 2, counts.For("heb"))
	assert.Equal(t, 0, counts.For("walmart"))
}

func TestParseShoppingType(t *testing.T) {
	tests := []struct {
		in      string
		want    ShoppingType
		wantErr bool
	}{
		{"pickup", ShoppingPickup, false},
		{"Delivery", ShoppingDelivery, false},
		{"in-store", ShoppingInStore, false},
		{"in_store", ShoppingInStore, false},
		{" instore ", ShoppingInStore, false},
		{"drone", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShoppingType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestCartItemNames(t *testing.T) {
	items := []CartItem{{Name: "milk", Quantity: 1}, {Name: ""}, {Name: "eggs", Quantity: 12}}
	assert.Equal(t, []string{"milk", "eggs"}, CartItemNames(items))
}
