package invoice_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/thepoolshop/shopkeep/internal/invoice"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals(t *testing.T) {
	type testCase struct {
		name         string
		items        []*invoice.Item
		taxRate      string
		wantSubtotal string
		wantTax      string
		wantTotal    string
	}

	tests := []testCase{
		{
			name: "TwoItemsAtFifteenPercent",
			items: []*invoice.Item{
				{Quantity: 2, UnitPrice: d("10.00")},
				{Quantity: 1, UnitPrice: d("5.00")},
			},
			taxRate:      "15.00",
			wantSubtotal: "25.00",
			wantTax:      "3.75",
			wantTotal:    "28.75",
		},
		{
			name:         "NoItems",
			taxRate:      "15.00",
			wantSubtotal: "0",
			wantTax:      "0",
			wantTotal:    "0",
		},
		{
			name: "ZeroTaxRate",
			items: []*invoice.Item{
				{Quantity: 3, UnitPrice: d("7.50")},
			},
			taxRate:      "0",
			wantSubtotal: "22.50",
			wantTax:      "0",
			wantTotal:    "22.50",
		},
		{
			name: "RoundsTaxToCents",
			items: []*invoice.Item{
				{Quantity: 1, UnitPrice: d("0.99")},
			},
			taxRate:      "15.00",
			wantSubtotal: "0.99",
			wantTax:      "0.15", // 0.1485 rounded
			wantTotal:    "1.14",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invoice.ComputeTotals(tt.items, d(tt.taxRate))

			assert.True(t, got.Subtotal.Equal(d(tt.wantSubtotal)), "subtotal: got %s", got.Subtotal)
			assert.True(t, got.TaxAmount.Equal(d(tt.wantTax)), "tax: got %s", got.TaxAmount)
			assert.True(t, got.TotalAmount.Equal(d(tt.wantTotal)), "total: got %s", got.TotalAmount)
		})
	}
}

// Totals always satisfy total == subtotal + tax regardless of the item
// sequence, since they are recomputed from scratch each time.
func TestComputeTotals_Consistency(t *testing.T) {
	items := []*invoice.Item{
		{Quantity: 4, UnitPrice: d("12.34")},
		{Quantity: 9, UnitPrice: d("0.07")},
		{Quantity: 1, UnitPrice: d("199.99")},
	}

	for i := range items {
		got := invoice.ComputeTotals(items[:i+1], d("12.50"))

		assert.True(t, got.TotalAmount.Equal(got.Subtotal.Add(got.TaxAmount)))
	}
}
