package product_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/thepoolshop/shopkeep/internal/product"
)

func TestProduct_IsLowStock(t *testing.T) {
	type testCase struct {
		name      string
		quantity  int
		threshold int
		want      bool
	}

	tests := []testCase{
		{name: "AboveThreshold", quantity: 6, threshold: 5, want: false},
		{name: "AtThreshold", quantity: 5, threshold: 5, want: true},
		{name: "BelowThreshold", quantity: 2, threshold: 5, want: true},
		{name: "OutOfStock", quantity: 0, threshold: 5, want: true},
		{name: "ZeroThreshold", quantity: 1, threshold: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &product.Product{Quantity: tt.quantity, LowStockThreshold: tt.threshold}

			assert.Equal(t, tt.want, p.IsLowStock())
		})
	}
}

func TestProduct_StockValue(t *testing.T) {
	p := &product.Product{
		Quantity:  7,
		CostPrice: decimal.RequireFromString("40.50"),
	}

	assert.True(t, p.StockValue().Equal(decimal.RequireFromString("283.50")))
}
