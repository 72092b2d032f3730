package pricelist_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepoolshop/shopkeep/internal/importer/pricelist"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParser_Parse(t *testing.T) {
	input := strings.Join([]string{
		"THE POOLsHOP SUPPLIER LIST,,,,,,",
		"Exported 2026-08-28,,,,,,",
		"SKU,Name,Category,Qty,Cost,Price,Reorder Level",
		"POOL-001,Chlorine Tablets 5kg,Chemicals,40,6.50,10.00,10",
		"POOL-002,Leaf Skimmer Net,Accessories,12,3.10,7.95,3",
		",,,,,,",
		"Total,,,52,,,",
	}, "\n")

	rows, err := pricelist.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "POOL-001", rows[0].SKU)
	assert.Equal(t, "Chlorine Tablets 5kg", rows[0].Name)
	assert.Equal(t, "Chemicals", rows[0].Category)
	assert.Equal(t, 40, rows[0].Quantity)
	assert.True(t, rows[0].CostPrice.Equal(d("6.50")))
	assert.True(t, rows[0].SellingPrice.Equal(d("10.00")))
	assert.Equal(t, 10, rows[0].LowStockThreshold)

	assert.Equal(t, "POOL-002", rows[1].SKU)
	assert.Equal(t, 3, rows[1].LowStockThreshold)
}

func TestParser_Parse_SemicolonsAndCommaDecimals(t *testing.T) {
	input := strings.Join([]string{
		"Ref;Designation;Qty;Cost;Price",
		"POOL-010;Épuisette à feuilles;5;3,10;1.234,56",
	}, "\n")

	rows, err := pricelist.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "POOL-010", rows[0].SKU)
	assert.Equal(t, "Épuisette à feuilles", rows[0].Name)
	assert.True(t, rows[0].CostPrice.Equal(d("3.10")))
	assert.True(t, rows[0].SellingPrice.Equal(d("1234.56")))
}

func TestParser_Parse_CurrencySymbols(t *testing.T) {
	input := strings.Join([]string{
		"sku,name,price",
		"POOL-020,Pool Pump,€ 349.99",
	}, "\n")

	rows, err := pricelist.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].SellingPrice.Equal(d("349.99")))
}

func TestParser_Parse_SkipsUnparseableRows(t *testing.T) {
	input := strings.Join([]string{
		"sku,name,qty,price",
		"POOL-001,Chlorine Tablets,n/a,10.00",
		"POOL-002,Leaf Skimmer,4,7.95",
	}, "\n")

	rows, err := pricelist.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "POOL-002", rows[0].SKU)
}

func TestParser_Parse_NoHeader(t *testing.T) {
	_, err := pricelist.NewParser().Parse(strings.NewReader("just,some,cells\n1,2,3\n"))

	assert.ErrorContains(t, err, "no header row found")
}
