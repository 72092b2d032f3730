package report_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepoolshop/shopkeep/internal/ledger"
	"github.com/thepoolshop/shopkeep/internal/report"
)

func TestWriteSalesCSV(t *testing.T) {
	r := &report.SalesReport{
		Start:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Total:       decimal.RequireFromString("1250.50"),
		Count:       12,
		AverageSale: decimal.RequireFromString("104.21"),
		TopProducts: []report.ProductSales{
			{SKU: "POOL-001", Name: "Chlorine Tablets", UnitsSold: 40, Revenue: decimal.RequireFromString("400.00")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteSalesCSV(&buf, r))

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1

	// The blank separator line is dropped by the reader.
	records, err := reader.ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, []string{"2026-08-01", "2026-08-28", "12", "1250.50", "104.21"}, records[1])
	assert.Equal(t, []string{"POOL-001", "Chlorine Tablets", "40", "400.00"}, records[3])
}

func TestWriteStockCSV(t *testing.T) {
	r := &report.StockReport{
		StockTotals: report.StockTotals{
			ProductCount:    3,
			TotalUnits:      55,
			TotalValue:      decimal.RequireFromString("812.25"),
			LowStockCount:   1,
			OutOfStockCount: 1,
		},
		RecentMovements: []report.Movement{
			{
				Entry: ledger.Entry{
					Kind:      ledger.KindOut,
					Quantity:  -3,
					Note:      "Sold via INV-20260828-0001",
					CreatedBy: "admin",
					CreatedAt: time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC),
				},
				ProductName: "Chlorine Tablets",
				SKU:         "POOL-001",
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteStockCSV(&buf, r))

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, []string{"3", "55", "812.25", "1", "1"}, records[1])
	assert.Equal(t,
		[]string{"2026-08-28 09:30", "POOL-001", "Chlorine Tablets", "OUT", "-3", "Sold via INV-20260828-0001", "admin"},
		records[3])
}
