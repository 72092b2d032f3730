package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteSalesCSV renders the sales report as a flat CSV: a totals row
// followed by the per-product breakdown.
func WriteSalesCSV(w io.Writer, r *SalesReport) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"period_start", "period_end", "invoice_count", "total", "average_sale"},
		{
			r.Start.Format("2006-01-02"),
			r.End.Format("2006-01-02"),
			strconv.Itoa(r.Count),
			r.Total.StringFixed(2),
			r.AverageSale.StringFixed(2),
		},
		{},
		{"sku", "product", "units_sold", "revenue"},
	}

	for _, p := range r.TopProducts {
		records = append(records, []string{
			p.SKU, p.Name, strconv.Itoa(p.UnitsSold), p.Revenue.StringFixed(2),
		})
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing sales csv: %w", err)
	}

	return nil
}

// WriteStockCSV renders the stock report as a flat CSV: a totals row
// followed by the recent movements.
func WriteStockCSV(w io.Writer, r *StockReport) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"product_count", "total_units", "total_value", "low_stock", "out_of_stock"},
		{
			strconv.Itoa(r.ProductCount),
			strconv.Itoa(r.TotalUnits),
			r.TotalValue.StringFixed(2),
			strconv.Itoa(r.LowStockCount),
			strconv.Itoa(r.OutOfStockCount),
		},
		{},
		{"date", "sku", "product", "kind", "quantity", "note", "created_by"},
	}

	for _, m := range r.RecentMovements {
		records = append(records, []string{
			m.CreatedAt.Format("2006-01-02 15:04"),
			m.SKU, m.ProductName, string(m.Kind),
			strconv.Itoa(m.Quantity), m.Note, m.CreatedBy,
		})
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing stock csv: %w", err)
	}

	return nil
}
