package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thepoolshop/shopkeep/internal/ledger"
	productstore "github.com/thepoolshop/shopkeep/internal/product/store"
	"github.com/thepoolshop/shopkeep/internal/report"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SalesTotals(ctx context.Context, start, end time.Time) (report.SalesTotals, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM invoices
		WHERE status = 'paid' AND paid_at BETWEEN $1 AND $2
	`

	var totals report.SalesTotals
	if err := s.db.QueryRowContext(ctx, query, start, end).
		Scan(&totals.InvoiceCount, &totals.Total); err != nil {
		return report.SalesTotals{}, fmt.Errorf("summing sales: %w", err)
	}

	return totals, nil
}

func (s *Store) TopProducts(ctx context.Context, start, end time.Time, limit int) ([]report.ProductSales, error) {
	query := `
		SELECT p.id, p.sku, p.name, SUM(it.quantity), SUM(it.quantity * it.unit_price)
		FROM invoice_items it
		JOIN invoices i ON it.invoice_id = i.id
		JOIN products p ON it.product_id = p.id
		WHERE i.status = 'paid' AND i.paid_at BETWEEN $1 AND $2
		GROUP BY p.id, p.sku, p.name
		ORDER BY SUM(it.quantity * it.unit_price) DESC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("listing top products: %w", err)
	}
	defer rows.Close()

	var top []report.ProductSales

	for rows.Next() {
		var ps report.ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.SKU, &ps.Name, &ps.UnitsSold, &ps.Revenue); err != nil {
			return nil, fmt.Errorf("scanning top product: %w", err)
		}

		top = append(top, ps)
	}

	return top, rows.Err()
}

func (s *Store) DailySales(ctx context.Context, start, end time.Time) ([]report.DailySales, error) {
	query := `
		SELECT DATE_TRUNC('day', paid_at), COUNT(*), SUM(total_amount)
		FROM invoices
		WHERE status = 'paid' AND paid_at BETWEEN $1 AND $2
		GROUP BY DATE_TRUNC('day', paid_at)
		ORDER BY DATE_TRUNC('day', paid_at)
	`

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing daily sales: %w", err)
	}
	defer rows.Close()

	var daily []report.DailySales

	for rows.Next() {
		var d report.DailySales
		if err := rows.Scan(&d.Date, &d.InvoiceCount, &d.Total); err != nil {
			return nil, fmt.Errorf("scanning daily sales: %w", err)
		}

		daily = append(daily, d)
	}

	return daily, rows.Err()
}

func (s *Store) StockTotals(ctx context.Context) (report.StockTotals, error) {
	// Uses the same low-stock condition as the product listing so the
	// report's count matches what the list filter returns.
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(quantity), 0),
			COALESCE(SUM(quantity * cost_price), 0),
			COUNT(*) FILTER (WHERE ` + productstore.LowStockCondition + `),
			COUNT(*) FILTER (WHERE quantity = 0)
		FROM products
		WHERE is_active = TRUE
	`

	var totals report.StockTotals
	if err := s.db.QueryRowContext(ctx, query).Scan(
		&totals.ProductCount, &totals.TotalUnits, &totals.TotalValue,
		&totals.LowStockCount, &totals.OutOfStockCount,
	); err != nil {
		return report.StockTotals{}, fmt.Errorf("summing stock: %w", err)
	}

	return totals, nil
}

func (s *Store) RecentMovements(ctx context.Context, limit int) ([]report.Movement, error) {
	query := `
		SELECT h.id, h.product_id, h.kind, h.quantity, h.note, h.created_by, h.created_at,
			p.name, p.sku
		FROM stock_history h
		JOIN products p ON h.product_id = p.id
		ORDER BY h.created_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent movements: %w", err)
	}
	defer rows.Close()

	var movements []report.Movement

	for rows.Next() {
		var m report.Movement

		var kind string

		var createdBy sql.NullString

		if err := rows.Scan(
			&m.ID, &m.ProductID, &kind, &m.Quantity, &m.Note, &createdBy, &m.CreatedAt,
			&m.ProductName, &m.SKU,
		); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}

		m.Kind = ledger.Kind(kind)
		m.CreatedBy = createdBy.String

		movements = append(movements, m)
	}

	return movements, rows.Err()
}
