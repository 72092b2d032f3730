package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thepoolshop/shopkeep/internal/invoice"
	"github.com/thepoolshop/shopkeep/internal/ledger"
	"github.com/thepoolshop/shopkeep/internal/product"
)

const pgUniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	i.id, i.invoice_number, i.customer_id, c.name, i.created_by, i.status,
	i.subtotal, i.tax_rate, i.tax_amount, i.total_amount, i.paid_at, i.notes, i.created_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var statusStr string

	var customerName sql.NullString

	var createdBy sql.NullString

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.CustomerID, &customerName, &createdBy, &statusStr,
		&inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.TotalAmount,
		&inv.PaidAt, &inv.Notes, &inv.CreatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(statusStr)
	inv.CustomerName = customerName.String
	inv.CreatedBy = createdBy.String

	return &inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO invoices (invoice_number, customer_id, created_by, status, subtotal,
			tax_rate, tax_amount, total_amount, notes, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id, created_at
	`

	err = tx.QueryRowContext(ctx, query,
		inv.Number, inv.CustomerID, inv.CreatedBy, inv.Status,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.TotalAmount, inv.Notes,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return invoice.ErrNumberTaken
		}

		return fmt.Errorf("creating invoice: %w", err)
	}

	for _, item := range inv.Items {
		item.InvoiceID = inv.ID

		if err := insertItem(ctx, tx, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing invoice create: %w", err)
	}

	return nil
}

func insertItem(ctx context.Context, tx *sql.Tx, item *invoice.Item) error {
	query := `
		INSERT INTO invoice_items (invoice_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := tx.QueryRowContext(ctx, query,
		item.InvoiceID, item.ProductID, item.Quantity, item.UnitPrice,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("creating invoice item: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		LEFT JOIN customers c ON i.customer_id = c.id
		WHERE i.id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	items, err := s.loadItems(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	inv.Items = items

	return inv, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) loadItems(ctx context.Context, db querier, invoiceID uuid.UUID) ([]*invoice.Item, error) {
	query := `
		SELECT it.id, it.invoice_id, it.product_id, p.name, p.sku, it.quantity, it.unit_price
		FROM invoice_items it
		JOIN products p ON it.product_id = p.id
		WHERE it.invoice_id = $1
		ORDER BY it.id
	`

	rows, err := db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing invoice items: %w", err)
	}
	defer rows.Close()

	var items []*invoice.Item

	for rows.Next() {
		var item invoice.Item
		if err := rows.Scan(
			&item.ID, &item.InvoiceID, &item.ProductID, &item.ProductName,
			&item.SKU, &item.Quantity, &item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scanning invoice item: %w", err)
		}

		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice item rows: %w", err)
	}

	return items, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		LEFT JOIN customers c ON i.customer_id = c.id
		WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND i.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (i.invoice_number ILIKE $%d OR c.name ILIKE $%d)", argIdx, argIdx)

		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	query += " ORDER BY i.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invoices, nil
}

func (s *Store) Summary(ctx context.Context) (invoice.Summary, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'paid'),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'paid'), 0)
		FROM invoices
	`

	var sum invoice.Summary
	if err := s.db.QueryRowContext(ctx, query).
		Scan(&sum.PaidCount, &sum.UnpaidCount, &sum.TotalRevenue); err != nil {
		return invoice.Summary{}, fmt.Errorf("summarizing invoices: %w", err)
	}

	return sum, nil
}

func (s *Store) MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	query := `SELECT COALESCE(MAX(invoice_number), '') FROM invoices WHERE invoice_number LIKE $1`

	var max string
	if err := s.db.QueryRowContext(ctx, query, prefix+"%").Scan(&max); err != nil {
		return "", fmt.Errorf("finding max invoice number: %w", err)
	}

	return max, nil
}

func (s *Store) AddItem(ctx context.Context, item *invoice.Item, totals invoice.Totals) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertItem(ctx, tx, item); err != nil {
		return err
	}

	if err := updateTotals(ctx, tx, item.InvoiceID, totals); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item add: %w", err)
	}

	return nil
}

func (s *Store) RemoveItem(ctx context.Context, invoiceID, itemID uuid.UUID, totals invoice.Totals) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM invoice_items WHERE id = $1 AND invoice_id = $2`, itemID, invoiceID)
	if err != nil {
		return fmt.Errorf("deleting invoice item: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return invoice.ErrItemNotFound
	}

	if err := updateTotals(ctx, tx, invoiceID, totals); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item remove: %w", err)
	}

	return nil
}

func updateTotals(ctx context.Context, tx *sql.Tx, invoiceID uuid.UUID, totals invoice.Totals) error {
	query := `
		UPDATE invoices
		SET subtotal = $1, tax_amount = $2, total_amount = $3
		WHERE id = $4
	`

	if _, err := tx.ExecContext(ctx, query,
		totals.Subtotal, totals.TaxAmount, totals.TotalAmount, invoiceID); err != nil {
		return fmt.Errorf("updating invoice totals: %w", err)
	}

	return nil
}

type finalizeTx struct {
	tx      *sql.Tx
	invoice *invoice.Invoice
}

// BeginFinalize opens the finalize transaction and locks the invoice row,
// so two concurrent finalizes of the same invoice serialize and the
// second one sees the paid status.
func (s *Store) BeginFinalize(ctx context.Context, invoiceID uuid.UUID) (invoice.FinalizeTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning finalize: %w", err)
	}

	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		LEFT JOIN customers c ON i.customer_id = c.id
		WHERE i.id = $1
		FOR UPDATE OF i`

	inv, err := scanInvoice(tx.QueryRowContext(ctx, query, invoiceID))
	if err != nil {
		tx.Rollback()

		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("locking invoice: %w", err)
	}

	items, err := s.loadItems(ctx, tx, invoiceID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	inv.Items = items

	return &finalizeTx{tx: tx, invoice: inv}, nil
}

func (f *finalizeTx) Invoice() *invoice.Invoice { return f.invoice }
func (f *finalizeTx) Commit() error             { return f.tx.Commit() }
func (f *finalizeTx) Rollback() error           { return f.tx.Rollback() }

func (f *finalizeTx) LockProduct(ctx context.Context, productID uuid.UUID) (*product.Product, error) {
	query := `
		SELECT id, sku, name, description, category, quantity, cost_price, selling_price,
			low_stock_threshold, is_active, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var p product.Product

	err := f.tx.QueryRowContext(ctx, query, productID).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.Quantity,
		&p.CostPrice, &p.SellingPrice, &p.LowStockThreshold, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNotFound
		}

		return nil, fmt.Errorf("locking product: %w", err)
	}

	return &p, nil
}

func (f *finalizeTx) SetProductQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	query := `UPDATE products SET quantity = $1, updated_at = NOW() WHERE id = $2`

	if _, err := f.tx.ExecContext(ctx, query, quantity, productID); err != nil {
		return fmt.Errorf("setting product quantity: %w", err)
	}

	return nil
}

func (f *finalizeTx) AppendEntry(ctx context.Context, e ledger.Entry) error {
	query := `
		INSERT INTO stock_history (product_id, kind, quantity, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NOW())
	`

	if _, err := f.tx.ExecContext(ctx, query, e.ProductID, e.Kind, e.Quantity, e.Note, e.CreatedBy); err != nil {
		return fmt.Errorf("appending stock history: %w", err)
	}

	return nil
}

func (f *finalizeTx) MarkPaid(ctx context.Context, paidAt time.Time) error {
	query := `UPDATE invoices SET status = $1, paid_at = $2 WHERE id = $3`

	if _, err := f.tx.ExecContext(ctx, query, invoice.StatusPaid, paidAt, f.invoice.ID); err != nil {
		return fmt.Errorf("marking invoice paid: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
