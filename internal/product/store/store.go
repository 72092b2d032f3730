package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thepoolshop/shopkeep/internal/ledger"
	"github.com/thepoolshop/shopkeep/internal/product"
)

// LowStockCondition is the single SQL rendering of the low-stock
// classifier. Reports reuse it so their counts match the product listing.
const LowStockCondition = "quantity <= low_stock_threshold"

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

const selectProductColumns = `
	id, sku, name, description, category, quantity, cost_price, selling_price,
	low_stock_threshold, is_active, created_at, updated_at
`

func scanProduct(s scanner) (*product.Product, error) {
	var p product.Product

	if err := s.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.Quantity,
		&p.CostPrice, &p.SellingPrice, &p.LowStockThreshold, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *product.Product, initial *ledger.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (sku, name, description, category, quantity, cost_price,
			selling_price, low_stock_threshold, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id, created_at
	`

	err = tx.QueryRowContext(ctx, query,
		p.SKU, p.Name, p.Description, p.Category, p.Quantity,
		p.CostPrice, p.SellingPrice, p.LowStockThreshold, p.Active,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return product.ErrDuplicateSKU
		}

		return fmt.Errorf("creating product: %w", err)
	}

	if initial != nil {
		e := *initial
		e.ProductID = p.ID

		if err := appendEntry(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing product create: %w", err)
	}

	return nil
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*product.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE sku = $1`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, sku))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNotFound
		}

		return nil, fmt.Errorf("getting product by sku: %w", err)
	}

	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *product.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, cost_price = $4,
			selling_price = $5, low_stock_threshold = $6, updated_at = NOW()
		WHERE id = $7
	`

	res, err := s.db.ExecContext(ctx, query,
		p.Name, p.Description, p.Category, p.CostPrice,
		p.SellingPrice, p.LowStockThreshold, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return product.ErrNotFound
	}

	return nil
}

func (s *Store) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE products
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivating product: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return product.ErrNotFound
	}

	return nil
}

func (s *Store) ListProducts(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE 1=1`

	var args []any

	argIdx := 1

	if !filter.IncludeInactive {
		query += " AND is_active = TRUE"
	}

	if filter.Search != "" {
		query += fmt.Sprintf(
			" AND (sku ILIKE $%d OR name ILIKE $%d OR category ILIKE $%d OR description ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx)

		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)

		args = append(args, filter.Category)
		argIdx++
	}

	if filter.LowStock {
		query += " AND " + LowStockCondition
	}

	if filter.OutOfStock {
		query += " AND quantity = 0"
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*product.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM products
		WHERE is_active = TRUE AND category <> ''
		ORDER BY category
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []string

	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, c)
	}

	return categories, rows.Err()
}

type stockTx struct {
	tx      *sql.Tx
	product *product.Product
}

// BeginStockUpdate opens a transaction and locks the product row so
// concurrent check-and-decrement operations serialize on it.
func (s *Store) BeginStockUpdate(ctx context.Context, productID uuid.UUID) (product.StockTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning stock update: %w", err)
	}

	query := `SELECT ` + selectProductColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	p, err := scanProduct(tx.QueryRowContext(ctx, query, productID))
	if err != nil {
		tx.Rollback()

		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNotFound
		}

		return nil, fmt.Errorf("locking product: %w", err)
	}

	return &stockTx{tx: tx, product: p}, nil
}

func (t *stockTx) Product() *product.Product { return t.product }
func (t *stockTx) Commit() error             { return t.tx.Commit() }
func (t *stockTx) Rollback() error           { return t.tx.Rollback() }

func (t *stockTx) SetQuantity(ctx context.Context, quantity int) error {
	query := `UPDATE products SET quantity = $1, updated_at = NOW() WHERE id = $2`

	if _, err := t.tx.ExecContext(ctx, query, quantity, t.product.ID); err != nil {
		return fmt.Errorf("setting quantity: %w", err)
	}

	return nil
}

func (t *stockTx) AppendEntry(ctx context.Context, e ledger.Entry) error {
	return appendEntry(ctx, t.tx, e)
}

// execer is satisfied by both *sql.Tx and *sql.DB.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func appendEntry(ctx context.Context, db execer, e ledger.Entry) error {
	query := `
		INSERT INTO stock_history (product_id, kind, quantity, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NOW())
	`

	if _, err := db.ExecContext(ctx, query, e.ProductID, e.Kind, e.Quantity, e.Note, e.CreatedBy); err != nil {
		return fmt.Errorf("appending stock history: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
