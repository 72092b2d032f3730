package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/thepoolshop/shopkeep/internal/customer"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (name, email, phone, address, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, c.Name, c.Email, c.Phone, c.Address).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}

	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	query := `SELECT id, name, email, phone, address, created_at FROM customers WHERE id = $1`

	var c customer.Customer

	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.ErrNotFound
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return &c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, address = $4
		WHERE id = $5
	`

	res, err := s.db.ExecContext(ctx, query, c.Name, c.Email, c.Phone, c.Address, c.ID)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return customer.ErrNotFound
	}

	return nil
}

// DeleteCustomer hard-deletes the customer. The invoices foreign key is
// ON DELETE SET NULL, so their invoices survive as walk-in sales.
func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return customer.ErrNotFound
	}

	return nil
}

func (s *Store) ListCustomers(ctx context.Context, search string) ([]*customer.Customer, error) {
	query := `
		SELECT c.id, c.name, c.email, c.phone, c.address, c.created_at,
			COUNT(i.id) AS invoice_count,
			COALESCE(SUM(i.total_amount) FILTER (WHERE i.status = 'paid'), 0) AS total_spent
		FROM customers c
		LEFT JOIN invoices i ON i.customer_id = c.id
	`

	var args []any

	if search != "" {
		query += ` WHERE c.name ILIKE $1 OR c.phone ILIKE $1 OR c.email ILIKE $1`

		args = append(args, "%"+search+"%")
	}

	query += ` GROUP BY c.id ORDER BY c.name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer

	for rows.Next() {
		var c customer.Customer
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt,
			&c.InvoiceCount, &c.TotalSpent,
		); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}

		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer rows: %w", err)
	}

	return customers, nil
}
