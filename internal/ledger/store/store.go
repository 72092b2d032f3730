package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/thepoolshop/shopkeep/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectEntryColumns = `id, product_id, kind, quantity, note, created_by, created_at`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var kindStr string

	var createdBy sql.NullString

	if err := s.Scan(&e.ID, &e.ProductID, &kindStr, &e.Quantity, &e.Note, &createdBy, &e.CreatedAt); err != nil {
		return nil, err
	}

	e.Kind = ledger.Kind(kindStr)
	e.CreatedBy = createdBy.String

	return &e, nil
}

func (s *Store) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM stock_history
		WHERE product_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("listing stock history: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (s *Store) Recent(ctx context.Context, limit int) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM stock_history
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent stock history: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (s *Store) SumDeltas(ctx context.Context, productID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_history WHERE product_id = $1`

	var sum int
	if err := s.db.QueryRowContext(ctx, query, productID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("summing stock deltas: %w", err)
	}

	return sum, nil
}

func collectEntries(rows *sql.Rows) ([]*ledger.Entry, error) {
	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stock history entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stock history rows: %w", err)
	}

	return entries, nil
}
