package ledger

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*Entry, error)
	Recent(ctx context.Context, limit int) ([]*Entry, error)
	SumDeltas(ctx context.Context, productID uuid.UUID) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// History returns all movements for a product, most recent first.
func (s *Service) History(ctx context.Context, productID uuid.UUID) ([]*Entry, error) {
	return s.repo.ListByProduct(ctx, productID)
}

// Recent returns the latest movements across all products, for the
// dashboard activity feed.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	return s.repo.Recent(ctx, limit)
}

// Reconcile returns the sum of all ledger deltas for a product. For a
// product created with initial quantity q0, current quantity should equal
// q0 plus this sum.
func (s *Service) Reconcile(ctx context.Context, productID uuid.UUID) (int, error) {
	return s.repo.SumDeltas(ctx, productID)
}
