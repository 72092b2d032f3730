package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=product
type Repository interface {
	// CreateProduct inserts the product and, when initial is non-nil, the
	// initial-stock ledger entry in the same database transaction.
	CreateProduct(ctx context.Context, p *Product, initial *ledger.Entry) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter ListFilter) ([]*Product, error)
	Categories(ctx context.Context) ([]string, error)

	BeginStockUpdate(ctx context.Context, productID uuid.UUID) (StockTx, error)
}

// StockTx is a transaction holding a row lock on one product. The quantity
// change and its ledger entry commit or roll back together.
type StockTx interface {
	Product() *Product
	SetQuantity(ctx context.Context, quantity int) error
	AppendEntry(ctx context.Context, e ledger.Entry) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	SKU               string
	Name              string
	Description       string
	Category          string
	Quantity          int
	CostPrice         decimal.Decimal
	SellingPrice      decimal.Decimal
	LowStockThreshold int
}

type ListFilter struct {
	Search          string
	Category        string
	LowStock        bool
	OutOfStock      bool
	IncludeInactive bool
}

func (s *Service) Create(ctx context.Context, params CreateParams, actor string) (*Product, error) {
	if err := validateCreate(params); err != nil {
		return nil, err
	}

	p := &Product{
		SKU:               params.SKU,
		Name:              params.Name,
		Description:       params.Description,
		Category:          params.Category,
		Quantity:          params.Quantity,
		CostPrice:         params.CostPrice,
		SellingPrice:      params.SellingPrice,
		LowStockThreshold: params.LowStockThreshold,
		Active:            true,
	}

	var initial *ledger.Entry

	if params.Quantity > 0 {
		e := ledger.NewEntry(uuid.Nil, ledger.KindIn, params.Quantity, "Initial stock", actor)
		initial = &e
	}

	if err := s.repo.CreateProduct(ctx, p, initial); err != nil {
		return nil, err
	}

	return p, nil
}

func validateCreate(params CreateParams) error {
	if params.SKU == "" {
		return &ValidationError{Field: "sku", Msg: "required"}
	}

	if params.Name == "" {
		return &ValidationError{Field: "name", Msg: "required"}
	}

	if params.Quantity < 0 {
		return &ValidationError{Field: "quantity", Msg: "must not be negative"}
	}

	if params.CostPrice.IsNegative() || params.SellingPrice.IsNegative() {
		return &ValidationError{Field: "price", Msg: "must not be negative"}
	}

	if params.LowStockThreshold < 0 {
		return &ValidationError{Field: "low_stock_threshold", Msg: "must not be negative"}
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.repo.GetProductBySKU(ctx, sku)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// Update persists metadata and pricing changes. Quantity is deliberately
// not part of this path; it only moves through the stock operations below.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Msg: "required"}
	}

	if p.CostPrice.IsNegative() || p.SellingPrice.IsNegative() {
		return &ValidationError{Field: "price", Msg: "must not be negative"}
	}

	return s.repo.UpdateProduct(ctx, p)
}

// Deactivate soft-deletes a product. Historical invoices keep referencing
// it, so products are never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeactivateProduct(ctx, id)
}

// AddStock increases the quantity by qty (> 0) and records an IN entry.
func (s *Service) AddStock(ctx context.Context, id uuid.UUID, qty int, note, actor string) (*Product, error) {
	if qty <= 0 {
		return nil, &ValidationError{Field: "quantity", Msg: "must be positive"}
	}

	return s.applyStockChange(ctx, id, func(p *Product) (int, *ledger.Entry, error) {
		e := ledger.NewEntry(p.ID, ledger.KindIn, qty, note, actor)
		return p.Quantity + qty, &e, nil
	})
}

// RemoveStock decreases the quantity by qty (> 0, at most the current
// quantity) and records an OUT entry with a negative delta.
func (s *Service) RemoveStock(ctx context.Context, id uuid.UUID, qty int, note, actor string) (*Product, error) {
	if qty <= 0 {
		return nil, &ValidationError{Field: "quantity", Msg: "must be positive"}
	}

	return s.applyStockChange(ctx, id, func(p *Product) (int, *ledger.Entry, error) {
		if qty > p.Quantity {
			return 0, nil, &InsufficientStockError{Name: p.Name, Available: p.Quantity, Requested: qty}
		}

		e := ledger.NewEntry(p.ID, ledger.KindOut, qty, note, actor)

		return p.Quantity - qty, &e, nil
	})
}

// SetStock sets the quantity to qty (>= 0) and records an ADJ entry with
// the signed difference. A no-op set writes no entry.
func (s *Service) SetStock(ctx context.Context, id uuid.UUID, qty int, note, actor string) (*Product, error) {
	if qty < 0 {
		return nil, &ValidationError{Field: "quantity", Msg: "must not be negative"}
	}

	return s.applyStockChange(ctx, id, func(p *Product) (int, *ledger.Entry, error) {
		delta := qty - p.Quantity
		if delta == 0 {
			return qty, nil, nil
		}

		e := ledger.NewEntry(p.ID, ledger.KindAdj, delta, note, actor)

		return qty, &e, nil
	})
}

// applyStockChange runs one atomic quantity change: lock the row, compute
// the new quantity and ledger entry, persist both, commit. Any failure
// rolls the whole thing back.
func (s *Service) applyStockChange(ctx context.Context, id uuid.UUID, change func(*Product) (int, *ledger.Entry, error)) (*Product, error) {
	tx, err := s.repo.BeginStockUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p := tx.Product()

	newQty, entry, err := change(p)
	if err != nil {
		return nil, err
	}

	if err := tx.SetQuantity(ctx, newQty); err != nil {
		return nil, fmt.Errorf("updating quantity: %w", err)
	}

	if entry != nil {
		if err := tx.AppendEntry(ctx, *entry); err != nil {
			return nil, fmt.Errorf("appending ledger entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing stock update: %w", err)
	}

	p.Quantity = newQty

	return p, nil
}
