package invoice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/internal/ledger"
	"github.com/thepoolshop/shopkeep/internal/product"
)

// maxNumberRetries bounds how often Create retries after losing the
// invoice-number race to a concurrent creator.
const maxNumberRetries = 3

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	// CreateInvoice inserts the invoice and its items in one transaction.
	// Returns ErrNumberTaken when the number lost the uniqueness race.
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	Summary(ctx context.Context) (Summary, error)
	// MaxNumberWithPrefix returns the highest invoice number starting with
	// prefix, or "" when none exists.
	MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	// AddItem and RemoveItem persist the item change and the recomputed
	// totals in one transaction.
	AddItem(ctx context.Context, item *Item, totals Totals) error
	RemoveItem(ctx context.Context, invoiceID, itemID uuid.UUID, totals Totals) error

	BeginFinalize(ctx context.Context, invoiceID uuid.UUID) (FinalizeTx, error)
}

// FinalizeTx is the transaction for finalize-and-pay. Stock decrements,
// ledger entries and the paid flag commit or roll back as one unit; no
// partial stock change is ever visible.
type FinalizeTx interface {
	Invoice() *Invoice
	// LockProduct row-locks the product so concurrent sales serialize
	// their check-and-decrement on it.
	LockProduct(ctx context.Context, productID uuid.UUID) (*product.Product, error)
	SetProductQuantity(ctx context.Context, productID uuid.UUID, quantity int) error
	AppendEntry(ctx context.Context, e ledger.Entry) error
	MarkPaid(ctx context.Context, paidAt time.Time) error
	Commit() error
	Rollback() error
}

// ProductGetter is the slice of the product service the invoice workflow
// needs outside the finalize transaction.
type ProductGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

type Service struct {
	repo           Repository
	products       ProductGetter
	defaultTaxRate decimal.Decimal
	now            func() time.Time
}

// NewService builds the invoice service. now is injectable so tests can
// pin the date the number generator sees; pass nil for the wall clock.
func NewService(repo Repository, products ProductGetter, defaultTaxRate decimal.Decimal, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:           repo,
		products:       products,
		defaultTaxRate: defaultTaxRate,
		now:            now,
	}
}

type ItemParams struct {
	ProductID uuid.UUID
	Quantity  int
	// UnitPrice overrides the product's current selling price when set.
	UnitPrice *decimal.Decimal
}

type CreateParams struct {
	CustomerID *uuid.UUID
	Notes      string
	// TaxRate in percent; nil means the configured default.
	TaxRate *decimal.Decimal
	Items    []ItemParams
}

type ListFilter struct {
	Status *Status
	Search string
}

type Summary struct {
	PaidCount    int
	UnpaidCount  int
	TotalRevenue decimal.Decimal
}

// Create assembles a draft invoice, assigns it a number and persists it
// with its items. Stock is only soft-checked here; nothing is decremented
// until FinalizeAndPay.
func (s *Service) Create(ctx context.Context, params CreateParams, actor string) (*Invoice, error) {
	if len(params.Items) == 0 {
		return nil, ErrNoItems
	}

	items, err := s.buildItems(ctx, params.Items)
	if err != nil {
		return nil, err
	}

	taxRate := s.defaultTaxRate
	if params.TaxRate != nil {
		taxRate = *params.TaxRate
	}

	totals := ComputeTotals(items, taxRate)

	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		date := s.now()

		max, err := s.repo.MaxNumberWithPrefix(ctx, numberPrefix(date))
		if err != nil {
			return nil, fmt.Errorf("finding max invoice number: %w", err)
		}

		inv := &Invoice{
			Number:      nextNumber(date, max),
			CustomerID:  params.CustomerID,
			CreatedBy:   actor,
			Status:      StatusDraft,
			Subtotal:    totals.Subtotal,
			TaxRate:     taxRate,
			TaxAmount:   totals.TaxAmount,
			TotalAmount: totals.TotalAmount,
			Notes:       params.Notes,
			Items:       items,
		}

		err = s.repo.CreateInvoice(ctx, inv)
		if errors.Is(err, ErrNumberTaken) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return inv, nil
	}

	return nil, fmt.Errorf("allocating invoice number after %d attempts: %w", maxNumberRetries, ErrNumberTaken)
}

func (s *Service) buildItems(ctx context.Context, params []ItemParams) ([]*Item, error) {
	items := make([]*Item, 0, len(params))

	for _, ip := range params {
		item, err := s.buildItem(ctx, ip)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

func (s *Service) buildItem(ctx context.Context, ip ItemParams) (*Item, error) {
	if ip.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.Get(ctx, ip.ProductID)
	if err != nil {
		return nil, err
	}

	if p.Quantity < ip.Quantity {
		return nil, &product.InsufficientStockError{
			Name:      p.Name,
			Available: p.Quantity,
			Requested: ip.Quantity,
		}
	}

	unitPrice := p.SellingPrice
	if ip.UnitPrice != nil {
		unitPrice = *ip.UnitPrice
	}

	return &Item{
		ProductID:   p.ID,
		ProductName: p.Name,
		SKU:         p.SKU,
		Quantity:    ip.Quantity,
		UnitPrice:   unitPrice,
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return s.repo.Summary(ctx)
}

// AddItem appends a line to a draft invoice and persists the recomputed
// totals together with it.
func (s *Service) AddItem(ctx context.Context, invoiceID uuid.UUID, params ItemParams) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if inv.Status == StatusPaid {
		return nil, ErrInvoicePaid
	}

	item, err := s.buildItem(ctx, params)
	if err != nil {
		return nil, err
	}

	item.InvoiceID = inv.ID

	totals := ComputeTotals(append(inv.Items, item), inv.TaxRate)
	if err := s.repo.AddItem(ctx, item, totals); err != nil {
		return nil, err
	}

	return s.repo.GetInvoice(ctx, invoiceID)
}

// RemoveItem drops a line from a draft invoice and persists the
// recomputed totals together with it. Stock is untouched: draft items
// never held stock in the first place.
func (s *Service) RemoveItem(ctx context.Context, invoiceID, itemID uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if inv.Status == StatusPaid {
		return nil, ErrInvoicePaid
	}

	remaining := make([]*Item, 0, len(inv.Items))

	found := false

	for _, item := range inv.Items {
		if item.ID == itemID {
			found = true
			continue
		}

		remaining = append(remaining, item)
	}

	if !found {
		return nil, ErrItemNotFound
	}

	totals := ComputeTotals(remaining, inv.TaxRate)
	if err := s.repo.RemoveItem(ctx, invoiceID, itemID, totals); err != nil {
		return nil, err
	}

	return s.repo.GetInvoice(ctx, invoiceID)
}

// FinalizeAndPay converts a draft into a paid sale: within one
// transaction it verifies stock for every line, decrements the products,
// writes the OUT ledger entries and marks the invoice paid. Calling it on
// an already-paid invoice is a no-op returning the invoice unchanged.
func (s *Service) FinalizeAndPay(ctx context.Context, id uuid.UUID, actor string) (*Invoice, error) {
	tx, err := s.repo.BeginFinalize(ctx, id)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	inv := tx.Invoice()
	if inv.Status == StatusPaid {
		return inv, nil
	}

	// Lock rows in a stable order so two finalizes over the same products
	// cannot deadlock.
	items := make([]*Item, len(inv.Items))
	copy(items, inv.Items)
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductID.String() < items[j].ProductID.String()
	})

	locked := make(map[uuid.UUID]*product.Product, len(items))

	for _, item := range items {
		p, ok := locked[item.ProductID]
		if !ok {
			p, err = tx.LockProduct(ctx, item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("locking product %s: %w", item.ProductID, err)
			}

			locked[item.ProductID] = p
		}

		if p.Quantity < item.Quantity {
			return nil, &product.InsufficientStockError{
				Name:      p.Name,
				Available: p.Quantity,
				Requested: item.Quantity,
			}
		}

		p.Quantity -= item.Quantity

		if err := tx.SetProductQuantity(ctx, p.ID, p.Quantity); err != nil {
			return nil, fmt.Errorf("decrementing stock: %w", err)
		}

		entry := ledger.NewEntry(p.ID, ledger.KindOut, item.Quantity, "Sold via "+inv.Number, actor)
		if err := tx.AppendEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("appending ledger entry: %w", err)
		}
	}

	paidAt := s.now()
	if err := tx.MarkPaid(ctx, paidAt); err != nil {
		return nil, fmt.Errorf("marking invoice paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing finalize: %w", err)
	}

	inv.Status = StatusPaid
	inv.PaidAt = &paidAt

	return inv, nil
}
