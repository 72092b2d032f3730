package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an invoice. The only transition is
// draft -> paid, performed by Service.FinalizeAndPay; there is no cancel
// or void state.
type Status string

const (
	StatusDraft Status = "draft"
	StatusPaid  Status = "paid"
)

// Invoice is a sale document. Totals are derived from the item set and
// recomputed on every item mutation; the items, not the stored totals,
// are the source of truth. Once paid, the item set is frozen.
type Invoice struct {
	ID           uuid.UUID
	Number       string
	CustomerID   *uuid.UUID // nil for walk-in sales
	CustomerName string     // loaded via JOIN
	CreatedBy    string
	Status       Status
	Subtotal     decimal.Decimal
	TaxRate      decimal.Decimal // percent, e.g. 15.00
	TaxAmount    decimal.Decimal
	TotalAmount  decimal.Decimal
	PaidAt       *time.Time
	Notes        string
	CreatedAt    time.Time
	Items        []*Item
}

// Item is one invoice line. UnitPrice is snapshotted when the item is
// added so later price changes don't rewrite history.
type Item struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	ProductID   uuid.UUID
	ProductName string // loaded via JOIN
	SKU         string // loaded via JOIN
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (i *Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
