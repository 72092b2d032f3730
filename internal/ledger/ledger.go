package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a stock movement.
type Kind string

const (
	KindIn  Kind = "IN"
	KindOut Kind = "OUT"
	KindAdj Kind = "ADJ"
)

// Entry is an immutable record of a stock quantity change. Entries are
// append-only: they are never updated or deleted while the product exists.
type Entry struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Kind      Kind
	// Quantity is the signed delta applied to the product: negative for
	// OUT, non-negative for IN, either sign for ADJ. The sum of deltas
	// for a product reconciles with its current quantity.
	Quantity  int
	Note      string
	CreatedBy string
	CreatedAt time.Time
}

// NewEntry builds a ledger entry with the sign convention enforced,
// regardless of the sign the caller supplied. Every entry in the system
// goes through this constructor; stores never normalize on their own.
// ADJ deltas are kept as computed since an adjustment legitimately moves
// stock in either direction.
func NewEntry(productID uuid.UUID, kind Kind, quantity int, note, createdBy string) Entry {
	switch kind {
	case KindOut:
		if quantity > 0 {
			quantity = -quantity
		}
	case KindIn:
		if quantity < 0 {
			quantity = -quantity
		}
	}

	return Entry{
		ProductID: productID,
		Kind:      kind,
		Quantity:  quantity,
		Note:      note,
		CreatedBy: createdBy,
	}
}
