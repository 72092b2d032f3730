package invoice

import "errors"

var (
	ErrNotFound     = errors.New("invoice not found")
	ErrItemNotFound = errors.New("invoice item not found")
	// ErrInvoicePaid is returned on any attempt to mutate the item set of
	// a paid invoice.
	ErrInvoicePaid = errors.New("invoice is paid and cannot be modified")
	// ErrNumberTaken signals a lost race on the date-scoped invoice number.
	// The storage layer raises it from the uniqueness constraint; Create
	// retries on it.
	ErrNumberTaken     = errors.New("invoice number already taken")
	ErrNoItems         = errors.New("invoice needs at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be positive")
)
