package product

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrDuplicateSKU = errors.New("sku already exists")
)

// ValidationError marks malformed input. The caller is informed and no
// state changes.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// InsufficientStockError is returned when a removal or a sale asks for
// more units than are on hand. It always aborts the enclosing
// transaction.
type InsufficientStockError struct {
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested",
		e.Name, e.Available, e.Requested)
}
