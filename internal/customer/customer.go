package customer

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("customer not found")

type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time

	// Aggregates filled in by List.
	InvoiceCount int
	TotalSpent   decimal.Decimal
}
