package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a stocked item. Quantity is never mutated directly: it only
// changes through the stock operations on Service (or invoice
// finalization), which also write the matching stock_history entry.
type Product struct {
	ID                uuid.UUID
	SKU               string
	Name              string
	Description       string
	Category          string
	Quantity          int
	CostPrice         decimal.Decimal
	SellingPrice      decimal.Decimal
	LowStockThreshold int
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

// IsLowStock reports whether the product is at or below its configured
// threshold. Every consumer (listing, dashboard, reports) goes through
// this predicate or the matching SQL fragment in the stores, so the low
// stock count and the low stock list cannot drift apart.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// StockValue is the value of the on-hand quantity at cost price.
func (p *Product) StockValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
