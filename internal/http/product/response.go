package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/internal/ledger"
	"github.com/thepoolshop/shopkeep/internal/product"
)

type productResponse struct {
	ID                uuid.UUID       `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Category          string          `json:"category,omitempty"`
	Quantity          int             `json:"quantity"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	StockValue        decimal.Decimal `json:"stock_value"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(p *product.Product) productResponse {
	return productResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		Category:          p.Category,
		Quantity:          p.Quantity,
		CostPrice:         p.CostPrice,
		SellingPrice:      p.SellingPrice,
		LowStockThreshold: p.LowStockThreshold,
		LowStock:          p.IsLowStock(),
		StockValue:        p.StockValue(),
		Active:            p.Active,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toResponseList(products []*product.Product) []productResponse {
	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toResponse(p)
	}

	return resp
}

type entryResponse struct {
	ID        uuid.UUID   `json:"id"`
	ProductID uuid.UUID   `json:"product_id"`
	Kind      ledger.Kind `json:"kind"`
	Quantity  int         `json:"quantity"`
	Note      string      `json:"note,omitempty"`
	CreatedBy string      `json:"created_by,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func toEntryResponseList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = entryResponse{
			ID:        e.ID,
			ProductID: e.ProductID,
			Kind:      e.Kind,
			Quantity:  e.Quantity,
			Note:      e.Note,
			CreatedBy: e.CreatedBy,
			CreatedAt: e.CreatedAt,
		}
	}

	return resp
}
