package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/internal/invoice"
)

type itemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type invoiceResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	CustomerID   *uuid.UUID      `json:"customer_id,omitempty"`
	CustomerName string          `json:"customer_name,omitempty"`
	CreatedBy    string          `json:"created_by,omitempty"`
	Status       invoice.Status  `json:"status"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Items        []itemResponse  `json:"items,omitempty"`
}

type summaryResponse struct {
	PaidCount    int             `json:"paid_count"`
	UnpaidCount  int             `json:"unpaid_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type shopResponse struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type receiptResponse struct {
	Shop    shopResponse    `json:"shop"`
	Invoice invoiceResponse `json:"invoice"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:           inv.ID,
		Number:       inv.Number,
		CustomerID:   inv.CustomerID,
		CustomerName: inv.CustomerName,
		CreatedBy:    inv.CreatedBy,
		Status:       inv.Status,
		Subtotal:     inv.Subtotal,
		TaxRate:      inv.TaxRate,
		TaxAmount:    inv.TaxAmount,
		TotalAmount:  inv.TotalAmount,
		PaidAt:       inv.PaidAt,
		Notes:        inv.Notes,
		CreatedAt:    inv.CreatedAt,
	}

	for _, item := range inv.Items {
		resp.Items = append(resp.Items, itemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal(),
		})
	}

	return resp
}

func toResponseList(invoices []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = toResponse(inv)
	}

	return resp
}
