package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/internal/ledger"
	"github.com/thepoolshop/shopkeep/internal/report"
)

type productSalesResponse struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type dailySalesResponse struct {
	Date         string          `json:"date"`
	InvoiceCount int             `json:"invoice_count"`
	Total        decimal.Decimal `json:"total"`
}

type salesResponse struct {
	Start       string                 `json:"start_date"`
	End         string                 `json:"end_date"`
	Total       decimal.Decimal        `json:"total"`
	Count       int                    `json:"invoice_count"`
	AverageSale decimal.Decimal        `json:"average_sale"`
	TopProducts []productSalesResponse `json:"top_products"`
	Daily       []dailySalesResponse   `json:"daily"`
}

type movementResponse struct {
	ID          uuid.UUID   `json:"id"`
	ProductID   uuid.UUID   `json:"product_id"`
	ProductName string      `json:"product_name"`
	SKU         string      `json:"sku"`
	Kind        ledger.Kind `json:"kind"`
	Quantity    int         `json:"quantity"`
	Note        string      `json:"note,omitempty"`
	CreatedBy   string      `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type stockTotalsResponse struct {
	ProductCount    int             `json:"product_count"`
	TotalUnits      int             `json:"total_units"`
	TotalValue      decimal.Decimal `json:"total_value"`
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
}

type stockResponse struct {
	stockTotalsResponse

	RecentMovements []movementResponse `json:"recent_movements"`
}

type dashboardResponse struct {
	TodaySales     decimal.Decimal        `json:"today_sales"`
	TodayCount     int                    `json:"today_count"`
	Stock          stockTotalsResponse    `json:"stock"`
	TopSellers     []productSalesResponse `json:"top_sellers"`
	RecentActivity []movementResponse     `json:"recent_activity"`
}

func toProductSales(top []report.ProductSales) []productSalesResponse {
	resp := make([]productSalesResponse, len(top))
	for i, p := range top {
		resp[i] = productSalesResponse{
			ProductID: p.ProductID,
			SKU:       p.SKU,
			Name:      p.Name,
			UnitsSold: p.UnitsSold,
			Revenue:   p.Revenue,
		}
	}

	return resp
}

func toMovements(movements []report.Movement) []movementResponse {
	resp := make([]movementResponse, len(movements))
	for i, m := range movements {
		resp[i] = movementResponse{
			ID:          m.ID,
			ProductID:   m.ProductID,
			ProductName: m.ProductName,
			SKU:         m.SKU,
			Kind:        m.Kind,
			Quantity:    m.Quantity,
			Note:        m.Note,
			CreatedBy:   m.CreatedBy,
			CreatedAt:   m.CreatedAt,
		}
	}

	return resp
}

func toStockTotals(t report.StockTotals) stockTotalsResponse {
	return stockTotalsResponse{
		ProductCount:    t.ProductCount,
		TotalUnits:      t.TotalUnits,
		TotalValue:      t.TotalValue,
		LowStockCount:   t.LowStockCount,
		OutOfStockCount: t.OutOfStockCount,
	}
}

func toSalesResponse(rep *report.SalesReport) salesResponse {
	daily := make([]dailySalesResponse, len(rep.Daily))
	for i, d := range rep.Daily {
		daily[i] = dailySalesResponse{
			Date:         d.Date.Format(time.DateOnly),
			InvoiceCount: d.InvoiceCount,
			Total:        d.Total,
		}
	}

	return salesResponse{
		Start:       rep.Start.Format(time.DateOnly),
		End:         rep.End.Format(time.DateOnly),
		Total:       rep.Total,
		Count:       rep.Count,
		AverageSale: rep.AverageSale,
		TopProducts: toProductSales(rep.TopProducts),
		Daily:       daily,
	}
}

func toStockResponse(rep *report.StockReport) stockResponse {
	return stockResponse{
		stockTotalsResponse: toStockTotals(rep.StockTotals),
		RecentMovements:     toMovements(rep.RecentMovements),
	}
}

func toDashboardResponse(d *report.Dashboard) dashboardResponse {
	return dashboardResponse{
		TodaySales:     d.TodaySales,
		TodayCount:     d.TodayCount,
		Stock:          toStockTotals(d.Stock),
		TopSellers:     toProductSales(d.TopSellers),
		RecentActivity: toMovements(d.RecentActivity),
	}
}
