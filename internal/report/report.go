package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/internal/ledger"
)

// ProductSales is one product's paid-sales aggregate within a period.
type ProductSales struct {
	ProductID string
	SKU       string
	Name      string
	UnitsSold int
	Revenue   decimal.Decimal
}

// DailySales is one day's paid-invoice total.
type DailySales struct {
	Date         time.Time
	InvoiceCount int
	Total        decimal.Decimal
}

// SalesTotals summarizes paid invoices within a period.
type SalesTotals struct {
	InvoiceCount int
	Total        decimal.Decimal
}

// SalesReport aggregates paid invoices between Start and End inclusive.
type SalesReport struct {
	Start       time.Time
	End         time.Time
	Total       decimal.Decimal
	Count       int
	AverageSale decimal.Decimal
	TopProducts []ProductSales
	Daily       []DailySales
}

// StockTotals is the current state of the active catalog.
type StockTotals struct {
	ProductCount    int
	TotalUnits      int
	TotalValue      decimal.Decimal
	LowStockCount   int
	OutOfStockCount int
}

// Movement is a ledger entry joined with the product it moved.
type Movement struct {
	ledger.Entry

	ProductName string
	SKU         string
}

type StockReport struct {
	StockTotals

	RecentMovements []Movement
}

// Dashboard is the landing-page snapshot.
type Dashboard struct {
	TodaySales     decimal.Decimal
	TodayCount     int
	Stock          StockTotals
	TopSellers     []ProductSales
	RecentActivity []Movement
}
