package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	topProductsLimit     = 5
	recentMovementsLimit = 10
)

// Repository reads aggregates the invoice and stock workflows already
// persisted; reports never derive state of their own.
type Repository interface {
	SalesTotals(ctx context.Context, start, end time.Time) (SalesTotals, error)
	TopProducts(ctx context.Context, start, end time.Time, limit int) ([]ProductSales, error)
	DailySales(ctx context.Context, start, end time.Time) ([]DailySales, error)
	StockTotals(ctx context.Context) (StockTotals, error)
	RecentMovements(ctx context.Context, limit int) ([]Movement, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the report service. now is injectable so tests can
// pin "today"; pass nil for the wall clock.
func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{repo: repo, now: now}
}

// Sales reports paid invoices between start and end inclusive.
func (s *Service) Sales(ctx context.Context, start, end time.Time) (*SalesReport, error) {
	totals, err := s.repo.SalesTotals(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading sales totals: %w", err)
	}

	top, err := s.repo.TopProducts(ctx, start, end, topProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("loading top products: %w", err)
	}

	daily, err := s.repo.DailySales(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading daily sales: %w", err)
	}

	return &SalesReport{
		Start:       start,
		End:         end,
		Total:       totals.Total,
		Count:       totals.InvoiceCount,
		AverageSale: averageSale(totals),
		TopProducts: top,
		Daily:       daily,
	}, nil
}

func (s *Service) Stock(ctx context.Context) (*StockReport, error) {
	totals, err := s.repo.StockTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stock totals: %w", err)
	}

	movements, err := s.repo.RecentMovements(ctx, recentMovementsLimit)
	if err != nil {
		return nil, fmt.Errorf("loading recent movements: %w", err)
	}

	return &StockReport{
		StockTotals:     totals,
		RecentMovements: movements,
	}, nil
}

// Dashboard gathers today's sales, the stock snapshot, the 30-day top
// sellers and the latest movements.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := s.repo.SalesTotals(ctx, dayStart, now)
	if err != nil {
		return nil, fmt.Errorf("loading today's sales: %w", err)
	}

	stock, err := s.repo.StockTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stock totals: %w", err)
	}

	top, err := s.repo.TopProducts(ctx, now.AddDate(0, 0, -30), now, topProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("loading top sellers: %w", err)
	}

	activity, err := s.repo.RecentMovements(ctx, recentMovementsLimit)
	if err != nil {
		return nil, fmt.Errorf("loading recent activity: %w", err)
	}

	return &Dashboard{
		TodaySales:     today.Total,
		TodayCount:     today.InvoiceCount,
		Stock:          stock,
		TopSellers:     top,
		RecentActivity: activity,
	}, nil
}

func averageSale(totals SalesTotals) decimal.Decimal {
	if totals.InvoiceCount == 0 {
		return decimal.Zero
	}

	return totals.Total.Div(decimal.NewFromInt(int64(totals.InvoiceCount))).Round(2)
}
