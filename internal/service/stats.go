package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/internal/repository"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

// StatsService maintains and reads the back-office dashboard figures.
type StatsService struct {
	stats    repository.StatsRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(stats repository.StatsRepository, products repository.ProductRepository, logger *slog.Logger) *StatsService {
	return &StatsService{stats: stats, products: products, logger: logger}
}

// RecordOrder adds one placed order to the sales projection.
func (s *StatsService) RecordOrder(ctx context.Context, orderID, email string, total decimal.Decimal, at time.Time) error {
	if orderID == "" {
		return apperrors.InvalidInput("order id is required")
	}
	if total.IsNegative() {
		return apperrors.InvalidInput("order total must not be negative")
	}

	if err := s.stats.RecordOrder(ctx, total, email, at); err != nil {
		return fmt.Errorf("record order %s: %w", orderID, err)
	}

	s.logger.DebugContext(ctx, "order recorded in sales projection",
		slog.String("order_id", orderID),
		slog.String("total", total.StringFixed(2)),
	)
	return nil
}

// Dashboard combines the sales projection with live product counts.
func (s *StatsService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sales totals: %w", err)
	}

	counts, err := s.products.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	return &domain.DashboardStats{
		TotalRevenue:       totals.Revenue,
		TotalOrders:        totals.Orders,
		Customers:          totals.Customers,
		ActiveProducts:     counts.Active,
		OutOfStockProducts: counts.OutOfStock,
	}, nil
}
