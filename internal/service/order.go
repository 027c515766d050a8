package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/internal/repository"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

// OrderService serves the back-office order views.
type OrderService struct {
	repo   repository.OrderRepository
	logger *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, logger *slog.Logger) *OrderService {
	return &OrderService{repo: repo, logger: logger}
}

// List returns one page of order headers, newest first, and the total count.
func (s *OrderService) List(ctx context.Context, page, perPage int) ([]domain.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	orders, total, err := s.repo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// Get returns one order with its items.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("Invalid order ID")
	}
	return s.repo.GetByID(ctx, id)
}
