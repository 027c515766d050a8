package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/internal/repository"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart line.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct lines allowed in a cart.
	MaxItemsPerCart = 50
)

// AddItemInput holds the parameters for adding a line to the cart.
type AddItemInput struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Size     string          `json:"size"`
	Quantity int             `json:"quantity" validate:"gte=1"`
}

// UpdateQuantityInput holds the new quantity for a line. Zero or less removes it.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity"`
}

// CartService implements the session cart. Each operation reads the whole
// cart, applies one change and writes it back.
type CartService struct {
	repo   repository.CartRepository
	events CartEvents
	logger *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, events CartEvents, logger *slog.Logger) *CartService {
	return &CartService{repo: repo, events: events, logger: logger}
}

// Get returns the session cart. A session without a cart gets an empty one.
func (s *CartService) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddItem merges a line into the cart. A line with the same product and size
// has its quantity increased instead of being duplicated.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (domain.Cart, error) {
	input.ID = strings.TrimSpace(input.ID)
	input.Size = strings.TrimSpace(input.Size)

	if input.ID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}
	if input.Price.IsNegative() {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItemIndex(input.ID, input.Size); idx >= 0 {
		if cart[idx].Quantity+input.Quantity > MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
	} else if len(cart) >= MaxItemsPerCart {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
	}

	cart = cart.Add(domain.CartItem{
		ID:       input.ID,
		Name:     input.Name,
		Price:    input.Price,
		Image:    input.Image,
		Size:     input.Size,
		Quantity: input.Quantity,
	})

	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("product_id", input.ID),
		slog.String("size", input.Size),
		slog.Int("quantity", input.Quantity),
	)
	return cart, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
// A line that is not in the cart leaves the cart untouched.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID, size string, quantity int) (domain.Cart, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.FindItemIndex(productID, size) < 0 {
		return cart, nil
	}

	cart = cart.UpdateQuantity(productID, size, quantity)
	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops a line. Removing a missing line is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID, size string) (domain.Cart, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart = cart.Remove(productID, size)
	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the session cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	logPublishError(ctx, s.logger, "cart.updated", s.events.PublishCartUpdated(ctx, sessionID, domain.Cart{}))
	return nil
}

func (s *CartService) save(ctx context.Context, sessionID string, cart domain.Cart) error {
	if err := s.repo.Save(ctx, sessionID, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	logPublishError(ctx, s.logger, "cart.updated", s.events.PublishCartUpdated(ctx, sessionID, cart))
	return nil
}
