package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/apparelstore/internal/domain"
)

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product. A duplicate slug yields ErrAlreadyExists.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// Update overwrites the editable fields of an existing product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product by its identifier.
	Delete(ctx context.Context, id string) error

	// List returns products for the back office, newest first.
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)

	// ListActive returns storefront-visible products.
	ListActive(ctx context.Context, filter domain.CatalogFilter) ([]domain.Product, error)

	// Counts returns active and out-of-stock product counts.
	Counts(ctx context.Context) (domain.ProductCounts, error)
}

// OrderRepository persists orders. Header and items are written by separate
// calls and are not wrapped in a transaction.
type OrderRepository interface {
	// CreateOrder inserts the header and fills in its generated ID and CreatedAt.
	CreateOrder(ctx context.Context, order *domain.Order) error

	// CreateItems inserts the items of an existing order.
	CreateItems(ctx context.Context, orderID string, items []domain.OrderItem) error

	// GetByID returns the header with its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns one page of headers, newest first, and the total count.
	List(ctx context.Context, limit, offset int) ([]domain.Order, int, error)
}

// CartRepository stores one cart per shopper session.
type CartRepository interface {
	// Get returns the cart, or an empty cart when none is stored.
	Get(ctx context.Context, sessionID string) (domain.Cart, error)

	// Save overwrites the whole cart.
	Save(ctx context.Context, sessionID string, cart domain.Cart) error

	// Delete removes the cart.
	Delete(ctx context.Context, sessionID string) error
}

// WishlistRepository stores one wishlist per shopper session.
type WishlistRepository interface {
	Get(ctx context.Context, sessionID string) (domain.Wishlist, error)
	Save(ctx context.Context, sessionID string, wishlist domain.Wishlist) error
	Delete(ctx context.Context, sessionID string) error
}

// StatsRepository holds the sales projection behind the admin dashboard.
type StatsRepository interface {
	// RecordOrder adds one order to the running totals.
	RecordOrder(ctx context.Context, total decimal.Decimal, customerEmail string, at time.Time) error

	// Totals returns the current running totals.
	Totals(ctx context.Context) (domain.SalesTotals, error)
}
