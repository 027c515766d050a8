package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/apparelstore/internal/domain"
)

// CartEvents is the slice of event.Producer used by CartService.
type CartEvents interface {
	PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error
}

// WishlistEvents is the slice of event.Producer used by WishlistService.
type WishlistEvents interface {
	PublishWishlistUpdated(ctx context.Context, sessionID string, wishlist domain.Wishlist) error
}

// OrderEvents is the slice of event.Producer used by CheckoutService.
type OrderEvents interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
}

// ProductEvents is the slice of event.Producer used by ProductService.
type ProductEvents interface {
	PublishProductCreated(ctx context.Context, product *domain.Product) error
	PublishProductUpdated(ctx context.Context, product *domain.Product) error
	PublishProductDeleted(ctx context.Context, productID string) error
}

// logPublishError records a failed best-effort publish. Event delivery never
// fails the request that triggered it.
func logPublishError(ctx context.Context, logger *slog.Logger, event string, err error) {
	if err == nil {
		return
	}
	logger.ErrorContext(ctx, "failed to publish event",
		slog.String("event", event),
		slog.String("error", err.Error()),
	)
}
