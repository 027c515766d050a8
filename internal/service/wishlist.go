package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/internal/repository"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

// MaxWishlistItems caps the number of saved products per session.
const MaxWishlistItems = 100

// WishlistItemInput identifies a product to save.
type WishlistItemInput struct {
	ID    string          `json:"id" validate:"required"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// WishlistService implements the session wishlist.
type WishlistService struct {
	repo   repository.WishlistRepository
	events WishlistEvents
	logger *slog.Logger
	now    func() time.Time
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(repo repository.WishlistRepository, events WishlistEvents, logger *slog.Logger) *WishlistService {
	return &WishlistService{repo: repo, events: events, logger: logger, now: time.Now}
}

// List returns the saved products in the order they were added.
func (s *WishlistService) List(ctx context.Context, sessionID string) (domain.Wishlist, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	w, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	return w, nil
}

// Contains reports whether productID is saved.
func (s *WishlistService) Contains(ctx context.Context, sessionID, productID string) (bool, error) {
	w, err := s.List(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return w.Contains(productID), nil
}

// Toggle removes the product when saved and saves it otherwise. It reports
// whether the product is saved afterwards.
func (s *WishlistService) Toggle(ctx context.Context, sessionID string, input WishlistItemInput) (domain.Wishlist, bool, error) {
	item, err := s.newItem(input)
	if err != nil {
		return nil, false, err
	}

	w, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if !w.Contains(item.ID) && len(w) >= MaxWishlistItems {
		return nil, false, apperrors.InvalidInput(fmt.Sprintf("wishlist must not contain more than %d items", MaxWishlistItems))
	}

	w, added := w.Toggle(item)
	if err := s.save(ctx, sessionID, w); err != nil {
		return nil, false, err
	}
	return w, added, nil
}

// Add saves a product. Saving an already saved product changes nothing.
func (s *WishlistService) Add(ctx context.Context, sessionID string, input WishlistItemInput) (domain.Wishlist, error) {
	item, err := s.newItem(input)
	if err != nil {
		return nil, err
	}

	w, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if w.Contains(item.ID) {
		return w, nil
	}
	if len(w) >= MaxWishlistItems {
		return nil, apperrors.InvalidInput(fmt.Sprintf("wishlist must not contain more than %d items", MaxWishlistItems))
	}

	w = w.Add(item)
	if err := s.save(ctx, sessionID, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Remove drops a saved product.
func (s *WishlistService) Remove(ctx context.Context, sessionID, productID string) (domain.Wishlist, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	w, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !w.Contains(productID) {
		return w, nil
	}

	w = w.Remove(productID)
	if err := s.save(ctx, sessionID, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Clear removes every saved product.
func (s *WishlistService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	logPublishError(ctx, s.logger, "wishlist.updated", s.events.PublishWishlistUpdated(ctx, sessionID, domain.Wishlist{}))
	return nil
}

func (s *WishlistService) newItem(input WishlistItemInput) (domain.WishlistItem, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return domain.WishlistItem{}, apperrors.InvalidInput("product id is required")
	}
	if input.Price.IsNegative() {
		return domain.WishlistItem{}, apperrors.InvalidInput("price must not be negative")
	}
	return domain.WishlistItem{
		ID:        id,
		Name:      input.Name,
		Price:     input.Price,
		Image:     input.Image,
		CreatedAt: s.now().UTC(),
	}, nil
}

func (s *WishlistService) save(ctx context.Context, sessionID string, w domain.Wishlist) error {
	if err := s.repo.Save(ctx, sessionID, w); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	logPublishError(ctx, s.logger, "wishlist.updated", s.events.PublishWishlistUpdated(ctx, sessionID, w))
	return nil
}
