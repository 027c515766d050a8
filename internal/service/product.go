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
	"github.com/utafrali/apparelstore/pkg/slug"
)

// Back-office validation messages.
const (
	MsgImageRequired   = "At least one product image is required"
	MsgInvalidPrice    = "Invalid price value"
	MsgInvalidDiscount = "Invalid discount value"
)

// ProductInput is the back-office product form. Field names follow the form
// (camelCase); snake_case aliases are accepted for API clients.
type ProductInput struct {
	Name          string      `json:"name"`
	Slug          string      `json:"slug"`
	Description   *string     `json:"description"`
	Category      string      `json:"category"`
	Price         NumberInput `json:"price"`
	OriginalPrice NumberInput `json:"originalPrice"`
	DiscountType  string      `json:"discountType"`
	DiscountValue NumberInput `json:"discountValue"`
	Images        []string    `json:"images"`
	Sizes         []string    `json:"sizes"`
	Status        string      `json:"status"`
	Stock         *int        `json:"stock"`
	IsNewArrival  *bool       `json:"isNewArrival"`

	OriginalPriceAlt NumberInput `json:"original_price"`
	DiscountTypeAlt  string      `json:"discount_type"`
	DiscountValueAlt NumberInput `json:"discount_value"`
	IsNewArrivalAlt  *bool       `json:"is_new_arrival"`
}

func (in *ProductInput) mergeAliases() {
	if !in.OriginalPrice.IsSet() {
		in.OriginalPrice = in.OriginalPriceAlt
	}
	if in.DiscountType == "" {
		in.DiscountType = in.DiscountTypeAlt
	}
	if !in.DiscountValue.IsSet() {
		in.DiscountValue = in.DiscountValueAlt
	}
	if in.IsNewArrival == nil {
		in.IsNewArrival = in.IsNewArrivalAlt
	}
}

// toProduct validates the form and builds the product it describes.
// Checks run in a fixed order: required fields, images, price, discount.
func (in *ProductInput) toProduct() (*domain.Product, error) {
	in.mergeAliases()

	name := strings.TrimSpace(in.Name)
	rawSlug := strings.TrimSpace(in.Slug)
	category := strings.TrimSpace(in.Category)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if rawSlug == "" {
		missing = append(missing, "slug")
	}
	if category == "" {
		missing = append(missing, "category")
	}
	if !in.Price.IsSet() {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return nil, apperrors.MissingFields(missing...)
	}

	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	if len(images) == 0 {
		return nil, apperrors.InvalidInput(MsgImageRequired)
	}

	price, ok := in.Price.Decimal()
	if !ok || price.IsNegative() {
		return nil, apperrors.InvalidInput(MsgInvalidPrice)
	}

	p := &domain.Product{
		Name:         name,
		Slug:         slug.Normalize(rawSlug),
		Category:     category,
		Price:        price,
		Images:       images,
		Sizes:        []string{},
		Status:       domain.ProductStatusActive,
		IsNewArrival: true,
	}
	if p.Slug == "" {
		return nil, apperrors.InvalidInput("slug must contain at least one letter or digit")
	}

	if in.DiscountValue.IsSet() {
		value, ok := in.DiscountValue.Decimal()
		if !ok || value.IsNegative() {
			return nil, apperrors.InvalidInput(MsgInvalidDiscount)
		}
		discountType := strings.TrimSpace(in.DiscountType)
		if discountType == "" {
			discountType = domain.DiscountPercentage
		}
		if !domain.IsValidDiscountType(discountType) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("discount type must be %s or %s", domain.DiscountPercentage, domain.DiscountFixed))
		}
		p.DiscountType = &discountType
		p.DiscountValue = decimal.NullDecimal{Decimal: value, Valid: true}
	}

	if in.OriginalPrice.IsSet() {
		original, ok := in.OriginalPrice.Decimal()
		if !ok || original.IsNegative() {
			return nil, apperrors.InvalidInput("Invalid original price value")
		}
		p.OriginalPrice = decimal.NullDecimal{Decimal: original, Valid: true}
	}

	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			p.Description = &d
		}
	}
	if in.Status != "" {
		if !domain.IsValidStatus(in.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("status must be %s or %s", domain.ProductStatusActive, domain.ProductStatusDraft))
		}
		p.Status = in.Status
	}
	for _, size := range in.Sizes {
		if size = strings.TrimSpace(size); size != "" {
			p.Sizes = append(p.Sizes, size)
		}
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, apperrors.InvalidInput("stock must not be negative")
		}
		p.Stock = *in.Stock
	}
	if in.IsNewArrival != nil {
		p.IsNewArrival = *in.IsNewArrival
	}
	return p, nil
}

// ProductService implements back-office product management.
type ProductService struct {
	repo   repository.ProductRepository
	events ProductEvents
	logger *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, events ProductEvents, logger *slog.Logger) *ProductService {
	return &ProductService{repo: repo, events: events, logger: logger}
}

// Create validates the form and inserts the product.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	p, err := input.toProduct()
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	logPublishError(ctx, s.logger, "product.created", s.events.PublishProductCreated(ctx, p))
	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", p.ID),
		slog.String("slug", p.Slug),
	)
	return p, nil
}

// Update validates the form and overwrites the product. Stock is kept when
// the form does not carry it.
func (s *ProductService) Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("Invalid product ID")
	}

	p, err := input.toProduct()
	if err != nil {
		return nil, err
	}
	p.ID = id

	if input.Stock == nil {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		p.Stock = current.Stock
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	logPublishError(ctx, s.logger, "product.updated", s.events.PublishProductUpdated(ctx, p))
	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", p.ID))
	return p, nil
}

// Get returns any product, including drafts.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("Invalid product ID")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns products for the back office, newest first.
func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Filter == "" {
		filter.Filter = domain.FilterAll
	}
	if !domain.IsValidFilter(filter.Filter) {
		return nil, apperrors.InvalidInput("filter must be one of: all, active, draft, out_of_stock, low_stock")
	}

	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.InvalidInput("Invalid product ID")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logPublishError(ctx, s.logger, "product.deleted", s.events.PublishProductDeleted(ctx, id))
	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}
