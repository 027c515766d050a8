package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product status constants.
const (
	ProductStatusActive = "active"
	ProductStatusDraft  = "draft"
)

// Discount type constants.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Admin listing filters.
const (
	FilterAll        = "all"
	FilterActive     = "active"
	FilterDraft      = "draft"
	FilterOutOfStock = "out_of_stock"
	FilterLowStock   = "low_stock"
)

// LowStockThreshold is the exclusive upper bound of the low_stock filter.
const LowStockThreshold = 20

// Product represents a product in the catalog.
type Product struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Description   *string             `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"original_price"`
	DiscountType  *string             `json:"discount_type"`
	DiscountValue decimal.NullDecimal `json:"discount_value"`
	Category      string              `json:"category"`
	Images        []string            `json:"images"`
	Sizes         []string            `json:"sizes"`
	Status        string              `json:"status"`
	Stock         int                 `json:"stock"`
	IsNewArrival  bool                `json:"is_new_arrival"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// DiscountedPrice applies the product discount to Price. A percentage
// discount subtracts Price*v/100, a fixed discount subtracts v. The result
// is not clamped, so an oversized fixed discount yields a negative price.
func (p *Product) DiscountedPrice() decimal.Decimal {
	if !p.DiscountValue.Valid {
		return p.Price
	}
	discountType := DiscountPercentage
	if p.DiscountType != nil {
		discountType = *p.DiscountType
	}
	return ApplyDiscount(p.Price, discountType, p.DiscountValue.Decimal)
}

// IsActive reports whether the product is visible in the storefront.
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// ApplyDiscount computes the discounted price for the given type and value.
// Unknown types leave the price unchanged.
func ApplyDiscount(price decimal.Decimal, discountType string, value decimal.Decimal) decimal.Decimal {
	switch discountType {
	case DiscountPercentage:
		return RoundPrice(price.Sub(price.Mul(value).Div(hundred)))
	case DiscountFixed:
		return price.Sub(value)
	default:
		return price
	}
}

// IsValidStatus checks whether the given status string is a valid product status.
func IsValidStatus(status string) bool {
	return status == ProductStatusActive || status == ProductStatusDraft
}

// IsValidDiscountType checks whether t names a supported discount type.
func IsValidDiscountType(t string) bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// IsValidFilter checks whether f is a known admin listing filter.
func IsValidFilter(f string) bool {
	switch f {
	case FilterAll, FilterActive, FilterDraft, FilterOutOfStock, FilterLowStock:
		return true
	}
	return false
}

// ProductFilter holds admin listing criteria.
type ProductFilter struct {
	Search string
	Filter string
}

// AllCategories is the search dropdown's "no category" choice.
const AllCategories = "All Categories"

// CatalogFilter holds storefront listing criteria.
type CatalogFilter struct {
	Category string
	Search   string
	Sort     string
	Limit    int
}

// Storefront sort orders.
const (
	SortLatest    = "latest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

// IsValidSort checks whether s is a supported storefront sort order.
func IsValidSort(s string) bool {
	return s == SortLatest || s == SortPriceLow || s == SortPriceHigh
}
