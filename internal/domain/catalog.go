package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CatalogProduct is the normalized product shape served to the storefront.
type CatalogProduct struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Description   *string             `json:"description,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	FinalPrice    decimal.Decimal     `json:"finalPrice"`
	Discount      *Discount           `json:"discount,omitempty"`
	Category      string              `json:"category"`
	Image         string              `json:"image"`
	Image2        string              `json:"image2,omitempty"`
	Images        []string            `json:"images"`
	Sizes         []string            `json:"sizes"`
	IsNewArrival  bool                `json:"isNewArrival"`
	Stock         int                 `json:"stock"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// Discount describes the markdown applied to a catalog product.
type Discount struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// Label renders the discount as shown on product cards ("10%" or "$15.00").
func (d Discount) Label() string {
	if d.Type == DiscountFixed {
		return "$" + d.Value.StringFixed(2)
	}
	return d.Value.String() + "%"
}

// ToCatalog converts a stored product into its storefront shape.
func (p *Product) ToCatalog() CatalogProduct {
	cp := CatalogProduct{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		FinalPrice:    p.DiscountedPrice(),
		Category:      p.Category,
		Images:        nonNil(p.Images),
		Sizes:         nonNil(p.Sizes),
		IsNewArrival:  p.IsNewArrival,
		Stock:         p.Stock,
		CreatedAt:     p.CreatedAt,
	}
	if p.DiscountValue.Valid {
		dt := DiscountPercentage
		if p.DiscountType != nil {
			dt = *p.DiscountType
		}
		cp.Discount = &Discount{Type: dt, Value: p.DiscountValue.Decimal}
	}
	if len(cp.Images) > 0 {
		cp.Image = cp.Images[0]
	}
	if len(cp.Images) > 1 {
		cp.Image2 = cp.Images[1]
	}
	return cp
}

// rawProduct accepts both the snake_case shape stored by the back office and
// the camelCase shape produced by earlier normalization.
type rawProduct struct {
	ID             json.RawMessage     `json:"id"`
	Name           string              `json:"name"`
	Slug           string              `json:"slug"`
	Description    *string             `json:"description"`
	Price          decimal.Decimal     `json:"price"`
	OriginalPrice  decimal.NullDecimal `json:"original_price"`
	OriginalPrice2 decimal.NullDecimal `json:"originalPrice"`
	FinalPrice     decimal.NullDecimal `json:"finalPrice"`
	DiscountType   *string             `json:"discount_type"`
	DiscountValue  decimal.NullDecimal `json:"discount_value"`
	Discount       *Discount           `json:"discount"`
	Category       string              `json:"category"`
	Image          string              `json:"image"`
	Image2         string              `json:"image2"`
	Images         []string            `json:"images"`
	Sizes          []string            `json:"sizes"`
	IsNewArrival   *bool               `json:"is_new_arrival"`
	IsNewArrival2  *bool               `json:"isNewArrival"`
	Stock          int                 `json:"stock"`
	CreatedAt      time.Time           `json:"created_at"`
	CreatedAt2     time.Time           `json:"createdAt"`
}

// NormalizeCatalogProduct decodes one raw product record in either shape.
// original_price wins over originalPrice; the first and second images fall
// back to image and image2 when images is empty.
func NormalizeCatalogProduct(data []byte) (CatalogProduct, error) {
	var raw rawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return CatalogProduct{}, fmt.Errorf("decode product: %w", err)
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return CatalogProduct{}, err
	}

	p := Product{
		ID:            id,
		Name:          raw.Name,
		Slug:          raw.Slug,
		Description:   raw.Description,
		Price:         raw.Price,
		OriginalPrice: raw.OriginalPrice,
		DiscountType:  raw.DiscountType,
		DiscountValue: raw.DiscountValue,
		Category:      raw.Category,
		Images:        raw.Images,
		Sizes:         raw.Sizes,
		Stock:         raw.Stock,
		CreatedAt:     raw.CreatedAt,
	}
	if !p.OriginalPrice.Valid {
		p.OriginalPrice = raw.OriginalPrice2
	}
	if !p.DiscountValue.Valid && raw.Discount != nil {
		p.DiscountType = &raw.Discount.Type
		p.DiscountValue = decimal.NullDecimal{Decimal: raw.Discount.Value, Valid: true}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = raw.CreatedAt2
	}
	switch {
	case raw.IsNewArrival != nil:
		p.IsNewArrival = *raw.IsNewArrival
	case raw.IsNewArrival2 != nil:
		p.IsNewArrival = *raw.IsNewArrival2
	}

	cp := p.ToCatalog()
	if cp.Image == "" {
		cp.Image = raw.Image
	}
	if cp.Image2 == "" {
		cp.Image2 = raw.Image2
	}
	if !p.DiscountValue.Valid && raw.FinalPrice.Valid {
		cp.FinalPrice = raw.FinalPrice.Decimal
	}
	return cp, nil
}

// decodeID accepts string or numeric identifiers.
func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode product id: %w", err)
	}
	return n.String(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
