package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func strPtr(s string) *string { return &s }

// ============================================================================
// DiscountedPrice Tests
// ============================================================================

func TestDiscountedPrice_Percentage(t *testing.T) {
	p := &Product{Price: dec("100"), DiscountType: strPtr(DiscountPercentage), DiscountValue: nullDec("10")}
	assert.True(t, dec("90").Equal(p.DiscountedPrice()))
}

func TestDiscountedPrice_Fixed(t *testing.T) {
	p := &Product{Price: dec("100"), DiscountType: strPtr(DiscountFixed), DiscountValue: nullDec("15")}
	assert.True(t, dec("85").Equal(p.DiscountedPrice()))
}

func TestDiscountedPrice_NoDiscount(t *testing.T) {
	p := &Product{Price: dec("49.99")}
	assert.True(t, dec("49.99").Equal(p.DiscountedPrice()))
}

func TestDiscountedPrice_MissingTypeDefaultsToPercentage(t *testing.T) {
	p := &Product{Price: dec("80"), DiscountValue: nullDec("25")}
	assert.True(t, dec("60").Equal(p.DiscountedPrice()))
}

func TestDiscountedPrice_FixedLargerThanPriceIsNotClamped(t *testing.T) {
	p := &Product{Price: dec("10"), DiscountType: strPtr(DiscountFixed), DiscountValue: nullDec("15")}
	assert.True(t, dec("-5").Equal(p.DiscountedPrice()))
}

func TestDiscountedPrice_PercentageRoundsToCents(t *testing.T) {
	p := &Product{Price: dec("19.99"), DiscountType: strPtr(DiscountPercentage), DiscountValue: nullDec("15")}
	// 19.99 - 2.9985 = 16.9915
	assert.Equal(t, "16.99", p.DiscountedPrice().StringFixed(2))
}

func TestApplyDiscount_UnknownTypeLeavesPrice(t *testing.T) {
	assert.True(t, dec("30").Equal(ApplyDiscount(dec("30"), "bogus", dec("5"))))
}

// ============================================================================
// Validation helper Tests
// ============================================================================

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus("active"))
	assert.True(t, IsValidStatus("draft"))
	assert.False(t, IsValidStatus("published"))
	assert.False(t, IsValidStatus(""))
}

func TestIsValidFilterAndSort(t *testing.T) {
	for _, f := range []string{"all", "active", "draft", "out_of_stock", "low_stock"} {
		assert.True(t, IsValidFilter(f), f)
	}
	assert.False(t, IsValidFilter("archived"))

	assert.True(t, IsValidSort("price-low"))
	assert.False(t, IsValidSort("name"))
}

// ============================================================================
// Catalog normalization Tests
// ============================================================================

func TestToCatalog_ImagesAndFinalPrice(t *testing.T) {
	p := &Product{
		ID:            "p1",
		Name:          "Linen Shirt",
		Price:         dec("100"),
		DiscountType:  strPtr(DiscountFixed),
		DiscountValue: nullDec("15"),
		Images:        []string{"a.jpg", "b.jpg", "c.jpg"},
	}

	cp := p.ToCatalog()
	assert.Equal(t, "a.jpg", cp.Image)
	assert.Equal(t, "b.jpg", cp.Image2)
	assert.True(t, dec("85").Equal(cp.FinalPrice))
	require.NotNil(t, cp.Discount)
	assert.Equal(t, "$15.00", cp.Discount.Label())
	assert.Equal(t, []string{}, cp.Sizes)
}

func TestNormalizeCatalogProduct_SnakeCase(t *testing.T) {
	raw := `{"id":"p1","name":"Hoodie","price":"59.90","original_price":79.9,
		"discount_type":"percentage","discount_value":10,"category":"hoodie",
		"images":["h1.jpg"],"sizes":["S","M"],"is_new_arrival":false,"stock":4,
		"created_at":"2024-05-01T10:00:00Z"}`

	cp, err := NormalizeCatalogProduct([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "p1", cp.ID)
	assert.True(t, cp.OriginalPrice.Valid)
	assert.True(t, dec("79.9").Equal(cp.OriginalPrice.Decimal))
	assert.Equal(t, "53.91", cp.FinalPrice.StringFixed(2))
	assert.Equal(t, "h1.jpg", cp.Image)
	assert.Empty(t, cp.Image2)
	assert.False(t, cp.IsNewArrival)
	assert.Equal(t, 2024, cp.CreatedAt.Year())
}

func TestNormalizeCatalogProduct_CamelCaseAndImageFallback(t *testing.T) {
	raw := `{"id":7,"name":"Tee","price":20,"originalPrice":25,"image":"t.jpg","image2":"t2.jpg","isNewArrival":true}`

	cp, err := NormalizeCatalogProduct([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "7", cp.ID)
	assert.True(t, dec("25").Equal(cp.OriginalPrice.Decimal))
	assert.Equal(t, "t.jpg", cp.Image)
	assert.Equal(t, "t2.jpg", cp.Image2)
	assert.True(t, cp.IsNewArrival)
	assert.True(t, dec("20").Equal(cp.FinalPrice))
}

func TestNormalizeCatalogProduct_SnakeOriginalPriceWins(t *testing.T) {
	cp, err := NormalizeCatalogProduct([]byte(`{"id":"x","price":1,"original_price":3,"originalPrice":2}`))
	require.NoError(t, err)
	assert.True(t, dec("3").Equal(cp.OriginalPrice.Decimal))
}

func TestNormalizeCatalogProduct_RoundTripsOwnShape(t *testing.T) {
	p := &Product{ID: "r1", Name: "Jacket", Price: dec("120"), DiscountValue: nullDec("50"), Images: []string{"j.jpg"}}
	data, err := json.Marshal(p.ToCatalog())
	require.NoError(t, err)

	cp, err := NormalizeCatalogProduct(data)
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(cp.FinalPrice))
	assert.Equal(t, "50%", cp.Discount.Label())
}

func TestNormalizeCatalogProduct_InvalidJSON(t *testing.T) {
	_, err := NormalizeCatalogProduct([]byte(`{"id":`))
	assert.Error(t, err)
}

func TestProductJSON_PricesAreNumbers(t *testing.T) {
	data, err := json.Marshal(&Product{Price: dec("12.50")})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":12.5`)
	assert.Contains(t, string(data), `"original_price":null`)
}
