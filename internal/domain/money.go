package domain

import "github.com/shopspring/decimal"

func init() {
	// Storefront clients read prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

var hundred = decimal.NewFromInt(100)

// RoundPrice rounds to cents using banker's rounding.
func RoundPrice(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}
