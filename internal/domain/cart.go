package domain

import "github.com/shopspring/decimal"

// CartItem is one cart line. A line is keyed by product id and selected
// size, so the same product in two sizes occupies two lines.
type CartItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Size     string          `json:"size,omitempty"`
	Quantity int             `json:"quantity"`
}

// Matches reports whether the line has the given key.
func (i CartItem) Matches(id, size string) bool {
	return i.ID == id && i.Size == size
}

// LineTotal returns price × quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the ordered list of lines held for one shopper session.
type Cart []CartItem

// FindItemIndex returns the index of the line with the given key, or -1.
func (c Cart) FindItemIndex(id, size string) int {
	for i := range c {
		if c[i].Matches(id, size) {
			return i
		}
	}
	return -1
}

// Add merges item into the cart, summing quantities when the key exists.
func (c Cart) Add(item CartItem) Cart {
	if idx := c.FindItemIndex(item.ID, item.Size); idx >= 0 {
		c[idx].Quantity += item.Quantity
		return c
	}
	return append(c, item)
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line. Unknown keys leave the cart unchanged.
func (c Cart) UpdateQuantity(id, size string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(id, size)
	}
	if idx := c.FindItemIndex(id, size); idx >= 0 {
		c[idx].Quantity = quantity
	}
	return c
}

// Remove drops the line with the given key.
func (c Cart) Remove(id, size string) Cart {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if !item.Matches(id, size) {
			out = append(out, item)
		}
	}
	return out
}

// ItemCount returns the total number of units in the cart.
func (c Cart) ItemCount() int {
	var count int
	for _, item := range c {
		count += item.Quantity
	}
	return count
}

// Subtotal returns Σ price × quantity.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.LineTotal())
	}
	return total
}

// CartSummary is the cart as returned by the API.
type CartSummary struct {
	Items     Cart            `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Summarize builds the API view of c.
func (c Cart) Summarize() CartSummary {
	items := c
	if items == nil {
		items = Cart{}
	}
	return CartSummary{Items: items, ItemCount: c.ItemCount(), Subtotal: c.Subtotal()}
}
