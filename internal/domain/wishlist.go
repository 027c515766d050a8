package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistItem is a saved product. The product id is the key.
type WishlistItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	CreatedAt time.Time       `json:"created_at"`
}

// Wishlist is the ordered list of saved products for one shopper session.
type Wishlist []WishlistItem

// Contains reports whether id is saved.
func (w Wishlist) Contains(id string) bool {
	for _, item := range w {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Add appends item unless its id is already present.
func (w Wishlist) Add(item WishlistItem) Wishlist {
	if w.Contains(item.ID) {
		return w
	}
	return append(w, item)
}

// Remove drops the item with the given id.
func (w Wishlist) Remove(id string) Wishlist {
	out := make(Wishlist, 0, len(w))
	for _, item := range w {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// Toggle removes item when present and adds it otherwise. The second
// return value is true when the item ended up in the wishlist.
func (w Wishlist) Toggle(item WishlistItem) (Wishlist, bool) {
	if w.Contains(item.ID) {
		return w.Remove(item.ID), false
	}
	return append(w, item), true
}
