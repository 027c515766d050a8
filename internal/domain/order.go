package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Checkout address defaults.
const (
	DefaultState   = "California"
	DefaultCountry = "United States (US)"
)

// Order is the order header written at checkout.
type Order struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Company   *string         `json:"company"`
	Address   string          `json:"address"`
	City      string          `json:"city"`
	State     string          `json:"state"`
	Country   string          `json:"country"`
	ZipCode   string          `json:"zip_code"`
	Phone     *string         `json:"phone"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []OrderItem     `json:"items,omitempty"`
}

// OrderItem is a product line frozen at purchase time.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      *string         `json:"size"`
	Image     string          `json:"image"`
}

// CustomerName returns "First Last".
func (o *Order) CustomerName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// ItemCount returns the number of units across all items.
func (o *Order) ItemCount() int {
	var n int
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// OrderItemsFromCart freezes cart lines into order items for orderID.
func OrderItemsFromCart(orderID string, cart Cart) []OrderItem {
	items := make([]OrderItem, 0, len(cart))
	for _, line := range cart {
		item := OrderItem{
			OrderID:   orderID,
			ProductID: line.ID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Image:     line.Image,
		}
		if line.Size != "" {
			size := line.Size
			item.Size = &size
		}
		items = append(items, item)
	}
	return items
}
