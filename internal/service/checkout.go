package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/internal/repository"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
	"github.com/utafrali/apparelstore/pkg/validator"
)

// MsgRequiredFields is returned when any contact or address field is blank.
const MsgRequiredFields = "Please fill required fields"

// CheckoutInput is the checkout form. Items, when given, replace the
// session cart as the source of order lines.
type CheckoutInput struct {
	Email     string            `json:"email" validate:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Company   string            `json:"company"`
	Address   string            `json:"address"`
	City      string            `json:"city"`
	State     string            `json:"state"`
	Country   string            `json:"country"`
	ZipCode   string            `json:"zip_code" validate:"zipcode"`
	Phone     string            `json:"phone" validate:"omitempty,phone"`
	Items     []domain.CartItem `json:"items,omitempty"`
}

// requiredFields lists the form fields that must be non-blank, in the order
// they are reported.
func (in *CheckoutInput) requiredFields() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"email", in.Email},
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"address", in.Address},
		{"city", in.City},
		{"zip_code", in.ZipCode},
	}
}

func (in *CheckoutInput) normalize() {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Company = strings.TrimSpace(in.Company)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Country = strings.TrimSpace(in.Country)
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.State == "" {
		in.State = domain.DefaultState
	}
	if in.Country == "" {
		in.Country = domain.DefaultCountry
	}
}

// Validate checks the form without touching any store. Blank required
// fields are reported together under MsgRequiredFields; format problems are
// reported only once every required field is present.
func (in *CheckoutInput) Validate() error {
	missing := map[string]string{}
	for _, f := range in.requiredFields() {
		if strings.TrimSpace(f.value) == "" {
			missing[f.name] = "is required"
		}
	}
	if len(missing) > 0 {
		return apperrors.InvalidInput(MsgRequiredFields).WithFields(missing)
	}

	if err := validator.Validate(in); err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			return apperrors.InvalidInput("Please correct the highlighted fields").WithFields(valErr.Fields())
		}
		return apperrors.InvalidInput(err.Error())
	}
	return nil
}

// CheckoutService turns the session cart into an order.
type CheckoutService struct {
	orders repository.OrderRepository
	carts  repository.CartRepository
	events OrderEvents
	logger *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(orders repository.OrderRepository, carts repository.CartRepository, events OrderEvents, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{orders: orders, carts: carts, events: events, logger: logger}
}

// Submit validates the form, writes the order header and then its items,
// and finally clears the cart. The two writes are independent: when the
// items insert fails the header stays behind and the call fails.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, input CheckoutInput) (*domain.Order, error) {
	input.normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	cart := domain.Cart(input.Items)
	fromSession := len(cart) == 0
	if fromSession {
		if sessionID == "" {
			return nil, apperrors.InvalidInput("Your cart is empty")
		}
		var err error
		if cart, err = s.carts.Get(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
	}
	if err := validateLines(cart); err != nil {
		return nil, err
	}

	subtotal := cart.Subtotal()
	order := &domain.Order{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Company:   optional(input.Company),
		Address:   input.Address,
		City:      input.City,
		State:     input.State,
		Country:   input.Country,
		ZipCode:   input.ZipCode,
		Phone:     optional(input.Phone),
		Subtotal:  subtotal,
		Total:     subtotal,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	order.Items = domain.OrderItemsFromCart(order.ID, cart)
	if err := s.orders.CreateItems(ctx, order.ID, order.Items); err != nil {
		s.logger.ErrorContext(ctx, "order items insert failed, header left without items",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("create order items: %w", err)
	}

	if sessionID != "" {
		if err := s.carts.Delete(ctx, sessionID); err != nil {
			s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	logPublishError(ctx, s.logger, "order.created", s.events.PublishOrderCreated(ctx, order))

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.Int("item_count", order.ItemCount()),
		slog.String("total", order.Total.StringFixed(2)),
		slog.Bool("from_session_cart", fromSession),
	)
	return order, nil
}

func validateLines(cart domain.Cart) error {
	if len(cart) == 0 {
		return apperrors.InvalidInput("Your cart is empty")
	}
	if len(cart) > MaxItemsPerCart {
		return apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
	}
	for _, line := range cart {
		if strings.TrimSpace(line.ID) == "" {
			return apperrors.InvalidInput("every item needs a product id")
		}
		if line.Quantity < 1 || line.Quantity > MaxQuantityPerItem {
			return apperrors.InvalidInput(fmt.Sprintf("quantity for %s must be between 1 and %d", line.ID, MaxQuantityPerItem))
		}
		if line.Price.IsNegative() {
			return apperrors.InvalidInput(fmt.Sprintf("price for %s must not be negative", line.ID))
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
