package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/apparelstore/internal/domain"
	pkgkafka "github.com/utafrali/apparelstore/pkg/kafka"
	"github.com/utafrali/apparelstore/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicCartUpdated     = pkgkafka.Topic("cart", "updated")
	TopicWishlistUpdated = pkgkafka.Topic("wishlist", "updated")
	TopicOrderCreated    = pkgkafka.Topic("order", "created")
	TopicProductCreated  = pkgkafka.Topic("product", "created")
	TopicProductUpdated  = pkgkafka.Topic("product", "updated")
	TopicProductDeleted  = pkgkafka.Topic("product", "deleted")
)

// Aggregate type constants.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
	AggregateTypeOrder    = "order"
	AggregateTypeProduct  = "product"
)

// Source identifies events written by this service.
const Source = "apparelstore"

// Publisher writes an event envelope to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string          `json:"session_id"`
	Items     domain.Cart     `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID  string   `json:"session_id"`
	ProductIDs []string `json:"product_ids"`
	Count      int      `json:"count"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID   string          `json:"order_id"`
	Email     string          `json:"email"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
}

// ProductEventData is the payload for product.* events.
type ProductEventData struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Slug      string          `json:"slug,omitempty"`
	Status    string          `json:"status,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

// Producer publishes storefront domain events. A nil publisher turns every
// call into a no-op, which is how the service runs with Kafka disabled.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error {
	data := CartUpdatedData{
		SessionID: sessionID,
		Items:     cart.Summarize().Items,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
	}
	return p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeCart, data)
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, sessionID string, wishlist domain.Wishlist) error {
	ids := make([]string, 0, len(wishlist))
	for _, item := range wishlist {
		ids = append(ids, item.ID)
	}
	data := WishlistUpdatedData{SessionID: sessionID, ProductIDs: ids, Count: len(ids)}
	return p.publish(ctx, TopicWishlistUpdated, sessionID, AggregateTypeWishlist, data)
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		OrderID:   order.ID,
		Email:     order.Email,
		ItemCount: order.ItemCount(),
		Subtotal:  order.Subtotal,
		Total:     order.Total,
	}
	return p.publish(ctx, TopicOrderCreated, order.ID, AggregateTypeOrder, data)
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID string) error {
	return p.publish(ctx, TopicProductDeleted, productID, AggregateTypeProduct, ProductEventData{ProductID: productID})
}

func productData(product *domain.Product) ProductEventData {
	return ProductEventData{
		ProductID: product.ID,
		Name:      product.Name,
		Slug:      product.Slug,
		Status:    product.Status,
		Price:     product.Price,
		Stock:     product.Stock,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	if p == nil || p.publisher == nil {
		return nil
	}

	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
