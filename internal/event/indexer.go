package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/apparelstore/internal/domain"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
	pkgkafka "github.com/utafrali/apparelstore/pkg/kafka"
)

// SearchIndexGroup is the consumer group that keeps the search index in sync.
const SearchIndexGroup = "apparel-search-indexer"

// ProductTopics are the topics the search indexer follows.
var ProductTopics = []string{TopicProductCreated, TopicProductUpdated, TopicProductDeleted}

// ProductLoader reads the current state of a product.
type ProductLoader interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// DocumentIndex is the write side of the search index.
type DocumentIndex interface {
	Put(ctx context.Context, p domain.CatalogProduct) error
	Delete(ctx context.Context, id string) error
}

// SearchIndexer mirrors product changes into the search index. Events are
// treated as change notifications: the product is re-read, so a late or
// replayed event never writes stale data.
type SearchIndexer struct {
	products ProductLoader
	index    DocumentIndex
	logger   *slog.Logger
}

func NewSearchIndexer(products ProductLoader, index DocumentIndex, logger *slog.Logger) *SearchIndexer {
	return &SearchIndexer{products: products, index: index, logger: logger}
}

// Handle processes one product event. Unknown event types are skipped.
func (s *SearchIndexer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}
	id := data.ProductID
	if id == "" {
		id = event.AggregateID
	}

	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated:
		return s.sync(ctx, id)
	case TopicProductDeleted:
		return s.remove(ctx, id)
	default:
		s.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (s *SearchIndexer) sync(ctx context.Context, id string) error {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return s.remove(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("load product %s: %w", id, err)
	}
	if !p.IsActive() {
		return s.remove(ctx, id)
	}

	if err := s.index.Put(ctx, p.ToCatalog()); err != nil {
		return fmt.Errorf("index product %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "product indexed", slog.String("product_id", id))
	return nil
}

func (s *SearchIndexer) remove(ctx context.Context, id string) error {
	if err := s.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove product %s from index: %w", id, err)
	}
	s.logger.InfoContext(ctx, "product removed from index", slog.String("product_id", id))
	return nil
}
