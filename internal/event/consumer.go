package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	pkgkafka "github.com/utafrali/apparelstore/pkg/kafka"
)

// StatsGroup is the consumer group that feeds the dashboard projection.
const StatsGroup = "apparel-stats"

// OrderRecorder is the part of the stats service the consumer drives.
// *service.StatsService satisfies it.
type OrderRecorder interface {
	RecordOrder(ctx context.Context, orderID, email string, total decimal.Decimal, at time.Time) error
}

// StatsConsumer projects order.created events into the dashboard totals.
type StatsConsumer struct {
	recorder OrderRecorder
	logger   *slog.Logger
}

// NewStatsConsumer creates a new stats consumer.
func NewStatsConsumer(recorder OrderRecorder, logger *slog.Logger) *StatsConsumer {
	return &StatsConsumer{recorder: recorder, logger: logger}
}

// Handle processes one event. Unknown event types are skipped.
func (c *StatsConsumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicOrderCreated:
		return c.handleOrderCreated(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *StatsConsumer) handleOrderCreated(ctx context.Context, event *pkgkafka.Event) error {
	var data OrderCreatedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal order.created data: %w", err)
	}
	if data.OrderID == "" {
		data.OrderID = event.AggregateID
	}

	at := event.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}

	if err := c.recorder.RecordOrder(ctx, data.OrderID, data.Email, data.Total, at); err != nil {
		return fmt.Errorf("record order from created event: %w", err)
	}

	c.logger.InfoContext(ctx, "recorded order from created event",
		slog.String("order_id", data.OrderID),
	)
	return nil
}
