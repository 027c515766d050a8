package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

const (
	defaultMaxAttempts = 3
	defaultRetryWait   = 100 * time.Millisecond
)

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DeadLetterPublisher receives messages whose handler kept failing.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, msg kafka.Message, lastErr error, group string) error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers     []string
	GroupID     string
	Topics      []string
	MinBytes    int
	MaxBytes    int
	MaxAttempts int
	RetryWait   time.Duration
}

// Consumer reads events from a consumer group and hands them to a Handler.
// Each message is committed once it has been handled, skipped as malformed,
// or given up on after MaxAttempts (and sent to the dead-letter publisher if
// one is configured).
type Consumer struct {
	reader      MessageReader
	handler     Handler
	dlq         DeadLetterPublisher
	group       string
	maxAttempts int
	retryWait   time.Duration
	logger      *slog.Logger
	closeOnce   sync.Once
}

// NewConsumer creates a consumer backed by a kafka-go reader.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
	})
	return NewConsumerWithReader(r, cfg, handler, logger)
}

// NewConsumerWithReader creates a consumer around an existing reader.
func NewConsumerWithReader(r MessageReader, cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	c := &Consumer{
		reader:      r,
		handler:     handler,
		group:       cfg.GroupID,
		maxAttempts: cfg.MaxAttempts,
		retryWait:   cfg.RetryWait,
		logger:      logger,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.retryWait <= 0 {
		c.retryWait = defaultRetryWait
	}
	return c
}

// WithDeadLetter routes exhausted messages to dlq.
func (c *Consumer) WithDeadLetter(dlq DeadLetterPublisher) *Consumer {
	c.dlq = dlq
	return c
}

// Start consumes until ctx is cancelled or the reader is closed (io.EOF).
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("group", c.group))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("consumer stopping", slog.String("group", c.group))
				return c.Close()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("failed to commit message",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, NewHeaderCarrier(&msg.Headers))

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.ErrorContext(ctx, "skipping malformed event",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		consumerMessagesFailed.WithLabelValues(msg.Topic, c.group).Inc()
		return
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if lastErr = c.handler(ctx, event); lastErr == nil {
			break
		}

		c.logger.WarnContext(ctx, "event handler failed",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.maxAttempts),
			slog.String("error", lastErr.Error()),
		)

		if attempt < c.maxAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * c.retryWait):
			}
		}
	}
	consumerProcessingDuration.WithLabelValues(msg.Topic, c.group).Observe(time.Since(start).Seconds())

	if lastErr == nil {
		consumerMessagesProcessed.WithLabelValues(msg.Topic, c.group).Inc()
		return
	}

	consumerMessagesFailed.WithLabelValues(msg.Topic, c.group).Inc()
	c.logger.ErrorContext(ctx, "event handler gave up",
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
		slog.String("error", lastErr.Error()),
	)

	if c.dlq != nil {
		if err := c.dlq.Publish(ctx, msg, lastErr, c.group); err == nil {
			consumerDLQPublished.WithLabelValues(msg.Topic, c.group).Inc()
		}
	}
}

// Close closes the reader. It is safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}
