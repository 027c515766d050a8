package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// MessageWriter is the part of *kafka.Writer the producers use.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	Async        bool
}

// DefaultProducerConfig returns synchronous, acks=all defaults.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
}

// Producer publishes events to Kafka.
type Producer struct {
	writer  MessageWriter
	brokers []string
	logger  *slog.Logger
}

// NewProducer returns a producer writing through a hash-balanced kafka-go
// writer that waits for every in-sync replica.
func NewProducer(cfg ProducerConfig, logger *slog.Logger) *Producer {
	return NewProducerWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  cfg.Async,
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}, cfg.Brokers, logger)
}

// NewProducerWithWriter creates a producer around an existing writer.
func NewProducerWithWriter(w MessageWriter, brokers []string, logger *slog.Logger) *Producer {
	return &Producer{writer: w, brokers: brokers, logger: logger}
}

// Publish writes event to topic keyed by its aggregate id, so one
// aggregate's events stay ordered on one partition. The caller's trace
// context rides along in the headers.
func (p *Producer) Publish(ctx context.Context, topic string, event *Event) error {
	msg, err := p.message(ctx, topic, event)
	if err != nil {
		return err
	}

	began := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	producerPublishDuration.WithLabelValues(topic).Observe(time.Since(began).Seconds())

	attrs := []any{slog.String("topic", topic), slog.String("event_type", event.EventType)}
	if err != nil {
		producerPublishErrors.WithLabelValues(topic).Inc()
		p.logger.ErrorContext(ctx, "event publish failed", append(attrs, slog.String("error", err.Error()))...)
		return fmt.Errorf("publish %s to %s: %w", event.EventType, topic, err)
	}
	producerMessagesPublished.WithLabelValues(topic).Inc()
	p.logger.DebugContext(ctx, "event published", append(attrs, slog.String("aggregate_id", event.AggregateID))...)
	return nil
}

func (p *Producer) message(ctx context.Context, topic string, event *Event) (kafka.Message, error) {
	body, err := event.Marshal()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s event: %w", event.EventType, err)
	}
	msg := kafka.Message{Topic: topic, Key: []byte(event.AggregateID), Value: body}

	carrier := NewHeaderCarrier(&msg.Headers)
	carrier.Set("event_type", event.EventType)
	carrier.Set("source", event.Source)
	if event.CorrelationID != "" {
		carrier.Set("correlation_id", event.CorrelationID)
	}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return msg, nil
}

// Ping reports whether any configured broker answers.
func (p *Producer) Ping(ctx context.Context) error {
	return PingBrokers(ctx, p.brokers)
}

// PingBrokers asks each broker for cluster metadata and succeeds as soon as
// one replies.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}
	errs := make([]error, 0, len(brokers))
	for _, addr := range brokers {
		err := askMetadata(ctx, addr)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", addr, err))
	}
	return fmt.Errorf("kafka: no broker reachable: %w", errors.Join(errs...))
}

func askMetadata(ctx context.Context, addr string) error {
	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Brokers()
	return err
}

// Close flushes buffered messages and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
