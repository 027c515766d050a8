package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// DLQTopicPrefix prefixes dead-letter topics.
const DLQTopicPrefix = TopicPrefix + ".dlq"

// DLQTopic returns the dead-letter topic for originalTopic.
func DLQTopic(originalTopic string) string {
	return DLQTopicPrefix + "." + originalTopic
}

// DLQProducer republishes failed messages to their dead-letter topic, keeping
// the original headers and adding where the message came from and why it failed.
type DLQProducer struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewDLQProducer creates a dead-letter producer writing one message per batch.
func NewDLQProducer(brokers []string, logger *slog.Logger) *DLQProducer {
	return NewDLQProducerWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              1,
		BatchTimeout:           100 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, logger)
}

// NewDLQProducerWithWriter creates a dead-letter producer around w.
func NewDLQProducerWithWriter(w MessageWriter, logger *slog.Logger) *DLQProducer {
	return &DLQProducer{writer: w, logger: logger}
}

// Publish implements DeadLetterPublisher.
func (d *DLQProducer) Publish(ctx context.Context, msg kafka.Message, lastErr error, group string) error {
	topic := DLQTopic(msg.Topic)

	headers := make([]kafka.Header, 0, len(msg.Headers)+5)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "dlq.original_topic", Value: []byte(msg.Topic)},
		kafka.Header{Key: "dlq.original_partition", Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: "dlq.original_offset", Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: "dlq.consumer_group", Value: []byte(group)},
	)
	if lastErr != nil {
		headers = append(headers, kafka.Header{Key: "dlq.error", Value: []byte(lastErr.Error())})
	}

	err := d.writer.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to publish message to DLQ",
			slog.String("dlq_topic", topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish to DLQ %s: %w", topic, err)
	}

	d.logger.WarnContext(ctx, "message sent to DLQ",
		slog.String("dlq_topic", topic),
		slog.String("original_topic", msg.Topic),
		slog.Int64("offset", msg.Offset),
		slog.String("consumer_group", group),
	)
	return nil
}

// Close closes the underlying writer.
func (d *DLQProducer) Close() error {
	return d.writer.Close()
}
