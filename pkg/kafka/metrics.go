package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "kafka"

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func seconds(subsystem, name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.DefBuckets,
	}, labels)
}

// Producer side, labelled by topic.
var (
	producerMessagesPublished = counter("producer", "messages_published_total", "Messages written.", "topic")
	producerPublishErrors     = counter("producer", "publish_errors_total", "Failed writes.", "topic")
	producerPublishDuration   = seconds("producer", "publish_duration_seconds", "Write latency.", "topic")
)

// Consumer side, labelled by topic and group.
var (
	consumerMessagesProcessed  = counter("consumer", "messages_processed_total", "Messages handled successfully.", "topic", "consumer_group")
	consumerMessagesFailed     = counter("consumer", "messages_failed_total", "Messages that exhausted their retries.", "topic", "consumer_group")
	consumerDLQPublished       = counter("consumer", "dlq_published_total", "Messages forwarded to a dead-letter topic.", "topic", "consumer_group")
	consumerMessagesDuplicate  = counter("consumer", "messages_duplicate_total", "Redelivered messages skipped by the idempotency store.", "consumer_group")
	consumerProcessingDuration = seconds("consumer", "processing_duration_seconds", "Handler latency.", "topic", "consumer_group")
)
