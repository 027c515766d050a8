package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TopicPrefix namespaces every topic this service writes to.
const TopicPrefix = "apparel"

// EnvelopeVersion is written into every new event.
const EnvelopeVersion = 1

// Topic joins the prefix, aggregate and action: Topic("order", "created")
// is "apparel.order.created".
func Topic(aggregate, action string) string {
	return strings.Join([]string{TopicPrefix, aggregate, action}, ".")
}

var errNoEventType = errors.New("event envelope has no event_type")

// Event is the JSON envelope carried in every message value. Data holds the
// aggregate-specific payload.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent marshals data and wraps it in a fresh envelope.
func NewEvent(eventType, aggregateID, aggregateType, source string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       EnvelopeVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          payload,
	}, nil
}

func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = map[string]string{}
	}
	e.Metadata[key] = value
	return e
}

func (e *Event) Marshal() ([]byte, error) { return json.Marshal(e) }

// UnmarshalData decodes the payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}

// UnmarshalEvent decodes a message value; an envelope without an event type
// is rejected.
func UnmarshalEvent(raw []byte) (*Event, error) {
	e := new(Event)
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, err
	}
	if e.EventType == "" {
		return nil, errNoEventType
	}
	return e, nil
}
