package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// IdempotencyStore remembers which event ids have been processed.
// Implementations must be safe for concurrent use.
type IdempotencyStore interface {
	// Claim records eventID and reports whether this call recorded it first.
	Claim(ctx context.Context, eventID string) (bool, error)
	// Release forgets eventID so a failed event can be retried.
	Release(ctx context.Context, eventID string) error
}

// MemoryIdempotencyStore keeps claimed ids in memory until they expire.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryIdempotencyStore creates a store whose entries live for ttl.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryIdempotencyStore) Claim(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if ts, ok := s.entries[eventID]; ok && now.Sub(ts) <= s.ttl {
		return false, nil
	}
	s.entries[eventID] = now
	return true, nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, eventID string) error {
	s.mu.Lock()
	delete(s.entries, eventID)
	s.mu.Unlock()
	return nil
}

// Len returns the number of entries, including expired ones not yet replaced.
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// IdempotentHandler skips events whose id has already been claimed. If inner
// fails the claim is released so a redelivery is processed again. A store
// failure lets the event through.
func IdempotentHandler(store IdempotencyStore, group string, inner Handler, logger *slog.Logger) Handler {
	return func(ctx context.Context, event *Event) error {
		if event.EventID == "" {
			return inner(ctx, event)
		}

		first, err := store.Claim(ctx, event.EventID)
		if err != nil {
			logger.WarnContext(ctx, "idempotency store unavailable, processing anyway",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()),
			)
			return inner(ctx, event)
		}
		if !first {
			consumerMessagesDuplicate.WithLabelValues(group).Inc()
			logger.DebugContext(ctx, "skipping duplicate event",
				slog.String("event_id", event.EventID),
				slog.String("event_type", event.EventType),
			)
			return nil
		}

		if err := inner(ctx, event); err != nil {
			if relErr := store.Release(ctx, event.EventID); relErr != nil {
				logger.WarnContext(ctx, "failed to release event claim",
					slog.String("event_id", event.EventID),
					slog.String("error", relErr.Error()),
				)
			}
			return err
		}
		return nil
	}
}
