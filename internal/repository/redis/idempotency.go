package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const processedKeyPrefix = "processed:"

// IdempotencyStore implements kafka.IdempotencyStore with SET NX keys that
// expire after ttl.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewIdempotencyStore creates a store whose keys are scoped to group.
func NewIdempotencyStore(client *redis.Client, group string, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, prefix: processedKeyPrefix + group + ":", ttl: ttl}
}

// Claim marks eventID as being processed. It returns false when another
// delivery already claimed it.
func (s *IdempotencyStore) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+eventID, time.Now().UTC().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim event: %w", err)
	}
	return ok, nil
}

// Release forgets eventID so a later delivery can process it again.
func (s *IdempotencyStore) Release(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, s.prefix+eventID).Err(); err != nil {
		return fmt.Errorf("redis release event: %w", err)
	}
	return nil
}
