package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// jsonList stores a whole slice as one JSON array under prefix+session id.
// Reads and writes are not coordinated; the last Save wins.
type jsonList[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (l jsonList[T]) key(sessionID string) string {
	return l.prefix + sessionID
}

// get returns an empty slice when the key is missing.
func (l jsonList[T]) get(ctx context.Context, sessionID string) ([]T, error) {
	data, err := l.client.Get(ctx, l.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", l.prefix, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", l.prefix, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (l jsonList[T]) save(ctx context.Context, sessionID string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", l.prefix, err)
	}
	if err := l.client.Set(ctx, l.key(sessionID), data, l.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", l.prefix, err)
	}
	return nil
}

func (l jsonList[T]) delete(ctx context.Context, sessionID string) error {
	if err := l.client.Del(ctx, l.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", l.prefix, err)
	}
	return nil
}
