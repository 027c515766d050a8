package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/apparelstore/internal/domain"
)

const cartKeyPrefix = "cart:"

// CartRepository implements repository.CartRepository using Redis.
type CartRepository struct {
	list jsonList[domain.CartItem]
}

// NewCartRepository creates a new Redis-backed cart repository. A zero ttl
// keeps carts until they are cleared.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{list: jsonList[domain.CartItem]{client: client, prefix: cartKeyPrefix, ttl: ttl}}
}

// Get retrieves the session cart. A missing key is an empty cart.
func (r *CartRepository) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	return r.list.get(ctx, sessionID)
}

// Save overwrites the session cart and refreshes its TTL.
func (r *CartRepository) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	return r.list.save(ctx, sessionID, cart)
}

// Delete removes the session cart.
func (r *CartRepository) Delete(ctx context.Context, sessionID string) error {
	return r.list.delete(ctx, sessionID)
}
