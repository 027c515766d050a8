package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/apparelstore/internal/domain"
)

const wishlistKeyPrefix = "wishlist:"

// WishlistRepository implements repository.WishlistRepository using Redis.
type WishlistRepository struct {
	list jsonList[domain.WishlistItem]
}

func NewWishlistRepository(client *redis.Client, ttl time.Duration) *WishlistRepository {
	return &WishlistRepository{list: jsonList[domain.WishlistItem]{client: client, prefix: wishlistKeyPrefix, ttl: ttl}}
}

func (r *WishlistRepository) Get(ctx context.Context, sessionID string) (domain.Wishlist, error) {
	return r.list.get(ctx, sessionID)
}

func (r *WishlistRepository) Save(ctx context.Context, sessionID string, wishlist domain.Wishlist) error {
	return r.list.save(ctx, sessionID, wishlist)
}

func (r *WishlistRepository) Delete(ctx context.Context, sessionID string) error {
	return r.list.delete(ctx, sessionID)
}
