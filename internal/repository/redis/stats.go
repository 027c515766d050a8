package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/utafrali/apparelstore/internal/domain"
)

// Keys of the sales projection. Revenue is kept in cents so INCRBY stays exact.
const (
	statsRevenueCentsKey = "stats:revenue_cents"
	statsOrdersKey       = "stats:orders"
	statsCustomersKey    = "stats:customers"
	statsLastOrderKey    = "stats:last_order_at"
)

// StatsRepository implements repository.StatsRepository using Redis counters.
type StatsRepository struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) *StatsRepository {
	return &StatsRepository{client: client}
}

// RecordOrder adds one order to the running totals in a single MULTI/EXEC.
func (r *StatsRepository) RecordOrder(ctx context.Context, total decimal.Decimal, customerEmail string, at time.Time) error {
	cents := total.Shift(2).Round(0).IntPart()
	email := strings.ToLower(strings.TrimSpace(customerEmail))

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.IncrBy(ctx, statsRevenueCentsKey, cents)
		pipe.Incr(ctx, statsOrdersKey)
		if email != "" {
			pipe.SAdd(ctx, statsCustomersKey, email)
		}
		pipe.Set(ctx, statsLastOrderKey, at.UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis record order: %w", err)
	}
	return nil
}

// Totals reads the running totals. Missing keys count as zero.
func (r *StatsRepository) Totals(ctx context.Context) (domain.SalesTotals, error) {
	pipe := r.client.Pipeline()
	revenue := pipe.Get(ctx, statsRevenueCentsKey)
	orders := pipe.Get(ctx, statsOrdersKey)
	customers := pipe.SCard(ctx, statsCustomersKey)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return domain.SalesTotals{}, fmt.Errorf("redis read stats: %w", err)
	}

	revenueCents, err := intOrZero(revenue)
	if err != nil {
		return domain.SalesTotals{}, fmt.Errorf("parse revenue: %w", err)
	}
	orderCount, err := intOrZero(orders)
	if err != nil {
		return domain.SalesTotals{}, fmt.Errorf("parse order count: %w", err)
	}

	return domain.SalesTotals{
		Revenue:   decimal.New(revenueCents, -2),
		Orders:    orderCount,
		Customers: customers.Val(),
	}, nil
}

func intOrZero(cmd *redis.StringCmd) (int64, error) {
	n, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
