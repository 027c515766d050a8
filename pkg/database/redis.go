package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the Redis instance backing carts, wishlists and the
// stats projection. URL, when set, wins over the discrete fields.
type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int
	PoolSize int
}

func (c RedisConfig) options() (*redis.Options, error) {
	if c.URL != "" {
		opts, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if c.PoolSize > 0 {
			opts.PoolSize = c.PoolSize
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
	}, nil
}

// NewRedisClient connects and pings; the client is closed again if the
// ping fails.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}
