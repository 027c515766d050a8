package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_Addr(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), RedisConfig{Addr: mr.Addr(), PoolSize: 4})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 4, client.Options().PoolSize)
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	assert.Equal(t, "v", mustGet(t, mr, "k"))
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}

func TestNewRedisClient_URLWins(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), RedisConfig{
		URL:  "redis://" + mr.Addr() + "/2",
		Addr: "127.0.0.1:1",
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, mr.Addr(), client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), RedisConfig{URL: "http://nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestNewRedisClient_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), RedisConfig{Addr: addr})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}
