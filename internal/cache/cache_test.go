package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardKey(t *testing.T) {
	assert.Equal(t, "dashboard:stats:librarian", DashboardKey("librarian", 0))
	assert.Equal(t, "dashboard:stats:member:42", DashboardKey("member", 42))
}

func setupRedis(t *testing.T) (*RedisCache, *redis.Client) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return NewRedisCache(client), client
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, client := setupRedis(t)
	ctx := context.Background()
	key := "test:cache:" + t.Name()
	t.Cleanup(func() { client.Del(context.Background(), key) })

	type payload struct {
		Count int `json:"count"`
	}

	var got payload
	found, err := c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetJSON(ctx, key, payload{Count: 7}, time.Minute))

	found, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7, got.Count)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisCache_UndecodableValue(t *testing.T) {
	c, client := setupRedis(t)
	ctx := context.Background()
	key := "test:cache:" + t.Name()
	t.Cleanup(func() { client.Del(context.Background(), key) })

	require.NoError(t, client.Set(ctx, key, "not json", time.Minute).Err())

	var got map[string]int
	found, err := c.GetJSON(ctx, key, &got)
	assert.Error(t, err)
	assert.False(t, found)
}
