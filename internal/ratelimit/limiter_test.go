package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestRedisLimiterAllow(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisLimiter(client, "test:login", 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "worker-a")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "worker-a")
	require.NoError(t, err)
	assert.False(t, allowed, "4th attempt should be denied")

	allowed, err = limiter.Allow(ctx, "worker-b")
	require.NoError(t, err)
	assert.True(t, allowed, "keys are independent")
}

func TestRedisLimiterReset(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisLimiter(client, "test:login", 1, time.Minute)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "worker-a")
	require.NoError(t, err)
	require.NoError(t, limiter.Reset(ctx, "worker-a"))

	allowed, err := limiter.Allow(ctx, "worker-a")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestDisabledLimiterAlwaysAllows(t *testing.T) {
	limiter := NewRedisLimiter(nil, "test:login", 0, time.Minute)

	allowed, err := limiter.Allow(context.Background(), "anyone")
	require.NoError(t, err)
	assert.True(t, allowed)
}
