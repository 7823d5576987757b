package authz

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
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

func TestRedisRoleCacheRoundTrip(t *testing.T) {
	cache := NewRedisRoleCache(setupTestRedis(t), time.Minute, nil)
	ctx := context.Background()
	role := &domain.Role{ID: "r1", RoleName: "auditor", IsActive: true, Permissions: domain.PermissionMatrix{
		domain.ModuleTicketManagement: {Read: true},
	}}

	_, ok := cache.Get(ctx, ByName("auditor"))
	assert.False(t, ok)

	cache.Set(ctx, role)
	byName, ok := cache.Get(ctx, ByName("auditor"))
	require.True(t, ok)
	assert.True(t, byName.Permissions.Allows(domain.ModuleTicketManagement, domain.OpRead))
	_, ok = cache.Get(ctx, ByID("r1"))
	assert.True(t, ok)

	cache.Invalidate(ctx, role)
	_, ok = cache.Get(ctx, ByName("auditor"))
	assert.False(t, ok)
	_, ok = cache.Get(ctx, ByID("r1"))
	assert.False(t, ok)
}

func TestNewRedisRoleCacheWithoutClientIsNoop(t *testing.T) {
	cache := NewRedisRoleCache(nil, time.Minute, nil)
	_, isNoop := cache.(NoopCache)
	assert.True(t, isNoop)
}
