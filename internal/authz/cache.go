package authz

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const roleCachePrefix = "helpdesk:role:"

// RoleCache memoizes role lookups. Implementations must treat every failure as a miss.
type RoleCache interface {
	Get(ctx context.Context, key string) (*domain.Role, bool)
	Set(ctx context.Context, role *domain.Role)
	Invalidate(ctx context.Context, role *domain.Role)
}

// ByName and ByID build the two lookup keys a role is cached under.
func ByName(roleName string) string { return "name:" + roleName }
func ByID(roleID string) string     { return "id:" + roleID }

// NoopCache disables caching.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*domain.Role, bool) { return nil, false }
func (NoopCache) Set(context.Context, *domain.Role)                {}
func (NoopCache) Invalidate(context.Context, *domain.Role)         {}

// RedisRoleCache stores roles as JSON under both their id and name.
type RedisRoleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRoleCache returns NoopCache when client is nil or ttl is zero.
func NewRedisRoleCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) RoleCache {
	if client == nil || ttl <= 0 {
		return NoopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRoleCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisRoleCache) Get(ctx context.Context, key string) (*domain.Role, bool) {
	raw, err := c.client.Get(ctx, roleCachePrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("role cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var role domain.Role
	if err := json.Unmarshal(raw, &role); err != nil {
		return nil, false
	}
	return &role, true
}

func (c *RedisRoleCache) Set(ctx context.Context, role *domain.Role) {
	raw, err := json.Marshal(role)
	if err != nil {
		return
	}
	pipe := c.client.Pipeline()
	pipe.Set(ctx, roleCachePrefix+ByID(role.ID), raw, c.ttl)
	pipe.Set(ctx, roleCachePrefix+ByName(role.RoleName), raw, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Debug("role cache write failed", zap.String("role", role.RoleName), zap.Error(err))
	}
}

func (c *RedisRoleCache) Invalidate(ctx context.Context, role *domain.Role) {
	if err := c.client.Del(ctx, roleCachePrefix+ByID(role.ID), roleCachePrefix+ByName(role.RoleName)).Err(); err != nil {
		c.logger.Warn("role cache invalidation failed", zap.String("role", role.RoleName), zap.Error(err))
	}
}
