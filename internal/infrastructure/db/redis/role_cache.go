package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/accesshub/identity-service/internal/api/metrics"
	"github.com/accesshub/identity-service/internal/core/domain"
)

const defaultRoleTTL = 5 * time.Minute

// RoleCache keeps recently read roles for access checks.
// Key format: rbac:role:<role_id>
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoleCache creates a RoleCache wrapping the given Redis client. A
// non-positive ttl falls back to five minutes.
func NewRoleCache(client *redis.Client, ttl time.Duration) *RoleCache {
	if ttl <= 0 {
		ttl = defaultRoleTTL
	}
	return &RoleCache{client: client, ttl: ttl}
}

// Get returns the cached role, or ok=false on a miss.
func (c *RoleCache) Get(ctx context.Context, id string) (*domain.Role, bool, error) {
	b, err := c.client.Get(ctx, roleKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RoleCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.RoleCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("role cache get: %w", err)
	}

	var role domain.Role
	if err := json.Unmarshal(b, &role); err != nil {
		metrics.RoleCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("role cache decode: %w", err)
	}
	metrics.RoleCacheTotal.WithLabelValues("hit").Inc()
	return &role, true, nil
}

// Fill stores role only when the key is absent, so a store read that raced
// with an update cannot replace the newer entry the update wrote.
func (c *RoleCache) Fill(ctx context.Context, role *domain.Role) error {
	b, err := json.Marshal(role)
	if err != nil {
		return fmt.Errorf("role cache encode: %w", err)
	}
	if err := c.client.SetNX(ctx, roleKey(role.ID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("role cache fill: %w", err)
	}
	return nil
}

// Set overwrites the cached role with the current one.
func (c *RoleCache) Set(ctx context.Context, role *domain.Role) error {
	b, err := json.Marshal(role)
	if err != nil {
		return fmt.Errorf("role cache encode: %w", err)
	}
	if err := c.client.Set(ctx, roleKey(role.ID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("role cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached copy of a role.
func (c *RoleCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, roleKey(id)).Err()
}

func roleKey(id string) string {
	return "rbac:role:" + id
}
