// Package revocation implements the access-token blacklist: a Redis-backed, TTL-bounded
// set of revoked jtis consulted on every authenticated request.
package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"eventflow/auth-service/internal/security"
)

// DefaultKeyPrefix namespaces blacklist entries.
const DefaultKeyPrefix = "blacklist:"

// ErrCacheUnavailable wraps any Redis failure. Callers must treat it as "unknown", not "not revoked".
var ErrCacheUnavailable = errors.New("revocation cache unavailable")

// Cache records revoked access-token ids until their natural expiry.
type Cache interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	Blacklist(ctx context.Context, jti string, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis keys with a TTL.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache returns a cache storing entries under prefix+jti. An empty prefix selects DefaultKeyPrefix.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

// IsBlacklisted reports whether jti has a live blacklist entry.
func (c *RedisCache) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return n > 0, nil
}

// Blacklist marks jti revoked for ttl. A non-positive ttl means the token already
// expired and nothing is written.
func (c *RedisCache) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, c.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Ping checks connectivity; used by health checks.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

func (c *RedisCache) key(jti string) string {
	return c.prefix + jti
}

// BlacklistClaims blacklists the token described by claims for the rest of its lifetime at now.
func BlacklistClaims(ctx context.Context, cache Cache, claims *security.AccessClaims, now time.Time) error {
	if claims == nil || claims.ID == "" {
		return security.ErrInvalidToken
	}
	return cache.Blacklist(ctx, claims.ID, claims.Remaining(now))
}
