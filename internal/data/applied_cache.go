package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AppliedCache is a Redis-backed positive cache of vacancy ids a user has
// already applied to. Only confirmed rows are cached, so a cache miss always
// falls through to Postgres; the cache can never hide an application that
// exists, only skip a database read for one that is known.
type AppliedCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

const defaultAppliedCacheTTL = 24 * time.Hour

// NewAppliedCache creates an AppliedCache with the given Redis client.
// A non-positive ttl falls back to 24h.
func NewAppliedCache(client redis.UniversalClient, ttl time.Duration) *AppliedCache {
	if ttl <= 0 {
		ttl = defaultAppliedCacheTTL
	}
	return &AppliedCache{client: client, ttl: ttl}
}

func appliedKey(userID string) string {
	return "autoapply:applied:" + userID
}

// Contains reports whether the vacancy is a known prior application for the user.
func (c *AppliedCache) Contains(ctx context.Context, userID, vacancyID string) (bool, error) {
	if userID == "" || vacancyID == "" {
		return false, errors.New("user id and vacancy id are required")
	}
	hit, err := c.client.SIsMember(ctx, appliedKey(userID), vacancyID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis sismember: %w", err)
	}
	return hit, nil
}

// Add records a vacancy as applied for the user and refreshes the set TTL.
func (c *AppliedCache) Add(ctx context.Context, userID, vacancyID string) error {
	if userID == "" || vacancyID == "" {
		return errors.New("user id and vacancy id are required")
	}
	key := appliedKey(userID)
	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, key, vacancyID)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}
	return nil
}
