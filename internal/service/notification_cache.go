package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// UnreadCountCache keeps per-user unread counters in Redis with a short
// TTL. It is strictly best-effort: every method is nil-safe and swallows
// Redis errors, the database stays the source of truth.
type UnreadCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUnreadCountCache constructs the cache. A nil client disables it.
func NewUnreadCountCache(client *redis.Client, ttl time.Duration) *UnreadCountCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &UnreadCountCache{client: client, ttl: ttl}
}

func (c *UnreadCountCache) key(userID string) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}

// Get returns the cached counter, or ok=false on miss, error, or when the
// cache is disabled.
func (c *UnreadCountCache) Get(ctx context.Context, userID string) (count int, ok bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	raw, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the counter under the configured TTL.
func (c *UnreadCountCache) Set(ctx context.Context, userID string, count int) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, c.key(userID), strconv.Itoa(count), c.ttl)
}

// Invalidate drops the counter after a read-state change.
func (c *UnreadCountCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, c.key(userID))
}
