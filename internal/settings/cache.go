package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps settings rows in Redis with a short TTL so the calculator does
// not hit Postgres on every preview. A nil Cache is a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(branchID int64) string {
	return fmt.Sprintf("settings:branch:%d", branchID)
}

// Get returns the cached record for a branch, or nil on miss.
func (c *Cache) Get(ctx context.Context, branchID int64) (*Record, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	payload, err := c.client.Get(ctx, cacheKey(branchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Set stores a record for its branch.
func (c *Cache) Set(ctx context.Context, rec Record) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(rec.BranchID), raw, c.ttl).Err()
}

// Invalidate drops the cached entry for a branch.
func (c *Cache) Invalidate(ctx context.Context, branchID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, cacheKey(branchID)).Err()
}
