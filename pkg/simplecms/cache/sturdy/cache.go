// Package sturdy provides a simplecms.ContentCache backed by an in-process
// sturdyc cache with per-entry TTL expiry.
package sturdy

import (
	"context"
	"time"

	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/viccon/sturdyc"
)

// Cache wraps a sturdyc client as a ContentCache. The TTL is fixed at
// construction and applies to every entry.
type Cache struct {
	client *sturdyc.Client[string]
}

var _ simplecms.ContentCache = (*Cache)(nil)

// New creates a cache holding up to capacity entries across the given number
// of shards, each entry expiring after ttl.
func New(capacity, shards int, ttl time.Duration) *Cache {
	// Evict 5% of a shard when it fills up.
	client := sturdyc.New[string](capacity, shards, ttl, 5)
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := c.client.Get(key)
	return value, ok, nil
}

func (c *Cache) Set(ctx context.Context, key, value string) error {
	c.client.Set(key, value)
	return nil
}

func (c *Cache) Remove(ctx context.Context, key string) error {
	c.client.Delete(key)
	return nil
}
