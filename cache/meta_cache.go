package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MetaCache keeps the master-data dropdown payloads in Redis so the list
// pages don't hit SQLite for every render. Optional: a nil *MetaCache is a
// no-op, so callers never branch on whether Redis is configured.
type MetaCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *MetaCache {
	return &MetaCache{rdb: rdb, ttl: ttl}
}

const (
	CategoriesKey = "categories"
	LocationsKey  = "locations"
)

func key(name string) string { return fmt.Sprintf("equip:meta:%s", name) }

func (c *MetaCache) Get(ctx context.Context, name string, dest any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	b, err := c.rdb.Get(ctx, key(name)).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false
	}
	return true
}

func (c *MetaCache) Set(ctx context.Context, name string, v any) {
	if c == nil || c.rdb == nil {
		return
	}
	b, _ := json.Marshal(v)
	_ = c.rdb.Set(ctx, key(name), b, c.ttl).Err()
}

// Invalidate drops every meta payload. Called after any mutation that can
// touch master data, including asset create/update and bulk import.
func (c *MetaCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key(CategoriesKey))
	pipe.Del(ctx, key(LocationsKey))
	_, _ = pipe.Exec(ctx)
}
