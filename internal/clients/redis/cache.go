package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/daybook/internal/pkg/logger"
)

// Cache is a read-through cache for note-page payloads and aggregate
// views. It is optional: a nil *Cache is a valid no-op cache, so the
// services never branch on whether redis is configured.
type Cache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewCache connects to redis at addr. An empty addr returns (nil, nil):
// caching disabled.
func NewCache(log *logger.Logger, addr string, ttl time.Duration) (*Cache, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, nil
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Cache{
		log: log.With("service", "RedisCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

// Get unmarshals the cached payload into out. ok is false on miss or
// when caching is disabled; cache errors degrade to a miss.
func (c *Cache) Get(ctx context.Context, key string, out interface{}) (ok bool) {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn("cache payload corrupt, dropping", "key", key, "error", err)
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) Set(ctx context.Context, key string, val interface{}) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		c.log.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

// Invalidate drops the given keys. Reconciliation calls this after every
// committed entry so note pages never serve pre-reconcile aggregates.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache invalidate failed", "keys", len(keys), "error", err)
	}
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// EntityKey is the cache key for one entity's note-page payload.
func EntityKey(kind, id string) string {
	return fmt.Sprintf("daybook:entity:%s:%s", kind, id)
}

// EntryKey is the cache key for one entry's reconciled view.
func EntryKey(date string) string {
	return fmt.Sprintf("daybook:entry:%s", date)
}
