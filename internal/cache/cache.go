// Package cache wraps the Redis client behind a connectivity-guarded API.
// Every operation silently degrades to a no-op when Redis is unreachable:
// the catalog endpoints simply recompute from MySQL and the sync engine
// skips invalidation. Cache failures are logged but never propagate.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-serialized values under namespaced keys with a TTL per
// entry. A nil underlying client is valid and turns every method into a no-op.
type Cache struct {
	rdb *redis.Client
}

// New wraps the given Redis client. rdb may be nil when the connection could
// not be established at startup.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Connected reports whether a Redis client is available.
func (c *Cache) Connected() bool {
	return c != nil && c.rdb != nil
}

// Get loads the value stored under key into dest. It returns false on a miss,
// a decode failure or when the cache is unavailable.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if !c.Connected() {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("cache: decode %s: %v", key, err)
		return false
	}
	return true
}

// Set stores v under key with the given TTL. Failures are logged and absorbed.
func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	if !c.Connected() {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache: encode %s: %v", key, err)
		return
	}
	if err := c.rdb.SetEx(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
}

// DeletePattern removes every key matching the given pattern (e.g. "eventos:*").
// Keys are discovered with SCAN so a large keyspace does not block the server.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	if !c.Connected() {
		return
	}
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("cache: scan %s: %v", pattern, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: delete %s: %v", pattern, err)
	}
}
