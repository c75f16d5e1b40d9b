package di

import (
	"github.com/redis/go-redis/v9"

	"finance_linebot/internal/platform/cache"
)

// NewStore creates the shared TTL cache store.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to process memory.
func NewStore(rdb *redis.Client) cache.Store {
	if rdb != nil {
		return cache.NewRedisStore(rdb)
	}
	return cache.NewMemoryStore()
}
