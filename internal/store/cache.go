package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"turnboard/internal/models"
)

// dayCache is an optional Redis read-through cache for encoded day
// aggregates. A nil cache is a no-op, so the store works unchanged without
// Redis configured.
type dayCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// UseRedisCache configures caching of loaded days with the given TTL.
func (s *Store) UseRedisCache(rdb *redis.Client, ttl time.Duration) {
	if rdb == nil || ttl <= 0 {
		return
	}
	s.cache = &dayCache{rdb: rdb, ttl: ttl}
}

func cacheKey(date string) string { return "day:" + date }

func (c *dayCache) read(ctx context.Context, date string) (*models.Day, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, cacheKey(date)).Result()
	if err != nil {
		return nil, false
	}
	var day models.Day
	if err := json.Unmarshal([]byte(val), &day); err != nil {
		return nil, false
	}
	return &day, true
}

func (c *dayCache) write(ctx context.Context, date string, day *models.Day) {
	if c == nil {
		return
	}
	data, err := json.Marshal(day)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, cacheKey(date), data, c.ttl).Err()
}

func (c *dayCache) invalidate(ctx context.Context, date string) {
	if c == nil {
		return
	}
	_ = c.rdb.Del(ctx, cacheKey(date)).Err()
}
