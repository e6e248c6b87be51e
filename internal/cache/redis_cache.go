package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wadash-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const analyticsKey = "wadash:analytics:snapshot"

// RedisCache stores the analytics snapshot in Redis with a TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) (*models.AnalyticsResponse, bool, error) {
	raw, err := c.rdb.Get(ctx, analyticsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var snapshot models.AnalyticsResponse
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, false, err
	}
	return &snapshot, true, nil
}

func (c *RedisCache) Store(ctx context.Context, snapshot *models.AnalyticsResponse) error {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, analyticsKey, b, c.ttl).Err()
}
