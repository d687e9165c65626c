// File: services/scheduling/cache.go
package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"renthaven/models"
	"renthaven/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const availabilityKeyPrefix = "availability:"

// AvailabilityCache memoizes availability results per (landlord, instant)
// with a fixed TTL. Entries are invalidated explicitly whenever a booking
// for the landlord is created, rescheduled or cancelled, so a cached
// positive result cannot outlive the booking that contradicts it.
type AvailabilityCache interface {
	Get(ctx context.Context, landlordID string, requested time.Time) (*models.AvailabilityResult, bool)
	Set(ctx context.Context, landlordID string, requested time.Time, result models.AvailabilityResult)
	Invalidate(ctx context.Context, landlordID string)
}

// RedisAvailabilityCache implements AvailabilityCache on Redis.
type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAvailabilityCache constructs a cache with the given TTL.
func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, ttl: ttl}
}

func availabilityKey(landlordID string, requested time.Time) string {
	return fmt.Sprintf("%s%s:%d", availabilityKeyPrefix, landlordID, requested.Unix())
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, landlordID string, requested time.Time) (*models.AvailabilityResult, bool) {
	data, err := c.client.Get(ctx, availabilityKey(landlordID, requested)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		utils.GetLogger().Warn("availability cache read failed", zap.Error(err))
		return nil, false
	}
	var result models.AvailabilityResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, landlordID string, requested time.Time, result models.AvailabilityResult) {
	b, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, availabilityKey(landlordID, requested), b, c.ttl).Err(); err != nil {
		utils.GetLogger().Warn("availability cache write failed", zap.Error(err))
	}
}

// Invalidate drops every cached result for the landlord.
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, landlordID string) {
	pattern := availabilityKeyPrefix + landlordID + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			utils.GetLogger().Warn("availability cache invalidation failed",
				zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		utils.GetLogger().Warn("availability cache scan failed",
			zap.String("landlordID", landlordID), zap.Error(err))
	}
}
