// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"renthaven/config"

	"github.com/go-redis/redis/v8"
)

// SchedulingCacheClient is the dedicated client for availability caching.
var SchedulingCacheClient *redis.Client

// InitSchedulingCache initializes the Redis client used by the availability
// checker (using DB from AppConfig for general caching).
func InitSchedulingCache() {
	SchedulingCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SchedulingCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Scheduling Cache): %v", err)
	}
}

// GetSchedulingCacheClient returns the availability cache client.
func GetSchedulingCacheClient() *redis.Client {
	if SchedulingCacheClient == nil {
		InitSchedulingCache()
	}
	return SchedulingCacheClient
}
