package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to the Redis instance named by REDIS_URL. The dashboard
// cache falls back to an in-memory store when this fails, so callers treat an
// error as a degradation, not a fatal condition.
func InitRedis() (*redis.Client, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL not set")
	}

	client := redis.NewClient(parseRedisOptions(redisURL))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// parseRedisOptions accepts the forms REDIS_URL is commonly set to: a full
// redis:// or rediss:// URL, a bare host:port, or anything go-redis can dial
// directly as an address.
func parseRedisOptions(redisURL string) *redis.Options {
	if opt, err := redis.ParseURL(redisURL); err == nil {
		return opt
	}
	if opt, err := redis.ParseURL("redis://" + redisURL); err == nil {
		return opt
	}
	return &redis.Options{Addr: redisURL}
}
