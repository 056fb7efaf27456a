package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis for auth-endpoint rate limiting. Returns
// nil when no address is configured or the server is unreachable; callers
// must treat a nil client as "rate limiting disabled".
func NewRedisClient(addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[Redis] ping %s failed, rate limiting disabled: %v", addr, err)
		return nil
	}

	return client
}
