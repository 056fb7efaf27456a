package middleware

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/example/dukan/internal/config"
)

// NewTokenBucket rate-limits requests per client IP and path using a Redis
// token bucket. With rate limiting disabled or no Redis client available it
// degrades to a passthrough.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) fiber.Handler {
	if !cfg.Enabled || rdb == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	limiterScript := redis.NewScript(`
		local key = KEYS[1]
		local now_ms = tonumber(ARGV[1])
		local capacity = tonumber(ARGV[2])
		local refill_tokens = tonumber(ARGV[3])
		local interval_ms = tonumber(ARGV[4])
		local ttl_seconds = tonumber(ARGV[5])

		local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
		local tokens = tonumber(state[1])
		local last_refill = tonumber(state[2])

		if tokens == nil or last_refill == nil then
			tokens = capacity
			last_refill = now_ms
		end

		if interval_ms > 0 and refill_tokens > 0 then
			local elapsed = math.max(0, now_ms - last_refill)
			local intervals = math.floor(elapsed / interval_ms)
			if intervals > 0 then
				tokens = math.min(capacity, tokens + (intervals * refill_tokens))
				last_refill = last_refill + (intervals * interval_ms)
			end
		end

		local allowed = 0
		local retry_after_ms = 0
		if tokens > 0 then
			allowed = 1
			tokens = tokens - 1
		else
			local until_next = interval_ms - (now_ms - last_refill)
			if until_next < 0 then until_next = 0 end
			retry_after_ms = until_next
		end

		redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
		redis.call('EXPIRE', key, ttl_seconds)

		return { allowed, tokens, retry_after_ms }
	`)

	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s", c.IP(), c.Path())

		args := []interface{}{
			time.Now().UnixMilli(),
			cfg.Capacity,
			cfg.RefillTokens,
			cfg.RefillInterval.Milliseconds(),
			int64(cfg.TTL / time.Second),
		}

		vals, err := limiterScript.Run(c.Context(), rdb, []string{key}, args...).Result()
		if err != nil {
			// Redis trouble must not lock users out.
			log.Printf("[RateLimit] script failed, allowing request: %v", err)
			return c.Next()
		}

		result, ok := vals.([]interface{})
		if !ok || len(result) < 3 {
			return c.Next()
		}

		allowed, _ := result[0].(int64)
		if allowed == 1 {
			return c.Next()
		}

		retryAfterMs, _ := result[2].(int64)
		retryAfter := int(math.Ceil(float64(retryAfterMs) / 1000.0))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))

		return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
	}
}
