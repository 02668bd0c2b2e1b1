package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/varkes/adshort/config"
	"go.uber.org/zap"
)

const rateLimitKeyPrefix = "ratelimit"

// RateLimit limits requests per IP using Redis INCR+EXPIRE. When
// Redis is unavailable the limiter fails open.
func RateLimit(redisClient *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger) fiber.Handler {
	maxRequests := cfg.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		key := rateLimitKeyPrefix + ":" + c.IP()

		result, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			logger.Error("rate limit redis error", zap.Error(err))
			return c.Next()
		}

		if result == 1 {
			redisClient.Expire(ctx, key, window)
		}

		remaining := maxRequests - int(result)
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(window).Unix(), 10))

		if result > int64(maxRequests) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
