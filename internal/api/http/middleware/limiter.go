package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/mindbook_backend/config"
)

const defaultRequestsPerMinute = 120

// NewLimiterWithRedis keeps the sliding window counters in Redis so every
// instance shares them.
func NewLimiterWithRedis(rdb *redis.Client, cfg config.RateLimitConfig) fiber.Handler {
	max := cfg.RequestsPerMinute
	if max <= 0 {
		max = defaultRequestsPerMinute
	}
	return limiter.New(limiter.Config{
		Storage: fiberredis.NewFromConnection(rdb),

		Max:               max,
		Expiration:        time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		},
	})
}
