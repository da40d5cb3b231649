package middleware

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pro-power/polishr-sub001/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
)

// FailPolicy defines the behavior when the rate limit store is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if the store errors.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if the store errors.
	FailClosed
)

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`
// against the given counter store. It keys by authenticated userID (if set in
// c.Locals("userID")) otherwise by remote IP, and defaults to FailOpen.
// Rate limiting is disabled when APP_ENV is "test", "development" or "stress"
// so dev and load test workflows are not throttled.
func RateLimit(store ratelimit.Store, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(store, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy returns a rate-limit middleware with a specific failure policy.
func RateLimitWithPolicy(store ratelimit.Store, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		env := os.Getenv("APP_ENV")
		switch env {
		case "test", "development", "stress":
			return c.Next()
		}

		var id string
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		} else {
			id = fmt.Sprintf("ip:%s", c.IP())
		}

		// Use the provided name or the request path as the resource identifier
		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		if store == nil {
			if policy == FailClosed {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		allowed, err := store.Check(c.UserContext(), resource+":"+id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.Warn("rate limit fail-closed",
					slog.String("path", c.Path()),
					slog.String("resource", resource),
					slog.String("error", err.Error()),
				)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			// Default FailOpen
			return c.Next()
		}

		if !allowed {
			RateLimitRejections.WithLabelValues(resource).Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
