package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// CodeRateLimited is the error code of a 429 response.
const CodeRateLimited = "RATE_LIMITED"

var errNoRedis = errors.New("redis client is nil")

// RateLimiter enforces fixed-window request budgets stored in Redis.
type RateLimiter struct {
	rdb     *redis.Client
	enabled bool
	log     *slog.Logger
}

// NewRateLimiter returns a limiter. Disabled limiters let every request
// through; they are used in development and test.
func NewRateLimiter(rdb *redis.Client, enabled bool, log *slog.Logger) *RateLimiter {
	return &RateLimiter{rdb: rdb, enabled: enabled, log: log}
}

// Allow counts one hit against resource for id and reports whether the
// caller is still within limit for the current window.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if !l.enabled {
		return true, nil
	}
	if l.rdb == nil {
		return false, errNoRedis
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		l.rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// Limit returns a Fiber middleware enforcing limit requests per window
// under name, failing open when Redis is unavailable.
func (l *RateLimiter) Limit(name string, limit int, window time.Duration) fiber.Handler {
	return l.LimitWithPolicy(name, limit, window, FailOpen)
}

// LimitWithPolicy is Limit with an explicit failure policy. Requests are
// keyed by authenticated user when known, otherwise by remote IP.
func (l *RateLimiter) LimitWithPolicy(name string, limit int, window time.Duration, policy FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := UserID(c); uid != "" {
			id = "user:" + uid
		}

		allowed, err := l.Allow(c.UserContext(), name, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				l.log.WarnContext(c.UserContext(), "rate limit unavailable, failing closed",
					slog.String("resource", name), slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Msg: "Service temporarily unavailable", Code: models.CodeInternal,
				})
			}
			return c.Next()
		}

		if !allowed {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Msg: "Too many requests, please try again later", Code: CodeRateLimited,
			})
		}
		return c.Next()
	}
}
