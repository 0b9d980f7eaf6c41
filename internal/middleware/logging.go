package middleware

import (
	"log/slog"
	"time"

	"devhub/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ContextMiddleware copies the request ID and trace ID from Fiber locals into
// the request context so the context-aware log handler picks them up in
// services and repositories.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = observability.WithRequestID(ctx, rid)
		}
		if tid, ok := c.Locals("traceID").(string); ok && tid != "" {
			ctx = observability.WithTraceID(ctx, tid)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware logging one record per request.
func StructuredLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		fields := []any{
			slog.Int("status", c.Response().StatusCode()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		}

		// UserContext carries the user ID once the auth guard has run.
		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			log.ErrorContext(c.UserContext(), "request failed", fields...)
		} else {
			log.InfoContext(c.UserContext(), "request processed", fields...)
		}
		return err
	}
}
