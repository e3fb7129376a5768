package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestIDKey is the fiber local the requestid middleware stores ids under.
const RequestIDKey = "requestid"

// RequestLogger logs one line per request and records request metrics.
// Register it ahead of the error middleware so the written status is final.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		metrics.requestStarted()
		defer metrics.requestFinished()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		latency := time.Since(start)
		route := routePattern(c)
		metrics.RecordRequest(route, c.Method(), status, latency)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("route", route),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		if id, ok := c.Locals(RequestIDKey).(string); ok && id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request completed", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
		return err
	}
}

// routePattern returns the matched route template so metric labels stay
// bounded.
func routePattern(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}
	return "unmatched"
}
