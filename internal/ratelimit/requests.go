package ratelimit

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

// NewRequestLimiter returns a shared token bucket, or nil when rps is not
// positive.
func NewRequestLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Middleware rejects requests once limiter runs dry. A nil limiter admits
// everything.
func Middleware(limiter *rate.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter != nil && !limiter.Allow() {
			return apperrors.NewTooManyRequests("Too many requests. Please try again later.")
		}
		return c.Next()
	}
}
