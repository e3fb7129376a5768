package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/persistence"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    Pinger
	redis       Pinger
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies. Stores that
// were never configured report "disabled" and do not fail the probe.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	for name, dep := range map[string]Pinger{"postgres": h.postgres, "redis": h.redis} {
		if dep == nil {
			depStatus[name] = "disabled"
			continue
		}
		switch err := dep.Ping(ctx); {
		case err == nil:
			depStatus[name] = "ok"
		case errors.Is(err, persistence.ErrNotConfigured):
			depStatus[name] = "disabled"
		default:
			depStatus[name] = err.Error()
			ready = false
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"message": "one or more dependencies unavailable",
		"code":    "DEPENDENCY_UNAVAILABLE",
		"details": depStatus,
	})
}
