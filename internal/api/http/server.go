package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/observability"
)

// ServerConfig describes the fiber application to build.
type ServerConfig struct {
	AppName     string
	Middlewares MiddlewareConfig
	Routes      RouteConfig
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// NewServer builds the fiber application with middleware and routes.
func NewServer(cfg ServerConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: ErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	RegisterMiddlewares(app, logger, cfg.Metrics, cfg.Middlewares)
	cfg.Routes.Metrics = cfg.Metrics
	RegisterRoutes(app, cfg.Routes)
	return app
}
