package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/storefront/internal/api/http/handlers"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Products       *handlers.ProductsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	// AuthRateLimit guards the credential endpoints. Optional.
	AuthRateLimit fiber.Handler
}

// RegisterRoutes wires HTTP routes. Static product paths are registered
// ahead of /:id so they are not captured as ids.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	if cfg.AuthRateLimit != nil {
		authGroup.Use(cfg.AuthRateLimit)
	}
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/signup", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Require(auth.AnyRole), cfg.Auth.Me)

	editors := cfg.AuthMiddleware.Require(auth.CatalogEditor)
	anyRole := cfg.AuthMiddleware.Require(auth.AnyRole)

	products := api.Group("/products")
	products.Post("/", editors, cfg.Products.Create)
	products.Post("/create", editors, cfg.Products.Create)
	products.Post("/vendor", editors, cfg.Products.Create)

	products.Get("/", anyRole, cfg.Products.List)
	products.Get("/list", anyRole, cfg.Products.List)
	products.Get("/search", anyRole, cfg.Products.Search)
	products.Get("/vendor", editors, cfg.Products.ListVendor)
	products.Get("/view/:id", cfg.Products.Get)
	products.Get("/:id", cfg.Products.Get)

	products.Put("/edit/:id", editors, cfg.Products.Update)
	products.Put("/:id", editors, cfg.Products.Update)

	products.Delete("/delete/:id", editors, cfg.Products.Delete)
	products.Delete("/vendor/:id", editors, cfg.Products.Delete)
	products.Delete("/:id", editors, cfg.Products.Delete)
}
