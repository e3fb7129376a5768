package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/storefront/internal/api/http"
	"github.com/spec-kit/storefront/internal/api/http/handlers"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/config"
	"github.com/spec-kit/storefront/internal/observability"
	"github.com/spec-kit/storefront/internal/persistence"
	"github.com/spec-kit/storefront/internal/ratelimit"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/internal/repository/memory"
	"github.com/spec-kit/storefront/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo    repository.UserRepository
		productRepo repository.ProductRepository
	)
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.Pool)
		productRepo = repository.NewProductRepository(pg.Pool)
	} else {
		store := memory.NewStore()
		userRepo = store.Users()
		productRepo = store.Products()
	}

	var throttle *ratelimit.LoginThrottle
	if redis.Enabled() {
		throttle = ratelimit.NewLoginThrottle(
			ratelimit.NewRedisCounter(redis.Client),
			cfg.Auth.LoginMaxAttempts,
			cfg.Auth.LoginWindow(),
			logger,
		)
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:     userRepo,
		TokenManager: tokenManager,
		Throttle:     throttle,
		BcryptCost:   cfg.Auth.BcryptCost,
	})
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo: productRepo,
		UserRepo:    userRepo,
	})

	if cfg.Seed.Enabled() {
		created, err := authService.EnsureAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		if err != nil {
			logger.Fatal("failed to seed admin", zap.Error(err))
		}
		if created {
			logger.Info("bootstrap admin created", zap.String("email", cfg.Seed.AdminEmail))
		}
	}

	policy := auth.NewPolicy(auth.NewAuthenticator(tokenManager))
	metrics := observability.NewMetrics()

	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName: cfg.App.Name,
		Logger:  logger,
		Metrics: metrics,
		Middlewares: httptransport.MiddlewareConfig{
			Timeout:          cfg.App.RequestTimeout(),
			CORSAllowOrigins: cfg.App.CORSAllowOrigins,
		},
		Routes: httptransport.RouteConfig{
			Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
			Auth:           handlers.NewAuthHandler(authService),
			Products:       handlers.NewProductsHandler(productService),
			AuthMiddleware: auth.NewAuthMiddleware(policy, logger),
			AuthRateLimit: ratelimit.Middleware(
				ratelimit.NewRequestLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
			),
		},
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
