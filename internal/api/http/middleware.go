package http

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/observability"
	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

// MiddlewareConfig tunes the global middleware stack.
type MiddlewareConfig struct {
	Timeout          time.Duration
	CORSAllowOrigins string
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, cfg MiddlewareConfig) {
	app.Use(requestid.New(requestid.Config{ContextKey: observability.RequestIDKey}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: fmt.Sprintf("Origin, Content-Type, Accept, %s, %s", auth.HeaderAuthorization, auth.HeaderAuthToken),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware renders every returned error as
// {"message","code","details"} and recovers panics.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(domainErr.Code)
				if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed",
						zap.String("path", c.Path()),
						zap.String("code", domainErr.Code),
						zap.Error(err))
				}
				err = writeError(c, domainErr)
			}
		}()
		return c.Next()
	}
}

// ErrorHandler is the fiber-level fallback for errors raised outside the
// middleware stack.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, toDomainError(err))
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	response := fiber.Map{
		"message": domainErr.Message,
		"code":    domainErr.Code,
	}
	if len(domainErr.Details) > 0 {
		response["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(response)
}

func toDomainError(err error) *apperrors.DomainError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewDomainError("TIMEOUT", "request timed out", fiber.StatusGatewayTimeout, nil)
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.NewDomainError(codeForStatus(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
		return apperrors.CodeValidationFailed
	case fiber.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case fiber.StatusForbidden:
		return apperrors.CodeForbidden
	case fiber.StatusNotFound:
		return apperrors.CodeNotFound
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusConflict:
		return apperrors.CodeConflict
	case fiber.StatusTooManyRequests:
		return apperrors.CodeTooManyRequests
	}
	if status >= fiber.StatusInternalServerError {
		return apperrors.CodeInternal
	}
	return "HTTP_ERROR"
}
