package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/service"
	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and the current account.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.RegisterResponse{
		Message: "User registered successfully",
		User:    dto.NewUserResponse(user),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresAt: result.ExpiresAt,
		User:      dto.NewUserResponse(result.User),
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.auth.CurrentUser(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}
