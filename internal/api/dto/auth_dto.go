package dto

import (
	"time"

	"github.com/spec-kit/storefront/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// RegisterResponse is returned after registration. No token is issued.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// LoginResponse carries the identity token.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}
