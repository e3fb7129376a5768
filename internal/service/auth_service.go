package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/repository"
	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// LoginThrottle limits repeated failed logins per email.
type LoginThrottle interface {
	Check(ctx context.Context, email string) error
	Failed(ctx context.Context, email string)
	Succeeded(ctx context.Context, email string)
}

// AuthService registers accounts and issues identity tokens.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	throttle   LoginThrottle
	bcryptCost int
}

// AuthDependencies bundles what the auth service needs.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	Throttle     LoginThrottle
	BcryptCost   int
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   deps.TokenManager,
		throttle:   deps.Throttle,
		bcryptCost: deps.BcryptCost,
	}
}

// Register creates an account. No token is issued; the caller logs in next.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if input.Role == "" {
		input.Role = domain.RoleUser
	}
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, auth.ErrDuplicateEmail
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, auth.ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}
	if s.throttle != nil {
		if err := s.throttle.Check(ctx, email); err != nil {
			return nil, err
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			s.loginFailed(ctx, email)
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.loginFailed(ctx, email)
		return nil, auth.ErrInvalidCredentials
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if s.throttle != nil {
		s.throttle.Succeeded(ctx, email)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// CurrentUser returns the account behind an authenticated identity.
func (s *AuthService) CurrentUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, identity.SubjectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is
// already registered. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.Register(ctx, RegisterInput{Name: name, Email: email, Password: password, Role: domain.RoleAdmin})
	if errors.Is(err, auth.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email string) {
	if s.throttle != nil {
		s.throttle.Failed(ctx, email)
	}
}

func validateRegistration(input RegisterInput) error {
	details := map[string]any{}
	if input.Name == "" {
		details["name"] = "name is required"
	}
	if input.Email == "" || !govalidator.IsEmail(input.Email) {
		details["email"] = "a valid email is required"
	}
	if len(input.Password) < MinPasswordLength {
		details["password"] = "password must be at least 6 characters"
	}
	if !input.Role.Valid() {
		details["role"] = "role must be one of admin, vendor, user"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid registration payload", details)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
