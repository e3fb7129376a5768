package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/domain"
)

const identityKey = "auth_identity"

// AuthMiddleware adapts the access Policy to Fiber routes.
type AuthMiddleware struct {
	policy *Policy
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(policy *Policy, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{policy: policy, logger: logger}
}

// Require authenticates the caller and admits only the given roles.
func (m *AuthMiddleware) Require(allowed RoleSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := m.policy.Evaluate(c.UserContext(), Request{
			Credential:   CredentialFromRequest(c),
			AllowedRoles: allowed,
		})
		if !decision.Authorized() {
			m.logger.Debug("access denied",
				zap.String("stage", string(decision.Stage)),
				zap.String("subject_id", decision.Identity.SubjectID),
				zap.String("path", c.Path()),
				zap.Error(decision.Err()))
			return decision.Err()
		}
		c.Locals(identityKey, decision.Identity)
		return c.Next()
	}
}

// CredentialFromRequest returns the raw credential header, preferring
// x-auth-token over Authorization.
func CredentialFromRequest(c *fiber.Ctx) string {
	if token := c.Get(HeaderAuthToken); token != "" {
		return token
	}
	return c.Get(HeaderAuthorization)
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	if !ok || identity.IsZero() {
		return domain.Identity{}, false
	}
	return identity, true
}
