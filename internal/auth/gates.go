package auth

import (
	"strings"

	"github.com/spec-kit/storefront/internal/domain"
)

// Header names a credential may arrive in, in lookup order.
const (
	HeaderAuthToken     = "x-auth-token"
	HeaderAuthorization = "Authorization"
)

const bearerPrefix = "bearer "

// NormalizeCredential strips an optional "Bearer " prefix and surrounding
// whitespace from a raw header value.
func NormalizeCredential(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= len(bearerPrefix) && strings.EqualFold(raw[:len(bearerPrefix)], bearerPrefix) {
		raw = raw[len(bearerPrefix):]
	} else if strings.EqualFold(raw, "bearer") {
		raw = ""
	}
	return strings.TrimSpace(raw)
}

// Authenticator turns a presented credential into an Identity.
type Authenticator struct {
	tokens *TokenManager
}

// NewAuthenticator constructs an authenticator over the token manager.
func NewAuthenticator(tokens *TokenManager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Authenticate normalizes raw and verifies it.
func (a *Authenticator) Authenticate(raw string) (domain.Identity, error) {
	token := NormalizeCredential(raw)
	if token == "" {
		return domain.Identity{}, ErrMissingToken
	}
	return a.tokens.ParseToken(token)
}

// RoleSet is the set of roles an operation admits.
type RoleSet map[domain.Role]struct{}

// Roles builds a RoleSet.
func Roles(roles ...domain.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Contains reports whether role is admitted.
func (s RoleSet) Contains(role domain.Role) bool {
	_, ok := s[role]
	return ok
}

// Common role sets used by the routes.
var (
	AnyRole       = Roles(domain.RoleAdmin, domain.RoleVendor, domain.RoleUser)
	CatalogEditor = Roles(domain.RoleAdmin, domain.RoleVendor)
	AdminOnly     = Roles(domain.RoleAdmin)
)

// CheckRole accepts iff the identity's role is in allowed.
func CheckRole(identity domain.Identity, allowed RoleSet) error {
	if !allowed.Contains(identity.Role) {
		return ErrForbidden
	}
	return nil
}

// CheckOwnership accepts admins and the owning vendor. Plain users never own
// a resource.
func CheckOwnership(identity domain.Identity, ownerID string) error {
	switch identity.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleVendor:
		if identity.SubjectID != "" && identity.SubjectID == ownerID {
			return nil
		}
	}
	return ErrForbidden
}
