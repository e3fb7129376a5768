package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/storefront/internal/domain"
)

// DefaultTokenTTL is the lifetime of identity tokens when none is configured.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration, opts ...TokenOption) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	tm := &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes JWT payload.
type Claims struct {
	SubjectID string      `json:"subjectId"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for the subject.
func (tm *TokenManager) GenerateToken(subjectID string, role domain.Role) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		SubjectID: subjectID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken verifies signature and expiry and returns the caller identity.
// Expiry is reported as ErrExpiredToken only once the signature checked out;
// every other failure is ErrInvalidToken.
func (tm *TokenManager) ParseToken(tokenStr string) (domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, ErrExpiredToken
		}
		return domain.Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Identity{}, ErrInvalidToken
	}
	if claims.SubjectID == "" || !claims.Role.Valid() {
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{SubjectID: claims.SubjectID, Role: claims.Role}, nil
}
