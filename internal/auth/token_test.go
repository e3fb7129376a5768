package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront/internal/domain"
)

const testSecret = "test-secret"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenManager_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager(testSecret, 0, WithClock(fixedClock(now)))

	token, expiresAt, err := tm.GenerateToken("vendor-1", domain.RoleVendor)
	require.NoError(t, err)
	assert.Equal(t, now.Add(7*24*time.Hour), expiresAt)

	first, err := tm.ParseToken(token)
	require.NoError(t, err)
	second, err := tm.ParseToken(token)
	require.NoError(t, err)

	assert.Equal(t, domain.Identity{SubjectID: "vendor-1", Role: domain.RoleVendor}, first)
	assert.Equal(t, first, second)
}

func TestTokenManager_PayloadShape(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager(testSecret, time.Hour, WithClock(fixedClock(now)))
	token, _, err := tm.GenerateToken("u-1", domain.RoleUser)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	assert.Equal(t, "u-1", claims["subjectId"])
	assert.Equal(t, "user", claims["role"])
	assert.EqualValues(t, now.Unix(), claims["iat"])
	assert.EqualValues(t, now.Add(time.Hour).Unix(), claims["exp"])
}

func TestTokenManager_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenManager(testSecret, 7*24*time.Hour, WithClock(fixedClock(issued)))

	tests := []struct {
		name  string
		after time.Duration
	}{
		{name: "one second past expiry", after: 7*24*time.Hour + time.Second},
		{name: "a month later", after: 30 * 24 * time.Hour},
	}

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleVendor, domain.RoleUser} {
		token, _, err := issuer.GenerateToken("subject", role)
		require.NoError(t, err)

		for _, tt := range tests {
			tt := tt
			verifier := NewTokenManager(testSecret, 0, WithClock(fixedClock(issued.Add(tt.after))))
			_, err := verifier.ParseToken(token)
			assert.ErrorIs(t, err, ErrExpiredToken, "%s/%s", role, tt.name)
			assert.NotErrorIs(t, err, ErrInvalidToken, "%s/%s", role, tt.name)
		}
	}
}

func TestTokenManager_ExpiredWithBadSignatureIsInvalid(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	other := NewTokenManager("other-secret", time.Hour, WithClock(fixedClock(issued)))
	token, _, err := other.GenerateToken("subject", domain.RoleAdmin)
	require.NoError(t, err)

	verifier := NewTokenManager(testSecret, 0, WithClock(fixedClock(issued.Add(2*time.Hour))))
	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Invalid(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager(testSecret, time.Hour, WithClock(fixedClock(now)))
	valid, _, err := tm.GenerateToken("subject", domain.RoleUser)
	require.NoError(t, err)
	forged, _, err := tm.GenerateToken("subject", domain.RoleAdmin)
	require.NoError(t, err)
	validParts := strings.Split(valid, ".")
	forgedParts := strings.Split(forged, ".")
	// admin payload carrying the user token's signature
	spliced := validParts[0] + "." + forgedParts[1] + "." + validParts[2]

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	exp := jwt.NewNumericDate(now.Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "three empty segments", token: ".."},
		{name: "spliced payload", token: spliced},
		{name: "wrong secret", token: sign(jwt.SigningMethodHS256, []byte("other"),
			&Claims{SubjectID: "s", Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}})},
		{name: "unsigned", token: sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType,
			&Claims{SubjectID: "s", Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}})},
		{name: "other hmac algorithm", token: sign(jwt.SigningMethodHS512, []byte(testSecret),
			&Claims{SubjectID: "s", Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}})},
		{name: "missing expiry", token: sign(jwt.SigningMethodHS256, []byte(testSecret),
			&Claims{SubjectID: "s", Role: domain.RoleUser})},
		{name: "missing subject", token: sign(jwt.SigningMethodHS256, []byte(testSecret),
			&Claims{Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}})},
		{name: "unknown role", token: sign(jwt.SigningMethodHS256, []byte(testSecret),
			&Claims{SubjectID: "s", Role: "superuser", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}})},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			identity, err := tm.ParseToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.True(t, identity.IsZero())
		})
	}
}
