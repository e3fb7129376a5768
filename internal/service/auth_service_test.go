package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/internal/repository/mocks"
	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

type recordingThrottle struct {
	mu        sync.Mutex
	blocked   bool
	failed    []string
	succeeded []string
}

func (r *recordingThrottle) Check(_ context.Context, _ string) error {
	if r.blocked {
		return apperrors.NewTooManyRequests("slow down")
	}
	return nil
}

func (r *recordingThrottle) Failed(_ context.Context, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, email)
}

func (r *recordingThrottle) Succeeded(_ context.Context, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded = append(r.succeeded, email)
}

func newAuthService(users repository.UserRepository, throttle LoginThrottle) (*AuthService, *auth.TokenManager) {
	tm := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(AuthDependencies{
		UserRepo:     users,
		TokenManager: tm,
		Throttle:     throttle,
		BcryptCost:   bcrypt.MinCost,
	}), tm
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	svc, _ := newAuthService(users, nil)

	users.EXPECT().GetByEmail(gomock.Any(), "ann@x.com").Return(nil, pgx.ErrNoRows)
	users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *domain.User) error {
		u.ID = "u-1"
		return nil
	})

	user, err := svc.Register(context.Background(), RegisterInput{
		Name: " Ann ", Email: " Ann@X.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "ann@x.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role, "role defaults to user")
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "secret1"))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	t.Run("existing account", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserRepository(ctrl)
		svc, _ := newAuthService(users, nil)

		users.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(&domain.User{ID: "u-1"}, nil)

		_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	})

	t.Run("lost insert race", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserRepository(ctrl)
		svc, _ := newAuthService(users, nil)

		users.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(nil, pgx.ErrNoRows)
		users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrConflict)

		_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	})
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "a@x.com", Password: "secret1"}, "name"},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}, "email"},
		{"short password", RegisterInput{Name: "A", Email: "a@x.com", Password: "12345"}, "password"},
		{"unknown role", RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1", Role: "root"}, "role"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			svc, _ := newAuthService(mocks.NewMockUserRepository(ctrl), nil)

			_, err := svc.Register(context.Background(), tt.input)
			require.Error(t, err)
			de := apperrors.ToDomainError(err)
			assert.Equal(t, apperrors.CodeValidationFailed, de.Code)
			assert.Contains(t, de.Details, tt.field)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	admin := &domain.User{ID: "admin-1", Name: "Admin", Email: "a@x.com", PasswordHash: hash, Role: domain.RoleAdmin}

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	throttle := &recordingThrottle{}
	svc, tm := newAuthService(users, throttle)

	users.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(admin, nil)

	result, err := svc.Login(context.Background(), "A@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, admin, result.User)
	assert.False(t, result.ExpiresAt.IsZero())

	identity, err := tm.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{SubjectID: "admin-1", Role: domain.RoleAdmin}, identity)
	assert.Equal(t, []string{"a@x.com"}, throttle.succeeded)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	throttle := &recordingThrottle{}
	svc, _ := newAuthService(users, throttle)

	users.EXPECT().GetByEmail(gomock.Any(), "nobody@x.com").Return(nil, pgx.ErrNoRows)
	users.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(&domain.User{ID: "u", PasswordHash: hash, Role: domain.RoleUser}, nil)

	_, unknownErr := svc.Login(context.Background(), "nobody@x.com", "secret1")
	_, wrongErr := svc.Login(context.Background(), "a@x.com", "wrong-password")

	assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error(), "both failures must be indistinguishable")
	assert.Equal(t, []string{"nobody@x.com", "a@x.com"}, throttle.failed)
	assert.Empty(t, throttle.succeeded)
}

func TestAuthService_Login_Throttled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc, _ := newAuthService(mocks.NewMockUserRepository(ctrl), &recordingThrottle{blocked: true})

	_, err := svc.Login(context.Background(), "a@x.com", "secret1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTooManyRequests))
}

func TestAuthService_Login_RepositoryFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	svc, _ := newAuthService(users, nil)
	boom := errors.New("db down")

	users.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(nil, boom)

	_, err := svc.Login(context.Background(), "a@x.com", "secret1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_CurrentUser(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	svc, _ := newAuthService(users, nil)

	users.EXPECT().GetByID(gomock.Any(), "gone").Return(nil, pgx.ErrNoRows)

	_, err := svc.CurrentUser(context.Background(), domain.Identity{SubjectID: "gone", Role: domain.RoleUser})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	svc, _ := newAuthService(users, nil)

	gomock.InOrder(
		users.EXPECT().GetByEmail(gomock.Any(), "root@x.com").Return(nil, pgx.ErrNoRows),
		users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *domain.User) error {
			assert.Equal(t, domain.RoleAdmin, u.Role)
			return nil
		}),
		users.EXPECT().GetByEmail(gomock.Any(), "root@x.com").Return(&domain.User{ID: "root"}, nil),
	)

	created, err := svc.EnsureAdmin(context.Background(), "Root", "root@x.com", "secret1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(context.Background(), "Root", "root@x.com", "secret1")
	require.NoError(t, err)
	assert.False(t, created)
}
