package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "domain error passes through",
			err:        NewForbidden("nope"),
			wantCode:   CodeForbidden,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "wrapped domain error is unwrapped",
			err:        fmt.Errorf("delete product: %w", NewNotFound("product", nil)),
			wantCode:   CodeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "pgx no rows maps to not found",
			err:        pgx.ErrNoRows,
			wantCode:   CodeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "sql no rows maps to not found",
			err:        sql.ErrNoRows,
			wantCode:   CodeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown error is internal",
			err:        errors.New("boom"),
			wantCode:   CodeInternal,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ToDomainError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}
}

func TestToDomainError_Nil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorHidesCause(t *testing.T) {
	t.Parallel()

	err := ToDomainError(errors.New("password column missing"))
	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorContains(t, err, "password column missing")
}

func TestHasCode(t *testing.T) {
	t.Parallel()

	assert.True(t, HasCode(fmt.Errorf("wrap: %w", NewConflict("dup", nil)), CodeConflict))
	assert.False(t, HasCode(NewConflict("dup", nil), CodeForbidden))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}
