// Package repository holds persistence access for users and products.
// Lookups that find nothing return pgx.ErrNoRows regardless of backend.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/storefront/internal/domain"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=repository.go

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ProductFilter narrows product listings. Nil fields are not applied.
type ProductFilter struct {
	VendorID *string
	Search   *string
	Limit    int
	Offset   int
}

// ProductRepository encapsulates product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int, error)
}

// ErrConflict reports a unique constraint violation.
var ErrConflict = errors.New("unique constraint violated")

const uniqueViolation = "23505"

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}
