package persistence

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// registers the pgx5:// database driver
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrator applies the embedded schema migrations.
type Migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

// NewMigrator returns a migrator for the database at dsn. The DSN must be
// in URL form (postgres:// or postgresql://).
func NewMigrator(dsn string) (Migrator, error) {
	url, err := migrationURL(dsn)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", src, url)
}

// RunMigrations brings the schema up to date.
func RunMigrations(dsn string, logger *zap.Logger) error {
	m, err := NewMigrator(dsn)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		logger.Warn("schema is dirty; manual intervention may be required", zap.Uint("version", version))
		return nil
	}
	logger.Info("migrations applied", zap.Uint("version", version))
	return nil
}

func migrationURL(dsn string) (string, error) {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme), nil
		}
	}
	if strings.HasPrefix(dsn, "pgx5://") {
		return dsn, nil
	}
	return "", errors.New("POSTGRES_DSN must be a postgres:// URL to run migrations")
}
