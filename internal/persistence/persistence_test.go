package persistence

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/config"
)

func TestMigrationURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dsn     string
		want    string
		wantErr bool
	}{
		{dsn: "postgres://u:p@db:5432/shop?sslmode=disable", want: "pgx5://u:p@db:5432/shop?sslmode=disable"},
		{dsn: "postgresql://u@db/shop", want: "pgx5://u@db/shop"},
		{dsn: "pgx5://u@db/shop", want: "pgx5://u@db/shop"},
		{dsn: "host=db user=u dbname=shop", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.dsn, func(t *testing.T) {
			t.Parallel()
			got, err := migrationURL(tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	t.Parallel()

	ups, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFS, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestUnconfiguredStores(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logger := zap.NewNop()

	pg, err := NewPostgres(ctx, config.PostgresConfig{}, logger)
	require.NoError(t, err)
	assert.False(t, pg.Enabled())
	assert.ErrorIs(t, pg.Ping(ctx), ErrNotConfigured)
	pg.Close()

	rdb := NewRedis(ctx, config.RedisConfig{}, logger)
	assert.False(t, rdb.Enabled())
	assert.ErrorIs(t, rdb.Ping(ctx), ErrNotConfigured)
	rdb.Close()
}
