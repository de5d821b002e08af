package database

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tclog "github.com/testcontainers/testcontainers-go/log"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const testPostgresImage = "postgres:16-alpine"

// silentLogger keeps container start-up chatter out of test output
type silentLogger struct{}

func (silentLogger) Printf(string, ...any) {}

var _ tclog.Logger = silentLogger{}

// SetupTestDBContainer runs a throwaway PostgreSQL with the jobs schema
// migrated to the latest version. The returned func closes the pool and
// removes the container. Skipped with -short.
func SetupTestDBContainer(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	container, err := postgres.Run(ctx, testPostgresImage,
		postgres.WithDatabase("jobs_test"),
		postgres.WithUsername("jobs"),
		postgres.WithPassword("jobs"),
		postgres.BasicWaitStrategies(),
		tc.WithLogger(silentLogger{}),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, MigrateUp(ctx, dsn), "migrating test database")

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	return pool, func() {
		pool.Close()
		tc.CleanupContainer(t, container)
	}
}
