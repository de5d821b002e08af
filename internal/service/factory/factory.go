// Package factory provides factory functions for creating service implementations.
package factory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/service"
	database "github.com/maniaxatwork/jobs-server/internal/service/db"
	"github.com/maniaxatwork/jobs-server/internal/service/inmemory"
)

// NewJobsService creates a JobsService based on the configured storage type.
//
// For file-based storage, it returns an in-memory service seeded by the
// provided DataProvider. For database storage, it returns a service that
// reads and writes PostgreSQL through pool, which must not be nil.
// tracer may be nil to disable tracing of database calls.
func NewJobsService(
	ctx context.Context,
	cfg *config.Config,
	pool *pgxpool.Pool,
	provider inmemory.DataProvider,
	tracer trace.Tracer,
) (service.JobsService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		if pool == nil {
			return nil, fmt.Errorf("database pool is required when storage type is database")
		}
		logger.Info("Creating database-backed jobs service")
		opts := []database.Option{database.WithConnectionPool(pool)}
		if tracer != nil {
			opts = append(opts, database.WithTracer(tracer))
		}
		return database.New(opts...)

	case config.StorageTypeFile:
		if provider == nil {
			return nil, fmt.Errorf("data provider is required when storage type is file")
		}
		logger.Infof("Creating in-memory jobs service from %s", provider.GetSource())
		return inmemory.New(ctx, provider)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.GetStorageType())
	}
}
