package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/db"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/service/factory"
)

// DatabaseFactory serves jobs from PostgreSQL
type DatabaseFactory struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ Factory = (*DatabaseFactory)(nil)

// DatabaseFactoryOption configures a DatabaseFactory
type DatabaseFactoryOption func(*DatabaseFactory)

// WithTracer traces the queries of the created service. Without it queries
// run untraced.
func WithTracer(tracer trace.Tracer) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.tracer = tracer
	}
}

// NewDatabaseFactory opens the pool for cfg.Database. db.NewPool keeps
// retrying until the connect timeout elapses, so a database that starts
// after the server is tolerated.
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (*DatabaseFactory, error) {
	switch {
	case cfg == nil:
		return nil, fmt.Errorf("config cannot be nil")
	case cfg.Database == nil:
		return nil, fmt.Errorf("database configuration is required for database storage type")
	}

	f := &DatabaseFactory{cfg: cfg}
	for _, opt := range opts {
		opt(f)
	}

	logger.Infow("Connecting to jobs database",
		"host", cfg.Database.Host, "database", cfg.Database.Database)

	var err error
	if f.pool, err = db.NewPool(ctx, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	return f, nil
}

// Pool exposes the open connection pool
func (f *DatabaseFactory) Pool() *pgxpool.Pool {
	return f.pool
}

// CreateJobsService returns a jobs service running its queries on the pool
func (f *DatabaseFactory) CreateJobsService(ctx context.Context) (service.JobsService, error) {
	return factory.NewJobsService(ctx, f.cfg, f.pool, nil, f.tracer)
}

// Cleanup closes the pool
func (f *DatabaseFactory) Cleanup() {
	if f.pool == nil {
		return
	}
	logger.Info("Closing database connection pool")
	f.pool.Close()
}
