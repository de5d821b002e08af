// Package storage picks the backend that holds archives, jobs and pages and
// owns its resources for the lifetime of the server.
package storage

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// Factory builds the jobs service on top of a storage backend
type Factory interface {
	CreateJobsService(ctx context.Context) (service.JobsService, error)

	// Cleanup releases the backend, e.g. the PostgreSQL pool
	Cleanup()
}

// NewStorageFactory returns the factory for cfg.Storage.Type. The tracer only
// matters for the database backend.
func NewStorageFactory(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch storageType := cfg.GetStorageType(); storageType {
	case config.StorageTypeFile:
		return NewFileFactory(cfg)
	case config.StorageTypeDatabase:
		return NewDatabaseFactory(ctx, cfg, WithTracer(tracer))
	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}
