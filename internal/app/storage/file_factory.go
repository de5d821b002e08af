package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/service/factory"
	"github.com/maniaxatwork/jobs-server/internal/service/inmemory"
)

// FileFactory creates in-memory storage components seeded from a YAML file.
type FileFactory struct {
	config   *config.Config
	provider inmemory.DataProvider
}

var _ Factory = (*FileFactory)(nil)

// NewFileFactory creates a new file-based storage factory.
// The seed file must exist; it is parsed when the jobs service is created.
func NewFileFactory(cfg *config.Config) (*FileFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.File == nil || cfg.File.Path == "" {
		return nil, fmt.Errorf("file configuration is required for file storage type")
	}
	if _, err := os.Stat(cfg.File.Path); err != nil {
		return nil, fmt.Errorf("failed to access seed file %s: %w", cfg.File.Path, err)
	}

	logger.Infow("Creating file-based storage factory", "path", cfg.File.Path)

	return &FileFactory{
		config:   cfg,
		provider: inmemory.NewFileDataProvider(cfg.File.Path),
	}, nil
}

// CreateJobsService creates an in-memory jobs service loaded from the seed file.
func (f *FileFactory) CreateJobsService(ctx context.Context) (service.JobsService, error) {
	logger.Debug("Creating file-based jobs service")
	return factory.NewJobsService(ctx, f.config, nil, f.provider, nil)
}

// Cleanup is a no-op for file storage.
func (*FileFactory) Cleanup() {
	logger.Debug("Cleaning up file storage factory (no-op)")
}
