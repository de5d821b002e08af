package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/service/inmemory"
)

func TestNewJobsService(t *testing.T) {
	t.Parallel()

	provider := inmemory.NewStaticDataProvider(&inmemory.Seed{})

	tests := []struct {
		name     string
		cfg      *config.Config
		provider inmemory.DataProvider
		errMsg   string
	}{
		{name: "nil_config", errMsg: "config cannot be nil"},
		{
			name:   "database_without_pool",
			cfg:    &config.Config{Database: &config.DatabaseConfig{Host: "db"}},
			errMsg: "database pool is required",
		},
		{
			name:   "file_without_provider",
			cfg:    &config.Config{File: &config.FileConfig{Path: "seed.yaml"}},
			errMsg: "data provider is required",
		},
		{
			name:   "unknown_storage",
			cfg:    &config.Config{Storage: config.StorageConfig{Type: "s3"}},
			errMsg: "unknown storage type: s3",
		},
		{
			name:     "file_with_provider",
			cfg:      &config.Config{File: &config.FileConfig{Path: "seed.yaml"}},
			provider: provider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, err := NewJobsService(context.Background(), tt.cfg, nil, tt.provider, nil)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, svc.CheckReadiness(context.Background()))
		})
	}
}
