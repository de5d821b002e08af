package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	jobsapp "github.com/maniaxatwork/jobs-server/internal/app"
	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/logger"
)

// defaultGracefulTimeout is Kubernetes-friendly shutdown time
const defaultGracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the jobs server",
		Long: `Start the jobs server.

The server requires a configuration file (--config or JOBS_CONFIG) that specifies:
- the site settings used for URLs and dates
- the storage (database or YAML seed file)
- the front-end modules
- authentication, authorization and sitemap settings

Changes to the module definitions in the configuration file are picked up
without a restart. See examples/ for sample configurations.`,
		RunE: runServe,
	}
	cmd.Flags().String("address", ":8080", "Address to listen on")
	addConfigFlag(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	v, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	configPath := v.GetString("config")
	if configPath == "" {
		return fmt.Errorf("--config or %s_CONFIG is required", config.EnvPrefix)
	}
	address := v.GetString("address")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager, err := config.NewManager(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := manager.Get()
	logger.Infow("Loaded configuration",
		"path", configPath,
		"storage", cfg.GetStorageType(),
		"auth", cfg.GetAuthMode(),
		"modules", len(cfg.Modules),
	)

	app, err := jobsapp.NewJobsApp(context.WithoutCancel(ctx),
		jobsapp.WithConfigManager(manager),
		jobsapp.WithAddress(address),
	)
	if err != nil {
		_ = manager.Close()
		return fmt.Errorf("failed to create jobs server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	select {
	case err := <-errChan:
		_ = app.Stop(defaultGracefulTimeout)
		return err
	case <-ctx.Done():
	}

	if err := app.Stop(defaultGracefulTimeout); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
		return err
	}
	return <-errChan
}
