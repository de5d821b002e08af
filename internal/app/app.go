// Package app provides application lifecycle management for the jobs server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maniaxatwork/jobs-server/internal/app/storage"
	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/logger"
)

// JobsApp encapsulates all components needed to run the jobs server.
// It provides lifecycle management and graceful shutdown capabilities.
type JobsApp struct {
	config     *config.Config
	manager    config.Manager
	components *AppComponents
	storage    storage.Factory
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
	stopOnce   sync.Once
	stopErr    error
}

// Start runs the HTTP server, the sitemap scheduler and the configuration
// watcher. It blocks until the server stops or one of them fails.
func (app *JobsApp) Start() error {
	listener, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return app.Serve(listener)
}

// Serve is Start on an existing listener
func (app *JobsApp) Serve(listener net.Listener) error {
	g, ctx := errgroup.WithContext(app.ctx)

	if s := app.components.Scheduler; s != nil {
		if err := s.Start(ctx); err != nil {
			_ = listener.Close()
			return fmt.Errorf("failed to start sitemap scheduler: %w", err)
		}
	}

	if app.manager != nil {
		g.Go(func() error {
			return ignoreCanceled(app.manager.Watch(ctx))
		})
		g.Go(func() error {
			return ignoreCanceled(app.components.Modules.Watch(ctx, app.manager))
		})
	}

	g.Go(func() error {
		logger.Infof("Server listening on %s", listener.Addr())
		if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	// a failing watcher takes the server down with it
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("HTTP server did not shut down cleanly", "error", err)
		}
		return nil
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop gracefully stops the application with the given timeout. It stops
// the scheduler, shuts down the HTTP server and releases the storage.
// Calls after the first return the first result.
func (app *JobsApp) Stop(timeout time.Duration) error {
	app.stopOnce.Do(func() {
		app.stopErr = app.stop(timeout)
	})
	return app.stopErr
}

func (app *JobsApp) stop(timeout time.Duration) error {
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s := app.components.Scheduler; s != nil {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Errorf("Failed to stop sitemap scheduler: %v", err)
		}
	}

	var errs []error
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if app.manager != nil {
		if err := app.manager.Close(); err != nil {
			logger.Warnw("Failed to close config manager", "error", err)
		}
	}

	if t := app.components.Telemetry; t != nil {
		if err := t.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("Failed to shut down telemetry", "error", err)
		}
	}

	if app.storage != nil {
		app.storage.Cleanup()
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logger.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *JobsApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *JobsApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the built components
func (app *JobsApp) Components() *AppComponents {
	return app.components
}
