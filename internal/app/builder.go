package app

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/maniaxatwork/jobs-server/internal/api"
	"github.com/maniaxatwork/jobs-server/internal/api/admin"
	"github.com/maniaxatwork/jobs-server/internal/api/site"
	"github.com/maniaxatwork/jobs-server/internal/app/storage"
	"github.com/maniaxatwork/jobs-server/internal/auth"
	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/frontend"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/search"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second

	tracerName = "github.com/maniaxatwork/jobs-server"
)

// JobsAppOptions is a function that configures the jobs app builder
type JobsAppOptions func(*jobsAppConfig) error

// jobsAppConfig collects the settings and injected components of a JobsApp.
// Components left nil are built from the configuration.
type jobsAppConfig struct {
	config        *config.Config
	configManager config.Manager

	storageFactory storage.Factory
	telemetry      *telemetry.Telemetry
	authenticator  *auth.Authenticator
	hooks          *frontend.Hooks

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...JobsAppOptions) (*jobsAppConfig, error) {
	cfg := &jobsAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil && cfg.configManager != nil {
		cfg.config = cfg.configManager.Get()
	}
	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return cfg, nil
}

// NewJobsApp builds every component of the jobs server. Resources acquired
// before a failing step are released before it returns.
func NewJobsApp(
	ctx context.Context,
	opts ...JobsAppOptions,
) (*JobsApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if cfg.telemetry == nil {
		cfg.telemetry, err = telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.config.Telemetry))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	// Create storage factory (single decision point for DB vs File)
	if cfg.storageFactory == nil {
		cfg.storageFactory, err = storage.NewStorageFactory(ctx, cfg.config, cfg.telemetry.Tracer(tracerName))
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	var cleanupNeeded = true
	defer func() {
		if cleanupNeeded {
			cfg.storageFactory.Cleanup()
		}
	}()

	components, err := buildComponents(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.authenticator == nil {
		cfg.authenticator, err = auth.NewAuthenticator(cfg.config.Auth, auth.DefaultValidatorFactory)
		if err != nil {
			return nil, fmt.Errorf("failed to build authenticator: %w", err)
		}
	}

	httpServer, err := buildHTTPServer(ctx, cfg, components)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	// from here on the app owns the storage
	cleanupNeeded = false

	return &JobsApp{
		config:     cfg.config,
		manager:    cfg.configManager,
		components: components,
		storage:    cfg.storageFactory,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) JobsAppOptions {
	return func(cfg *jobsAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithConfigManager reads the configuration from m and rebuilds the
// front-end modules whenever the configuration file changes
func WithConfigManager(m config.Manager) JobsAppOptions {
	return func(cfg *jobsAppConfig) error {
		if m == nil {
			return fmt.Errorf("config manager cannot be nil")
		}
		cfg.configManager = m
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) JobsAppOptions {
	return func(cfg *jobsAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) JobsAppOptions {
	return func(cfg *jobsAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithRequestTimeout sets the per request timeout of the default middlewares
func WithRequestTimeout(d time.Duration) JobsAppOptions {
	return func(cfg *jobsAppConfig) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) JobsAppOptions {
	return func(cfg *jobsAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithTelemetry allows injecting already initialized telemetry providers
func WithTelemetry(t *telemetry.Telemetry) JobsAppOptions {
	return func(cfg *jobsAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// WithAuthenticator allows injecting a custom authenticator (for testing)
func WithAuthenticator(a *auth.Authenticator) JobsAppOptions {
	return func(cfg *jobsAppConfig) error {
		cfg.authenticator = a
		return nil
	}
}

// WithHooks sets the hooks passed to the front-end modules
func WithHooks(h *frontend.Hooks) JobsAppOptions {
	return func(cfg *jobsAppConfig) error {
		cfg.hooks = h
		return nil
	}
}

// buildComponents builds the service, the authorization checker, the
// front-end modules and the sitemap scheduler
func buildComponents(ctx context.Context, b *jobsAppConfig) (*AppComponents, error) {
	logger.Info("Initializing service components")

	svc, err := b.storageFactory.CreateJobsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create jobs service: %w", err)
	}

	checker, err := buildChecker(b.config, svc)
	if err != nil {
		return nil, err
	}

	jobsMetrics, err := telemetry.NewJobsMetrics(b.telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create jobs metrics: %w", err)
	}

	registryOpts := []frontend.RegistryOption{
		frontend.WithMetrics(jobsMetrics),
		frontend.WithTracer(b.telemetry.Tracer(tracerName)),
	}
	if b.hooks != nil {
		registryOpts = append(registryOpts, frontend.WithHooks(b.hooks))
	}
	registry, err := frontend.NewRegistry(svc, checker, b.config, registryOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build front-end modules: %w", err)
	}

	scheduler, err := buildScheduler(b, svc, registry)
	if err != nil {
		return nil, err
	}

	logger.Infow("Service components initialized", "modules", len(registry.Modules()))
	return &AppComponents{
		JobsService: svc,
		Checker:     checker,
		Modules:     registry,
		Scheduler:   scheduler,
		Telemetry:   b.telemetry,
	}, nil
}

// buildChecker loads the Cedar policies, falling back to the built-in ones
func buildChecker(cfg *config.Config, store authz.Store) (*authz.Checker, error) {
	var policies []byte
	if cfg.Authz != nil && cfg.Authz.PolicyFile != "" {
		data, err := os.ReadFile(filepath.Clean(cfg.Authz.PolicyFile))
		if err != nil {
			return nil, fmt.Errorf("failed to read policy file: %w", err)
		}
		policies = data
		logger.Infow("Using custom authorization policies", "path", cfg.Authz.PolicyFile)
	}

	authorizer, err := authz.NewCedarAuthorizer(policies)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer: %w", err)
	}
	return authz.NewChecker(authorizer, store), nil
}

// buildScheduler returns nil unless a sitemap path is configured
func buildScheduler(b *jobsAppConfig, svc service.JobsService, registry *frontend.Registry) (*search.Scheduler, error) {
	if b.config.Search == nil || b.config.Search.SitemapPath == "" {
		logger.Debug("Sitemap file disabled")
		return nil, nil
	}

	sitemapMetrics, err := telemetry.NewSitemapMetrics(b.telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create sitemap metrics: %w", err)
	}

	indexer := search.NewIndexer(svc, registry.Env().URLSettings(),
		search.WithTracer(b.telemetry.Tracer(tracerName)))
	scheduler, err := search.NewScheduler(indexer, b.config.Search.SitemapPath, b.config.GetSitemapSchedule(),
		search.WithMetrics(sitemapMetrics),
		search.WithRootPage(b.config.Search.RootPage),
		search.WithLocation(b.config.Site.GetLocation()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sitemap scheduler: %w", err)
	}
	return scheduler, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *jobsAppConfig,
	c *AppComponents,
) (*http.Server, error) {
	logger.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing go first to capture requests rejected by auth
	if b.telemetry != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.telemetry.MeterProvider())
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		b.middlewares = append([]func(http.Handler) http.Handler{
			metricsMiddleware,
			telemetry.TracingMiddleware(b.telemetry.TracerProvider()),
		}, b.middlewares...)
	}

	siteOpts := []site.Option{}
	if b.config.Search != nil {
		siteOpts = append(siteOpts, site.WithSitemapRoot(b.config.Search.RootPage))
	}

	registry := c.Modules
	serverOpts := []api.ServerOption{
		api.WithMiddlewares(b.middlewares...),
		api.WithFrontend(registry, siteOpts...),
		api.WithAdmin(c.Checker, admin.WithSite(func() config.SiteConfig { return registry.Env().Site })),
		api.WithAuthenticator(b.authenticator),
	}
	if b.telemetry != nil {
		if h := b.telemetry.PrometheusHandler(); h != nil {
			serverOpts = append(serverOpts, api.WithMetricsHandler(b.telemetry.PrometheusPath(), h))
		}
	}
	if rl := b.config.RateLimit; rl != nil && rl.RequestsPerSecond > 0 {
		serverOpts = append(serverOpts, api.WithRateLimiter(api.NewRateLimiter(rl.RequestsPerSecond, rl.Burst)))
		logger.Infow("Front-end rate limiting enabled", "rps", rl.RequestsPerSecond, "burst", rl.Burst)
	}

	router := api.NewServer(c.JobsService, serverOpts...)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	logger.Infow("HTTP server configured", "address", b.address)
	return server, nil
}
