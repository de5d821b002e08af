// Package api provides the HTTP server of the jobs server: health, front-end
// and back-end routes.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/maniaxatwork/jobs-server/internal/api/admin"
	"github.com/maniaxatwork/jobs-server/internal/api/site"
	v0 "github.com/maniaxatwork/jobs-server/internal/api/v0"
	"github.com/maniaxatwork/jobs-server/internal/auth"
	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/frontend"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// ServerOption configures the jobs API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares   []func(http.Handler) http.Handler
	metricsPath   string
	metrics       http.Handler
	modules       *frontend.Registry
	siteOpts      []site.Option
	checker       *authz.Checker
	adminOpts     []admin.Option
	authenticator *auth.Authenticator
	limiter       *RateLimiter
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithMetricsHandler serves h, usually the Prometheus exporter, at path
func WithMetricsHandler(path string, h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsPath = path
		cfg.metrics = h
	}
}

// WithFrontend mounts the front-end routes rendering the modules of registry
func WithFrontend(registry *frontend.Registry, opts ...site.Option) ServerOption {
	return func(cfg *serverConfig) {
		cfg.modules = registry
		cfg.siteOpts = append(cfg.siteOpts, opts...)
	}
}

// WithAdmin mounts the back-end routes under /admin. They are only served
// when an enabled authenticator is configured as well.
func WithAdmin(checker *authz.Checker, opts ...admin.Option) ServerOption {
	return func(cfg *serverConfig) {
		cfg.checker = checker
		cfg.adminOpts = append(cfg.adminOpts, opts...)
	}
}

// WithAuthenticator sets the bearer token authentication. Front-end routes
// accept an optional token, back-end routes require one.
func WithAuthenticator(a *auth.Authenticator) ServerOption {
	return func(cfg *serverConfig) {
		cfg.authenticator = a
	}
}

// WithRateLimiter limits the front-end routes per client address
func WithRateLimiter(l *RateLimiter) ServerOption {
	return func(cfg *serverConfig) {
		cfg.limiter = l
	}
}

// NewServer creates and configures the HTTP router with the given service and options
func NewServer(svc service.JobsService, opts ...ServerOption) *chi.Mux {
	// Initialize configuration with defaults
	cfg := &serverConfig{
		middlewares: []func(http.Handler) http.Handler{},
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()

	// Apply middleware
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	// Mount health check routes directly at root
	r.Mount("/", v0.HealthRouter(svc))

	if cfg.metrics != nil {
		r.Handle(cfg.metricsPath, cfg.metrics)
	}

	if cfg.modules != nil {
		r.Group(func(r chi.Router) {
			if cfg.limiter != nil {
				r.Use(cfg.limiter.Middleware)
			}
			if cfg.authenticator.Enabled() {
				r.Use(cfg.authenticator.Optional)
			}
			r.Use(authz.MemberMiddleware)
			site.NewRoutes(svc, cfg.modules, cfg.siteOpts...).Register(r)
		})
	}

	if cfg.checker != nil && cfg.authenticator.Enabled() {
		r.With(cfg.authenticator.Required, authz.UserMiddleware(svc, cfg.checker)).
			Mount("/admin", admin.Router(svc, cfg.checker, cfg.adminOpts...))
	} else if cfg.checker != nil {
		logger.Info("Admin API disabled: authentication is not enabled")
	}

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Debugf("HTTP %s %s %d %s %s",
			r.Method,
			r.URL.Path,
			ww.Status(),
			time.Since(start),
			middleware.GetReqID(r.Context()),
		)
	})
}
