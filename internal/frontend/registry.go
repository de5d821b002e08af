package frontend

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/otel"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/telemetry"
)

// Factory creates a module of one type
type Factory func(cfg config.ModuleConfig, env *Env) Module

// DefaultFactories maps the module type names to their constructors
var DefaultFactories = map[string]Factory{
	config.ModuleTypeList:    func(cfg config.ModuleConfig, env *Env) Module { return NewListModule(cfg, env) },
	config.ModuleTypeReader:  func(cfg config.ModuleConfig, env *Env) Module { return NewReaderModule(cfg, env) },
	config.ModuleTypeArchive: func(cfg config.ModuleConfig, env *Env) Module { return NewArchiveModule(cfg, env) },
	config.ModuleTypeMenu:    func(cfg config.ModuleConfig, env *Env) Module { return NewMenuModule(cfg, env) },
}

// Registry holds the configured modules and rebuilds them when the
// configuration changes
type Registry struct {
	store     service.JobsService
	checker   *authz.Checker
	hooks     *Hooks
	factories map[string]Factory
	metrics   *telemetry.JobsMetrics
	tracer    trace.Tracer

	mu      sync.RWMutex
	env     *Env
	modules map[int64]Module
	order   []int64
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithHooks sets the hooks passed to every module
func WithHooks(h *Hooks) RegistryOption {
	return func(r *Registry) {
		r.hooks = h
	}
}

// WithFactory registers an additional module type
func WithFactory(moduleType string, f Factory) RegistryOption {
	return func(r *Registry) {
		r.factories[moduleType] = f
	}
}

// WithMetrics records module renders
func WithMetrics(m *telemetry.JobsMetrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithTracer traces module renders
func WithTracer(t trace.Tracer) RegistryOption {
	return func(r *Registry) {
		r.tracer = t
	}
}

// NewRegistry builds the modules of cfg
func NewRegistry(store service.JobsService, checker *authz.Checker, cfg *config.Config, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		store:     store,
		checker:   checker,
		factories: make(map[string]Factory, len(DefaultFactories)),
	}
	for t, f := range DefaultFactories {
		r.factories[t] = f
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.hooks == nil {
		r.hooks = NewHooks()
	}

	if err := r.Build(cfg); err != nil {
		return nil, err
	}
	return r, nil
}

// Build replaces the modules with those of cfg. On error the current
// modules are kept.
func (r *Registry) Build(cfg *config.Config) error {
	env := &Env{
		Store:   r.store,
		Checker: r.checker,
		Site:    cfg.Site,
		Hooks:   r.hooks,
		Labels:  LabelsFrom(cfg.Site.Labels),
		Lookup:  r.Lookup,
	}

	modules := make(map[int64]Module, len(cfg.Modules))
	order := make([]int64, 0, len(cfg.Modules))
	for _, mc := range cfg.Modules {
		factory, ok := r.factories[mc.Type]
		if !ok {
			return fmt.Errorf("%w: type %q of module %d", ErrUnknownModule, mc.Type, mc.ID)
		}
		if _, dup := modules[mc.ID]; dup {
			return fmt.Errorf("duplicate module id %d", mc.ID)
		}
		if mc.Template != "" && !HasTemplate(mc.Template) {
			return fmt.Errorf("module %d uses unknown template %q", mc.ID, mc.Template)
		}
		modules[mc.ID] = factory(mc, env)
		order = append(order, mc.ID)
	}

	r.mu.Lock()
	r.env = env
	r.modules = modules
	r.order = order
	r.mu.Unlock()

	logger.Infof("Loaded %d front-end modules", len(modules))
	return nil
}

// Lookup returns the module with the given ID
func (r *Registry) Lookup(id int64) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[id]
	return m, ok
}

// Modules returns the module definitions in configuration order
func (r *Registry) Modules() []config.ModuleConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]config.ModuleConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.modules[id].Config())
	}
	return out
}

// Env returns the environment the current modules share
func (r *Registry) Env() *Env {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.env
}

// Render generates the module id for req
func (r *Registry) Render(ctx context.Context, id int64, req *Request) (*Output, error) {
	m, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModule, id)
	}
	moduleType := m.Config().Type

	ctx, span := otel.StartSpan(ctx, r.tracer, "frontend.Render",
		trace.WithAttributes(otel.AttrModuleID.Int64(id), otel.AttrModuleType.String(moduleType)))
	defer span.End()

	start := time.Now()
	out, err := m.Generate(ctx, req)
	r.metrics.RecordModuleRender(ctx, moduleType, time.Since(start), err)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out, nil
}

// Watch rebuilds the modules whenever m publishes a configuration, until
// ctx is done
func (r *Registry) Watch(ctx context.Context, m config.Manager) error {
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cfg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := r.Build(cfg); err != nil {
				logger.Errorw("Failed to rebuild front-end modules, keeping previous modules", "error", err)
			}
		}
	}
}

// ModuleTypes returns the registered type names
func (r *Registry) ModuleTypes() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
