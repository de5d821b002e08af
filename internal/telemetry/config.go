// Package telemetry provides OpenTelemetry instrumentation for the jobs server.
// Traces are exported over OTLP; metrics go to OTLP, a Prometheus scrape
// endpoint, or both.
package telemetry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maniaxatwork/jobs-server/internal/versions"
)

const (
	// DefaultServiceName is the default service name for telemetry
	DefaultServiceName = "jobs-server"

	// DefaultEndpoint is the default OTLP endpoint for telemetry
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling is the default trace sampling rate (5%)
	DefaultSampling = 0.05

	// DefaultPrometheusPath is where the Prometheus scrape handler is mounted
	DefaultPrometheusPath = "/metrics"
)

// Config represents the root telemetry configuration
type Config struct {
	// Enabled controls whether telemetry is enabled globally
	Enabled bool `yaml:"enabled"`

	// ServiceName defaults to "jobs-server"
	ServiceName string `yaml:"serviceName,omitempty"`

	// ServiceVersion defaults to the application version
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is the OTLP collector endpoint in "host:port" form
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure allows plain HTTP to the collector
	Insecure bool `yaml:"insecure,omitempty"`

	Tracing *TracingConfig `yaml:"tracing,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig defines tracing-specific configuration
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampling is the trace sampling ratio between 0.0 and 1.0
	Sampling float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig defines metrics-specific configuration
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// OTLP pushes metrics to the collector. Defaults to true when Prometheus is off.
	OTLP *bool `yaml:"otlp,omitempty"`

	// Prometheus exposes a scrape endpoint on the API server
	Prometheus *PrometheusConfig `yaml:"prometheus,omitempty"`
}

// PrometheusConfig configures the Prometheus scrape endpoint
type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// GetServiceName returns the service name, using default if not specified
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetServiceVersion returns the service version, defaulting to the build version
func (c *Config) GetServiceVersion() string {
	if c.ServiceVersion == "" {
		return versions.Version
	}
	return c.ServiceVersion
}

// GetEndpoint returns the endpoint, using default if not specified
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// GetInsecure returns the insecure flag
func (c *Config) GetInsecure() bool {
	return c.Insecure
}

// GetSampling returns the sampling ratio.
// A zero value cannot be told apart from an unset one and maps to DefaultSampling.
func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == 0.0 {
		return DefaultSampling
	}
	return c.Sampling
}

// PrometheusEnabled reports whether the scrape endpoint should be served
func (c *MetricsConfig) PrometheusEnabled() bool {
	return c != nil && c.Enabled && c.Prometheus != nil && c.Prometheus.Enabled
}

// OTLPEnabled reports whether metrics are pushed to the collector
func (c *MetricsConfig) OTLPEnabled() bool {
	if c == nil || !c.Enabled {
		return false
	}
	if c.OTLP != nil {
		return *c.OTLP
	}
	return !c.PrometheusEnabled()
}

// GetPrometheusPath returns the scrape path, using default if not specified
func (c *MetricsConfig) GetPrometheusPath() string {
	if c == nil || c.Prometheus == nil || c.Prometheus.Path == "" {
		return DefaultPrometheusPath
	}
	return c.Prometheus.Path
}

// Validate validates the telemetry configuration
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error

	if c.Tracing != nil {
		if err := c.Tracing.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tracing: %w", err))
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Validate validates the tracing configuration
func (c *TracingConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	if c.Sampling < 0 || c.Sampling > 1.0 {
		return fmt.Errorf("sampling must be between 0.0 and 1.0, got %f", c.Sampling)
	}

	return nil
}

// Validate validates the metrics configuration
func (c *MetricsConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	if c.Prometheus != nil && c.Prometheus.Path != "" && !strings.HasPrefix(c.Prometheus.Path, "/") {
		return fmt.Errorf("prometheus path must start with '/', got %q", c.Prometheus.Path)
	}
	if !c.OTLPEnabled() && !c.PrometheusEnabled() {
		return fmt.Errorf("at least one of otlp or prometheus must be enabled")
	}

	return nil
}
