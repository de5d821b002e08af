package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/maniaxatwork/jobs-server/internal/versions"
)

func TestNewResource(t *testing.T) {
	t.Parallel()

	res, err := newResource(context.Background(), &Config{ServiceName: "careers"})
	require.NoError(t, err)

	attrs := res.Set()
	name, ok := attrs.Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "careers", name.AsString())

	version, ok := attrs.Value(semconv.ServiceVersionKey)
	require.True(t, ok)
	assert.Equal(t, versions.Version, version.AsString())
}

func TestNewTracerProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tracing *TracingConfig
		wantSDK bool
	}{
		{name: "no tracing section"},
		{name: "tracing disabled", tracing: &TracingConfig{Enabled: false}},
		{name: "tracing enabled", tracing: &TracingConfig{Enabled: true, Sampling: 0.5}, wantSDK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			tp, err := newTracerProvider(ctx, &Config{Enabled: true, Insecure: true, Tracing: tt.tracing}, resource.Empty())
			require.NoError(t, err)

			if !tt.wantSDK {
				assert.IsType(t, tracenoop.TracerProvider{}, tp)
				return
			}
			sdkTP, ok := tp.(*sdktrace.TracerProvider)
			require.True(t, ok, "expected SDK tracer provider")
			require.NoError(t, sdkTP.Shutdown(ctx))
		})
	}
}

func TestNewMeterProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		metrics *MetricsConfig
		wantSDK bool
	}{
		{name: "no metrics section"},
		{name: "metrics disabled", metrics: &MetricsConfig{Enabled: false}},
		{name: "otlp", metrics: &MetricsConfig{Enabled: true}, wantSDK: true},
		{
			name:    "prometheus",
			metrics: &MetricsConfig{Enabled: true, Prometheus: &PrometheusConfig{Enabled: true}},
			wantSDK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			mp, err := newMeterProvider(ctx, &Config{Enabled: true, Insecure: true, Metrics: tt.metrics},
				resource.Empty(), prometheus.NewRegistry())
			require.NoError(t, err)

			if !tt.wantSDK {
				assert.IsType(t, metricnoop.MeterProvider{}, mp)
				return
			}
			sdkMP, ok := mp.(*sdkmetric.MeterProvider)
			require.True(t, ok, "expected SDK meter provider")
			// no collector is running, so flushing on shutdown may fail
			_ = sdkMP.Shutdown(ctx)
		})
	}
}

func TestNewMeterProvider_PrometheusScrape(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	mp, err := newMeterProvider(ctx, &Config{
		Enabled: true,
		Metrics: &MetricsConfig{Enabled: true, Prometheus: &PrometheusConfig{Enabled: true}},
	}, resource.Empty(), reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.(*sdkmetric.MeterProvider).Shutdown(ctx) })

	m, err := NewJobsMetrics(mp)
	require.NoError(t, err)
	m.RecordModuleRender(ctx, "jobslist", 10*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jobs_srv_module_renders_total")
}
