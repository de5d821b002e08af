package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// JobsMetricsMeterName is the name used for the front-end module meter
	JobsMetricsMeterName = "github.com/maniaxatwork/jobs-server/jobs"

	// SitemapMetricsMeterName is the name used for the search index meter
	SitemapMetricsMeterName = "github.com/maniaxatwork/jobs-server/sitemap"
)

// JobsMetrics holds the instruments recorded while rendering front-end modules
type JobsMetrics struct {
	moduleRenders  metric.Int64Counter
	renderDuration metric.Float64Histogram
	publishedJobs  metric.Int64Gauge
}

// NewJobsMetrics creates a new JobsMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewJobsMetrics(provider metric.MeterProvider) (*JobsMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(JobsMetricsMeterName)

	moduleRenders, err := meter.Int64Counter(
		"jobs_srv_module_renders",
		metric.WithDescription("Number of front-end module renders"),
		metric.WithUnit("{render}"),
	)
	if err != nil {
		return nil, err
	}

	renderDuration, err := meter.Float64Histogram(
		"jobs_srv_module_render_duration_seconds",
		metric.WithDescription("Duration of front-end module renders in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1),
	)
	if err != nil {
		return nil, err
	}

	publishedJobs, err := meter.Int64Gauge(
		"jobs_srv_published_jobs",
		metric.WithDescription("Number of published jobs per archive"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	return &JobsMetrics{
		moduleRenders:  moduleRenders,
		renderDuration: renderDuration,
		publishedJobs:  publishedJobs,
	}, nil
}

// RecordModuleRender records one render of a module of the given type
func (m *JobsMetrics) RecordModuleRender(ctx context.Context, moduleType string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("module_type", moduleType),
		attribute.Bool("success", err == nil),
	)
	m.moduleRenders.Add(ctx, 1, attrs)
	m.renderDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordPublishedJobs records the number of published jobs in an archive
func (m *JobsMetrics) RecordPublishedJobs(ctx context.Context, archiveID int64, count int64) {
	if m == nil {
		return
	}

	m.publishedJobs.Record(ctx, count, metric.WithAttributes(attribute.Int64("archive_id", archiveID)))
}

// SitemapMetrics holds the instruments for search index and sitemap rebuilds
type SitemapMetrics struct {
	rebuildDuration metric.Float64Histogram
	urls            metric.Int64Gauge
}

// NewSitemapMetrics creates a new SitemapMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSitemapMetrics(provider metric.MeterProvider) (*SitemapMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SitemapMetricsMeterName)

	rebuildDuration, err := meter.Float64Histogram(
		"jobs_srv_sitemap_rebuild_duration_seconds",
		metric.WithDescription("Duration of sitemap rebuilds in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}

	urls, err := meter.Int64Gauge(
		"jobs_srv_sitemap_urls",
		metric.WithDescription("Number of job URLs in the last sitemap"),
		metric.WithUnit("{url}"),
	)
	if err != nil {
		return nil, err
	}

	return &SitemapMetrics{
		rebuildDuration: rebuildDuration,
		urls:            urls,
	}, nil
}

// RecordRebuild records one sitemap rebuild and, when it succeeded, its URL count
func (m *SitemapMetrics) RecordRebuild(ctx context.Context, duration time.Duration, urlCount int, success bool) {
	if m == nil {
		return
	}

	m.rebuildDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
	if success {
		m.urls.Record(ctx, int64(urlCount))
	}
}
