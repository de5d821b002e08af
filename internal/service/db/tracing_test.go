package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/maniaxatwork/jobs-server/internal/otel"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

func newTracedService(t *testing.T) (*tracetest.SpanRecorder, *dbService) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return recorder, &dbService{tracer: tp.Tracer(ServiceTracerName)}
}

func TestStartSpan(t *testing.T) {
	t.Parallel()

	recorder, svc := newTracedService(t)

	_, span := svc.startSpan(context.Background(), "dbService.ListJobs",
		trace.WithAttributes(otel.AttrArchiveID.Int64(1)))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "dbService.ListJobs", ended[0].Name())
	assert.Equal(t, trace.SpanKindClient, ended[0].SpanKind())

	attrs := map[string]any{}
	for _, a := range ended[0].Attributes() {
		attrs[string(a.Key)] = a.Value.AsInterface()
	}
	assert.Equal(t, "postgresql", attrs["db.system"])
	assert.Equal(t, int64(1), attrs["jobs.archive_id"])
}

func TestStartSpan_NilTracer(t *testing.T) {
	t.Parallel()

	svc := &dbService{}
	ctx, span := svc.startSpan(context.Background(), "dbService.GetJob")

	require.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	assert.NotPanics(t, func() { span.End() })
}

func TestFindPublishedJob_EmptyAliasSpan(t *testing.T) {
	t.Parallel()

	// an empty reference is rejected before any query runs
	recorder, svc := newTracedService(t)

	_, err := svc.FindPublishedJob(context.Background(), "")
	require.ErrorIs(t, err, service.ErrJobNotFound)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "dbService.FindPublishedJob", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), otel.AttrJobAlias.String(""))
	assert.Empty(t, ended[0].Events())
}
