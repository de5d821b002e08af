package database

import (
	"context"

	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/maniaxatwork/jobs-server/internal/otel"
)

// ServiceTracerName is the name used for the database service tracer
const ServiceTracerName = "github.com/maniaxatwork/jobs-server/service/db"

// startSpan starts a client span for a PostgreSQL round trip. Every span
// carries db.system; callers add the jobs attributes of the query.
func (s *dbService) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append([]trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(semconv.DBSystemPostgreSQL),
	}, opts...)
	return otel.StartSpan(ctx, s.tracer, name, opts...)
}
