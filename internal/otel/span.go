// Package otel holds the span helpers and attribute keys shared by the
// storage, rendering and search layers of the jobs server.
package otel

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys of the jobs domain
const (
	AttrArchiveID   = attribute.Key("jobs.archive_id")
	AttrJobID       = attribute.Key("jobs.id")
	AttrJobAlias    = attribute.Key("jobs.alias")
	AttrPageID      = attribute.Key("page.id")
	AttrModuleID    = attribute.Key("module.id")
	AttrModuleType  = attribute.Key("module.type")
	AttrStorageType = attribute.Key("storage.type")
	AttrPageSize    = attribute.Key("pagination.limit")
	AttrResultCount = attribute.Key("result.count")

	// AttrNotFound marks lookups that found nothing. A miss is regular
	// front-end traffic and not a span error.
	AttrNotFound = attribute.Key("jobs.not_found")
)

// StartSpan starts a span on tracer. A nil tracer yields the span already in
// ctx, which is a no-op span unless the caller is traced.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// JobRef describes a job addressed by ID or alias: numeric references are
// recorded as AttrJobID, anything else as AttrJobAlias.
func JobRef(idOrAlias string) attribute.KeyValue {
	if id, err := strconv.ParseInt(idOrAlias, 10, 64); err == nil && id > 0 {
		return AttrJobID.Int64(id)
	}
	return AttrJobAlias.String(idOrAlias)
}

// RecordError records err on span. Errors matching one of notFound only set
// AttrNotFound. Any other error also sets the error status, whose
// description stays generic so queries never end up in the status.
func RecordError(span trace.Span, err error, notFound ...error) {
	if err == nil || span == nil {
		return
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			span.SetAttributes(AttrNotFound.Bool(true))
			return
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "operation failed")
}
