// Package database provides a PostgreSQL implementation of the JobsService interface
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/otel"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// PostgreSQL error codes mapped onto service errors
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgStringTooLong       = "22001"
)

// options holds configuration options for the database service
type options struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// Option is a functional option for configuring the database service
type Option func(*options) error

// WithConnectionPool sets the pgx pool used by the service.
// The caller is responsible for closing the pool when it is done.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for the database service.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// dbService implements the JobsService interface using a database backend
type dbService struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ service.JobsService = (*dbService)(nil)

// New creates a new database-backed jobs service with the given options
func New(opts ...Option) (service.JobsService, error) {
	o := &options{}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}

	return &dbService{
		pool:   o.pool,
		tracer: o.tracer,
	}, nil
}

// CheckReadiness checks if the service is ready to serve requests
func (s *dbService) CheckReadiness(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// GetArchive implements JobsService.GetArchive
func (s *dbService) GetArchive(ctx context.Context, id int64) (*jobs.Archive, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetArchive", trace.WithAttributes(otel.AttrArchiveID.Int64(id)))
	defer span.End()

	a, err := scanArchive(s.pool.QueryRow(ctx,
		"SELECT "+archiveColumns+" FROM jobs_archive WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		span.SetAttributes(otel.AttrNotFound.Bool(true))
		return nil, fmt.Errorf("%w: %d", service.ErrArchiveNotFound, id)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get archive: %w", err)
	}
	return a, nil
}

// ListArchives implements JobsService.ListArchives
func (s *dbService) ListArchives(ctx context.Context, opts ...service.Option) ([]*jobs.Archive, error) {
	ctx, span := s.startSpan(ctx, "dbService.ListArchives")
	defer span.End()

	options, err := service.NewListArchivesOptions(opts...)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	b := &queryBuilder{}
	if options.IDs != nil {
		b.where("id = ANY(%s)", nonNil(options.IDs))
	}

	rows, err := s.pool.Query(ctx,
		"SELECT "+archiveColumns+" FROM jobs_archive"+b.clause()+" ORDER BY title, id", b.args...)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*jobs.Archive, error) {
		return scanArchive(row)
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(result)))
	return result, nil
}

// CreateArchive implements JobsService.CreateArchive
func (s *dbService) CreateArchive(ctx context.Context, archive *jobs.Archive) (*jobs.Archive, error) {
	ctx, span := s.startSpan(ctx, "dbService.CreateArchive")
	defer span.End()

	a, err := scanArchive(s.pool.QueryRow(ctx,
		`INSERT INTO jobs_archive (title, jump_to, protected, groups)
		 VALUES ($1, $2, $3, $4) RETURNING `+archiveColumns,
		archive.Title, archive.JumpTo, archive.Protected, nonNil(archive.Groups)))
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	logger.Debugw("Archive created",
		"archive_id", a.ID,
		"request_id", middleware.GetReqID(ctx))
	return a, nil
}

// UpdateArchive implements JobsService.UpdateArchive
func (s *dbService) UpdateArchive(ctx context.Context, archive *jobs.Archive) (*jobs.Archive, error) {
	ctx, span := s.startSpan(ctx, "dbService.UpdateArchive", trace.WithAttributes(otel.AttrArchiveID.Int64(archive.ID)))
	defer span.End()

	a, err := scanArchive(s.pool.QueryRow(ctx,
		`UPDATE jobs_archive SET title = $2, jump_to = $3, protected = $4, groups = $5, tstamp = NOW()
		 WHERE id = $1 RETURNING `+archiveColumns,
		archive.ID, archive.Title, archive.JumpTo, archive.Protected, nonNil(archive.Groups)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", service.ErrArchiveNotFound, archive.ID)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to update archive: %w", err)
	}
	return a, nil
}

// DeleteArchive implements JobsService.DeleteArchive. Jobs and their content
// are removed by the ON DELETE CASCADE foreign keys.
func (s *dbService) DeleteArchive(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "dbService.DeleteArchive", trace.WithAttributes(otel.AttrArchiveID.Int64(id)))
	defer span.End()

	tag, err := s.pool.Exec(ctx, "DELETE FROM jobs_archive WHERE id = $1", id)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete archive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", service.ErrArchiveNotFound, id)
	}

	logger.Debugw("Archive deleted",
		"archive_id", id,
		"request_id", middleware.GetReqID(ctx))
	return nil
}

// withTx runs fn in a read-committed transaction and commits when fn succeeds
func (s *dbService) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warnf("Failed to roll back transaction: %v", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mapJobWriteError translates constraint violations of job writes into service errors
func mapJobWriteError(err error, job *jobs.Job) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", service.ErrAliasConflict, job.Alias)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %d", service.ErrArchiveNotFound, job.PID)
	case pgStringTooLong:
		return fmt.Errorf("%w: %s", service.ErrInvalidJob, pgErr.Message)
	}
	return err
}
