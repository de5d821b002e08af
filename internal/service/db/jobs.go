package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/otel"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// querier is satisfied by both the pool and a transaction
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetJob implements JobsService.GetJob
func (s *dbService) GetJob(ctx context.Context, id int64) (*jobs.Job, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetJob", trace.WithAttributes(otel.AttrJobID.Int64(id)))
	defer span.End()

	job, err := s.getJob(ctx, s.pool, id)
	if err != nil {
		otel.RecordError(span, err, service.ErrJobNotFound)
		return nil, err
	}
	return job, nil
}

// FindJobByIDOrAlias implements JobsService.FindJobByIDOrAlias
func (s *dbService) FindJobByIDOrAlias(ctx context.Context, idOrAlias string) (*jobs.Job, error) {
	ctx, span := s.startSpan(ctx, "dbService.FindJobByIDOrAlias", trace.WithAttributes(otel.JobRef(idOrAlias)))
	defer span.End()

	b := &queryBuilder{}
	b.idOrAlias(idOrAlias)
	return s.findOne(ctx, span, b, idOrAlias)
}

// FindPublishedJob implements JobsService.FindPublishedJob
func (s *dbService) FindPublishedJob(ctx context.Context, idOrAlias string, opts ...service.Option) (*jobs.Job, error) {
	ctx, span := s.startSpan(ctx, "dbService.FindPublishedJob", trace.WithAttributes(otel.JobRef(idOrAlias)))
	defer span.End()

	options, err := service.NewQueryOptions(opts...)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	b := &queryBuilder{}
	b.idOrAlias(idOrAlias)
	b.applyQueryOptions(options)
	return s.findOne(ctx, span, b, idOrAlias)
}

func (s *dbService) findOne(ctx context.Context, span trace.Span, b *queryBuilder, idOrAlias string) (*jobs.Job, error) {
	if idOrAlias == "" {
		return nil, fmt.Errorf("%w: empty alias", service.ErrJobNotFound)
	}

	job, err := scanJob(s.pool.QueryRow(ctx, "SELECT "+jobColumns+" FROM jobs"+b.clause()+" ORDER BY id LIMIT 1", b.args...))
	if errors.Is(err, pgx.ErrNoRows) {
		span.SetAttributes(otel.AttrNotFound.Bool(true))
		return nil, fmt.Errorf("%w: %s", service.ErrJobNotFound, idOrAlias)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to find job: %w", err)
	}

	if err := s.attachContent(ctx, s.pool, []*jobs.Job{job}); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return job, nil
}

// CountPublished implements JobsService.CountPublished
func (s *dbService) CountPublished(ctx context.Context, opts ...service.Option) (int, error) {
	ctx, span := s.startSpan(ctx, "dbService.CountPublished")
	defer span.End()

	options, err := service.NewQueryOptions(opts...)
	if err != nil {
		otel.RecordError(span, err)
		return 0, err
	}

	b := &queryBuilder{}
	b.applyQueryOptions(options)

	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM jobs"+b.clause(), b.args...).Scan(&count); err != nil {
		otel.RecordError(span, err)
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	span.SetAttributes(otel.AttrResultCount.Int(count))
	return count, nil
}

// FindPublished implements JobsService.FindPublished
func (s *dbService) FindPublished(ctx context.Context, opts ...service.Option) ([]*jobs.Job, error) {
	ctx, span := s.startSpan(ctx, "dbService.FindPublished")
	defer span.End()

	options, err := service.NewQueryOptions(opts...)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrPageSize.Int(options.Limit))

	logger.Debugw("FindPublished query",
		"archives", options.Archives,
		"order", options.Order,
		"limit", options.Limit,
		"offset", options.Offset,
		"request_id", middleware.GetReqID(ctx))

	b := &queryBuilder{}
	b.applyQueryOptions(options)
	sql := "SELECT " + jobColumns + " FROM jobs" + b.clause() +
		orderClause(options.Order, options.FeaturedFirst) +
		limitClause(options.Limit, options.Offset)

	result, err := s.queryJobs(ctx, s.pool, sql, b.args...)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(result)))
	logger.Debugw("FindPublished completed",
		"count", len(result),
		"request_id", middleware.GetReqID(ctx))
	return result, nil
}

// FindPublishedDefaultByArchive implements JobsService.FindPublishedDefaultByArchive
func (s *dbService) FindPublishedDefaultByArchive(ctx context.Context, pid int64) ([]*jobs.Job, error) {
	ctx, span := s.startSpan(ctx, "dbService.FindPublishedDefaultByArchive", trace.WithAttributes(otel.AttrArchiveID.Int64(pid)))
	defer span.End()

	options := &service.QueryOptions{Archives: []int64{pid}, Now: time.Now()}
	b := &queryBuilder{}
	b.applyQueryOptions(options)
	b.where("source = %s", string(jobs.SourceDefault))

	result, err := s.queryJobs(ctx, s.pool,
		"SELECT "+jobColumns+" FROM jobs"+b.clause()+orderClause(jobs.OrderDateDesc, false), b.args...)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(result)))
	return result, nil
}

// CountByPeriod implements JobsService.CountByPeriod
func (s *dbService) CountByPeriod(ctx context.Context, opts ...service.Option) ([]service.PeriodCount, error) {
	ctx, span := s.startSpan(ctx, "dbService.CountByPeriod")
	defer span.End()

	options, err := service.NewPeriodOptions(opts...)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	b := &queryBuilder{}
	tz := b.arg(locationName(options.Location))
	if !options.IncludeUnpublished {
		b.where("published AND (start IS NULL OR start <= %s) AND (stop IS NULL OR stop > %s)", options.Now, options.Now)
	}
	if len(options.Archives) > 0 {
		b.where("pid = ANY(%s)", options.Archives)
	}

	parts := []string{"YEAR"}
	switch options.GroupBy {
	case service.GroupByMonth:
		parts = append(parts, "MONTH")
	case service.GroupByDay:
		parts = append(parts, "MONTH", "DAY")
	}
	columns := make([]string, len(parts))
	positions := make([]string, len(parts))
	for i, part := range parts {
		columns[i] = fmt.Sprintf("EXTRACT(%s FROM date AT TIME ZONE %s)::int", part, tz)
		positions[i] = fmt.Sprint(i + 1)
	}
	grouping := strings.Join(positions, ", ")
	sql := "SELECT " + strings.Join(columns, ", ") + ", COUNT(*) FROM jobs" + b.clause() +
		" GROUP BY " + grouping + " ORDER BY " + grouping

	rows, err := s.pool.Query(ctx, sql, b.args...)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to count jobs by period: %w", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (service.PeriodCount, error) {
		var pc service.PeriodCount
		dest := []any{&pc.Year}
		if len(parts) > 1 {
			dest = append(dest, &pc.Month)
		}
		if len(parts) > 2 {
			dest = append(dest, &pc.Day)
		}
		err := row.Scan(append(dest, &pc.Count)...)
		return pc, err
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to count jobs by period: %w", err)
	}
	return result, nil
}

// locationName returns a time zone name PostgreSQL understands
func locationName(loc *time.Location) string {
	if loc == nil || loc == time.Local {
		return "UTC"
	}
	return loc.String()
}

// ListJobs implements JobsService.ListJobs
func (s *dbService) ListJobs(ctx context.Context, pid int64) ([]*jobs.Job, error) {
	ctx, span := s.startSpan(ctx, "dbService.ListJobs", trace.WithAttributes(otel.AttrArchiveID.Int64(pid)))
	defer span.End()

	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM jobs_archive WHERE id = $1)", pid).Scan(&exists); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to check archive: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %d", service.ErrArchiveNotFound, pid)
	}

	result, err := s.queryJobs(ctx, s.pool,
		"SELECT "+jobColumns+" FROM jobs WHERE pid = $1"+orderClause(jobs.OrderDateDesc, false), pid)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(result)))
	return result, nil
}

// CreateJob implements JobsService.CreateJob
func (s *dbService) CreateJob(ctx context.Context, job *jobs.Job) (*jobs.Job, error) {
	ctx, span := s.startSpan(ctx, "dbService.CreateJob", trace.WithAttributes(otel.AttrArchiveID.Int64(job.PID)))
	defer span.End()

	var created *jobs.Job
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = scanJob(tx.QueryRow(ctx, insertJobSQL, jobArgs(job)...))
		if err != nil {
			return mapJobWriteError(err, job)
		}
		created.Content, err = insertContent(ctx, tx, created.ID, job.Content)
		return err
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	logger.Debugw("Job created",
		"job_id", created.ID,
		"archive_id", created.PID,
		"request_id", middleware.GetReqID(ctx))
	return created, nil
}

// UpdateJob implements JobsService.UpdateJob. The content elements of the
// job are replaced by the ones passed in.
func (s *dbService) UpdateJob(ctx context.Context, job *jobs.Job) (*jobs.Job, error) {
	ctx, span := s.startSpan(ctx, "dbService.UpdateJob", trace.WithAttributes(otel.AttrJobID.Int64(job.ID)))
	defer span.End()

	var updated *jobs.Job
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = scanJob(tx.QueryRow(ctx, updateJobSQL, append(jobArgs(job), job.ID)...))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %d", service.ErrJobNotFound, job.ID)
		}
		if err != nil {
			return mapJobWriteError(err, job)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM jobs_content WHERE job_id = $1", job.ID); err != nil {
			return fmt.Errorf("failed to replace content: %w", err)
		}
		updated.Content, err = insertContent(ctx, tx, job.ID, job.Content)
		return err
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return updated, nil
}

// DeleteJob implements JobsService.DeleteJob
func (s *dbService) DeleteJob(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "dbService.DeleteJob", trace.WithAttributes(otel.AttrJobID.Int64(id)))
	defer span.End()

	tag, err := s.pool.Exec(ctx, "DELETE FROM jobs WHERE id = $1", id)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", service.ErrJobNotFound, id)
	}

	logger.Debugw("Job deleted",
		"job_id", id,
		"request_id", middleware.GetReqID(ctx))
	return nil
}

// ToggleJob implements JobsService.ToggleJob
func (s *dbService) ToggleJob(ctx context.Context, id int64) (*jobs.Job, error) {
	ctx, span := s.startSpan(ctx, "dbService.ToggleJob", trace.WithAttributes(otel.AttrJobID.Int64(id)))
	defer span.End()

	job, err := s.updateOne(ctx,
		"UPDATE jobs SET published = NOT published, tstamp = NOW() WHERE id = $1 RETURNING "+jobColumns, id)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return job, nil
}

// CopyJob implements JobsService.CopyJob
func (s *dbService) CopyJob(ctx context.Context, id, pid int64) (*jobs.Job, error) {
	ctx, span := s.startSpan(ctx, "dbService.CopyJob",
		trace.WithAttributes(otel.AttrJobID.Int64(id), otel.AttrArchiveID.Int64(pid)))
	defer span.End()

	var copied *jobs.Job
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		src, err := s.getJob(ctx, tx, id)
		if err != nil {
			return err
		}
		src.PID = pid
		src.Alias = ""
		src.Published = false

		copied, err = scanJob(tx.QueryRow(ctx, insertJobSQL, jobArgs(src)...))
		if err != nil {
			return mapJobWriteError(err, src)
		}
		copied.Content, err = insertContent(ctx, tx, copied.ID, src.Content)
		return err
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	logger.Debugw("Job copied",
		"job_id", id,
		"copy_id", copied.ID,
		"archive_id", pid,
		"request_id", middleware.GetReqID(ctx))
	return copied, nil
}

// MoveJob implements JobsService.MoveJob
func (s *dbService) MoveJob(ctx context.Context, id, pid int64) (*jobs.Job, error) {
	ctx, span := s.startSpan(ctx, "dbService.MoveJob",
		trace.WithAttributes(otel.AttrJobID.Int64(id), otel.AttrArchiveID.Int64(pid)))
	defer span.End()

	job, err := s.updateOne(ctx,
		"UPDATE jobs SET pid = $2, tstamp = NOW() WHERE id = $1 RETURNING "+jobColumns, id, pid)
	if err != nil {
		otel.RecordError(span, err)
		return nil, mapJobWriteError(err, &jobs.Job{PID: pid})
	}
	return job, nil
}

// AliasExists implements JobsService.AliasExists
func (s *dbService) AliasExists(ctx context.Context, alias string, exceptID int64) (bool, error) {
	ctx, span := s.startSpan(ctx, "dbService.AliasExists", trace.WithAttributes(otel.AttrJobAlias.String(alias)))
	defer span.End()

	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM jobs WHERE alias = $1 AND alias <> '' AND id <> $2)", alias, exceptID).Scan(&exists)
	if err != nil {
		otel.RecordError(span, err)
		return false, fmt.Errorf("failed to check alias: %w", err)
	}
	return exists, nil
}

// updateOne runs an UPDATE ... RETURNING statement for a single job
func (s *dbService) updateOne(ctx context.Context, sql string, args ...any) (*jobs.Job, error) {
	job, err := scanJob(s.pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", service.ErrJobNotFound, args[0])
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachContent(ctx, s.pool, []*jobs.Job{job}); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *dbService) getJob(ctx context.Context, q querier, id int64) (*jobs.Job, error) {
	job, err := scanJob(q.QueryRow(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", service.ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if err := s.attachContent(ctx, q, []*jobs.Job{job}); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *dbService) queryJobs(ctx context.Context, q querier, sql string, args ...any) ([]*jobs.Job, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*jobs.Job, error) {
		return scanJob(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	if err := s.attachContent(ctx, q, result); err != nil {
		return nil, err
	}
	return result, nil
}

// attachContent loads the content elements of all given jobs with one query
func (*dbService) attachContent(ctx context.Context, q querier, list []*jobs.Job) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[int64]*jobs.Job, len(list))
	ids := make([]int64, len(list))
	for i, j := range list {
		byID[j.ID] = j
		ids[i] = j.ID
	}

	rows, err := q.Query(ctx,
		`SELECT job_id, id, sorting, html, published FROM jobs_content
		 WHERE job_id = ANY($1) ORDER BY job_id, sorting, id`, ids)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			jobID int64
			c     jobs.ContentElement
		)
		if err := rows.Scan(&jobID, &c.ID, &c.Sorting, &c.HTML, &c.Published); err != nil {
			return fmt.Errorf("failed to load content: %w", err)
		}
		if j, ok := byID[jobID]; ok {
			j.Content = append(j.Content, c)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	return nil
}

func insertContent(ctx context.Context, tx pgx.Tx, jobID int64, content []jobs.ContentElement) ([]jobs.ContentElement, error) {
	if len(content) == 0 {
		return nil, nil
	}
	result := make([]jobs.ContentElement, len(content))
	for i, c := range content {
		c.ID = 0
		err := tx.QueryRow(ctx,
			"INSERT INTO jobs_content (job_id, sorting, html, published) VALUES ($1, $2, $3, $4) RETURNING id",
			jobID, c.Sorting, c.HTML, c.Published).Scan(&c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert content: %w", err)
		}
		result[i] = c
	}
	return result, nil
}
