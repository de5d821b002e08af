package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/otel"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// maxPageDepth stops the ancestor walk on corrupt trees that contain a cycle
const maxPageDepth = 64

// GetPage implements JobsService.GetPage
func (s *dbService) GetPage(ctx context.Context, id int64) (*jobs.Page, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetPage", trace.WithAttributes(otel.AttrPageID.Int64(id)))
	defer span.End()

	p, err := scanPage(s.pool.QueryRow(ctx, "SELECT "+pageColumns+" FROM pages WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		span.SetAttributes(otel.AttrNotFound.Bool(true))
		return nil, fmt.Errorf("%w: %d", service.ErrPageNotFound, id)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return p, nil
}

// GetPageWithDetails implements JobsService.GetPageWithDetails
func (s *dbService) GetPageWithDetails(ctx context.Context, id int64) (*jobs.Page, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetPageWithDetails", trace.WithAttributes(otel.AttrPageID.Int64(id)))
	defer span.End()

	rows, err := s.pool.Query(ctx, `
		WITH RECURSIVE chain AS (
			SELECT `+pageColumns+`, 0 AS depth FROM pages WHERE id = $1
			UNION ALL
			SELECT p.id, p.pid, p.title, p.alias, p.domain, p.use_ssl, p.published, p.start, p.stop,
			       p.protected, p.groups, p.robots, c.depth + 1
			FROM pages p JOIN chain c ON p.id = c.pid
			WHERE c.pid <> 0 AND c.depth < $2
		)
		SELECT `+pageColumns+` FROM chain ORDER BY depth`, id, maxPageDepth)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get page chain: %w", err)
	}
	chain, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*jobs.Page, error) {
		return scanPage(row)
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get page chain: %w", err)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: %d", service.ErrPageNotFound, id)
	}
	return service.ResolvePageDetails(chain), nil
}

// ChildPageIDs implements JobsService.ChildPageIDs
func (s *dbService) ChildPageIDs(ctx context.Context, root int64) ([]int64, error) {
	ctx, span := s.startSpan(ctx, "dbService.ChildPageIDs", trace.WithAttributes(otel.AttrPageID.Int64(root)))
	defer span.End()

	rows, err := s.pool.Query(ctx, `
		WITH RECURSIVE tree AS (
			SELECT id FROM pages WHERE pid = $1 AND id <> $1
			UNION
			SELECT p.id FROM pages p JOIN tree t ON p.pid = t.id
		)
		SELECT id FROM tree WHERE id <> $1 ORDER BY id`, root)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list child pages: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list child pages: %w", err)
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(ids)))
	return ids, nil
}

// GetUser implements JobsService.GetUser
func (s *dbService) GetUser(ctx context.Context, id int64) (*jobs.User, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetUser")
	defer span.End()

	var u jobs.User
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, admin, jobs, jobp, modules, groups, inherit FROM users WHERE id = $1", id).
		Scan(&u.ID, &u.Name, &u.Admin, &u.Jobs, &u.Jobp, &u.Modules, &u.Groups, &u.Inherit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", service.ErrUserNotFound, id)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetUserGroups implements JobsService.GetUserGroups. Unknown IDs are skipped.
func (s *dbService) GetUserGroups(ctx context.Context, ids []int64) ([]*jobs.UserGroup, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetUserGroups")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		"SELECT id, name, jobs, jobp FROM user_groups WHERE id = ANY($1) ORDER BY array_position($1, id)",
		nonNil(ids))
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get user groups: %w", err)
	}
	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*jobs.UserGroup, error) {
		var g jobs.UserGroup
		err := row.Scan(&g.ID, &g.Name, &g.Jobs, &g.Jobp)
		return &g, err
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get user groups: %w", err)
	}
	return groups, nil
}

// SetUserArchives implements JobsService.SetUserArchives
func (s *dbService) SetUserArchives(ctx context.Context, userID int64, archives []int64) error {
	ctx, span := s.startSpan(ctx, "dbService.SetUserArchives")
	defer span.End()

	tag, err := s.pool.Exec(ctx, "UPDATE users SET jobs = $2 WHERE id = $1", userID, nonNil(archives))
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to update user archives: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", service.ErrUserNotFound, userID)
	}
	return nil
}

// SetGroupArchives implements JobsService.SetGroupArchives
func (s *dbService) SetGroupArchives(ctx context.Context, groupID int64, archives []int64) error {
	ctx, span := s.startSpan(ctx, "dbService.SetGroupArchives")
	defer span.End()

	tag, err := s.pool.Exec(ctx, "UPDATE user_groups SET jobs = $2 WHERE id = $1", groupID, nonNil(archives))
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to update group archives: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user group not found: %d", groupID)
	}
	return nil
}

// GetFile implements JobsService.GetFile
func (s *dbService) GetFile(ctx context.Context, id uuid.UUID) (*jobs.File, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetFile")
	defer span.End()

	var f jobs.File
	err := s.pool.QueryRow(ctx, "SELECT uuid, path FROM files WHERE uuid = $1", id).Scan(&f.UUID, &f.Path)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", service.ErrFileNotFound, id)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return &f, nil
}
