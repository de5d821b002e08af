// Package service provides the storage-facing business logic of the jobs server
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
)

var (
	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")
	// ErrArchiveNotFound is returned when an archive is not found
	ErrArchiveNotFound = errors.New("archive not found")
	// ErrPageNotFound is returned when a page is not found
	ErrPageNotFound = errors.New("page not found")
	// ErrUserNotFound is returned when a back-end user is not found
	ErrUserNotFound = errors.New("user not found")
	// ErrFileNotFound is returned when a file reference cannot be resolved
	ErrFileNotFound = errors.New("file not found")
	// ErrAliasConflict is returned when a write would duplicate a job alias
	ErrAliasConflict = errors.New("alias already exists")
	// ErrInvalidJob is returned when a job fails storage level validation
	ErrInvalidJob = errors.New("invalid job")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go JobsService

// JobsService defines the storage operations used by the front-end modules,
// the insert tags, the search indexer and the admin API
type JobsService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// GetArchive returns a single archive
	GetArchive(ctx context.Context, id int64) (*jobs.Archive, error)

	// ListArchives returns archives ordered by title; WithArchives restricts the IDs
	ListArchives(ctx context.Context, opts ...Option) ([]*jobs.Archive, error)

	// CreateArchive stores a new archive and returns it with its ID
	CreateArchive(ctx context.Context, archive *jobs.Archive) (*jobs.Archive, error)

	// UpdateArchive replaces an existing archive
	UpdateArchive(ctx context.Context, archive *jobs.Archive) (*jobs.Archive, error)

	// DeleteArchive removes an archive together with its jobs
	DeleteArchive(ctx context.Context, id int64) error

	// GetJob returns a single job regardless of its published state
	GetJob(ctx context.Context, id int64) (*jobs.Job, error)

	// FindJobByIDOrAlias resolves a numeric ID or an alias regardless of published state
	FindJobByIDOrAlias(ctx context.Context, idOrAlias string) (*jobs.Job, error)

	// FindPublishedJob resolves a numeric ID or alias of a published job within
	// the archives given by WithArchives
	FindPublishedJob(ctx context.Context, idOrAlias string, opts ...Option) (*jobs.Job, error)

	// CountPublished counts published jobs matching the query options
	CountPublished(ctx context.Context, opts ...Option) (int, error)

	// FindPublished returns published jobs matching the query options
	FindPublished(ctx context.Context, opts ...Option) ([]*jobs.Job, error)

	// FindPublishedDefaultByArchive returns the published default-source jobs of an archive
	FindPublishedDefaultByArchive(ctx context.Context, pid int64) ([]*jobs.Job, error)

	// CountByPeriod groups jobs of the given archives by year, month or day
	CountByPeriod(ctx context.Context, opts ...Option) ([]PeriodCount, error)

	// ListJobs returns every job of an archive, newest first
	ListJobs(ctx context.Context, pid int64) ([]*jobs.Job, error)

	// CreateJob stores a new job and returns it with its ID
	CreateJob(ctx context.Context, job *jobs.Job) (*jobs.Job, error)

	// UpdateJob replaces an existing job
	UpdateJob(ctx context.Context, job *jobs.Job) (*jobs.Job, error)

	// DeleteJob removes a job
	DeleteJob(ctx context.Context, id int64) error

	// ToggleJob flips the published flag of a job
	ToggleJob(ctx context.Context, id int64) (*jobs.Job, error)

	// CopyJob duplicates a job into the archive pid. The copy is unpublished and has no alias.
	CopyJob(ctx context.Context, id, pid int64) (*jobs.Job, error)

	// MoveJob moves a job into the archive pid
	MoveJob(ctx context.Context, id, pid int64) (*jobs.Job, error)

	// AliasExists reports whether another job than exceptID uses alias
	AliasExists(ctx context.Context, alias string, exceptID int64) (bool, error)

	// GetPage returns a single page
	GetPage(ctx context.Context, id int64) (*jobs.Page, error)

	// GetPageWithDetails returns a page with its root ID, root title and
	// the protection inherited from its ancestors
	GetPageWithDetails(ctx context.Context, id int64) (*jobs.Page, error)

	// ChildPageIDs returns the IDs of all pages below root, recursively
	ChildPageIDs(ctx context.Context, root int64) ([]int64, error)

	// GetUser returns a back-end user
	GetUser(ctx context.Context, id int64) (*jobs.User, error)

	// GetUserGroups returns the given back-end user groups
	GetUserGroups(ctx context.Context, ids []int64) ([]*jobs.UserGroup, error)

	// SetUserArchives replaces the archive mounts of a user
	SetUserArchives(ctx context.Context, userID int64, archives []int64) error

	// SetGroupArchives replaces the archive mounts of a user group
	SetGroupArchives(ctx context.Context, groupID int64, archives []int64) error

	// GetFile resolves a file reference
	GetFile(ctx context.Context, id uuid.UUID) (*jobs.File, error)
}

// PeriodCount is the number of jobs in one year, month or day.
// Month and Day are zero when not part of the grouping.
type PeriodCount struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
	Day   int `json:"day,omitempty"`
	Count int `json:"count"`
}
