// Package inmemory provides an in-memory implementation of the JobsService interface
package inmemory

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// store implements the JobsService interface over mutex-guarded maps
type store struct {
	mu       sync.RWMutex
	provider DataProvider
	now      func() time.Time

	pages      map[int64]*jobs.Page
	users      map[int64]*jobs.User
	userGroups map[int64]*jobs.UserGroup
	files      map[uuid.UUID]*jobs.File
	archives   map[int64]*jobs.Archive
	jobs       map[int64]*jobs.Job

	nextArchiveID int64
	nextJobID     int64
	loaded        bool
}

var _ service.JobsService = (*store)(nil)

// Option is a functional option for configuring the in-memory store
type Option func(*store)

// WithClock overrides the clock used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *store) {
		s.now = now
	}
}

// New creates a new in-memory store seeded by provider
func New(ctx context.Context, provider DataProvider, opts ...Option) (service.JobsService, error) {
	if provider == nil {
		return nil, fmt.Errorf("data provider is required")
	}

	s := &store{
		provider: provider,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *store) load(ctx context.Context) error {
	seed, err := s.provider.GetSeed(ctx)
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages = make(map[int64]*jobs.Page, len(seed.Pages))
	for _, p := range seed.Pages {
		s.pages[p.ID] = clonePage(p)
	}
	s.users = make(map[int64]*jobs.User, len(seed.Users))
	for _, u := range seed.Users {
		s.users[u.ID] = cloneUser(u)
	}
	s.userGroups = make(map[int64]*jobs.UserGroup, len(seed.UserGroups))
	for _, g := range seed.UserGroups {
		c := *g
		c.Jobs = slices.Clone(g.Jobs)
		c.Jobp = slices.Clone(g.Jobp)
		s.userGroups[g.ID] = &c
	}
	s.files = make(map[uuid.UUID]*jobs.File, len(seed.Files))
	for _, f := range seed.Files {
		c := *f
		s.files[f.UUID] = &c
	}
	s.archives = make(map[int64]*jobs.Archive, len(seed.Archives))
	for _, a := range seed.Archives {
		s.archives[a.ID] = cloneArchive(a)
		s.nextArchiveID = max(s.nextArchiveID, a.ID)
	}
	s.jobs = make(map[int64]*jobs.Job, len(seed.Jobs))
	for _, j := range seed.Jobs {
		s.jobs[j.ID] = cloneJob(j)
		s.nextJobID = max(s.nextJobID, j.ID)
	}
	s.loaded = true

	logger.Infow("Loaded seed data",
		"source", s.provider.GetSource(),
		"archives", len(s.archives),
		"jobs", len(s.jobs),
		"pages", len(s.pages))
	return nil
}

// CheckReadiness implements JobsService.CheckReadiness
func (s *store) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return fmt.Errorf("seed data not loaded")
	}
	return nil
}

// GetArchive implements JobsService.GetArchive
func (s *store) GetArchive(_ context.Context, id int64) (*jobs.Archive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.archives[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrArchiveNotFound, id)
	}
	return cloneArchive(a), nil
}

// ListArchives implements JobsService.ListArchives
func (s *store) ListArchives(_ context.Context, opts ...service.Option) ([]*jobs.Archive, error) {
	options, err := service.NewListArchivesOptions(opts...)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*jobs.Archive, 0, len(s.archives))
	for _, a := range s.archives {
		if options.IDs != nil && !slices.Contains(options.IDs, a.ID) {
			continue
		}
		result = append(result, cloneArchive(a))
	}
	slices.SortFunc(result, func(a, b *jobs.Archive) int {
		return cmp.Or(strings.Compare(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
	})
	return result, nil
}

// CreateArchive implements JobsService.CreateArchive
func (s *store) CreateArchive(_ context.Context, archive *jobs.Archive) (*jobs.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextArchiveID++
	a := cloneArchive(archive)
	a.ID = s.nextArchiveID
	a.Tstamp = s.now()
	s.archives[a.ID] = a
	return cloneArchive(a), nil
}

// UpdateArchive implements JobsService.UpdateArchive
func (s *store) UpdateArchive(_ context.Context, archive *jobs.Archive) (*jobs.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.archives[archive.ID]; !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrArchiveNotFound, archive.ID)
	}
	a := cloneArchive(archive)
	a.Tstamp = s.now()
	s.archives[a.ID] = a
	return cloneArchive(a), nil
}

// DeleteArchive implements JobsService.DeleteArchive
func (s *store) DeleteArchive(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.archives[id]; !ok {
		return fmt.Errorf("%w: %d", service.ErrArchiveNotFound, id)
	}
	delete(s.archives, id)
	for jobID, j := range s.jobs {
		if j.PID == id {
			delete(s.jobs, jobID)
		}
	}
	return nil
}

// GetJob implements JobsService.GetJob
func (s *store) GetJob(_ context.Context, id int64) (*jobs.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrJobNotFound, id)
	}
	return cloneJob(j), nil
}

// FindJobByIDOrAlias implements JobsService.FindJobByIDOrAlias
func (s *store) FindJobByIDOrAlias(_ context.Context, idOrAlias string) (*jobs.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.jobs {
		if matchesIDOrAlias(j, idOrAlias) {
			return cloneJob(j), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", service.ErrJobNotFound, idOrAlias)
}

// FindPublishedJob implements JobsService.FindPublishedJob
func (s *store) FindPublishedJob(_ context.Context, idOrAlias string, opts ...service.Option) (*jobs.Job, error) {
	options, err := service.NewQueryOptions(opts...)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.jobs {
		if matchesIDOrAlias(j, idOrAlias) && options.Visible(j) {
			return cloneJob(j), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", service.ErrJobNotFound, idOrAlias)
}

// CountPublished implements JobsService.CountPublished
func (s *store) CountPublished(_ context.Context, opts ...service.Option) (int, error) {
	options, err := service.NewQueryOptions(opts...)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, j := range s.jobs {
		if options.Visible(j) {
			count++
		}
	}
	return count, nil
}

// FindPublished implements JobsService.FindPublished
func (s *store) FindPublished(_ context.Context, opts ...service.Option) ([]*jobs.Job, error) {
	options, err := service.NewQueryOptions(opts...)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	result := make([]*jobs.Job, 0)
	for _, j := range s.jobs {
		if options.Visible(j) {
			result = append(result, cloneJob(j))
		}
	}
	s.mu.RUnlock()

	sortJobs(result, options.Order, options.FeaturedFirst)

	if options.Offset > 0 {
		if options.Offset >= len(result) {
			return []*jobs.Job{}, nil
		}
		result = result[options.Offset:]
	}
	if options.Limit > 0 && len(result) > options.Limit {
		result = result[:options.Limit]
	}
	return result, nil
}

// FindPublishedDefaultByArchive implements JobsService.FindPublishedDefaultByArchive
func (s *store) FindPublishedDefaultByArchive(_ context.Context, pid int64) ([]*jobs.Job, error) {
	now := s.now()

	s.mu.RLock()
	result := make([]*jobs.Job, 0)
	for _, j := range s.jobs {
		if j.PID == pid && j.Source == jobs.SourceDefault && j.IsPublishedAt(now) {
			result = append(result, cloneJob(j))
		}
	}
	s.mu.RUnlock()

	sortJobs(result, jobs.OrderDateDesc, false)
	return result, nil
}

// CountByPeriod implements JobsService.CountByPeriod
func (s *store) CountByPeriod(_ context.Context, opts ...service.Option) ([]service.PeriodCount, error) {
	options, err := service.NewPeriodOptions(opts...)
	if err != nil {
		return nil, err
	}

	type key struct{ year, month, day int }
	buckets := make(map[key]int)

	s.mu.RLock()
	for _, j := range s.jobs {
		if len(options.Archives) > 0 && !slices.Contains(options.Archives, j.PID) {
			continue
		}
		if !options.IncludeUnpublished && !j.IsPublishedAt(options.Now) {
			continue
		}
		d := j.Date.In(options.Location)
		k := key{year: d.Year()}
		if options.GroupBy != service.GroupByYear {
			k.month = int(d.Month())
		}
		if options.GroupBy == service.GroupByDay {
			k.day = d.Day()
		}
		buckets[k]++
	}
	s.mu.RUnlock()

	result := make([]service.PeriodCount, 0, len(buckets))
	for k, n := range buckets {
		result = append(result, service.PeriodCount{Year: k.year, Month: k.month, Day: k.day, Count: n})
	}
	slices.SortFunc(result, func(a, b service.PeriodCount) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Month, b.Month), cmp.Compare(a.Day, b.Day))
	})
	return result, nil
}

// ListJobs implements JobsService.ListJobs
func (s *store) ListJobs(_ context.Context, pid int64) ([]*jobs.Job, error) {
	s.mu.RLock()
	if _, ok := s.archives[pid]; !ok {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: %d", service.ErrArchiveNotFound, pid)
	}
	result := make([]*jobs.Job, 0)
	for _, j := range s.jobs {
		if j.PID == pid {
			result = append(result, cloneJob(j))
		}
	}
	s.mu.RUnlock()

	sortJobs(result, jobs.OrderDateDesc, false)
	return result, nil
}

// CreateJob implements JobsService.CreateJob
func (s *store) CreateJob(_ context.Context, job *jobs.Job) (*jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkJobLocked(job, 0); err != nil {
		return nil, err
	}

	s.nextJobID++
	j := cloneJob(job)
	j.ID = s.nextJobID
	j.Tstamp = s.now()
	s.jobs[j.ID] = j
	return cloneJob(j), nil
}

// UpdateJob implements JobsService.UpdateJob
func (s *store) UpdateJob(_ context.Context, job *jobs.Job) (*jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrJobNotFound, job.ID)
	}
	if err := s.checkJobLocked(job, job.ID); err != nil {
		return nil, err
	}

	j := cloneJob(job)
	j.Tstamp = s.now()
	s.jobs[j.ID] = j
	return cloneJob(j), nil
}

// DeleteJob implements JobsService.DeleteJob
func (s *store) DeleteJob(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return fmt.Errorf("%w: %d", service.ErrJobNotFound, id)
	}
	delete(s.jobs, id)
	return nil
}

// ToggleJob implements JobsService.ToggleJob
func (s *store) ToggleJob(_ context.Context, id int64) (*jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrJobNotFound, id)
	}
	j.Published = !j.Published
	j.Tstamp = s.now()
	return cloneJob(j), nil
}

// CopyJob implements JobsService.CopyJob
func (s *store) CopyJob(_ context.Context, id, pid int64) (*jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrJobNotFound, id)
	}
	if _, ok := s.archives[pid]; !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrArchiveNotFound, pid)
	}

	s.nextJobID++
	j := cloneJob(src)
	j.ID = s.nextJobID
	j.PID = pid
	j.Alias = ""
	j.Published = false
	j.Tstamp = s.now()
	for i := range j.Content {
		j.Content[i].ID = 0
	}
	s.jobs[j.ID] = j
	return cloneJob(j), nil
}

// MoveJob implements JobsService.MoveJob
func (s *store) MoveJob(_ context.Context, id, pid int64) (*jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrJobNotFound, id)
	}
	if _, ok := s.archives[pid]; !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrArchiveNotFound, pid)
	}
	j.PID = pid
	j.Tstamp = s.now()
	return cloneJob(j), nil
}

// AliasExists implements JobsService.AliasExists
func (s *store) AliasExists(_ context.Context, alias string, exceptID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aliasExistsLocked(alias, exceptID), nil
}

// GetPage implements JobsService.GetPage
func (s *store) GetPage(_ context.Context, id int64) (*jobs.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrPageNotFound, id)
	}
	return clonePage(p), nil
}

// GetPageWithDetails implements JobsService.GetPageWithDetails
func (s *store) GetPageWithDetails(_ context.Context, id int64) (*jobs.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrPageNotFound, id)
	}

	chain := []*jobs.Page{p}
	seen := map[int64]bool{p.ID: true}
	for current := p; current.PID != 0; {
		parent, ok := s.pages[current.PID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		chain = append(chain, parent)
		current = parent
	}
	return service.ResolvePageDetails(chain), nil
}

// ChildPageIDs implements JobsService.ChildPageIDs
func (s *store) ChildPageIDs(_ context.Context, root int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	children := make(map[int64][]int64)
	for _, p := range s.pages {
		children[p.PID] = append(children[p.PID], p.ID)
	}

	result := make([]int64, 0)
	queue := []int64{root}
	seen := map[int64]bool{root: true}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			if seen[child] {
				continue
			}
			seen[child] = true
			result = append(result, child)
			queue = append(queue, child)
		}
	}
	slices.Sort(result)
	return result, nil
}

// GetUser implements JobsService.GetUser
func (s *store) GetUser(_ context.Context, id int64) (*jobs.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrUserNotFound, id)
	}
	return cloneUser(u), nil
}

// GetUserGroups implements JobsService.GetUserGroups
func (s *store) GetUserGroups(_ context.Context, ids []int64) ([]*jobs.UserGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*jobs.UserGroup, 0, len(ids))
	for _, id := range ids {
		if g, ok := s.userGroups[id]; ok {
			c := *g
			c.Jobs = slices.Clone(g.Jobs)
			c.Jobp = slices.Clone(g.Jobp)
			result = append(result, &c)
		}
	}
	return result, nil
}

// SetUserArchives implements JobsService.SetUserArchives
func (s *store) SetUserArchives(_ context.Context, userID int64, archives []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: %d", service.ErrUserNotFound, userID)
	}
	u.Jobs = slices.Clone(archives)
	return nil
}

// SetGroupArchives implements JobsService.SetGroupArchives
func (s *store) SetGroupArchives(_ context.Context, groupID int64, archives []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.userGroups[groupID]
	if !ok {
		return fmt.Errorf("user group not found: %d", groupID)
	}
	g.Jobs = slices.Clone(archives)
	return nil
}

// GetFile implements JobsService.GetFile
func (s *store) GetFile(_ context.Context, id uuid.UUID) (*jobs.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrFileNotFound, id)
	}
	c := *f
	return &c, nil
}

// checkJobLocked enforces the parent archive and alias uniqueness.
// Caller must hold s.mu.
func (s *store) checkJobLocked(job *jobs.Job, exceptID int64) error {
	if _, ok := s.archives[job.PID]; !ok {
		return fmt.Errorf("%w: %d", service.ErrArchiveNotFound, job.PID)
	}
	if job.Alias != "" && s.aliasExistsLocked(job.Alias, exceptID) {
		return fmt.Errorf("%w: %s", service.ErrAliasConflict, job.Alias)
	}
	return nil
}

func (s *store) aliasExistsLocked(alias string, exceptID int64) bool {
	for _, j := range s.jobs {
		if j.ID != exceptID && j.Alias == alias {
			return true
		}
	}
	return false
}

func matchesIDOrAlias(j *jobs.Job, idOrAlias string) bool {
	if id, err := strconv.ParseInt(idOrAlias, 10, 64); err == nil && j.ID == id {
		return true
	}
	return j.Alias != "" && j.Alias == idOrAlias
}

// sortJobs orders jobs like the SQL implementation; ties break on ID
func sortJobs(list []*jobs.Job, order jobs.Order, featuredFirst bool) {
	if order == jobs.OrderRandom {
		rand.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
	}

	slices.SortStableFunc(list, func(a, b *jobs.Job) int {
		if featuredFirst && a.Featured != b.Featured {
			if a.Featured {
				return -1
			}
			return 1
		}
		switch order {
		case jobs.OrderDateAsc:
			return cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.ID, b.ID))
		case jobs.OrderHeadlineAsc:
			return cmp.Or(strings.Compare(a.Headline, b.Headline), cmp.Compare(a.ID, b.ID))
		case jobs.OrderHeadlineDesc:
			return cmp.Or(strings.Compare(b.Headline, a.Headline), cmp.Compare(b.ID, a.ID))
		case jobs.OrderRandom:
			return 0
		default:
			return cmp.Or(b.Date.Compare(a.Date), cmp.Compare(b.ID, a.ID))
		}
	})
}

func cloneArchive(a *jobs.Archive) *jobs.Archive {
	c := *a
	c.Groups = slices.Clone(a.Groups)
	return &c
}

func cloneJob(j *jobs.Job) *jobs.Job {
	c := *j
	c.Content = slices.Clone(j.Content)
	return &c
}

func clonePage(p *jobs.Page) *jobs.Page {
	c := *p
	c.Groups = slices.Clone(p.Groups)
	return &c
}

func cloneUser(u *jobs.User) *jobs.User {
	c := *u
	c.Jobs = slices.Clone(u.Jobs)
	c.Jobp = slices.Clone(u.Jobp)
	c.Modules = slices.Clone(u.Modules)
	c.Groups = slices.Clone(u.Groups)
	return &c
}
