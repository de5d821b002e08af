package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/telemetry"
)

// Scheduler rebuilds the sitemap file on a cron schedule
type Scheduler struct {
	indexer  *Indexer
	path     string
	root     int64
	schedule string
	metrics  *telemetry.SitemapMetrics
	loc      *time.Location

	mu      sync.Mutex
	cron    *cron.Cron
	running sync.Mutex
}

// SchedulerOption configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithMetrics records every rebuild
func WithMetrics(m *telemetry.SitemapMetrics) SchedulerOption {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithRootPage restricts the sitemap to a page tree
func WithRootPage(root int64) SchedulerOption {
	return func(s *Scheduler) {
		s.root = root
	}
}

// WithLocation sets the time zone of the schedule
func WithLocation(loc *time.Location) SchedulerOption {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewScheduler returns a Scheduler writing the sitemap of indexer to path
func NewScheduler(indexer *Indexer, path, schedule string, opts ...SchedulerOption) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sitemap schedule %q: %w", schedule, err)
	}
	s := &Scheduler{indexer: indexer, path: path, schedule: schedule, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Rebuild writes the sitemap once and returns the number of URLs
func (s *Scheduler) Rebuild(ctx context.Context) (int, error) {
	// overlapping cron runs wait for each other
	s.running.Lock()
	defer s.running.Unlock()

	start := time.Now()
	links, err := s.indexer.SearchablePages(ctx, s.root, true)
	if err == nil {
		err = WriteSitemap(ctx, s.path, links)
	}
	s.metrics.RecordRebuild(ctx, time.Since(start), len(links), err == nil)
	if err != nil {
		return 0, err
	}
	return len(links), nil
}

// Start runs the first rebuild and schedules the following ones. It
// returns once the schedule is running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("sitemap scheduler is already running")
	}

	s.cron = cron.New(cron.WithLocation(s.loc))
	if _, err := s.cron.AddFunc(s.schedule, func() { s.run(ctx) }); err != nil {
		s.cron = nil
		return fmt.Errorf("failed to schedule sitemap rebuild: %w", err)
	}
	s.cron.Start()
	logger.Infof("Sitemap rebuild scheduled (%s) to %s", s.schedule, s.path)

	go s.run(ctx)
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	n, err := s.Rebuild(ctx)
	if err != nil {
		logger.Errorw("Sitemap rebuild failed", "path", s.path, "error", err)
		return
	}
	logger.Infow("Sitemap rebuilt", "path", s.path, "urls", n)
}

// Stop stops scheduling and waits for a running rebuild to finish
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
