// Package search collects the job URLs for the search index and the sitemap.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/otel"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/urls"
)

// robotsNoIndex excludes a page or job from the sitemap
const robotsNoIndex = "noindex,nofollow"

// CacheTag returns the cache tag of the sitemap of a page tree
func CacheTag(rootID int64) string {
	return "contao.sitemap." + strconv.FormatInt(rootID, 10)
}

// Indexer lists the URLs of published jobs
type Indexer struct {
	store    service.JobsService
	settings urls.Settings
	tracer   trace.Tracer
	now      func() time.Time
}

// IndexerOption configures an Indexer
type IndexerOption func(*Indexer)

// WithTracer traces SearchablePages calls
func WithTracer(tracer trace.Tracer) IndexerOption {
	return func(i *Indexer) {
		i.tracer = tracer
	}
}

// WithClock replaces time.Now for the published checks
func WithClock(now func() time.Time) IndexerOption {
	return func(i *Indexer) {
		i.now = now
	}
}

// NewIndexer returns an Indexer
func NewIndexer(store service.JobsService, settings urls.Settings, opts ...IndexerOption) *Indexer {
	i := &Indexer{store: store, settings: settings, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SearchablePages returns the absolute URLs of the published default-source
// jobs in unprotected archives. A root > 0 restricts the result to archives
// whose target page lies below root. Sitemap mode also drops protected and
// noindex pages and jobs.
func (i *Indexer) SearchablePages(ctx context.Context, root int64, isSitemap bool) ([]string, error) {
	ctx, span := otel.StartSpan(ctx, i.tracer, "search.SearchablePages",
		trace.WithAttributes(otel.AttrPageID.Int64(root)))
	defer span.End()

	result, err := i.searchablePages(ctx, root, isSitemap)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(result)))
	return result, nil
}

func (i *Indexer) searchablePages(ctx context.Context, root int64, isSitemap bool) ([]string, error) {
	var subtree []int64
	if root > 0 {
		ids, err := i.store.ChildPageIDs(ctx, root)
		if err != nil {
			return nil, fmt.Errorf("failed to list pages below %d: %w", root, err)
		}
		subtree = ids
	}

	archives, err := i.store.ListArchives(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}

	gen := urls.NewGenerator(i.store, i.settings, nil)
	now := i.now()
	// URL template per target page, "" when the page is skipped
	processed := make(map[int64]string)
	result := make([]string, 0)

	for _, archive := range archives {
		if archive.Protected || archive.JumpTo == 0 {
			continue
		}
		if len(subtree) > 0 && !slices.Contains(subtree, archive.JumpTo) {
			continue
		}

		tmpl, ok := processed[archive.JumpTo]
		if !ok {
			tmpl, err = i.urlTemplate(ctx, gen, archive.JumpTo, isSitemap, now)
			if err != nil {
				return nil, err
			}
			processed[archive.JumpTo] = tmpl
		}
		if tmpl == "" {
			continue
		}

		items, err := i.store.FindPublishedDefaultByArchive(ctx, archive.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list jobs of archive %d: %w", archive.ID, err)
		}
		for _, job := range items {
			if isSitemap && job.Robots == robotsNoIndex {
				continue
			}
			link, err := gen.Link(ctx, job, tmpl)
			if err != nil {
				return nil, fmt.Errorf("failed to link job %d: %w", job.ID, err)
			}
			result = append(result, link)
		}
	}
	return result, nil
}

// urlTemplate returns the absolute reader URL of a target page, or "" when
// the page must not be indexed
func (i *Indexer) urlTemplate(
	ctx context.Context, gen *urls.Generator, pageID int64, isSitemap bool, now time.Time,
) (string, error) {
	page, err := i.store.GetPageWithDetails(ctx, pageID)
	if errors.Is(err, service.ErrPageNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get page %d: %w", pageID, err)
	}
	if !page.IsPublishedAt(now) {
		return "", nil
	}
	if isSitemap && skipInSitemap(page) {
		return "", nil
	}
	return gen.PageURL(page, gen.ItemParams("%s"), true), nil
}

func skipInSitemap(page *jobs.Page) bool {
	if page.Protected {
		logger.Debugf("Skipping protected page %d in sitemap", page.ID)
		return true
	}
	return page.Robots == robotsNoIndex
}
