// Package admin provides the back-end API for editing job archives and jobs.
// Every route expects a back-end user in the request context.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maniaxatwork/jobs-server/internal/alias"
	"github.com/maniaxatwork/jobs-server/internal/api/common"
	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/frontend"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/picker"
	"github.com/maniaxatwork/jobs-server/internal/preview"
	"github.com/maniaxatwork/jobs-server/internal/search"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/urls"
)

// CacheTagsHeader lists the cache tags a write invalidates
const CacheTagsHeader = "X-Cache-Tags"

// SiteFunc returns the current site settings
type SiteFunc func() config.SiteConfig

// Routes holds the back-end handlers
type Routes struct {
	store   service.JobsService
	checker *authz.Checker
	picker  *picker.Provider
	site    SiteFunc
	now     func() time.Time
}

// Option configures the back-end routes
type Option func(*Routes)

// WithSite sets the source of the site settings used for URLs and dates
func WithSite(site SiteFunc) Option {
	return func(r *Routes) {
		r.site = site
	}
}

// WithClock replaces time.Now as default job date
func WithClock(now func() time.Time) Option {
	return func(r *Routes) {
		r.now = now
	}
}

// NewRoutes creates the back-end handlers
func NewRoutes(store service.JobsService, checker *authz.Checker, opts ...Option) *Routes {
	r := &Routes{
		store:   store,
		checker: checker,
		picker:  picker.NewProvider(store),
		site:    func() config.SiteConfig { return config.SiteConfig{} },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Router creates the router for the back-end endpoints
func Router(store service.JobsService, checker *authz.Checker, opts ...Option) http.Handler {
	routes := NewRoutes(store, checker, opts...)

	r := chi.NewRouter()
	r.Route("/archives", func(r chi.Router) {
		r.Get("/", routes.listArchives)
		r.Post("/", routes.createArchive)
		r.Get("/{id}", routes.getArchive)
		r.Put("/{id}", routes.updateArchive)
		r.Delete("/{id}", routes.deleteArchive)
		r.Get("/{id}/jobs", routes.listJobs)
		r.Post("/{id}/jobs", routes.createJob)
	})
	r.Route("/jobs/{id}", func(r chi.Router) {
		r.Get("/", routes.getJob)
		r.Put("/", routes.updateJob)
		r.Delete("/", routes.deleteJob)
		r.Post("/toggle", routes.toggleJob)
		r.Post("/copy", routes.copyJob)
		r.Post("/cut", routes.cutJob)
		r.Get("/serp", routes.serpPreview)
	})
	r.Get("/picker", routes.pickerData)
	r.Get("/preview", routes.previewQuery)
	r.Get("/preview/convert", routes.previewURL)
	return r
}

func (rt *Routes) urlSettings() urls.Settings {
	site := rt.site()
	return urls.Settings{BaseURL: site.BaseURL, UseAutoItem: site.UseAutoItem, Suffix: site.URLSuffix}
}

func (rt *Routes) location() *time.Location {
	site := rt.site()
	return site.GetLocation()
}

func (rt *Routes) previewer() *preview.Previewer {
	return preview.New(rt.store, rt.urlSettings())
}

// currentUser returns the back-end user or writes a 403
func currentUser(w http.ResponseWriter, r *http.Request) (*jobs.User, bool) {
	user, ok := authz.UserFromContext(r.Context())
	if !ok {
		common.WriteErrorResponse(w, "authentication required", http.StatusForbidden)
		return nil, false
	}
	return user, true
}

func (rt *Routes) aliasExists(ctx context.Context, exceptID int64) alias.ExistsFunc {
	return func(a string) (bool, error) {
		return rt.store.AliasExists(ctx, a, exceptID)
	}
}

// writeError maps service, permission and validation errors to responses
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		common.WriteErrorResponse(w, validation.Error(), http.StatusBadRequest)
	case errors.Is(err, alias.ErrAliasNumeric):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, alias.ErrAliasExists):
		common.WriteErrorResponse(w, err.Error(), http.StatusConflict)
	default:
		common.WriteServiceError(w, r, err)
	}
}

// sitemapTag returns the sitemap cache tag of the page tree the archive
// links into, or "" when the archive has no target page.
func (rt *Routes) sitemapTag(ctx context.Context, archive *jobs.Archive) string {
	if archive == nil || archive.JumpTo == 0 {
		return ""
	}
	page, err := rt.store.GetPageWithDetails(ctx, archive.JumpTo)
	if err != nil {
		if !errors.Is(err, service.ErrPageNotFound) {
			logger.Warnw("Failed to resolve sitemap root", "archive", archive.ID, "error", err)
		}
		return ""
	}
	return search.CacheTag(page.RootID)
}

func (rt *Routes) setArchiveTags(ctx context.Context, w http.ResponseWriter, archive *jobs.Archive) {
	tags := []string{frontend.ArchiveTag(archive.ID)}
	if tag := rt.sitemapTag(ctx, archive); tag != "" {
		tags = append(tags, tag)
	}
	w.Header().Set(CacheTagsHeader, strings.Join(tags, ","))
}

func (rt *Routes) setJobTags(ctx context.Context, w http.ResponseWriter, job *jobs.Job) {
	tags := []string{frontend.JobTag(job.ID), frontend.ArchiveTag(job.PID)}
	archive, err := rt.store.GetArchive(ctx, job.PID)
	if err == nil {
		if tag := rt.sitemapTag(ctx, archive); tag != "" {
			tags = append(tags, tag)
		}
	}
	w.Header().Set(CacheTagsHeader, strings.Join(tags, ","))
}
