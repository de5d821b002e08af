// Package urls generates front-end URLs of jobs and pages.
package urls

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// indexAlias is the alias of a site's start page, which is served at "/"
const indexAlias = "index"

// PageResolver looks up the pages and archives a URL depends on
type PageResolver interface {
	GetArchive(ctx context.Context, id int64) (*jobs.Archive, error)
	GetPageWithDetails(ctx context.Context, id int64) (*jobs.Page, error)
}

// Settings are the site wide URL settings
type Settings struct {
	// BaseURL is used for absolute URLs of pages without their own domain
	BaseURL string
	// UseAutoItem drops the "/items" fragment from reader URLs
	UseAutoItem bool
	// Suffix is appended to every page URL, e.g. ".html"
	Suffix string
}

// Generator builds URLs for one request. Generated job URLs are cached by
// job ID, so a Generator must not outlive the request it was created for.
type Generator struct {
	pages    PageResolver
	settings Settings
	request  *url.URL

	mu    sync.Mutex
	cache map[string]string
}

// NewGenerator returns a Generator for the request URL current, which may be nil
func NewGenerator(pages PageResolver, settings Settings, current *url.URL) *Generator {
	if current == nil {
		current = &url.URL{Path: "/"}
	}
	return &Generator{
		pages:    pages,
		settings: settings,
		request:  current,
		cache:    make(map[string]string),
	}
}

// Settings returns the site settings of the generator
func (g *Generator) Settings() Settings {
	return g.settings
}

// JobURL returns the URL of a job's detail view.
// Internal jobs link to their target page and external jobs to their URL.
// Everything else is shown by the reader on the archive's jumpTo page, or on
// the current page when the archive has none. addArchive keeps the month
// selected in an archive module.
//
// The URL is not HTML encoded: redirects and JSON use it as it is, and
// html/template escapes its ampersands when rendering. Callers writing raw
// HTML must pass it through Ampersand.
func (g *Generator) JobURL(ctx context.Context, job *jobs.Job, addArchive, absolute bool) (string, error) {
	key := "id_" + strconv.FormatInt(job.ID, 10)
	if absolute {
		key += "_absolute"
	}

	g.mu.Lock()
	cached, ok := g.cache[key]
	g.mu.Unlock()
	if ok {
		return cached, nil
	}

	u, err := g.jobURL(ctx, job, addArchive, absolute)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	g.cache[key] = u
	g.mu.Unlock()
	return u, nil
}

func (g *Generator) jobURL(ctx context.Context, job *jobs.Job, addArchive, absolute bool) (string, error) {
	switch job.Source {
	case jobs.SourceInternal:
		target, err := g.lookupPage(ctx, job.JumpTo)
		if err != nil {
			return "", err
		}
		if target != nil {
			return g.PageURL(target, "", absolute), nil
		}
	case jobs.SourceExternal:
		if job.URL != "" {
			return job.URL, nil
		}
	}

	archive, err := g.pages.GetArchive(ctx, job.PID)
	if err != nil {
		return "", fmt.Errorf("failed to get archive of job %d: %w", job.ID, err)
	}

	var u string
	page, err := g.lookupPage(ctx, archive.JumpTo)
	if err != nil {
		return "", err
	}
	if page == nil {
		u = g.request.RequestURI()
	} else {
		u = g.PageURL(page, g.ItemParams(job.IDOrAlias()), absolute)
	}

	if addArchive {
		if month := g.request.Query().Get("month"); month != "" {
			u += "?month=" + url.QueryEscape(month)
		}
	}
	return u, nil
}

// lookupPage returns nil for a zero ID or a page that does not exist
func (g *Generator) lookupPage(ctx context.Context, id int64) (*jobs.Page, error) {
	if id == 0 {
		return nil, nil
	}
	page, err := g.pages.GetPageWithDetails(ctx, id)
	if errors.Is(err, service.ErrPageNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page %d: %w", id, err)
	}
	return page, nil
}

// ItemParams returns the reader parameters for an item, "/<item>" with
// auto items and "/items/<item>" otherwise
func (g *Generator) ItemParams(item string) string {
	if g.settings.UseAutoItem {
		return "/" + item
	}
	return "/items/" + item
}

// PageURL returns the URL of page with params appended to its path.
// Absolute URLs use the page's domain, falling back to the site base URL.
func (g *Generator) PageURL(page *jobs.Page, params string, absolute bool) string {
	path := "/"
	if page.Alias != indexAlias || params != "" {
		path += page.Alias + params + g.settings.Suffix
	}
	if !absolute {
		return path
	}
	return g.origin(page) + path
}

func (g *Generator) origin(page *jobs.Page) string {
	if page.Domain != "" {
		scheme := "http"
		if page.UseSSL {
			scheme = "https"
		}
		return scheme + "://" + page.Domain
	}
	return strings.TrimSuffix(g.settings.BaseURL, "/")
}

// Origin returns scheme and host of the site, e.g. "https://example.org"
func (g *Generator) Origin() string {
	return strings.TrimSuffix(g.settings.BaseURL, "/")
}

// Link returns the absolute URL of a job for the search index. urlTemplate
// is the absolute reader URL of the archive's target page with a %s verb for
// the alias or ID; other percent signs are kept literally.
func (g *Generator) Link(ctx context.Context, job *jobs.Job, urlTemplate string) (string, error) {
	if job.Source == jobs.SourceInternal {
		target, err := g.lookupPage(ctx, job.JumpTo)
		if err != nil {
			return "", err
		}
		if target != nil {
			return g.PageURL(target, "", true), nil
		}
	}
	return fmt.Sprintf(escapePercent(urlTemplate), job.IDOrAlias()), nil
}

// escapePercent doubles every % that does not start a %s verb
func escapePercent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		b.WriteByte(s[i])
		if s[i] == '%' && (i+1 == len(s) || s[i+1] != 's') {
			b.WriteByte('%')
		}
	}
	return b.String()
}

// Ampersand encodes the ampersands of a URL for use in raw HTML.
// Already encoded ampersands are kept as they are.
func Ampersand(u string) string {
	return strings.ReplaceAll(strings.ReplaceAll(u, "&amp;", "&"), "&", "&amp;")
}
