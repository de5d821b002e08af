package frontend

import (
	"context"
	"errors"
	"fmt"
	"html"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/htmltext"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

const (
	defaultReaderTemplate = "jobs_full"

	// the whole attribute is emitted verbatim, html/template would
	// percent-encode the parentheses of a template.URL
	historyBack template.HTMLAttr = `href="javascript:history.go(-1)"`
)

type readerView struct {
	moduleView
	Article template.HTML
	Referer template.HTMLAttr
	Back    string
}

// ReaderModule renders a single job selected by the items parameter
type ReaderModule struct {
	base
}

var _ Module = (*ReaderModule)(nil)

// NewReaderModule returns a jobsreader module
func NewReaderModule(cfg config.ModuleConfig, env *Env) *ReaderModule {
	return &ReaderModule{base{cfg: cfg, env: env}}
}

// item returns the requested alias or ID, taken from auto_item when the
// site uses auto items and items is absent
func (m *ReaderModule) item(req *Request) string {
	q := req.query()
	if !q.Has("items") && m.env.Site.UseAutoItem {
		return q.Get("auto_item")
	}
	return q.Get("items")
}

// Generate renders the reader
func (m *ReaderModule) Generate(ctx context.Context, req *Request) (*Output, error) {
	item := m.item(req)
	if item == "" {
		return emptyOutput(), nil
	}

	archives, err := m.visibleArchives(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(archives) == 0 {
		return nil, &InternalError{Message: "The jobs reader ID " + strconv.FormatInt(m.cfg.ID, 10) + " has no archives specified."}
	}

	r := newRun(m.env, m.cfg, req)
	view := readerView{
		moduleView: moduleView{
			Type:     m.cfg.Type,
			ID:       m.cfg.ID,
			CSSClass: m.cfg.CSSClass,
			Headline: m.cfg.Headline,
		},
		Referer: historyBack,
		Back:    m.env.Labels.GoBack,
	}
	if m.cfg.OverviewPage > 0 {
		page, err := m.env.Store.GetPageWithDetails(ctx, m.cfg.OverviewPage)
		if err != nil && !errors.Is(err, service.ErrPageNotFound) {
			return nil, fmt.Errorf("failed to get overview page: %w", err)
		}
		if page != nil {
			//nolint:gosec // the page URL is attribute-escaped
			view.Referer = template.HTMLAttr(`href="` + html.EscapeString(r.urls.PageURL(page, "", false)) + `"`)
			view.Back = m.env.Labels.Overview
			if m.cfg.CustomLabel != "" {
				view.Back = m.cfg.CustomLabel
			}
		}
	}

	job, err := m.env.Store.FindPublishedJob(ctx, item, queryOpts(req, archives)...)
	if errors.Is(err, service.ErrJobNotFound) {
		return nil, &NotFoundError{URI: req.uri()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job: %w", err)
	}

	if job.Source == jobs.SourceInternal {
		return nil, m.redirect(ctx, r, req, job)
	}

	cfg := m.cfg
	if cfg.Template == "" {
		cfg.Template = defaultReaderTemplate
	}
	r.cfg = cfg

	article, err := r.ParseArticle(ctx, job, false, "", 1)
	if err != nil {
		return nil, err
	}
	if view.Article, err = renderArticle(cfg.Template, article); err != nil {
		return nil, err
	}

	rendered, err := render("mod_jobsreader", view)
	if err != nil {
		return nil, err
	}
	out := emptyOutput()
	out.HTML = rendered
	out.Tags = unique(r.tags)
	out.Meta = pageMeta(job)
	return out, nil
}

// redirect sends internal jobs to their published target page
func (m *ReaderModule) redirect(ctx context.Context, r *run, req *Request, job *jobs.Job) error {
	invalid := &InternalError{Message: `Invalid "jumpTo" value or target page not public`}
	if job.JumpTo == 0 {
		return invalid
	}

	page, err := m.env.Store.GetPageWithDetails(ctx, job.JumpTo)
	if errors.Is(err, service.ErrPageNotFound) {
		return invalid
	}
	if err != nil {
		return fmt.Errorf("failed to get target page: %w", err)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	if !page.IsPublishedAt(now) {
		return invalid
	}
	return &RedirectError{Location: r.urls.PageURL(page, "", true), Status: http.StatusMovedPermanently}
}

// pageMeta overrides title, description and robots of the reader page
func pageMeta(job *jobs.Job) *PageMeta {
	meta := &PageMeta{Robots: job.Robots}
	switch {
	case job.PageTitle != "":
		meta.Title = job.PageTitle
	case job.Headline != "":
		meta.Title = htmltext.ToPlain(job.Headline)
	}
	switch {
	case job.Description != "":
		meta.Description = htmltext.ToPlain(job.Description)
	case job.Teaser != "":
		meta.Description = htmltext.ToPlain(job.Teaser)
	}
	return meta
}
