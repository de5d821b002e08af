package frontend

import (
	"context"
	"errors"
	"fmt"
	"html"
	"html/template"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/htmltext"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/schemaorg"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/urls"
)

// defaultArticleTemplate renders list items when the module names none
const defaultArticleTemplate = "jobs_latest"

// JobTag returns the cache tag of a job
func JobTag(id int64) string {
	return "contao.db.tl_jobs." + strconv.FormatInt(id, 10)
}

// ArchiveTag returns the cache tag of an archive
func ArchiveTag(id int64) string {
	return "contao.db.tl_jobs_archive." + strconv.FormatInt(id, 10)
}

// Figure is the teaser image of an article
type Figure struct {
	Src       string
	Alt       string
	Title     string
	Caption   string
	Size      string
	Floating  string
	Margin    string
	Href      string
	LinkTitle string
	Lightbox  bool
	NewWindow bool
}

// ArticleView is the template data of one job
type ArticleView struct {
	Job            *jobs.Job
	Archive        *jobs.Archive
	Class          string
	Headline       string
	Subheadline    string
	HasSubheadline bool
	LinkHeadline   template.HTML
	More           template.HTML
	Link           string
	Count          int

	Teaser    template.HTML
	HasTeaser bool
	Text      template.HTML
	HasText   bool
	HasReader bool

	Date          string
	Author        string
	HasMetaFields bool
	Timestamp     int64
	Datetime      string

	AddImage bool
	Figure   *Figure

	SchemaOrg template.HTML

	// Extra carries values set by ParseArticles hooks
	Extra map[string]any
}

// run is the state of one module rendering
type run struct {
	env  *Env
	cfg  config.ModuleConfig
	req  *Request
	urls *urls.Generator
	tags []string
}

func newRun(env *Env, cfg config.ModuleConfig, req *Request) *run {
	return &run{
		env:  env,
		cfg:  cfg,
		req:  req,
		urls: urls.NewGenerator(env.Store, env.URLSettings(), req.URL),
	}
}

func (r *run) addTags(tags ...string) {
	r.tags = append(r.tags, tags...)
}

// SortOutProtected drops the protected archives member may not see. The
// order of ids is kept.
func (e *Env) SortOutProtected(ctx context.Context, ids []int64, member *jobs.Member) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	archives, err := e.Store.ListArchives(ctx, service.WithArchives(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}

	visible := make(map[int64]bool, len(archives))
	for _, a := range archives {
		ok, err := e.Checker.CanView(ctx, member, a)
		if err != nil {
			return nil, err
		}
		visible[a.ID] = ok
	}

	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if visible[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// ParseArticles renders jobs with the module's article template. Items are
// classed first, last and odd/even, where the first item counts as even.
func (r *run) ParseArticles(ctx context.Context, items []*jobs.Job, addArchive bool) ([]template.HTML, error) {
	limit := len(items)
	if limit < 1 {
		return nil, nil
	}

	out := make([]template.HTML, 0, limit)
	for i, job := range items {
		count := i + 1
		var class strings.Builder
		if count == 1 {
			class.WriteString(" first")
		}
		if count == limit {
			class.WriteString(" last")
		}
		if count%2 == 0 {
			class.WriteString(" odd")
		} else {
			class.WriteString(" even")
		}

		view, err := r.ParseArticle(ctx, job, addArchive, class.String(), count)
		if err != nil {
			return nil, err
		}
		rendered, err := renderArticle(r.articleTemplate(), view)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}
	return out, nil
}

func (r *run) articleTemplate() string {
	if r.cfg.Template != "" {
		return r.cfg.Template
	}
	return defaultArticleTemplate
}

// ParseArticle builds the template data of one job
func (r *run) ParseArticle(ctx context.Context, job *jobs.Job, addArchive bool, class string, count int) (*ArticleView, error) {
	labels := r.env.Labels

	if job.CSSClass != "" {
		class = " " + job.CSSClass + class
	}
	if job.Featured {
		class = " featured" + class
	}

	link, err := r.urls.JobURL(ctx, job, addArchive, false)
	if err != nil {
		return nil, err
	}
	linkHeadline, err := r.GenerateLink(ctx, job.Headline, job, addArchive, false)
	if err != nil {
		return nil, err
	}
	more, err := r.GenerateLink(ctx, labels.More, job, addArchive, true)
	if err != nil {
		return nil, err
	}

	archive, err := r.env.Store.GetArchive(ctx, job.PID)
	if err != nil && !errors.Is(err, service.ErrArchiveNotFound) {
		return nil, err
	}

	view := &ArticleView{
		Job:            job,
		Archive:        archive,
		Class:          class,
		Headline:       job.Headline,
		Subheadline:    job.Subheadline,
		HasSubheadline: job.Subheadline != "",
		LinkHeadline:   linkHeadline,
		More:           more,
		Link:           link,
		Count:          count,
		HasReader:      true,
		Extra:          map[string]any{},
	}

	if job.Teaser != "" {
		view.HasTeaser = true
		//nolint:gosec // teaser is stored rich text from the back end
		view.Teaser = template.HTML(htmltext.EncodeEmails(job.Teaser))
	}

	if job.Source != jobs.SourceDefault && job.Source != "" {
		view.HasText = true
		view.HasReader = false
	} else {
		var text strings.Builder
		content := job.PublishedContent()
		for _, c := range content {
			text.WriteString(c.HTML)
		}
		//nolint:gosec // content elements are stored rich text from the back end
		view.Text = template.HTML(text.String())
		view.HasText = len(content) > 0
	}

	loc := r.env.location()
	author, err := r.author(ctx, job)
	if err != nil {
		return nil, err
	}
	for _, field := range r.cfg.MetaFields {
		switch jobs.MetaField(field) {
		case jobs.MetaDate:
			view.Date = job.Date.In(loc).Format(r.env.Site.GetDatimFormat())
			view.HasMetaFields = true
		case jobs.MetaAuthor:
			if author != nil {
				view.Author = labels.By + " " + author.Name
				view.HasMetaFields = true
			}
		}
	}
	view.Timestamp = job.Date.Unix()
	view.Datetime = job.Date.In(loc).Format(schemaorg.DateLayout)

	var image *jobs.File
	if job.AddImage {
		if image, err = r.file(ctx, job.SingleSRC); err != nil {
			return nil, err
		}
		if image != nil {
			view.AddImage = true
			view.Figure = r.figure(job, image, link)
		}
	}

	var logo *jobs.File
	if author != nil {
		if logo, err = r.file(ctx, job.Logo); err != nil {
			return nil, err
		}
	}
	view.SchemaOrg, err = schemaorg.Script(schemaorg.JobPosting(job, schemaorg.Posting{
		URL:      link,
		Author:   author,
		Logo:     logo,
		Image:    image,
		Origin:   r.urls.Origin(),
		Location: loc,
	}))
	if err != nil {
		return nil, err
	}

	for _, hook := range r.env.Hooks.parseArticlesHooks() {
		hook(ctx, view, job, r.cfg)
	}

	r.addTags(JobTag(job.ID))
	return view, nil
}

func (r *run) author(ctx context.Context, job *jobs.Job) (*jobs.User, error) {
	if job.Author == 0 {
		return nil, nil
	}
	user, err := r.env.Store.GetUser(ctx, job.Author)
	if errors.Is(err, service.ErrUserNotFound) {
		return nil, nil
	}
	return user, err
}

// file resolves an optional file reference; missing files yield nil
func (r *run) file(ctx context.Context, ref *uuid.UUID) (*jobs.File, error) {
	if ref == nil {
		return nil, nil
	}
	f, err := r.env.Store.GetFile(ctx, *ref)
	if errors.Is(err, service.ErrFileNotFound) {
		logger.Debugw("Skipping missing file", "uuid", ref.String())
		return nil, nil
	}
	return f, err
}

func (r *run) figure(job *jobs.Job, image *jobs.File, articleURL string) *Figure {
	size := job.Size
	if r.cfg.ImgSize != "" {
		size = r.cfg.ImgSize
	}

	f := &Figure{
		Src:      "/" + strings.TrimPrefix(image.Path, "/"),
		Size:     size,
		Floating: job.Floating,
		Margin:   job.ImageMargin,
		Lightbox: job.Fullsize,
	}
	if job.OverwriteMeta {
		f.Alt = job.Alt
		f.Title = job.ImageTitle
		f.Caption = job.Caption
		f.Href = job.ImageURL
	}
	if f.Href == "" && f.Lightbox {
		f.Href = f.Src
	}
	if job.Source == jobs.SourceExternal && job.Target {
		f.NewWindow = true
	}
	if f.Href == "" {
		f.Href = articleURL
		f.LinkTitle = fmt.Sprintf(r.env.Labels.ReadMore, job.Headline)
	}
	return f
}

// GenerateLink returns an anchor to the job. External jobs open in a new
// window when their target flag is set; read-more links carry the headline
// in an invisible span.
func (r *run) GenerateLink(ctx context.Context, text string, job *jobs.Job, addArchive, isReadMore bool) (template.HTML, error) {
	href, err := r.urls.JobURL(ctx, job, addArchive, false)
	if err != nil {
		return "", err
	}

	internal := job.Source != jobs.SourceExternal
	var title string
	if internal {
		title = fmt.Sprintf(r.env.Labels.ReadMore, job.Headline)
	} else {
		title = r.env.Labels.Open
		if strings.Contains(title, "%s") {
			title = fmt.Sprintf(title, href)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<a href="%s" title="%s"`, html.EscapeString(href), html.EscapeString(title))
	if job.Target && !internal {
		b.WriteString(` target="_blank" rel="noreferrer noopener"`)
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(text))
	if isReadMore && internal {
		b.WriteString(`<span class="invisible"> ` + html.EscapeString(job.Headline) + `</span>`)
	}
	b.WriteString("</a>")

	//nolint:gosec // every interpolated value is escaped above
	return template.HTML(b.String()), nil
}

func unique(tags []string) []string {
	out := slices.Clone(tags)
	slices.Sort(out)
	return slices.Compact(out)
}

// JobPosting returns the schema.org JobPosting of job as rendered on the
// page current
func (e *Env) JobPosting(ctx context.Context, job *jobs.Job, current *url.URL) (map[string]any, error) {
	r := newRun(e, config.ModuleConfig{}, &Request{URL: current})

	link, err := r.urls.JobURL(ctx, job, false, false)
	if err != nil {
		return nil, err
	}
	author, err := r.author(ctx, job)
	if err != nil {
		return nil, err
	}

	p := schemaorg.Posting{URL: link, Author: author, Origin: r.urls.Origin(), Location: e.location()}
	if job.AddImage {
		if p.Image, err = r.file(ctx, job.SingleSRC); err != nil {
			return nil, err
		}
	}
	if author != nil {
		if p.Logo, err = r.file(ctx, job.Logo); err != nil {
			return nil, err
		}
	}
	return schemaorg.JobPosting(job, p), nil
}
