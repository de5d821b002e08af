package frontend

import (
	"context"
	"errors"
	"fmt"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/pagination"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// base is embedded by every module
type base struct {
	cfg config.ModuleConfig
	env *Env
}

// Config returns the module definition
func (b *base) Config() config.ModuleConfig {
	return b.cfg
}

// visibleArchives returns the configured archives member may see
func (b *base) visibleArchives(ctx context.Context, req *Request) ([]int64, error) {
	return b.env.SortOutProtected(ctx, b.cfg.Archives, req.Member)
}

// delegate renders the reader module when an item is requested
func (b *base) delegate(ctx context.Context, req *Request) (*Output, bool, error) {
	if b.cfg.ReaderModule <= 0 || !hasItem(req, b.env.Site.UseAutoItem) {
		return nil, false, nil
	}
	if b.env.Lookup == nil {
		return nil, false, nil
	}
	reader, ok := b.env.Lookup(b.cfg.ReaderModule)
	if !ok {
		logger.Warnw("Reader module not configured", "module", b.cfg.ID, "reader", b.cfg.ReaderModule)
		return emptyOutput(), true, nil
	}
	out, err := reader.Generate(ctx, req)
	return out, true, err
}

func hasItem(req *Request, useAutoItem bool) bool {
	q := req.query()
	if q.Has("items") {
		return true
	}
	return useAutoItem && q.Has("auto_item")
}

func archiveTags(ids []int64) []string {
	tags := make([]string, 0, len(ids))
	for _, id := range ids {
		tags = append(tags, ArchiveTag(id))
	}
	return tags
}

// pageError maps an out of range page to a 404
func pageError(err error, req *Request) error {
	if errors.Is(err, pagination.ErrOutOfRange) {
		return &NotFoundError{URI: req.uri()}
	}
	return err
}

// ListModule renders the latest jobs of its archives
type ListModule struct {
	base
}

var _ Module = (*ListModule)(nil)

// NewListModule returns a jobslist module
func NewListModule(cfg config.ModuleConfig, env *Env) *ListModule {
	return &ListModule{base{cfg: cfg, env: env}}
}

// Generate renders the list
func (m *ListModule) Generate(ctx context.Context, req *Request) (*Output, error) {
	archives, err := m.visibleArchives(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(archives) == 0 {
		return emptyOutput(), nil
	}

	if out, ok, err := m.delegate(ctx, req); ok || err != nil {
		return out, err
	}

	r := newRun(m.env, m.cfg, req)
	r.addTags(archiveTags(archives)...)

	view := moduleView{
		Type:     m.cfg.Type,
		ID:       m.cfg.ID,
		CSSClass: m.cfg.CSSClass,
		Headline: m.cfg.Headline,
		Empty:    m.env.Labels.EmptyList,
	}

	filter := jobs.FeaturedFilter(m.cfg.Featured)
	featured := filter.Featured()

	total, err := m.countItems(ctx, req, archives, featured)
	if err != nil {
		return nil, err
	}

	if total >= 1 {
		param := pagination.ListParam(m.cfg.ID)
		page, err := pagination.PageFromQuery(req.query(), param)
		if err != nil {
			return nil, pageError(err, req)
		}
		w, err := pagination.ForList(total, m.cfg.SkipFirst, m.cfg.NumberOfItems, m.cfg.PerPage, page)
		if err != nil {
			return nil, pageError(err, req)
		}

		if w.Paginated {
			p := pagination.New(w.Total, m.cfg.PerPage, m.env.Site.GetMaxPaginationLinks(), param)
			p.Labels = m.env.Labels.Pagination
			if view.Pagination, err = p.HTML(w.Page, req.URL); err != nil {
				return nil, err
			}
		}

		if !w.Empty() {
			items, err := m.fetchItems(ctx, req, archives, filter, w.Limit, w.Offset)
			if err != nil {
				return nil, err
			}
			if view.Articles, err = r.ParseArticles(ctx, items, false); err != nil {
				return nil, err
			}
		}
	}

	html, err := render("mod_jobslist", view)
	if err != nil {
		return nil, err
	}
	out := emptyOutput()
	out.HTML = html
	out.Tags = unique(r.tags)
	return out, nil
}

func (m *ListModule) countItems(ctx context.Context, req *Request, archives []int64, featured *bool) (int, error) {
	for _, hook := range m.env.Hooks.countItemsHooks() {
		n, ok, err := hook(ctx, archives, featured, m.cfg)
		if err != nil {
			return 0, err
		}
		if ok {
			return n, nil
		}
	}

	opts := append(queryOpts(req, archives), service.WithFeatured(featured))
	n, err := m.env.Store.CountPublished(ctx, opts...)
	if err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n, nil
}

func (m *ListModule) fetchItems(
	ctx context.Context, req *Request, archives []int64, filter jobs.FeaturedFilter, limit, offset int,
) ([]*jobs.Job, error) {
	featured := filter.Featured()
	for _, hook := range m.env.Hooks.fetchItemsHooks() {
		items, ok, err := hook(ctx, archives, featured, limit, offset, m.cfg)
		if err != nil {
			return nil, err
		}
		if ok {
			return items, nil
		}
	}

	order, err := jobs.ParseOrder(m.cfg.Order)
	if err != nil {
		return nil, err
	}

	opts := append(queryOpts(req, archives),
		service.WithFeatured(featured),
		service.WithOrder(order),
		service.WithLimit(max(limit, 0)),
		service.WithOffset(offset),
	)
	if filter == jobs.FeaturedFirst {
		opts = append(opts, service.WithFeaturedFirst())
	}

	items, err := m.env.Store.FindPublished(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jobs: %w", err)
	}
	return items, nil
}
