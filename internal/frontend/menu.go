package frontend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/urls"
)

// MenuItem is one year or month link of the archive menu
type MenuItem struct {
	Date     string
	Link     string
	Href     string
	Title    string
	Class    string
	IsActive bool
	Quantity string
}

// CSS returns the item classes including the active state
func (i MenuItem) CSS() string {
	if i.IsActive {
		return strings.TrimSpace(i.Class + " active")
	}
	return i.Class
}

// MenuYear groups the month items of one year
type MenuYear struct {
	Year  string
	Items []MenuItem
}

type menuView struct {
	moduleView
	Yearly       bool
	Items        []MenuItem
	Years        []MenuYear
	ShowQuantity bool
	URL          string
	ActiveYear   string
}

// MenuModule renders links to the years or months that have jobs
type MenuModule struct {
	base
}

var _ Module = (*MenuModule)(nil)

// NewMenuModule returns a jobsmenu module
func NewMenuModule(cfg config.ModuleConfig, env *Env) *MenuModule {
	return &MenuModule{base{cfg: cfg, env: env}}
}

// Generate renders the menu
func (m *MenuModule) Generate(ctx context.Context, req *Request) (*Output, error) {
	archives, err := m.visibleArchives(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(archives) == 0 {
		return emptyOutput(), nil
	}

	baseURL, err := m.baseURL(ctx, req)
	if err != nil {
		return nil, err
	}

	view := menuView{
		moduleView: moduleView{
			Type:     m.cfg.Type,
			ID:       m.cfg.ID,
			CSSClass: m.cfg.CSSClass,
			Headline: m.cfg.Headline,
			Empty:    m.env.Labels.EmptyList,
		},
		ShowQuantity: m.cfg.ShowQuantity,
	}

	// jobs_day has no menu of its own and lists months
	if jobs.Format(m.cfg.Format) == jobs.FormatYear {
		err = m.compileYearly(ctx, req, archives, baseURL, &view)
	} else {
		err = m.compileMonthly(ctx, req, archives, baseURL, &view)
	}
	if err != nil {
		return nil, err
	}

	rendered, err := render("mod_jobsmenu", view)
	if err != nil {
		return nil, err
	}
	out := emptyOutput()
	out.HTML = rendered
	out.Tags = archiveTags(archives)
	return out, nil
}

// baseURL is the module's jumpTo page, or the request path
func (m *MenuModule) baseURL(ctx context.Context, req *Request) (string, error) {
	if m.cfg.JumpTo > 0 {
		page, err := m.env.Store.GetPageWithDetails(ctx, m.cfg.JumpTo)
		switch {
		case err == nil:
			gen := urls.NewGenerator(m.env.Store, m.env.URLSettings(), req.URL)
			return gen.PageURL(page, "", false), nil
		case !errors.Is(err, service.ErrPageNotFound):
			return "", fmt.Errorf("failed to get menu target page: %w", err)
		}
	}
	if req.URL == nil || req.URL.Path == "" {
		return "/", nil
	}
	return req.URL.Path, nil
}

func (m *MenuModule) counts(ctx context.Context, req *Request, archives []int64, groupBy service.GroupBy) ([]service.PeriodCount, error) {
	opts := []service.Option{
		service.WithArchives(archives),
		service.WithGroupBy(groupBy),
		service.WithLocation(m.env.location()),
	}
	if !req.Now.IsZero() {
		opts = append(opts, service.WithNow(req.Now))
	}
	if req.BackendPreview {
		opts = append(opts, service.WithUnpublished())
	}
	counts, err := m.env.Store.CountByPeriod(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by %s: %w", groupBy, err)
	}
	return counts, nil
}

func (m *MenuModule) ascending() bool {
	return jobs.Order(m.cfg.Order) == jobs.OrderDateAsc
}

func (m *MenuModule) quantity(n int) string {
	if n < 2 {
		return fmt.Sprintf(m.env.Labels.Entry, n)
	}
	return fmt.Sprintf(m.env.Labels.Entries, n)
}

func (m *MenuModule) compileYearly(ctx context.Context, req *Request, archives []int64, baseURL string, view *menuView) error {
	counts, err := m.counts(ctx, req, archives, service.GroupByYear)
	if err != nil {
		return err
	}
	m.sortCounts(counts)

	active := req.query().Get("year")
	view.Yearly = true
	for i, c := range counts {
		year := strconv.Itoa(c.Year)
		quantity := m.quantity(c.Count)
		view.Items = append(view.Items, MenuItem{
			Date:     year,
			Link:     year,
			Href:     baseURL + "?year=" + year,
			Title:    year + " (" + quantity + ")",
			Class:    firstLast(i, len(counts)),
			IsActive: active == year,
			Quantity: quantity,
		})
	}
	return nil
}

func (m *MenuModule) compileMonthly(ctx context.Context, req *Request, archives []int64, baseURL string, view *menuView) error {
	counts, err := m.counts(ctx, req, archives, service.GroupByMonth)
	if err != nil {
		return err
	}
	m.sortCounts(counts)

	active := req.query().Get("month")
	view.URL = baseURL + "?"
	view.ActiveYear = req.query().Get("year")

	for start := 0; start < len(counts); {
		end := start
		for end < len(counts) && counts[end].Year == counts[start].Year {
			end++
		}

		year := MenuYear{Year: strconv.Itoa(counts[start].Year)}
		for i, c := range counts[start:end] {
			date := fmt.Sprintf("%d%02d", c.Year, c.Month)
			label := m.env.Labels.Months[c.Month-1] + " " + year.Year
			quantity := m.quantity(c.Count)
			year.Items = append(year.Items, MenuItem{
				Date:     date,
				Link:     label,
				Href:     baseURL + "?month=" + date,
				Title:    label + " (" + quantity + ")",
				Class:    firstLast(i, end-start),
				IsActive: active == date,
				Quantity: quantity,
			})
		}
		view.Years = append(view.Years, year)
		start = end
	}
	return nil
}

// sortCounts orders counts by date, newest first unless ascending
func (m *MenuModule) sortCounts(counts []service.PeriodCount) {
	slices.SortFunc(counts, func(a, b service.PeriodCount) int {
		d := a.Year - b.Year
		if d == 0 {
			d = a.Month - b.Month
		}
		if d == 0 {
			d = a.Day - b.Day
		}
		if m.ascending() {
			return d
		}
		return -d
	})
}

func firstLast(i, n int) string {
	var c []string
	if i == 0 {
		c = append(c, "first")
	}
	if i == n-1 {
		c = append(c, "last")
	}
	return strings.Join(c, " ")
}
