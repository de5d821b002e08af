package frontend

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/pagination"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// Period is a year, month or day range. End is exclusive: it is the start
// of the following period.
type Period struct {
	Begin time.Time
	End   time.Time
}

// periodLayouts maps the query parameters to their date layouts
var periodLayouts = map[string]string{
	"year":  "2006",
	"month": "200601",
	"day":   "20060102",
}

// ParsePeriod parses a year (YYYY), month (YYYYMM) or day (YYYYMMDD) value
// of the given kind in loc
func ParsePeriod(kind, value string, loc *time.Location) (Period, error) {
	layout, ok := periodLayouts[kind]
	if !ok {
		return Period{}, fmt.Errorf("unknown period %q", kind)
	}
	if len(value) != len(layout) {
		return Period{}, fmt.Errorf("invalid %s %q", kind, value)
	}
	begin, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return Period{}, fmt.Errorf("invalid %s %q: %w", kind, value, err)
	}

	var next time.Time
	switch kind {
	case "year":
		next = begin.AddDate(1, 0, 0)
	case "month":
		next = begin.AddDate(0, 1, 0)
	default:
		next = begin.AddDate(0, 0, 1)
	}
	return Period{Begin: begin, End: next}, nil
}

// AllItems covers every representable job date
func AllItems() Period {
	return Period{Begin: time.Unix(0, 0).UTC(), End: time.Unix(jobs.MaxTimestamp+1, 0).UTC()}
}

// noItems is the empty range shown when the query names no usable period
func noItems() Period {
	epoch := time.Unix(0, 0).UTC()
	return Period{Begin: epoch, End: epoch}
}

// leadingInt reads the leading integer of v like a lenient cast: "2024x"
// gives 2024, a value without leading digits gives 0.
func leadingInt(v string) int {
	v = strings.TrimLeft(v, " \t\n\r\v\f")
	end := 0
	if end < len(v) && (v[0] == '-' || v[0] == '+') {
		end++
	}
	digits := end
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0
	}
	return n
}

// ArchiveModule renders the jobs of one year, month or day
type ArchiveModule struct {
	base
}

var _ Module = (*ArchiveModule)(nil)

// NewArchiveModule returns a jobsarchive module
func NewArchiveModule(cfg config.ModuleConfig, env *Env) *ArchiveModule {
	return &ArchiveModule{base{cfg: cfg, env: env}}
}

func hasPeriod(req *Request) bool {
	q := req.query()
	return q.Has("year") || q.Has("month") || q.Has("day")
}

// Generate renders the archive
func (m *ArchiveModule) Generate(ctx context.Context, req *Request) (*Output, error) {
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

	jumpTo := jobs.JumpToCurrent(m.cfg.JumpToCurrent)
	if jumpTo == jobs.JumpToHide && !hasPeriod(req) {
		return emptyOutput(), nil
	}

	r := newRun(m.env, m.cfg, req)
	r.addTags(archiveTags(archives)...)

	period, suffix, err := m.period(req, jumpTo)
	if err != nil {
		return nil, err
	}

	view := moduleView{
		Type:     m.cfg.Type,
		ID:       m.cfg.ID,
		CSSClass: m.cfg.CSSClass,
		Headline: strings.TrimSpace(m.cfg.Headline + suffix),
		Empty:    m.env.Labels.Empty,
	}

	opts := append(queryOpts(req, archives), service.WithPeriod(period.Begin, period.End))

	if m.cfg.PerPage > 0 {
		total, err := m.env.Store.CountPublished(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to count jobs: %w", err)
		}
		if total > 0 {
			param := pagination.ArchiveParam(m.cfg.ID)
			page, err := pagination.PageFromQuery(req.query(), param)
			if err != nil {
				return nil, pageError(err, req)
			}
			w, err := pagination.ForArchive(total, m.cfg.PerPage, page)
			if err != nil {
				return nil, pageError(err, req)
			}
			opts = append(opts, service.WithLimit(w.Limit), service.WithOffset(w.Offset))

			p := pagination.New(total, m.cfg.PerPage, m.env.Site.GetMaxPaginationLinks(), param)
			p.Labels = m.env.Labels.Pagination
			if view.Pagination, err = p.HTML(w.Page, req.URL); err != nil {
				return nil, err
			}
		}
	}

	order, err := jobs.ParseOrder(m.cfg.Order)
	if err != nil {
		return nil, err
	}
	items, err := m.env.Store.FindPublished(ctx, append(opts, service.WithOrder(order))...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jobs: %w", err)
	}
	if view.Articles, err = r.ParseArticles(ctx, items, false); err != nil {
		return nil, err
	}

	html, err := render("mod_jobsarchive", view)
	if err != nil {
		return nil, err
	}
	out := emptyOutput()
	out.HTML = html
	out.Tags = unique(r.tags)
	return out, nil
}

// period resolves the requested period and the headline suffix. Values that
// are not numbers count as absent, so the next of year, month and day is
// tried. Without any period parameter the current one is shown unless all
// items are.
func (m *ArchiveModule) period(req *Request, jumpTo jobs.JumpToCurrent) (Period, string, error) {
	loc := m.env.location()
	q := req.query()
	year, month, day := leadingInt(q.Get("year")), leadingInt(q.Get("month")), leadingInt(q.Get("day"))

	if !hasPeriod(req) && jumpTo != jobs.JumpToAll {
		now := req.Now
		if now.IsZero() {
			now = time.Now()
		}
		now = now.In(loc)
		switch jobs.Format(m.cfg.Format) {
		case jobs.FormatYear:
			year = now.Year()
		case jobs.FormatDay:
			day = leadingInt(now.Format("20060102"))
		default:
			month = leadingInt(now.Format("200601"))
		}
	}

	var kind string
	var value int
	switch {
	case year != 0:
		kind, value = "year", year
	case month != 0:
		kind, value = "month", month
	case day != 0:
		kind, value = "day", day
	case jumpTo == jobs.JumpToAll:
		return AllItems(), "", nil
	default:
		return noItems(), "", nil
	}

	p, err := ParsePeriod(kind, strconv.Itoa(value), loc)
	if err != nil {
		return Period{}, "", &NotFoundError{URI: req.uri()}
	}

	var suffix string
	switch kind {
	case "year":
		suffix = " " + strconv.Itoa(p.Begin.Year())
	case "month":
		suffix = " " + m.env.Labels.Months[p.Begin.Month()-1] + " " + strconv.Itoa(p.Begin.Year())
	default:
		suffix = " " + p.Begin.Format(m.env.Site.GetDateFormat())
	}
	return p, suffix, nil
}
