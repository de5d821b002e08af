// Package pagination computes result windows and pagination menus for the
// list and archive modules.
package pagination

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
)

// ErrOutOfRange is returned for page numbers outside the available pages
var ErrOutOfRange = errors.New("page out of range")

// Window is the slice of results shown on one page.
// Limit 0 means unlimited.
type Window struct {
	Total     int
	PerPage   int
	Page      int
	Offset    int
	Limit     int
	Paginated bool
}

// Empty reports whether the window cannot contain any item, which happens
// when skipFirst swallows every result of a paginated list
func (w Window) Empty() bool {
	return w.Paginated && w.Limit <= 0
}

// ListParam returns the query parameter carrying the page of a list module
func ListParam(moduleID int64) string {
	return "page_n" + strconv.FormatInt(moduleID, 10)
}

// ArchiveParam returns the query parameter carrying the page of an archive module
func ArchiveParam(moduleID int64) string {
	return "page_a" + strconv.FormatInt(moduleID, 10)
}

// PageFromQuery reads param from query. A missing value is page 1; anything
// that is not a number is out of range.
func PageFromQuery(query url.Values, param string) (int, error) {
	raw := query.Get(param)
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrOutOfRange, raw)
	}
	return page, nil
}

// ForList computes the window of a list module. skipFirst items are never
// shown and numberOfItems caps the total (0 = no cap). Pagination applies
// when perPage is set and the cap, if any, exceeds one page.
func ForList(total, skipFirst, numberOfItems, perPage, page int) (Window, error) {
	w := Window{Total: total - skipFirst, PerPage: perPage, Page: 1, Offset: skipFirst, Limit: numberOfItems}

	if perPage <= 0 || (numberOfItems != 0 && numberOfItems <= perPage) {
		return w, nil
	}

	if numberOfItems > 0 {
		w.Total = min(numberOfItems, w.Total)
	}
	if err := checkPage(page, w.Total, perPage); err != nil {
		return Window{}, err
	}

	w.Paginated = true
	w.Page = page
	w.Limit = perPage
	w.Offset = skipFirst + (page-1)*perPage
	if w.Offset+w.Limit > w.Total+skipFirst {
		w.Limit = w.Total + skipFirst - w.Offset
	}
	return w, nil
}

// ForArchive computes the window of an archive module. Without perPage every
// item of the period is shown.
func ForArchive(total, perPage, page int) (Window, error) {
	w := Window{Total: total, PerPage: perPage, Page: 1}
	if perPage <= 0 || total < 1 {
		return w, nil
	}
	if err := checkPage(page, total, perPage); err != nil {
		return Window{}, err
	}

	w.Paginated = true
	w.Page = page
	w.Limit = perPage
	w.Offset = (page - 1) * perPage
	return w, nil
}

// Pages returns the number of pages of total items, at least one
func Pages(total, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	return max((total+perPage-1)/perPage, 1)
}

func checkPage(page, total, perPage int) error {
	if page < 1 || page > Pages(total, perPage) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, page)
	}
	return nil
}

// Labels are the texts of the pagination menu
type Labels struct {
	First    string
	Previous string
	Next     string
	Last     string
	// Total is a format with the current page and the page count
	Total string
}

// DefaultLabels are the English menu texts
var DefaultLabels = Labels{
	First:    "« First",
	Previous: "Previous",
	Next:     "Next",
	Last:     "Last »",
	Total:    "Page %d of %d",
}

// Link is one entry of the pagination menu
type Link struct {
	Label   string
	Href    string
	Page    int
	Current bool
}

// Menu is the rendered structure of a pagination
type Menu struct {
	Summary  string
	First    *Link
	Previous *Link
	Pages    []Link
	Next     *Link
	Last     *Link
}

// Pagination builds the menu for one paginated module
type Pagination struct {
	Total    int
	PerPage  int
	MaxLinks int
	Param    string
	Labels   Labels
}

// New returns a Pagination with the default labels
func New(total, perPage, maxLinks int, param string) *Pagination {
	return &Pagination{Total: total, PerPage: perPage, MaxLinks: maxLinks, Param: param, Labels: DefaultLabels}
}

// Menu returns the links around current. base supplies the path and the
// query parameters to keep; page 1 links carry no page parameter.
// A single page yields nil.
func (p *Pagination) Menu(current int, base *url.URL) *Menu {
	pages := Pages(p.Total, p.PerPage)
	if pages <= 1 {
		return nil
	}
	current = min(max(current, 1), pages)

	first, last := linkRange(current, pages, p.MaxLinks)

	m := &Menu{Summary: fmt.Sprintf(p.Labels.Total, current, pages)}
	if current > 1 {
		m.First = &Link{Label: p.Labels.First, Href: p.href(base, 1), Page: 1}
		m.Previous = &Link{Label: p.Labels.Previous, Href: p.href(base, current-1), Page: current - 1}
	}
	for i := first; i <= last; i++ {
		m.Pages = append(m.Pages, Link{Label: strconv.Itoa(i), Href: p.href(base, i), Page: i, Current: i == current})
	}
	if current < pages {
		m.Next = &Link{Label: p.Labels.Next, Href: p.href(base, current+1), Page: current + 1}
		m.Last = &Link{Label: p.Labels.Last, Href: p.href(base, pages), Page: pages}
	}
	return m
}

// linkRange centres a window of maxLinks/2 links on either side of current
// and shifts it back inside [1, pages] at either end. An even maxLinks thus
// shows maxLinks+1 links, the same as the next odd count.
func linkRange(current, pages, maxLinks int) (int, int) {
	if maxLinks <= 0 {
		maxLinks = pages
	}
	half := maxLinks / 2

	firstOffset := min(current-half-1, 0)
	lastOffset := max(current+half-pages, 0)

	first := max(current-half-lastOffset, 1)
	last := min(current+half-firstOffset, pages)
	return first, last
}

func (p *Pagination) href(base *url.URL, page int) string {
	u := url.URL{Path: base.Path}
	q := base.Query()
	if page == 1 {
		q.Del(p.Param)
	} else {
		q.Set(p.Param, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	if u.Path == "" && u.RawQuery == "" {
		return "./"
	}
	return u.String()
}

//go:embed pagination.html
var templateFS embed.FS

var menuTemplate = template.Must(template.ParseFS(templateFS, "pagination.html"))

// HTML renders the menu around current, or nothing for a single page
func (p *Pagination) HTML(current int, base *url.URL) (template.HTML, error) {
	m := p.Menu(current, base)
	if m == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := menuTemplate.Execute(&buf, m); err != nil {
		return "", fmt.Errorf("failed to render pagination: %w", err)
	}
	//nolint:gosec // template output is escaped
	return template.HTML(buf.String()), nil
}
