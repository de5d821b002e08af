package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/maniaxatwork/jobs-server/internal/db/pgtypes"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

const archiveColumns = `id, tstamp, title, jump_to, protected, groups`

const pageColumns = `id, pid, title, alias, domain, use_ssl, published, start, stop, protected, groups, robots`

const jobColumns = `id, pid, tstamp, headline, alias, author, date, subheadline, teaser, source, ` +
	`jump_to, url, target, page_title, robots, description, add_image, single_src, size, floating, ` +
	`image_margin, fullsize, overwrite_meta, alt, image_title, image_url, caption, organization, ` +
	`organization_url, logo, employment_type, end_date, css_class, featured, published, start, stop`

// jobWriteColumns are the columns set by CreateJob and UpdateJob, in jobArgs order
var jobWriteColumns = []string{
	"pid", "headline", "alias", "author", "date", "subheadline", "teaser", "source",
	"jump_to", "url", "target", "page_title", "robots", "description", "add_image", "single_src",
	"size", "floating", "image_margin", "fullsize", "overwrite_meta", "alt", "image_title",
	"image_url", "caption", "organization", "organization_url", "logo", "employment_type",
	"end_date", "css_class", "featured", "published", "start", "stop",
}

var (
	insertJobSQL = buildInsertJobSQL()
	updateJobSQL = buildUpdateJobSQL()
)

func buildInsertJobSQL() string {
	placeholders := make([]string, len(jobWriteColumns))
	for i := range jobWriteColumns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf("INSERT INTO jobs (%s) VALUES (%s) RETURNING %s",
		strings.Join(jobWriteColumns, ", "), strings.Join(placeholders, ", "), jobColumns)
}

// buildUpdateJobSQL expects the job ID as the last argument
func buildUpdateJobSQL() string {
	sets := make([]string, len(jobWriteColumns))
	for i, col := range jobWriteColumns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	return fmt.Sprintf("UPDATE jobs SET %s, tstamp = NOW() WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(jobWriteColumns)+1, jobColumns)
}

func jobArgs(j *jobs.Job) []any {
	return []any{
		j.PID, j.Headline, j.Alias, j.Author, j.Date, j.Subheadline, j.Teaser, string(j.Source),
		j.JumpTo, j.URL, j.Target, j.PageTitle, j.Robots, j.Description, j.AddImage, pgtypes.NullUUID(j.SingleSRC),
		j.Size, j.Floating, j.ImageMargin, j.Fullsize, j.OverwriteMeta, j.Alt, j.ImageTitle,
		j.ImageURL, j.Caption, j.Organization, j.OrganizationURL, pgtypes.NullUUID(j.Logo), j.EmploymentType,
		pgtypes.NewTime(j.EndDate), j.CSSClass, j.Featured, j.Published, pgtypes.NewTime(j.Start), pgtypes.NewTime(j.Stop),
	}
}

func scanJob(row pgx.Row) (*jobs.Job, error) {
	var (
		j               jobs.Job
		source          string
		singleSRC, logo uuid.NullUUID
		endDate         pgtypes.Time
		start, stop     pgtypes.Time
	)
	err := row.Scan(
		&j.ID, &j.PID, &j.Tstamp, &j.Headline, &j.Alias, &j.Author, &j.Date, &j.Subheadline, &j.Teaser, &source,
		&j.JumpTo, &j.URL, &j.Target, &j.PageTitle, &j.Robots, &j.Description, &j.AddImage, &singleSRC, &j.Size, &j.Floating,
		&j.ImageMargin, &j.Fullsize, &j.OverwriteMeta, &j.Alt, &j.ImageTitle, &j.ImageURL, &j.Caption, &j.Organization,
		&j.OrganizationURL, &logo, &j.EmploymentType, &endDate, &j.CSSClass, &j.Featured, &j.Published, &start, &stop,
	)
	if err != nil {
		return nil, err
	}
	j.Source = jobs.Source(source)
	j.SingleSRC = pgtypes.UUIDPtr(singleSRC)
	j.Logo = pgtypes.UUIDPtr(logo)
	j.EndDate = endDate.Time
	j.Start = start.Time
	j.Stop = stop.Time
	return &j, nil
}

func scanArchive(row pgx.Row) (*jobs.Archive, error) {
	var a jobs.Archive
	if err := row.Scan(&a.ID, &a.Tstamp, &a.Title, &a.JumpTo, &a.Protected, &a.Groups); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanPage(row pgx.Row) (*jobs.Page, error) {
	var (
		p           jobs.Page
		start, stop pgtypes.Time
	)
	err := row.Scan(&p.ID, &p.PID, &p.Title, &p.Alias, &p.Domain, &p.UseSSL, &p.Published,
		&start, &stop, &p.Protected, &p.Groups, &p.Robots)
	if err != nil {
		return nil, err
	}
	p.Start = start.Time
	p.Stop = stop.Time
	return &p, nil
}

// queryBuilder collects WHERE conditions and their positional arguments
type queryBuilder struct {
	conds []string
	args  []any
}

// arg registers v and returns its placeholder
func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// where adds a condition; every %s in format is replaced by the placeholder of the matching value
func (b *queryBuilder) where(format string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = b.arg(v)
	}
	b.conds = append(b.conds, fmt.Sprintf(format, placeholders...))
}

func (b *queryBuilder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

func (b *queryBuilder) applyQueryOptions(o *service.QueryOptions) {
	if !o.IncludeUnpublished {
		b.where("published AND (start IS NULL OR start <= %s) AND (stop IS NULL OR stop > %s)", o.Now, o.Now)
	}
	if len(o.Archives) > 0 {
		b.where("pid = ANY(%s)", o.Archives)
	}
	if o.Featured != nil {
		b.where("featured = %s", *o.Featured)
	}
	if o.HasPeriod {
		b.where("date >= %s AND date < %s", o.From, o.To)
	}
}

// idOrAlias matches a numeric ID or an alias
func (b *queryBuilder) idOrAlias(idOrAlias string) {
	if id, err := strconv.ParseInt(idOrAlias, 10, 64); err == nil {
		b.where("(id = %s OR alias = %s)", id, idOrAlias)
		return
	}
	b.where("alias = %s", idOrAlias)
}

func orderClause(order jobs.Order, featuredFirst bool) string {
	var by string
	switch order {
	case jobs.OrderDateAsc:
		by = "date, id"
	case jobs.OrderHeadlineAsc:
		by = "headline, id"
	case jobs.OrderHeadlineDesc:
		by = "headline DESC, id DESC"
	case jobs.OrderRandom:
		by = "RANDOM()"
	default:
		by = "date DESC, id DESC"
	}
	if featuredFirst {
		by = "featured DESC, " + by
	}
	return " ORDER BY " + by
}

func limitClause(limit, offset int) string {
	var sb strings.Builder
	if limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(limit))
	}
	if offset > 0 {
		sb.WriteString(" OFFSET " + strconv.Itoa(offset))
	}
	return sb.String()
}

// nonNil keeps NOT NULL array columns from receiving NULL
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
