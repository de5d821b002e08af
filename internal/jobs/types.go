// Package jobs defines the domain model of the jobs server: archives, job
// postings, the target pages they link to and the users that edit them.
package jobs

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// MaxTimestamp is the upper bound used when a query covers all items.
const MaxTimestamp int64 = 4294967295

// Archive groups job postings and points to the page that renders them.
type Archive struct {
	ID        int64     `json:"id" yaml:"id"`
	Tstamp    time.Time `json:"tstamp" yaml:"tstamp,omitempty"`
	Title     string    `json:"title" yaml:"title"`
	JumpTo    int64     `json:"jumpTo" yaml:"jumpTo,omitempty"`
	Protected bool      `json:"protected" yaml:"protected,omitempty"`
	Groups    []int64   `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// Job is a single job posting. PID references the parent archive.
type Job struct {
	ID     int64     `json:"id" yaml:"id"`
	PID    int64     `json:"pid" yaml:"pid"`
	Tstamp time.Time `json:"tstamp" yaml:"tstamp,omitempty"`

	Headline    string    `json:"headline" yaml:"headline"`
	Alias       string    `json:"alias" yaml:"alias,omitempty"`
	Author      int64     `json:"author" yaml:"author,omitempty"`
	Date        time.Time `json:"date" yaml:"date"`
	Subheadline string    `json:"subheadline,omitempty" yaml:"subheadline,omitempty"`
	Teaser      string    `json:"teaser,omitempty" yaml:"teaser,omitempty"`

	Source Source `json:"source" yaml:"source,omitempty"`
	JumpTo int64  `json:"jumpTo,omitempty" yaml:"jumpTo,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	Target bool   `json:"target,omitempty" yaml:"target,omitempty"`

	PageTitle   string `json:"pageTitle,omitempty" yaml:"pageTitle,omitempty"`
	Robots      string `json:"robots,omitempty" yaml:"robots,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	AddImage      bool       `json:"addImage,omitempty" yaml:"addImage,omitempty"`
	SingleSRC     *uuid.UUID `json:"singleSRC,omitempty" yaml:"singleSRC,omitempty"`
	Size          string     `json:"size,omitempty" yaml:"size,omitempty"`
	Floating      string     `json:"floating,omitempty" yaml:"floating,omitempty"`
	ImageMargin   string     `json:"imagemargin,omitempty" yaml:"imagemargin,omitempty"`
	Fullsize      bool       `json:"fullsize,omitempty" yaml:"fullsize,omitempty"`
	OverwriteMeta bool       `json:"overwriteMeta,omitempty" yaml:"overwriteMeta,omitempty"`
	Alt           string     `json:"alt,omitempty" yaml:"alt,omitempty"`
	ImageTitle    string     `json:"imageTitle,omitempty" yaml:"imageTitle,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Caption       string     `json:"caption,omitempty" yaml:"caption,omitempty"`

	Organization    string     `json:"organization,omitempty" yaml:"organization,omitempty"`
	OrganizationURL string     `json:"organizationUrl,omitempty" yaml:"organizationUrl,omitempty"`
	Logo            *uuid.UUID `json:"logo,omitempty" yaml:"logo,omitempty"`
	EmploymentType  string     `json:"employmentType,omitempty" yaml:"employmentType,omitempty"`
	EndDate         time.Time  `json:"enddate,omitzero" yaml:"enddate,omitempty"`

	CSSClass  string    `json:"cssClass,omitempty" yaml:"cssClass,omitempty"`
	Featured  bool      `json:"featured" yaml:"featured,omitempty"`
	Published bool      `json:"published" yaml:"published,omitempty"`
	Start     time.Time `json:"start,omitzero" yaml:"start,omitempty"`
	Stop      time.Time `json:"stop,omitzero" yaml:"stop,omitempty"`

	// Content holds the rendered content elements of a default-source job.
	Content []ContentElement `json:"content,omitempty" yaml:"content,omitempty"`
}

// ContentElement is one block of body content attached to a job.
type ContentElement struct {
	ID        int64  `json:"id" yaml:"id"`
	Sorting   int    `json:"sorting" yaml:"sorting,omitempty"`
	HTML      string `json:"html" yaml:"html"`
	Published bool   `json:"published" yaml:"published,omitempty"`
}

// Page is a site page that job URLs are built from.
type Page struct {
	ID        int64     `json:"id" yaml:"id"`
	PID       int64     `json:"pid" yaml:"pid,omitempty"`
	RootID    int64     `json:"rootId" yaml:"rootId,omitempty"`
	Title     string    `json:"title" yaml:"title"`
	Alias     string    `json:"alias" yaml:"alias"`
	Domain    string    `json:"domain,omitempty" yaml:"domain,omitempty"`
	UseSSL    bool      `json:"useSSL,omitempty" yaml:"useSSL,omitempty"`
	Published bool      `json:"published" yaml:"published,omitempty"`
	Start     time.Time `json:"start,omitzero" yaml:"start,omitempty"`
	Stop      time.Time `json:"stop,omitzero" yaml:"stop,omitempty"`
	Protected bool      `json:"protected,omitempty" yaml:"protected,omitempty"`
	Groups    []int64   `json:"groups,omitempty" yaml:"groups,omitempty"`
	Robots    string    `json:"robots,omitempty" yaml:"robots,omitempty"`
	// RootTitle is filled in by detail lookups from the root page of the tree.
	RootTitle string `json:"rootTitle,omitempty" yaml:"rootTitle,omitempty"`
}

// User is a back-end user, referenced as job author.
type User struct {
	ID    int64   `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Admin bool    `json:"admin,omitempty" yaml:"admin,omitempty"`
	Jobs  []int64 `json:"jobs,omitempty" yaml:"jobs,omitempty"`
	// Jobp holds the archive permissions (create, delete).
	Jobp    []string `json:"jobp,omitempty" yaml:"jobp,omitempty"`
	Modules []string `json:"modules,omitempty" yaml:"modules,omitempty"`
	Groups  []int64  `json:"groups,omitempty" yaml:"groups,omitempty"`
	// Inherit is one of group, extend or custom.
	Inherit string `json:"inherit,omitempty" yaml:"inherit,omitempty"`
}

// UserGroup is a back-end user group carrying archive permissions.
type UserGroup struct {
	ID   int64    `json:"id" yaml:"id"`
	Name string   `json:"name" yaml:"name"`
	Jobs []int64  `json:"jobs,omitempty" yaml:"jobs,omitempty"`
	Jobp []string `json:"jobp,omitempty" yaml:"jobp,omitempty"`
}

// File is a stored file referenced by UUID.
type File struct {
	UUID uuid.UUID `json:"uuid" yaml:"uuid"`
	Path string    `json:"path" yaml:"path"`
}

// Member is a front-end member. The zero value is an anonymous visitor.
type Member struct {
	ID     int64   `json:"id"`
	Groups []int64 `json:"groups,omitempty"`
}

// IsPublishedAt reports whether the job is visible at t.
func (j *Job) IsPublishedAt(t time.Time) bool {
	return isVisible(j.Published, j.Start, j.Stop, t)
}

// IDOrAlias returns the alias, or the numeric ID when no alias is set.
func (j *Job) IDOrAlias() string {
	if j.Alias != "" {
		return j.Alias
	}
	return formatID(j.ID)
}

// PublishedContent returns the published content elements in sorting order.
func (j *Job) PublishedContent() []ContentElement {
	out := make([]ContentElement, 0, len(j.Content))
	for _, c := range j.Content {
		if c.Published {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b ContentElement) int { return a.Sorting - b.Sorting })
	return out
}

// IsPublishedAt reports whether the page is visible at t.
func (p *Page) IsPublishedAt(t time.Time) bool {
	return isVisible(p.Published, p.Start, p.Stop, t)
}

// HasJobp reports whether the user holds the given archive permission.
func (u *User) HasJobp(perm string) bool {
	return slices.Contains(u.Jobp, perm)
}

// ModuleJobs is the back-end module for archives and jobs
const ModuleJobs = "jobs"

// HasModule reports whether the user may access the given back-end module.
func (u *User) HasModule(module string) bool {
	return u.Admin || slices.Contains(u.Modules, module)
}

func isVisible(published bool, start, stop, t time.Time) bool {
	if !published {
		return false
	}
	if !start.IsZero() && start.After(t) {
		return false
	}
	if !stop.IsZero() && !stop.After(t) {
		return false
	}
	return true
}
