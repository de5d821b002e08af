package jobs

import (
	"fmt"
	"slices"
	"strconv"
)

// Source decides where a job links to.
type Source string

const (
	// SourceDefault renders the job on the archive reader page
	SourceDefault Source = "default"
	// SourceInternal redirects to another site page
	SourceInternal Source = "internal"
	// SourceExternal links to an external URL
	SourceExternal Source = "external"
)

// Order is the sort order of list and archive modules.
type Order string

const (
	OrderDateDesc     Order = "order_date_desc"
	OrderDateAsc      Order = "order_date_asc"
	OrderHeadlineAsc  Order = "order_headline_asc"
	OrderHeadlineDesc Order = "order_headline_desc"
	OrderRandom       Order = "order_random"
)

// FeaturedFilter restricts list output by the featured flag.
type FeaturedFilter string

const (
	FeaturedAll     FeaturedFilter = "all_items"
	FeaturedOnly    FeaturedFilter = "featured"
	FeaturedExclude FeaturedFilter = "unfeatured"
	FeaturedFirst   FeaturedFilter = "featured_first"
)

// Format is the period granularity of archive and menu modules.
type Format string

const (
	FormatDay   Format = "jobs_day"
	FormatMonth Format = "jobs_month"
	FormatYear  Format = "jobs_year"
)

// JumpToCurrent controls archive behaviour when no period is requested.
type JumpToCurrent string

const (
	JumpToHide          JumpToCurrent = "hide_module"
	JumpToCurrentPeriod JumpToCurrent = "show_current"
	JumpToAll           JumpToCurrent = "all_items"
)

// MetaField is a meta line rendered next to a job.
type MetaField string

const (
	MetaDate   MetaField = "date"
	MetaAuthor MetaField = "author"
)

// RobotsOptions lists the accepted robots values. The empty string means "inherit".
var RobotsOptions = []string{"index,follow", "index,nofollow", "noindex,follow", "noindex,nofollow"}

// RobotsNoIndexNoFollow excludes a page or job from sitemaps.
const RobotsNoIndexNoFollow = "noindex,nofollow"

// FloatingOptions lists the accepted image positions.
var FloatingOptions = []string{"above", "left", "right", "below"}

// Archive permissions stored in User.Jobp.
const (
	PermCreate = "create"
	PermDelete = "delete"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceDefault, SourceInternal, SourceExternal:
		return true
	}
	return false
}

// Valid reports whether o is a known order.
func (o Order) Valid() bool {
	switch o {
	case OrderDateDesc, OrderDateAsc, OrderHeadlineAsc, OrderHeadlineDesc, OrderRandom:
		return true
	}
	return false
}

// Featured maps the filter to the featured flag used by queries.
// A nil result means both featured and unfeatured jobs.
func (f FeaturedFilter) Featured() *bool {
	switch f {
	case FeaturedOnly:
		v := true
		return &v
	case FeaturedExclude:
		v := false
		return &v
	}
	return nil
}

// Valid reports whether f is a known featured filter.
func (f FeaturedFilter) Valid() bool {
	switch f {
	case "", FeaturedAll, FeaturedOnly, FeaturedExclude, FeaturedFirst:
		return true
	}
	return false
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatDay, FormatMonth, FormatYear:
		return true
	}
	return false
}

// Valid reports whether j is a known jump-to-current mode.
func (j JumpToCurrent) Valid() bool {
	switch j {
	case JumpToHide, JumpToCurrentPeriod, JumpToAll:
		return true
	}
	return false
}

// ValidRobots reports whether r is empty or one of RobotsOptions.
func ValidRobots(r string) bool {
	return r == "" || slices.Contains(RobotsOptions, r)
}

// ValidFloating reports whether f is empty or one of FloatingOptions.
func ValidFloating(f string) bool {
	return f == "" || slices.Contains(FloatingOptions, f)
}

// ParseOrder parses a configured order, defaulting to date descending.
func ParseOrder(s string) (Order, error) {
	if s == "" {
		return OrderDateDesc, nil
	}
	o := Order(s)
	if !o.Valid() {
		return "", fmt.Errorf("unknown order %q", s)
	}
	return o, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
