package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
)

// Option is a function that sets an option for service operations
type Option func(T any) error

// GroupBy is the bucket size of CountByPeriod
type GroupBy string

const (
	// GroupByYear buckets jobs by year
	GroupByYear GroupBy = "year"
	// GroupByMonth buckets jobs by year and month
	GroupByMonth GroupBy = "month"
	// GroupByDay buckets jobs by calendar day
	GroupByDay GroupBy = "day"
)

type archivesOption interface {
	setArchives(ids []int64) error
}

type featuredOption interface {
	setFeatured(featured *bool) error
}

type featuredFirstOption interface {
	setFeaturedFirst() error
}

type periodOption interface {
	setPeriod(from, to time.Time) error
}

type limitOption interface {
	setLimit(limit int) error
}

type offsetOption interface {
	setOffset(offset int) error
}

type orderOption interface {
	setOrder(order jobs.Order) error
}

type nowOption interface {
	setNow(now time.Time) error
}

type unpublishedOption interface {
	setUnpublished() error
}

type groupByOption interface {
	setGroupBy(groupBy GroupBy) error
}

// ListArchivesOptions is the options for the ListArchives operation
type ListArchivesOptions struct {
	IDs []int64
}

//nolint:unparam
func (o *ListArchivesOptions) setArchives(ids []int64) error {
	o.IDs = ids
	return nil
}

// QueryOptions is the options for the published job queries
type QueryOptions struct {
	Archives      []int64
	Featured      *bool
	FeaturedFirst bool
	From          time.Time
	To            time.Time
	HasPeriod     bool
	Limit         int
	Offset        int
	Order         jobs.Order
	Now           time.Time
	// IncludeUnpublished lifts the published and start/stop checks (back-end preview)
	IncludeUnpublished bool
}

//nolint:unparam
func (o *QueryOptions) setArchives(ids []int64) error {
	o.Archives = ids
	return nil
}

//nolint:unparam
func (o *QueryOptions) setFeatured(featured *bool) error {
	o.Featured = featured
	return nil
}

//nolint:unparam
func (o *QueryOptions) setFeaturedFirst() error {
	o.FeaturedFirst = true
	return nil
}

func (o *QueryOptions) setPeriod(from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("invalid period: %s is before %s", to, from)
	}
	o.From = from
	o.To = to
	o.HasPeriod = true
	return nil
}

//nolint:unparam
func (o *QueryOptions) setLimit(limit int) error {
	o.Limit = limit
	return nil
}

//nolint:unparam
func (o *QueryOptions) setOffset(offset int) error {
	o.Offset = offset
	return nil
}

//nolint:unparam
func (o *QueryOptions) setOrder(order jobs.Order) error {
	o.Order = order
	return nil
}

//nolint:unparam
func (o *QueryOptions) setNow(now time.Time) error {
	o.Now = now
	return nil
}

//nolint:unparam
func (o *QueryOptions) setUnpublished() error {
	o.IncludeUnpublished = true
	return nil
}

// Visible reports whether job passes the published, archive, featured and period filters
func (o *QueryOptions) Visible(job *jobs.Job) bool {
	if !o.IncludeUnpublished && !job.IsPublishedAt(o.Now) {
		return false
	}
	if len(o.Archives) > 0 && !slices.Contains(o.Archives, job.PID) {
		return false
	}
	if o.Featured != nil && job.Featured != *o.Featured {
		return false
	}
	if o.HasPeriod && (job.Date.Before(o.From) || !job.Date.Before(o.To)) {
		return false
	}
	return true
}

// PeriodOptions is the options for the CountByPeriod operation
type PeriodOptions struct {
	Archives           []int64
	GroupBy            GroupBy
	IncludeUnpublished bool
	Now                time.Time
	Location           *time.Location
}

//nolint:unparam
func (o *PeriodOptions) setArchives(ids []int64) error {
	o.Archives = ids
	return nil
}

//nolint:unparam
func (o *PeriodOptions) setUnpublished() error {
	o.IncludeUnpublished = true
	return nil
}

//nolint:unparam
func (o *PeriodOptions) setNow(now time.Time) error {
	o.Now = now
	return nil
}

func (o *PeriodOptions) setGroupBy(groupBy GroupBy) error {
	switch groupBy {
	case GroupByYear, GroupByMonth, GroupByDay:
		o.GroupBy = groupBy
		return nil
	default:
		return fmt.Errorf("invalid group by: %s", groupBy)
	}
}

// NewQueryOptions applies opts over the defaults: date descending order and the current time
func NewQueryOptions(opts ...Option) (*QueryOptions, error) {
	o := &QueryOptions{Order: jobs.OrderDateDesc, Now: time.Now()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// NewPeriodOptions applies opts over the defaults: yearly buckets in UTC and the current time
func NewPeriodOptions(opts ...Option) (*PeriodOptions, error) {
	o := &PeriodOptions{GroupBy: GroupByYear, Now: time.Now(), Location: time.UTC}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// NewListArchivesOptions applies opts to an empty ListArchivesOptions
func NewListArchivesOptions(opts ...Option) (*ListArchivesOptions, error) {
	o := &ListArchivesOptions{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithArchives restricts an operation to the given archive IDs
func WithArchives(ids []int64) Option {
	return func(o any) error {
		switch o := o.(type) {
		case archivesOption:
			return o.setArchives(ids)
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
	}
}

// WithFeatured filters by the featured flag; nil means no filter
func WithFeatured(featured *bool) Option {
	return func(o any) error {
		switch o := o.(type) {
		case featuredOption:
			return o.setFeatured(featured)
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
	}
}

// WithFeaturedFirst sorts featured jobs before all others
func WithFeaturedFirst() Option {
	return func(o any) error {
		switch o := o.(type) {
		case featuredFirstOption:
			return o.setFeaturedFirst()
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
	}
}

// WithPeriod restricts jobs to those dated within [from, to). The end is
// exclusive so sub-second dates in the last second of a period still match.
func WithPeriod(from, to time.Time) Option {
	return func(o any) error {
		switch o := o.(type) {
		case periodOption:
			return o.setPeriod(from, to)
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
	}
}

// WithLimit sets the maximum number of results; 0 means unlimited
func WithLimit(limit int) Option {
	return func(o any) error {
		if limit < 0 {
			return fmt.Errorf("invalid limit: %d", limit)
		}

		switch o := o.(type) {
		case limitOption:
			return o.setLimit(limit)
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
	}
}

// WithOffset sets the number of results to skip
func WithOffset(offset int) Option {
	return func(o any) error {
		if offset < 0 {
			return fmt.Errorf("invalid offset: %d", offset)
		}

		switch o := o.(type) {
		case offsetOption:
			return o.setOffset(offset)
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
	}
}

// WithOrder sets the sort order
func WithOrder(order jobs.Order) Option {
	return func(o any) error {
		if !order.Valid() {
			return fmt.Errorf("invalid order: %s", order)
		}

		switch o := o.(type) {
		case orderOption:
			return o.setOrder(order)
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
	}
}

// WithNow sets the reference time of the published checks
func WithNow(now time.Time) Option {
	return func(o any) error {
		if now.IsZero() {
			return fmt.Errorf("invalid now: %s", now)
		}

		switch o := o.(type) {
		case nowOption:
			return o.setNow(now)
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
	}
}

// WithUnpublished includes unpublished jobs
func WithUnpublished() Option {
	return func(o any) error {
		switch o := o.(type) {
		case unpublishedOption:
			return o.setUnpublished()
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
	}
}

// WithGroupBy sets the bucket size of CountByPeriod
func WithGroupBy(groupBy GroupBy) Option {
	return func(o any) error {
		switch o := o.(type) {
		case groupByOption:
			return o.setGroupBy(groupBy)
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
	}
}

// WithLocation sets the time zone used to bucket CountByPeriod
func WithLocation(loc *time.Location) Option {
	return func(o any) error {
		if loc == nil {
			return fmt.Errorf("location is required")
		}
		switch o := o.(type) {
		case *PeriodOptions:
			o.Location = loc
			return nil
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
	}
}
