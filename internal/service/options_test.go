package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
)

func TestNewQueryOptions(t *testing.T) {
	t.Parallel()

	featured := true
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	o, err := NewQueryOptions(
		WithArchives([]int64{1, 2}),
		WithFeatured(&featured),
		WithFeaturedFirst(),
		WithPeriod(from, to),
		WithLimit(10),
		WithOffset(5),
		WithOrder(jobs.OrderHeadlineAsc),
		WithNow(now),
		WithUnpublished(),
	)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, o.Archives)
	assert.True(t, *o.Featured)
	assert.True(t, o.FeaturedFirst)
	assert.True(t, o.HasPeriod)
	assert.Equal(t, from, o.From)
	assert.Equal(t, to, o.To)
	assert.Equal(t, 10, o.Limit)
	assert.Equal(t, 5, o.Offset)
	assert.Equal(t, jobs.OrderHeadlineAsc, o.Order)
	assert.Equal(t, now, o.Now)
	assert.True(t, o.IncludeUnpublished)
}

func TestNewQueryOptions_Defaults(t *testing.T) {
	t.Parallel()

	o, err := NewQueryOptions()
	require.NoError(t, err)
	assert.Equal(t, jobs.OrderDateDesc, o.Order)
	assert.False(t, o.Now.IsZero())
	assert.Zero(t, o.Limit)
	assert.Nil(t, o.Featured)
}

func TestOptionErrors(t *testing.T) {
	t.Parallel()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		build   func() error
		wantErr string
	}{
		{
			name:    "negative_limit",
			build:   func() error { _, err := NewQueryOptions(WithLimit(-1)); return err },
			wantErr: "invalid limit",
		},
		{
			name:    "negative_offset",
			build:   func() error { _, err := NewQueryOptions(WithOffset(-1)); return err },
			wantErr: "invalid offset",
		},
		{
			name:    "unknown_order",
			build:   func() error { _, err := NewQueryOptions(WithOrder("sideways")); return err },
			wantErr: "invalid order",
		},
		{
			name:    "inverted_period",
			build:   func() error { _, err := NewQueryOptions(WithPeriod(from, from.Add(-time.Hour))); return err },
			wantErr: "invalid period",
		},
		{
			name:    "zero_now",
			build:   func() error { _, err := NewQueryOptions(WithNow(time.Time{})); return err },
			wantErr: "invalid now",
		},
		{
			name:    "limit_on_archive_list",
			build:   func() error { _, err := NewListArchivesOptions(WithLimit(3)); return err },
			wantErr: "invalid option type",
		},
		{
			name:    "group_by_on_query",
			build:   func() error { _, err := NewQueryOptions(WithGroupBy(GroupByMonth)); return err },
			wantErr: "invalid option type",
		},
		{
			name:    "unknown_group_by",
			build:   func() error { _, err := NewPeriodOptions(WithGroupBy("week")); return err },
			wantErr: "invalid group by",
		},
		{
			name:    "nil_location",
			build:   func() error { _, err := NewPeriodOptions(WithLocation(nil)); return err },
			wantErr: "location is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewPeriodOptions(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	o, err := NewPeriodOptions(
		WithArchives([]int64{3}),
		WithGroupBy(GroupByMonth),
		WithUnpublished(),
		WithLocation(berlin),
	)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, o.Archives)
	assert.Equal(t, GroupByMonth, o.GroupBy)
	assert.True(t, o.IncludeUnpublished)
	assert.Equal(t, berlin, o.Location)

	d, err := NewPeriodOptions()
	require.NoError(t, err)
	assert.Equal(t, GroupByYear, d.GroupBy)
	assert.Equal(t, time.UTC, d.Location)
}

func TestQueryOptions_Visible(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	base := jobs.Job{
		ID:        1,
		PID:       1,
		Published: true,
		Date:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	featured := true

	tests := []struct {
		name string
		opts []Option
		job  func(j jobs.Job) jobs.Job
		want bool
	}{
		{name: "published", want: true},
		{
			name: "unpublished",
			job:  func(j jobs.Job) jobs.Job { j.Published = false; return j },
		},
		{
			name: "unpublished_in_preview",
			opts: []Option{WithUnpublished()},
			job:  func(j jobs.Job) jobs.Job { j.Published = false; return j },
			want: true,
		},
		{
			name: "not_started",
			job:  func(j jobs.Job) jobs.Job { j.Start = now.Add(time.Hour); return j },
		},
		{
			name: "other_archive",
			opts: []Option{WithArchives([]int64{2})},
		},
		{
			name: "featured_filter",
			opts: []Option{WithFeatured(&featured)},
		},
		{
			name: "outside_period",
			opts: []Option{WithPeriod(now, now.AddDate(0, 1, 0))},
		},
		{
			name: "inside_period",
			opts: []Option{WithPeriod(base.Date, base.Date.Add(time.Second))},
			want: true,
		},
		{
			name: "period_end_exclusive",
			opts: []Option{WithPeriod(base.Date.Add(-time.Hour), base.Date)},
		},
		{
			name: "fraction_in_last_second",
			job: func(j jobs.Job) jobs.Job {
				j.Date = time.Date(2024, 3, 31, 23, 59, 59, 500_000_000, time.UTC)
				return j
			},
			opts: []Option{WithPeriod(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o, err := NewQueryOptions(append([]Option{WithNow(now)}, tt.opts...)...)
			require.NoError(t, err)

			j := base
			if tt.job != nil {
				j = tt.job(j)
			}
			assert.Equal(t, tt.want, o.Visible(&j))
		})
	}
}
