package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

func TestOrderClause(t *testing.T) {
	t.Parallel()

	tests := []struct {
		order         jobs.Order
		featuredFirst bool
		want          string
	}{
		{order: jobs.OrderDateDesc, want: " ORDER BY date DESC, id DESC"},
		{order: jobs.OrderDateAsc, want: " ORDER BY date, id"},
		{order: jobs.OrderHeadlineAsc, want: " ORDER BY headline, id"},
		{order: jobs.OrderHeadlineDesc, featuredFirst: true, want: " ORDER BY featured DESC, headline DESC, id DESC"},
		{order: jobs.OrderRandom, want: " ORDER BY RANDOM()"},
		{order: "", want: " ORDER BY date DESC, id DESC"},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, orderClause(tt.order, tt.featuredFirst))
		})
	}
}

func TestLimitClause(t *testing.T) {
	t.Parallel()

	assert.Empty(t, limitClause(0, 0))
	assert.Equal(t, " LIMIT 5", limitClause(5, 0))
	assert.Equal(t, " LIMIT 5 OFFSET 10", limitClause(5, 10))
	assert.Equal(t, " OFFSET 3", limitClause(0, 3))
}

func TestQueryBuilder_ApplyQueryOptions(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	featured := false

	b := &queryBuilder{}
	b.idOrAlias("42")
	b.applyQueryOptions(&service.QueryOptions{
		Archives: []int64{1, 2},
		Featured: &featured,
		Now:      now,
	})

	assert.Equal(t,
		" WHERE (id = $1 OR alias = $2) AND published AND (start IS NULL OR start <= $3) AND (stop IS NULL OR stop > $4)"+
			" AND pid = ANY($5) AND featured = $6",
		b.clause())
	assert.Equal(t, []any{int64(42), "42", now, now, []int64{1, 2}, false}, b.args)

	preview := &queryBuilder{}
	preview.idOrAlias("senior-go-developer")
	preview.applyQueryOptions(&service.QueryOptions{IncludeUnpublished: true, Now: now})
	assert.Equal(t, " WHERE alias = $1", preview.clause())
}

func TestBuildJobSQL(t *testing.T) {
	t.Parallel()

	assert.Contains(t, insertJobSQL, "VALUES ($1, $2,")
	assert.Contains(t, insertJobSQL, "$35) RETURNING id, pid, tstamp")
	assert.Contains(t, updateJobSQL, "pid = $1, headline = $2")
	assert.Contains(t, updateJobSQL, "tstamp = NOW() WHERE id = $36 RETURNING")
	assert.Len(t, jobArgs(&jobs.Job{}), len(jobWriteColumns))
}
