package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJob_IsPublishedAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		job  Job
		want bool
	}{
		{name: "unpublished", job: Job{Published: false}, want: false},
		{name: "published without window", job: Job{Published: true}, want: true},
		{name: "start in future", job: Job{Published: true, Start: now.Add(time.Hour)}, want: false},
		{name: "start in past", job: Job{Published: true, Start: now.Add(-time.Hour)}, want: true},
		{name: "stop reached", job: Job{Published: true, Stop: now}, want: false},
		{name: "stop in future", job: Job{Published: true, Stop: now.Add(time.Minute)}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.job.IsPublishedAt(now))
		})
	}
}

func TestJob_IDOrAlias(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "backend-developer", (&Job{ID: 4, Alias: "backend-developer"}).IDOrAlias())
	assert.Equal(t, "4", (&Job{ID: 4}).IDOrAlias())
}

func TestJob_PublishedContent(t *testing.T) {
	t.Parallel()

	job := Job{Content: []ContentElement{
		{ID: 1, Sorting: 64, HTML: "<p>b</p>", Published: true},
		{ID: 2, Sorting: 32, HTML: "<p>a</p>", Published: true},
		{ID: 3, Sorting: 16, HTML: "<p>hidden</p>"},
	}}

	got := job.PublishedContent()
	if assert.Len(t, got, 2) {
		assert.Equal(t, int64(2), got[0].ID)
		assert.Equal(t, int64(1), got[1].ID)
	}
}

func TestEnums(t *testing.T) {
	t.Parallel()

	assert.True(t, SourceInternal.Valid())
	assert.False(t, Source("article").Valid())

	o, err := ParseOrder("")
	assert.NoError(t, err)
	assert.Equal(t, OrderDateDesc, o)
	_, err = ParseOrder("order_foo")
	assert.Error(t, err)

	assert.Nil(t, FeaturedAll.Featured())
	assert.Nil(t, FeaturedFirst.Featured())
	if f := FeaturedOnly.Featured(); assert.NotNil(t, f) {
		assert.True(t, *f)
	}
	if f := FeaturedExclude.Featured(); assert.NotNil(t, f) {
		assert.False(t, *f)
	}

	assert.True(t, ValidRobots(""))
	assert.True(t, ValidRobots("noindex,nofollow"))
	assert.False(t, ValidRobots("none"))
	assert.False(t, ValidFloating("center"))
}

func TestUserPermissions(t *testing.T) {
	t.Parallel()

	u := User{Jobp: []string{PermCreate}, Modules: []string{"jobs"}}
	assert.True(t, u.HasJobp(PermCreate))
	assert.False(t, u.HasJobp(PermDelete))
	assert.True(t, u.HasModule("jobs"))
	assert.False(t, u.HasModule("news"))
	assert.True(t, (&User{Admin: true}).HasModule("news"))
}
