package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
)

func newTestRun(t *testing.T, cfg config.ModuleConfig) *run {
	t.Helper()
	r := newTestRegistry(t)
	return newRun(r.Env(), cfg, newRequest(t, "/jobs?month=202403", nil))
}

func getJob(t *testing.T, r *run, id int64) *jobs.Job {
	t.Helper()
	job, err := r.env.Store.GetJob(t.Context(), id)
	require.NoError(t, err)
	return job
}

func TestGenerateLink(t *testing.T) {
	t.Parallel()
	r := newTestRun(t, config.ModuleConfig{})

	tests := []struct {
		name       string
		job        int64
		text       string
		addArchive bool
		readMore   bool
		want       string
	}{
		{
			name: "headline",
			job:  1,
			text: "Senior Go Developer",
			want: `<a href="/job-detail/items/senior-go-developer" title="Read the article: Senior Go Developer">Senior Go Developer</a>`,
		},
		{
			name:     "read more",
			job:      2,
			text:     "Read more …",
			readMore: true,
			want:     `<a href="/job-detail/items/frontend-engineer" title="Read the article: Frontend Engineer">Read more …<span class="invisible"> Frontend Engineer</span></a>`,
		},
		{
			name:     "external with target",
			job:      7,
			text:     "Intern",
			readMore: true,
			want:     `<a href="https://careers.example.com/intern?ref=site&amp;lang=en" title="Open the link in a new window" target="_blank" rel="noreferrer noopener">Intern</a>`,
		},
		{
			name: "internal target page",
			job:  4,
			text: "Redirected role",
			want: `<a href="/jobs" title="Read the article: Redirected role">Redirected role</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			link, err := r.GenerateLink(t.Context(), tt.text, getJob(t, r, tt.job), tt.addArchive, tt.readMore)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(link))
			assert.NotContains(t, string(link), "&amp;amp;")
		})
	}
}

func TestGenerateLink_AddArchive(t *testing.T) {
	t.Parallel()
	r := newTestRun(t, config.ModuleConfig{})

	link, err := r.GenerateLink(t.Context(), "x", getJob(t, r, 2), true, false)
	require.NoError(t, err)
	assert.Contains(t, string(link), `href="/job-detail/items/frontend-engineer?month=202403"`)
}

func TestParseArticle(t *testing.T) {
	t.Parallel()
	r := newTestRun(t, config.ModuleConfig{MetaFields: []string{"date", "author"}, ImgSize: "200x200"})

	view, err := r.ParseArticle(t.Context(), getJob(t, r, 1), false, " first", 1)
	require.NoError(t, err)

	assert.Equal(t, " featured first", view.Class)
	assert.Equal(t, "/job-detail/items/senior-go-developer", view.Link)
	assert.True(t, view.HasSubheadline)
	assert.True(t, view.HasTeaser)
	assert.NotContains(t, string(view.Teaser), "jobs@example.org")
	assert.True(t, view.HasText)
	assert.True(t, view.HasReader)
	assert.Equal(t, "2024-03-15 09:00", view.Date)
	assert.Equal(t, "by Jane Admin", view.Author)
	assert.True(t, view.HasMetaFields)
	assert.Equal(t, "2024-03-15T09:00:00+00:00", view.Datetime)
	require.NotNil(t, view.Archive)
	assert.Equal(t, "Open positions", view.Archive.Title)

	require.True(t, view.AddImage)
	assert.Equal(t, "/files/team.jpg", view.Figure.Src)
	assert.Equal(t, "200x200", view.Figure.Size)
	assert.Equal(t, "above", view.Figure.Floating)
	assert.Equal(t, view.Link, view.Figure.Href)

	assert.Contains(t, string(view.SchemaOrg), "JobPosting")
	assert.Equal(t, []string{"contao.db.tl_jobs.1"}, r.tags)
}

func TestParseArticle_External(t *testing.T) {
	t.Parallel()
	r := newTestRun(t, config.ModuleConfig{})

	view, err := r.ParseArticle(t.Context(), getJob(t, r, 7), false, "", 1)
	require.NoError(t, err)
	assert.True(t, view.HasText)
	assert.False(t, view.HasReader)
	assert.False(t, view.HasMetaFields)
	assert.Empty(t, view.Author)
	assert.False(t, view.AddImage)
}

func TestParseArticles_Classes(t *testing.T) {
	t.Parallel()
	r := newTestRun(t, config.ModuleConfig{Template: "jobs_short"})

	items := []*jobs.Job{getJob(t, r, 1), getJob(t, r, 2), getJob(t, r, 7)}
	out, err := r.ParseArticles(t.Context(), items, false)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Contains(t, string(out[0]), `class="layout_short arc_1 block featured first even"`)
	assert.Contains(t, string(out[1]), `class="layout_short arc_1 block odd"`)
	assert.Contains(t, string(out[2]), `class="layout_short arc_1 block last even"`)

	none, err := r.ParseArticles(t.Context(), nil, false)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestParseArticles_UnknownTemplate(t *testing.T) {
	t.Parallel()
	r := newTestRun(t, config.ModuleConfig{Template: "jobs_missing"})

	_, err := r.ParseArticles(t.Context(), []*jobs.Job{getJob(t, r, 2)}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown template "jobs_missing"`)
}

func TestSortOutProtected(t *testing.T) {
	t.Parallel()
	env := newTestRegistry(t).Env()

	tests := []struct {
		name   string
		ids    []int64
		member *jobs.Member
		want   []int64
	}{
		{name: "anonymous", ids: []int64{2, 1, 3}, want: []int64{1, 3}},
		{name: "member keeps order", ids: []int64{2, 1}, member: &jobs.Member{ID: 1, Groups: []int64{5}}, want: []int64{2, 1}},
		{name: "other group", ids: []int64{2}, member: &jobs.Member{ID: 1, Groups: []int64{6}}, want: []int64{}},
		{name: "unknown archive", ids: []int64{42}, want: []int64{}},
		{name: "no archives", ids: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := env.SortOutProtected(t.Context(), tt.ids, tt.member)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnv_JobPosting(t *testing.T) {
	t.Parallel()
	env := newTestRegistry(t).Env()

	job, err := env.Store.GetJob(t.Context(), 1)
	require.NoError(t, err)

	posting, err := env.JobPosting(t.Context(), job, nil)
	require.NoError(t, err)
	assert.Equal(t, "JobPosting", posting["@type"])
	assert.Equal(t, "/job-detail/items/senior-go-developer", posting["url"])
	assert.Contains(t, posting, "image")
}

func TestLabelsFrom(t *testing.T) {
	t.Parallel()

	l := LabelsFrom(map[string]string{"more": "Mehr", "previous": "Zurück", "unknown": "x", "by": ""})
	assert.Equal(t, "Mehr", l.More)
	assert.Equal(t, "Zurück", l.Pagination.Previous)
	assert.Equal(t, DefaultLabels.By, l.By)
	assert.Equal(t, DefaultLabels.Pagination.Next, l.Pagination.Next)
}
