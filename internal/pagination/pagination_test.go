package pagination

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                                           string
		total, skipFirst, numberOfItems, perPage, page int
		want                                           Window
		wantErr                                        bool
	}{
		{
			name:  "unpaginated",
			total: 12,
			want:  Window{Total: 12, Page: 1},
		},
		{
			name:  "number_of_items_only",
			total: 12, numberOfItems: 5, skipFirst: 2,
			want: Window{Total: 10, Page: 1, Offset: 2, Limit: 5},
		},
		{
			name:  "number_of_items_within_one_page",
			total: 12, numberOfItems: 5, perPage: 5,
			want: Window{Total: 12, PerPage: 5, Page: 1, Limit: 5},
		},
		{
			name:  "first_page",
			total: 12, perPage: 5, page: 1,
			want: Window{Total: 12, PerPage: 5, Page: 1, Limit: 5, Paginated: true},
		},
		{
			name:  "last_page_is_short",
			total: 12, perPage: 5, page: 3,
			want: Window{Total: 12, PerPage: 5, Page: 3, Offset: 10, Limit: 2, Paginated: true},
		},
		{
			name:  "skip_first_shifts_offset",
			total: 12, skipFirst: 2, perPage: 5, page: 2,
			want: Window{Total: 10, PerPage: 5, Page: 2, Offset: 7, Limit: 5, Paginated: true},
		},
		{
			name:  "number_of_items_caps_total",
			total: 30, numberOfItems: 8, perPage: 5, page: 2,
			want: Window{Total: 8, PerPage: 5, Page: 2, Offset: 5, Limit: 3, Paginated: true},
		},
		{
			name:  "page_zero",
			total: 12, perPage: 5, page: 0,
			wantErr: true,
		},
		{
			name:  "page_beyond_last",
			total: 12, perPage: 5, page: 4,
			wantErr: true,
		},
		{
			name:  "empty_result_allows_page_one",
			total: 0, perPage: 5, page: 1,
			want: Window{Total: 0, PerPage: 5, Page: 1, Limit: 0, Paginated: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ForList(tt.total, tt.skipFirst, tt.numberOfItems, tt.perPage, tt.page)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindow_Empty(t *testing.T) {
	t.Parallel()

	w, err := ForList(3, 5, 0, 2, 1)
	require.NoError(t, err)
	assert.True(t, w.Empty())

	w, err = ForList(3, 0, 0, 0, 1)
	require.NoError(t, err)
	assert.False(t, w.Empty())
}

func TestForArchive(t *testing.T) {
	t.Parallel()

	w, err := ForArchive(7, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, Window{Total: 7, Page: 1}, w)

	w, err = ForArchive(7, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, Window{Total: 7, PerPage: 3, Page: 3, Offset: 6, Limit: 3, Paginated: true}, w)

	_, err = ForArchive(7, 3, 4)
	assert.ErrorIs(t, err, ErrOutOfRange)

	w, err = ForArchive(0, 3, 9)
	require.NoError(t, err)
	assert.False(t, w.Paginated)
}

func TestPageFromQuery(t *testing.T) {
	t.Parallel()

	page, err := PageFromQuery(url.Values{}, ListParam(3))
	require.NoError(t, err)
	assert.Equal(t, 1, page)

	page, err = PageFromQuery(url.Values{"page_n3": {"4"}}, ListParam(3))
	require.NoError(t, err)
	assert.Equal(t, 4, page)

	_, err = PageFromQuery(url.Values{"page_a3": {"two"}}, ArchiveParam(3))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestPagination_Menu(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("/jobs?month=202403&page_n1=4")
	require.NoError(t, err)

	t.Run("single_page", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, New(4, 5, 7, "page_n1").Menu(1, base))
	})

	t.Run("middle_page", func(t *testing.T) {
		t.Parallel()
		m := New(100, 10, 5, "page_n1").Menu(5, base)
		require.NotNil(t, m)

		assert.Equal(t, "Page 5 of 10", m.Summary)
		require.NotNil(t, m.First)
		assert.Equal(t, "/jobs?month=202403", m.First.Href)
		assert.Equal(t, "/jobs?month=202403&page_n1=4", m.Previous.Href)
		assert.Equal(t, "/jobs?month=202403&page_n1=6", m.Next.Href)
		assert.Equal(t, "/jobs?month=202403&page_n1=10", m.Last.Href)

		var numbers []int
		for _, l := range m.Pages {
			numbers = append(numbers, l.Page)
			assert.Equal(t, l.Page == 5, l.Current)
		}
		assert.Equal(t, []int{3, 4, 5, 6, 7}, numbers)
	})

	t.Run("window_shifts_at_edges", func(t *testing.T) {
		t.Parallel()
		p := New(100, 10, 5, "page_n1")

		first := p.Menu(1, base)
		assert.Nil(t, first.First)
		assert.Nil(t, first.Previous)
		assert.Len(t, first.Pages, 5)
		assert.Equal(t, 1, first.Pages[0].Page)

		last := p.Menu(10, base)
		assert.Nil(t, last.Next)
		assert.Nil(t, last.Last)
		assert.Len(t, last.Pages, 5)
		assert.Equal(t, 10, last.Pages[4].Page)
	})

	t.Run("even_link_count", func(t *testing.T) {
		t.Parallel()
		p := New(100, 10, 4, "page_n1")

		tests := []struct {
			current int
			want    []int
		}{
			{current: 1, want: []int{1, 2, 3, 4, 5}},
			{current: 2, want: []int{1, 2, 3, 4, 5}},
			{current: 5, want: []int{3, 4, 5, 6, 7}},
			{current: 9, want: []int{6, 7, 8, 9, 10}},
			{current: 10, want: []int{6, 7, 8, 9, 10}},
		}
		for _, tt := range tests {
			var numbers []int
			for _, l := range p.Menu(tt.current, base).Pages {
				numbers = append(numbers, l.Page)
			}
			assert.Equal(t, tt.want, numbers, "page %d", tt.current)
		}
	})
}

func TestPagination_HTML(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("/jobs?a=1&b=2")
	require.NoError(t, err)

	out, err := New(20, 10, 7, "page_a2").HTML(1, base)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `<strong class="active">1</strong>`)
	assert.Contains(t, html, `href="/jobs?a=1&amp;b=2&amp;page_a2=2"`)
	assert.False(t, strings.Contains(html, `class="previous"`))

	out, err = New(5, 10, 7, "page_a2").HTML(1, base)
	require.NoError(t, err)
	assert.Empty(t, out)
}
