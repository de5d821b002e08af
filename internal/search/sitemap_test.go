package search

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSitemap(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RenderSitemap(&buf, []string{
		"https://example.org/jobs/items/a",
		"https://example.org/jobs/items/b?x=1&y=2",
	}))

	want := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>https://example.org/jobs/items/a</loc>
  </url>
  <url>
    <loc>https://example.org/jobs/items/b?x=1&amp;y=2</loc>
  </url>
</urlset>
`
	assert.Equal(t, want, buf.String())
}

func TestRenderSitemap_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RenderSitemap(&buf, nil))
	assert.Contains(t, buf.String(), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`)
}

func TestWriteSitemap(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sitemap.xml")

	require.NoError(t, WriteSitemap(context.Background(), path, []string{"https://example.org/a"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<loc>https://example.org/a</loc>")

	require.NoError(t, WriteSitemap(context.Background(), path, []string{"https://example.org/b"}))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "https://example.org/a")
	assert.Contains(t, string(data), "<loc>https://example.org/b</loc>")

	// only the sitemap and its lock file remain
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"sitemap.xml", "sitemap.xml.lock"}, names)
}

func TestWriteSitemap_Concurrent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sitemap.xml")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, WriteSitemap(context.Background(), path, []string{"https://example.org/a"}))
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "</urlset>")
}

func TestWriteSitemap_MissingDirectory(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "missing", "sitemap.xml")

	err := WriteSitemap(context.Background(), path, nil)
	require.Error(t, err)
}
