package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maniaxatwork/jobs-server/internal/api/site"
	"github.com/maniaxatwork/jobs-server/internal/config"
)

// configYAML is a file backed configuration writing its sitemap into dir
func configYAML(dir string) string {
	seed, err := filepath.Abs(seedFile)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf(`site:
  baseUrl: https://www.example.org
file:
  path: %s
search:
  sitemapPath: %s
  rootPage: 1
modules:
  - id: 10
    type: jobslist
    name: Job list
    archives: [1]
`, seed, filepath.Join(dir, "sitemap.xml"))
}

// startTestApp serves app on an ephemeral port and returns its base URL
// and the channel receiving the result of Serve
func startTestApp(t *testing.T, app *JobsApp) (string, <-chan error) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Serve(listener)
	}()

	base := "http://" + listener.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	return base, errChan
}

func waitStopped(t *testing.T, errChan <-chan error) {
	t.Helper()
	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after Stop()")
	}
}

func TestJobsApp_ServeAndStop(t *testing.T) {
	t.Parallel()

	app, err := NewJobsApp(context.Background(), WithConfig(createValidTestConfig()))
	require.NoError(t, err)

	base, errChan := startTestApp(t, app)

	resp, err := http.Get(base + "/modules")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var modules []site.ModuleSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&modules))
	require.Len(t, modules, 2)
	assert.Equal(t, int64(10), modules[0].ID)

	require.NoError(t, app.Stop(5*time.Second))
	waitStopped(t, errChan)

	_, err = http.Get(base + "/health")
	assert.Error(t, err)
}

func TestJobsApp_StopIdempotent(t *testing.T) {
	t.Parallel()

	app, err := NewJobsApp(context.Background(), WithConfig(createValidTestConfig()))
	require.NoError(t, err)

	require.NoError(t, app.Stop(time.Second))
	require.NoError(t, app.Stop(time.Second))
}

func TestJobsApp_StartInvalidAddress(t *testing.T) {
	t.Parallel()

	app, err := NewJobsApp(context.Background(), WithConfig(createValidTestConfig()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop(time.Second) })

	app.httpServer.Addr = "invalid::address"
	err = app.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server failed")
}

func TestJobsApp_WritesSitemap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := createValidTestConfig()
	cfg.Search = &config.SearchConfig{SitemapPath: filepath.Join(dir, "sitemap.xml"), RootPage: 1}

	app, err := NewJobsApp(context.Background(), WithConfig(cfg))
	require.NoError(t, err)

	_, errChan := startTestApp(t, app)

	// the scheduler rebuilds once on start
	var data []byte
	require.Eventually(t, func() bool {
		data, err = os.ReadFile(cfg.Search.SitemapPath)
		return err == nil && len(data) > 0
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, string(data), "https://www.example.org/job-detail/items/senior-go-developer")

	require.NoError(t, app.Stop(5*time.Second))
	waitStopped(t, errChan)
}

func TestJobsApp_ReloadsModules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML(dir)), 0600))

	m, err := config.NewManager(path, config.WithDebounce(10*time.Millisecond))
	require.NoError(t, err)

	app, err := NewJobsApp(context.Background(), WithConfigManager(m))
	require.NoError(t, err)

	base, errChan := startTestApp(t, app)

	resp, err := http.Get(base + "/modules/20")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	updated := configYAML(dir) + "  - id: 20\n    type: jobsreader\n    archives: [1]\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0600))

	require.Eventually(t, func() bool {
		_, ok := app.Components().Modules.Lookup(20)
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	resp, err = http.Get(base + "/modules")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `"id":20`), string(body))

	require.NoError(t, app.Stop(5*time.Second))
	waitStopped(t, errChan)
}
