package frontend

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/service/inmemory"
)

const seedFile = "../service/inmemory/testdata/seed.yaml"

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testModules() []config.ModuleConfig {
	return []config.ModuleConfig{
		{ID: 10, Type: config.ModuleTypeList, Archives: []int64{1, 2}, MetaFields: []string{"date", "author"}},
		{ID: 11, Type: config.ModuleTypeList, Archives: []int64{1}, ReaderModule: 20},
		{ID: 12, Type: config.ModuleTypeList, Archives: []int64{1}, PerPage: 2},
		{ID: 13, Type: config.ModuleTypeList, Archives: []int64{1}, Featured: "featured", Template: "jobs_short"},
		{ID: 20, Type: config.ModuleTypeReader, Archives: []int64{1}, OverviewPage: 2},
		{ID: 21, Type: config.ModuleTypeReader, Archives: []int64{2}},
		{ID: 30, Type: config.ModuleTypeArchive, Headline: "Jobs", Archives: []int64{1}, Format: "jobs_month", JumpToCurrent: "all_items"},
		{ID: 31, Type: config.ModuleTypeArchive, Archives: []int64{1}, Format: "jobs_month", JumpToCurrent: "hide_module"},
		{ID: 32, Type: config.ModuleTypeArchive, Archives: []int64{1}, Format: "jobs_month", JumpToCurrent: "show_current", PerPage: 1},
		{ID: 40, Type: config.ModuleTypeMenu, Archives: []int64{1}, Format: "jobs_year"},
		{ID: 41, Type: config.ModuleTypeMenu, Archives: []int64{1}, Format: "jobs_month", ShowQuantity: true},
		{ID: 42, Type: config.ModuleTypeMenu, Archives: []int64{1}, Format: "jobs_day", JumpTo: 2},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Site:    config.SiteConfig{BaseURL: "https://www.example.org"},
		Modules: testModules(),
	}
}

func newTestStore(t *testing.T) service.JobsService {
	t.Helper()
	store, err := inmemory.New(context.Background(), inmemory.NewFileDataProvider(seedFile))
	require.NoError(t, err)
	return store
}

func newTestRegistry(t *testing.T, opts ...RegistryOption) *Registry {
	t.Helper()
	return newTestRegistryWithConfig(t, testConfig(), opts...)
}

func newTestRegistryWithConfig(t *testing.T, cfg *config.Config, opts ...RegistryOption) *Registry {
	t.Helper()
	store := newTestStore(t)
	authorizer, err := authz.NewCedarAuthorizer(nil)
	require.NoError(t, err)

	r, err := NewRegistry(store, authz.NewChecker(authorizer, store), cfg, opts...)
	require.NoError(t, err)
	return r
}

func newRequest(t *testing.T, rawURL string, member *jobs.Member) *Request {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return &Request{URL: u, Member: member, Now: testNow}
}

func renderModule(t *testing.T, r *Registry, id int64, rawURL string, member *jobs.Member) (*Output, error) {
	t.Helper()
	return r.Render(context.Background(), id, newRequest(t, rawURL, member))
}
