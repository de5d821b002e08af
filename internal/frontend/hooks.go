package frontend

import (
	"context"
	"sync"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
)

// CountItemsFunc may replace the item count of a list module. Returning
// false passes on to the next hook and finally to the store.
type CountItemsFunc func(ctx context.Context, archives []int64, featured *bool, module config.ModuleConfig) (int, bool, error)

// FetchItemsFunc may replace the items of a list module. Returning false
// passes on to the next hook and finally to the store.
type FetchItemsFunc func(ctx context.Context, archives []int64, featured *bool, limit, offset int, module config.ModuleConfig) ([]*jobs.Job, bool, error)

// ParseArticleFunc may adjust an article before it is rendered
type ParseArticleFunc func(ctx context.Context, view *ArticleView, job *jobs.Job, module config.ModuleConfig)

// Hooks holds the registered module callbacks
type Hooks struct {
	mu            sync.RWMutex
	countItems    []CountItemsFunc
	fetchItems    []FetchItemsFunc
	parseArticles []ParseArticleFunc
}

// NewHooks returns an empty hook registry
func NewHooks() *Hooks {
	return &Hooks{}
}

// OnListCountItems registers a count hook
func (h *Hooks) OnListCountItems(f CountItemsFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.countItems = append(h.countItems, f)
}

// OnListFetchItems registers a fetch hook
func (h *Hooks) OnListFetchItems(f FetchItemsFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fetchItems = append(h.fetchItems, f)
}

// OnParseArticles registers an article hook
func (h *Hooks) OnParseArticles(f ParseArticleFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.parseArticles = append(h.parseArticles, f)
}

func (h *Hooks) countItemsHooks() []CountItemsFunc {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.countItems
}

func (h *Hooks) fetchItemsHooks() []FetchItemsFunc {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fetchItems
}

func (h *Hooks) parseArticlesHooks() []ParseArticleFunc {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.parseArticles
}
