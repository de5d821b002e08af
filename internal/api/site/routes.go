// Package site provides the front-end endpoints: rendered modules, insert
// tags, structured data, the sitemap and the search index.
package site

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maniaxatwork/jobs-server/internal/api/common"
	"github.com/maniaxatwork/jobs-server/internal/auth"
	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/frontend"
	"github.com/maniaxatwork/jobs-server/internal/inserttags"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/search"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// CacheTagsHeader carries the cache invalidation tags of a response
const CacheTagsHeader = "X-Cache-Tags"

// ModuleSummary describes a configured module
type ModuleSummary struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	Name     string  `json:"name,omitempty"`
	Archives []int64 `json:"archives"`
}

// ReplaceRequest is the body of POST /inserttags/replace
type ReplaceRequest struct {
	Text string `json:"text"`
	// URL is the page the text is rendered on
	URL string `json:"url,omitempty"`
}

// ReplaceResponse is the result of POST /inserttags/replace
type ReplaceResponse struct {
	Text string `json:"text"`
}

// TagResponse is the result of GET /inserttags/{tag}
type TagResponse struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// SearchPagesResponse is the result of GET /search/pages
type SearchPagesResponse struct {
	URLs []string `json:"urls"`
}

// RedirectResponse is the JSON body of a module redirect
type RedirectResponse struct {
	Location string `json:"location"`
}

// Routes holds the front-end handlers
type Routes struct {
	store       service.JobsService
	modules     *frontend.Registry
	sitemapRoot int64
	now         func() time.Time
}

// Option configures the front-end routes
type Option func(*Routes)

// WithSitemapRoot restricts /sitemap.xml to a page tree
func WithSitemapRoot(root int64) Option {
	return func(r *Routes) {
		r.sitemapRoot = root
	}
}

// WithClock replaces time.Now as reference time of the published checks
func WithClock(now func() time.Time) Option {
	return func(r *Routes) {
		r.now = now
	}
}

// NewRoutes creates the front-end handlers
func NewRoutes(store service.JobsService, modules *frontend.Registry, opts ...Option) *Routes {
	r := &Routes{store: store, modules: modules, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds the front-end endpoints to r
func (rt *Routes) Register(r chi.Router) {
	r.Get("/modules", rt.listModules)
	r.Get("/modules/{id}", rt.renderModule)
	r.Post("/inserttags/replace", rt.replaceInsertTags)
	r.Get("/inserttags/{tag}", rt.resolveInsertTag)
	r.Get("/jobs/{idOrAlias}/schema", rt.jobSchema)
	r.Get("/sitemap.xml", rt.sitemap)
	r.Get("/search/pages", rt.searchPages)
}

// Router creates the router for the front-end endpoints
func Router(store service.JobsService, modules *frontend.Registry, opts ...Option) http.Handler {
	r := chi.NewRouter()
	NewRoutes(store, modules, opts...).Register(r)
	return r
}

// listModules handles GET /modules
//
// @Summary		List front-end modules
// @Tags			frontend
// @Produce		json
// @Success		200	{array}	ModuleSummary
// @Router			/modules [get]
func (rt *Routes) listModules(w http.ResponseWriter, _ *http.Request) {
	modules := rt.modules.Modules()
	out := make([]ModuleSummary, 0, len(modules))
	for _, m := range modules {
		out = append(out, ModuleSummary{ID: m.ID, Type: m.Type, Name: m.Name, Archives: m.Archives})
	}
	common.WriteJSONResponse(w, out, http.StatusOK)
}

// pageURL returns the page a module renders for: the "url" query parameter
// when given, otherwise "/" with the request's remaining query.
func pageURL(r *http.Request) (*url.URL, error) {
	q := r.URL.Query()
	if raw := q.Get("url"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") {
			return nil, errors.New("url must be an absolute path")
		}
		return u, nil
	}
	q.Del("preview")
	return &url.URL{Path: "/", RawQuery: q.Encode()}, nil
}

func (rt *Routes) frontendRequest(r *http.Request) (*frontend.Request, error) {
	u, err := pageURL(r)
	if err != nil {
		return nil, err
	}
	return &frontend.Request{
		URL:            u,
		Member:         authz.MemberFromContext(r.Context()),
		Now:            rt.now(),
		BackendPreview: r.URL.Query().Get("preview") == "1" && rt.canPreview(r),
	}, nil
}

// canPreview reports whether the caller is a back-end user with access to
// the jobs module. Member tokens never unlock unpublished jobs. The stored
// user record wins over the token claims, as on the admin routes.
func (rt *Routes) canPreview(r *http.Request) bool {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return false
	}
	user, err := authz.UserFromClaims(identity.Claims)
	if err != nil {
		return false
	}

	stored, err := rt.store.GetUser(r.Context(), user.ID)
	switch {
	case err == nil:
		user = stored
	case !errors.Is(err, service.ErrUserNotFound):
		logger.Warnw("Failed to load preview user", "error", err, "user", user.ID)
		return false
	}
	return user.HasModule(jobs.ModuleJobs)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// renderModule handles GET /modules/{id}
//
// @Summary		Render a front-end module
// @Description	Renders the module for the page given by the url query parameter
// @Tags			frontend
// @Produce		json,html
// @Param			id	path	int		true	"Module ID"
// @Param			url	query	string	false	"Page URL including its query"
// @Success		200	{object}	frontend.Output
// @Failure		404	{object}	common.ErrorResponse
// @Router			/modules/{id} [get]
func (rt *Routes) renderModule(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetIDParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, err := rt.frontendRequest(r)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := rt.modules.Render(r.Context(), id, req)
	if err != nil {
		rt.writeModuleError(w, r, err)
		return
	}

	status := out.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set(CacheTagsHeader, strings.Join(out.Tags, ","))
	if !wantsHTML(r) {
		common.WriteJSONResponse(w, out, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(out.HTML))
}

func (*Routes) writeModuleError(w http.ResponseWriter, r *http.Request, err error) {
	var redirect *frontend.RedirectError
	if !errors.As(err, &redirect) {
		common.WriteServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", redirect.Location)
	if wantsHTML(r) {
		w.WriteHeader(redirect.Status)
		return
	}
	common.WriteJSONResponse(w, RedirectResponse{Location: redirect.Location}, redirect.Status)
}

func (rt *Routes) resolver(current *url.URL) *inserttags.Resolver {
	return inserttags.NewResolver(rt.store, rt.modules.Env().URLSettings()).WithURL(current)
}

// replaceInsertTags handles POST /inserttags/replace
//
// @Summary		Replace jobs insert tags
// @Tags			frontend
// @Accept			json
// @Produce		json
// @Param			body	body		ReplaceRequest	true	"Text with insert tags"
// @Success		200		{object}	ReplaceResponse
// @Router			/inserttags/replace [post]
func (rt *Routes) replaceInsertTags(w http.ResponseWriter, r *http.Request) {
	var body ReplaceRequest
	if !common.DecodeJSONBody(w, r, &body) {
		return
	}
	var current *url.URL
	if body.URL != "" {
		u, err := url.Parse(body.URL)
		if err != nil {
			common.WriteErrorResponse(w, "invalid url", http.StatusBadRequest)
			return
		}
		current = u
	}
	common.WriteJSONResponse(w, ReplaceResponse{Text: rt.resolver(current).Replace(r.Context(), body.Text)}, http.StatusOK)
}

// resolveInsertTag handles GET /inserttags/{tag}. Flags follow the tag
// separated by "|", e.g. jobs_url::1|absolute.
//
// @Summary		Resolve one jobs insert tag
// @Tags			frontend
// @Produce		json
// @Param			tag	path		string	true	"Insert tag without braces"
// @Success		200	{object}	TagResponse
// @Failure		404	{object}	common.ErrorResponse
// @Router			/inserttags/{tag} [get]
func (rt *Routes) resolveInsertTag(w http.ResponseWriter, r *http.Request) {
	raw, err := common.GetAndValidateURLParam(r, "tag")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	parts := strings.Split(raw, "|")
	value, ok, err := rt.resolver(nil).Resolve(r.Context(), parts[0], parts[1:])
	if err != nil {
		logger.Errorw("Failed to resolve insert tag", "tag", raw, "error", err)
		common.WriteErrorResponse(w, "failed to resolve insert tag", http.StatusInternalServerError)
		return
	}
	if !ok {
		common.WriteErrorResponse(w, "unsupported insert tag: "+parts[0], http.StatusNotFound)
		return
	}
	common.WriteJSONResponse(w, TagResponse{Tag: raw, Value: value}, http.StatusOK)
}

// jobSchema handles GET /jobs/{idOrAlias}/schema
//
// @Summary		Structured data of a job
// @Tags			frontend
// @Produce		application/ld+json
// @Param			idOrAlias	path		string	true	"Job ID or alias"
// @Success		200			{object}	map[string]any
// @Failure		404			{object}	common.ErrorResponse
// @Router			/jobs/{idOrAlias}/schema [get]
func (rt *Routes) jobSchema(w http.ResponseWriter, r *http.Request) {
	idOrAlias, err := common.GetAndValidateURLParam(r, "idOrAlias")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	env := rt.modules.Env()
	job, err := rt.store.FindPublishedJob(ctx, idOrAlias, service.WithNow(rt.now()))
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}

	archive, err := rt.store.GetArchive(ctx, job.PID)
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}
	visible, err := env.Checker.CanView(ctx, authz.MemberFromContext(ctx), archive)
	if err != nil {
		logger.Errorw("Failed to check archive access", "archive", archive.ID, "error", err)
		common.WriteErrorResponse(w, "failed to check access", http.StatusInternalServerError)
		return
	}
	if !visible {
		common.WriteErrorResponse(w, "job not found", http.StatusNotFound)
		return
	}

	posting, err := env.JobPosting(ctx, job, &url.URL{Path: "/"})
	if err != nil {
		logger.Errorw("Failed to build job posting", "job", job.ID, "error", err)
		common.WriteErrorResponse(w, "failed to build job posting", http.StatusInternalServerError)
		return
	}

	w.Header().Set(CacheTagsHeader, frontend.JobTag(job.ID))
	w.Header().Set("Content-Type", "application/ld+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(posting); err != nil {
		logger.Errorf("Failed to encode job posting: %v", err)
	}
}

func (rt *Routes) indexer() *search.Indexer {
	return search.NewIndexer(rt.store, rt.modules.Env().URLSettings(), search.WithClock(rt.now))
}

// sitemap handles GET /sitemap.xml
//
// @Summary		Sitemap of all job URLs
// @Tags			search
// @Produce		xml
// @Success		200
// @Router			/sitemap.xml [get]
func (rt *Routes) sitemap(w http.ResponseWriter, r *http.Request) {
	links, err := rt.indexer().SearchablePages(r.Context(), rt.sitemapRoot, true)
	if err != nil {
		logger.Errorw("Failed to collect sitemap URLs", "error", err)
		common.WriteErrorResponse(w, "failed to build sitemap", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := search.RenderSitemap(&buf, links); err != nil {
		logger.Errorw("Failed to render sitemap", "error", err)
		common.WriteErrorResponse(w, "failed to build sitemap", http.StatusInternalServerError)
		return
	}
	w.Header().Set(CacheTagsHeader, search.CacheTag(rt.sitemapRoot))
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// searchPages handles GET /search/pages
//
// @Summary		Searchable job URLs
// @Tags			search
// @Produce		json
// @Param			root	query		int		false	"Restrict to the page tree below root"
// @Param			sitemap	query		bool	false	"Apply the sitemap exclusions"
// @Success		200		{object}	SearchPagesResponse
// @Router			/search/pages [get]
func (rt *Routes) searchPages(w http.ResponseWriter, r *http.Request) {
	root, err := common.GetIDQuery(r, "root")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	isSitemap := false
	if raw := r.URL.Query().Get("sitemap"); raw != "" {
		if isSitemap, err = strconv.ParseBool(raw); err != nil {
			common.WriteErrorResponse(w, "sitemap must be a boolean", http.StatusBadRequest)
			return
		}
	}

	links, err := rt.indexer().SearchablePages(r.Context(), root, isSitemap)
	if err != nil {
		logger.Errorw("Failed to collect searchable pages", "error", err)
		common.WriteErrorResponse(w, "failed to collect searchable pages", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, SearchPagesResponse{URLs: links}, http.StatusOK)
}

