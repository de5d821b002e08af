// Package frontend renders the front-end modules of the jobs server: the job
// list, the period archive, the archive menu and the job reader.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/urls"
)

// ErrUnknownModule is returned for module IDs or types that are not configured
var ErrUnknownModule = errors.New("unknown module")

// NotFoundError makes the page respond with 404
type NotFoundError struct {
	URI string
}

func (e *NotFoundError) Error() string {
	return "Page not found: " + e.URI
}

// RedirectError makes the page respond with a redirect to Location
type RedirectError struct {
	Location string
	Status   int
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect %d to %s", e.Status, e.Location)
}

// InternalError makes the page respond with 500
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return e.Message
}

// PageMeta overrides the metadata of the page a module is rendered on
type PageMeta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Robots      string `json:"robots,omitempty"`
}

// Output is a rendered module
type Output struct {
	HTML   template.HTML `json:"html"`
	Tags   []string      `json:"cacheTags"`
	Meta   *PageMeta     `json:"meta,omitempty"`
	Status int           `json:"-"`
}

func emptyOutput() *Output {
	return &Output{Status: http.StatusOK, Tags: []string{}}
}

// Request is the front-end request a module renders for
type Request struct {
	// URL is the requested page URL including its query
	URL *url.URL
	// Member is the logged in front-end member; nil means anonymous
	Member *jobs.Member
	// Now is the reference time of the published checks
	Now time.Time
	// BackendPreview shows unpublished jobs to logged in back-end users
	BackendPreview bool
}

func (r *Request) query() url.Values {
	if r.URL == nil {
		return url.Values{}
	}
	return r.URL.Query()
}

func (r *Request) uri() string {
	if r.URL == nil {
		return "/"
	}
	return r.URL.RequestURI()
}

// Module is a configured front-end module
type Module interface {
	// Config returns the module definition
	Config() config.ModuleConfig
	// Generate renders the module for req
	Generate(ctx context.Context, req *Request) (*Output, error)
}

// Env is everything modules share: storage, permissions, site settings,
// hooks and a lookup of the other modules for reader delegation.
type Env struct {
	Store   service.JobsService
	Checker *authz.Checker
	Site    config.SiteConfig
	Hooks   *Hooks
	Labels  Labels
	// Lookup resolves another configured module
	Lookup func(id int64) (Module, bool)
}

// URLSettings returns the URL settings of the site
func (e *Env) URLSettings() urls.Settings {
	return urls.Settings{BaseURL: e.Site.BaseURL, UseAutoItem: e.Site.UseAutoItem, Suffix: e.Site.URLSuffix}
}

func (e *Env) location() *time.Location {
	return e.Site.GetLocation()
}

// queryOpts returns the options shared by every published job query of req
func queryOpts(req *Request, archives []int64) []service.Option {
	opts := []service.Option{service.WithArchives(archives)}
	if !req.Now.IsZero() {
		opts = append(opts, service.WithNow(req.Now))
	}
	if req.BackendPreview {
		opts = append(opts, service.WithUnpublished())
	}
	return opts
}
