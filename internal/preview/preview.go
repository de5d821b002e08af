// Package preview maps back-end edit screens to the front-end preview of a job.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/urls"
)

const (
	// Key is the preview key of jobs
	Key = "jobs"
	// QueryParam carries the job ID in preview URLs
	QueryParam = "jobs"

	jobsTable = "tl_jobs"
)

// ErrNoRequest is returned when a preview is requested outside of a request
var ErrNoRequest = errors.New("no request to build the preview from")

// Previewer builds preview queries and converts them back to job URLs
type Previewer struct {
	store    service.JobsService
	settings urls.Settings
}

// New returns a Previewer
func New(store service.JobsService, settings urls.Settings) *Previewer {
	return &Previewer{store: store, settings: settings}
}

// CreateQuery returns the preview query for key and the back-end request r.
// The result is empty when the request is not about a job.
func (p *Previewer) CreateQuery(ctx context.Context, r *http.Request, key, id string) (string, error) {
	if key != Key {
		return "", nil
	}
	if r == nil {
		return "", ErrNoRequest
	}

	q := r.URL.Query()
	// the archive list page has no single job to preview
	if q.Get("table") == jobsTable && !q.Has("act") {
		return "", nil
	}
	if q.Get("table") == jobsTable && q.Get("act") == "edit" {
		id = q.Get("id")
	}

	job, err := p.lookup(ctx, id)
	if err != nil || job == nil {
		return "", err
	}
	return QueryParam + "=" + strconv.FormatInt(job.ID, 10), nil
}

// ConvertURL returns the absolute front-end URL of the job named by the
// preview query of r, or "" when there is none.
func (p *Previewer) ConvertURL(ctx context.Context, r *http.Request) (string, error) {
	if r == nil {
		return "", ErrNoRequest
	}
	if !r.URL.Query().Has(QueryParam) {
		return "", nil
	}

	job, err := p.lookup(ctx, r.URL.Query().Get(QueryParam))
	if err != nil || job == nil {
		return "", err
	}

	u, err := urls.NewGenerator(p.store, p.settings, r.URL).JobURL(ctx, job, false, true)
	if err != nil {
		return "", fmt.Errorf("failed to generate preview URL of job %d: %w", job.ID, err)
	}
	return u, nil
}

func (p *Previewer) lookup(ctx context.Context, raw string) (*jobs.Job, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, nil
	}

	job, err := p.store.GetJob(ctx, id)
	if errors.Is(err, service.ErrJobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %d: %w", id, err)
	}
	return job, nil
}
