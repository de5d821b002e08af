package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/maniaxatwork/jobs-server/internal/api/common"
	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/htmltext"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/picker"
	"github.com/maniaxatwork/jobs-server/internal/preview"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/urls"
)

// defaultTitleTag is the page title layout; %s stands for the job title
const defaultTitleTag = "%s - {{page::rootPageTitle}}"

// SerpPreview is the search result preview of a job
type SerpPreview struct {
	URL         string `json:"url"`
	TitleTag    string `json:"titleTag"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PickerResponse is the result of GET /admin/picker
type PickerResponse struct {
	MenuItem   picker.MenuItem   `json:"menuItem"`
	Attributes picker.Attributes `json:"attributes"`
	Table      string            `json:"table"`
	// Supported reports whether the current value is a jobs insert tag
	Supported bool `json:"supported"`
}

// PreviewQueryResponse is the result of GET /admin/preview
type PreviewQueryResponse struct {
	Query string `json:"query"`
}

// PreviewURLResponse is the result of GET /admin/preview/convert
type PreviewURLResponse struct {
	URL string `json:"url"`
}

// serpPreview handles GET /admin/jobs/{id}/serp
//
// @Summary		Search result preview of a job
// @Tags			admin
// @Produce		json
// @Param			id	path		int	true	"Job ID"
// @Success		200	{object}	SerpPreview
// @Failure		403	{object}	authz.ForbiddenResponse
// @Failure		404	{object}	common.ErrorResponse
// @Router			/admin/jobs/{id}/serp [get]
func (rt *Routes) serpPreview(w http.ResponseWriter, r *http.Request) {
	job, _, ok := rt.checkedJob(w, r, authz.ActShow, authz.JobParams{})
	if !ok {
		return
	}
	ctx := r.Context()

	u, err := urls.NewGenerator(rt.store, rt.urlSettings(), nil).JobURL(ctx, job, false, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	titleTag, err := rt.titleTag(ctx, job)
	if err != nil {
		writeError(w, r, err)
		return
	}

	title := job.PageTitle
	if title == "" {
		title = job.Headline
	}
	description := job.Description
	if description == "" {
		description = htmltext.ToPlain(job.Teaser)
	}

	serp := SerpPreview{URL: u, TitleTag: titleTag, Description: description}
	if titleTag != "" {
		serp.Title = fmt.Sprintf(titleTag, title)
	} else {
		serp.Title = title
	}
	common.WriteJSONResponse(w, serp, http.StatusOK)
}

// titleTag returns the title layout of the page the job is rendered on with
// the root page title filled in, or "" when the archive has no target page.
// Literal percent signs are escaped so the result is a format string.
func (rt *Routes) titleTag(ctx context.Context, job *jobs.Job) (string, error) {
	archive, err := rt.store.GetArchive(ctx, job.PID)
	if errors.Is(err, service.ErrArchiveNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if archive.JumpTo == 0 {
		return "", nil
	}
	page, err := rt.store.GetPageWithDetails(ctx, archive.JumpTo)
	if errors.Is(err, service.ErrPageNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	rootTitle := strings.ReplaceAll(page.RootTitle, "%", "%%")
	return strings.ReplaceAll(defaultTitleTag, "{{page::rootPageTitle}}", rootTitle), nil
}

// pickerData handles GET /admin/picker
//
// @Summary		Jobs picker
// @Description	Returns the picker menu entry and widget settings for a link field value
// @Tags			admin
// @Produce		json
// @Param			context		query		string	true	"Picker context, e.g. link"
// @Param			value		query		string	false	"Current field value"
// @Param			insertTag	query		string	false	"Insert tag format with %s"
// @Success		200			{object}	PickerResponse
// @Failure		400			{object}	common.ErrorResponse
// @Router			/admin/picker [get]
func (rt *Routes) pickerData(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	cfg := picker.Config{
		Context: q.Get("context"),
		Value:   q.Get("value"),
		Current: q.Get("current"),
		Extras:  map[string]string{},
	}
	if tag := q.Get("insertTag"); tag != "" {
		if !strings.Contains(tag, "%s") {
			common.WriteErrorResponse(w, "insertTag must contain %s", http.StatusBadRequest)
			return
		}
		cfg.Extras["insertTag"] = tag
	}

	if !rt.picker.SupportsContext(cfg.Context, user) {
		common.WriteErrorResponse(w, fmt.Sprintf("unsupported picker context %q", cfg.Context), http.StatusBadRequest)
		return
	}

	item, err := rt.picker.MenuItem(r.Context(), cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, PickerResponse{
		MenuItem:   item,
		Attributes: rt.picker.DcaAttributes(cfg),
		Table:      rt.picker.DcaTable(),
		Supported:  rt.picker.SupportsValue(cfg),
	}, http.StatusOK)
}

// previewQuery handles GET /admin/preview
//
// @Summary		Front-end preview query of a back-end screen
// @Description	Maps the back-end query (table, act, id) to the preview query of a job
// @Tags			admin
// @Produce		json
// @Param			key		query		string	false	"Preview key, defaults to jobs"
// @Param			table	query		string	false	"Back-end table"
// @Param			act		query		string	false	"Back-end action"
// @Param			id		query		string	false	"Record ID"
// @Success		200		{object}	PreviewQueryResponse
// @Router			/admin/preview [get]
func (rt *Routes) previewQuery(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	q := r.URL.Query()
	key := q.Get("key")
	if key == "" {
		key = preview.Key
	}

	query, err := rt.previewer().CreateQuery(r.Context(), r, key, q.Get("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, PreviewQueryResponse{Query: query}, http.StatusOK)
}

// previewURL handles GET /admin/preview/convert
//
// @Summary		Front-end URL of a preview query
// @Tags			admin
// @Produce		json
// @Param			jobs	query		int	true	"Job ID"
// @Success		200		{object}	PreviewURLResponse
// @Failure		403		{object}	authz.ForbiddenResponse
// @Router			/admin/preview/convert [get]
func (rt *Routes) previewURL(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if id, err := strconv.ParseInt(r.URL.Query().Get(preview.QueryParam), 10, 64); err == nil && id > 0 {
		if _, err := rt.checker.CheckJobAction(ctx, user, authz.ActShow, authz.JobParams{ID: id}); err != nil {
			writeError(w, r, err)
			return
		}
	}

	u, err := rt.previewer().ConvertURL(ctx, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, PreviewURLResponse{URL: u}, http.StatusOK)
}
