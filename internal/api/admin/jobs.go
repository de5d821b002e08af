package admin

import (
	"errors"
	"net/http"

	"github.com/maniaxatwork/jobs-server/internal/alias"
	"github.com/maniaxatwork/jobs-server/internal/api/common"
	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/frontend"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
)

var errPIDRequired = errors.New("pid is required")

// JobListResponse is the result of GET /admin/archives/{id}/jobs
type JobListResponse struct {
	Archive *jobs.Archive `json:"archive"`
	Jobs    []*jobs.Job   `json:"jobs"`
}

// listJobs handles GET /admin/archives/{id}/jobs
//
// @Summary		List the jobs of an archive
// @Tags			admin
// @Produce		json
// @Param			id	path		int	true	"Archive ID"
// @Success		200	{object}	JobListResponse
// @Failure		403	{object}	authz.ForbiddenResponse
// @Failure		404	{object}	common.ErrorResponse
// @Router			/admin/archives/{id}/jobs [get]
func (rt *Routes) listJobs(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	pid, err := common.GetIDParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	if _, err := rt.checker.CheckJobAction(ctx, user, "", authz.JobParams{CurrentID: pid}); err != nil {
		writeError(w, r, err)
		return
	}
	archive, err := rt.store.GetArchive(ctx, pid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := rt.store.ListJobs(ctx, pid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, JobListResponse{Archive: archive, Jobs: items}, http.StatusOK)
}

// createJob handles POST /admin/archives/{id}/jobs
//
// @Summary		Create a job
// @Description	Creates a job in the archive. Alias, author and date are filled in when empty.
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			id		path		int			true	"Archive ID"
// @Param			body	body		jobs.Job	true	"Job"
// @Success		201		{object}	jobs.Job
// @Failure		400		{object}	common.ErrorResponse
// @Failure		403		{object}	authz.ForbiddenResponse
// @Failure		409		{object}	common.ErrorResponse
// @Router			/admin/archives/{id}/jobs [post]
func (rt *Routes) createJob(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	pid, err := common.GetIDParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	if _, err := rt.checker.CheckJobAction(ctx, user, authz.ActCreate, authz.JobParams{PID: pid}); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := rt.store.GetArchive(ctx, pid); err != nil {
		writeError(w, r, err)
		return
	}

	var job jobs.Job
	if !common.DecodeJSONBody(w, r, &job) {
		return
	}
	job.ID, job.PID = 0, pid
	if err := prepareJob(&job, user, nil, rt.now(), rt.location()); err != nil {
		writeError(w, r, err)
		return
	}
	if job.Alias, err = alias.Resolve(job.Alias, job.Headline, rt.aliasExists(ctx, 0)); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := rt.store.CreateJob(ctx, &job)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Infow("Job created", "job", created.ID, "archive", pid, "user", user.ID)
	rt.setJobTags(ctx, w, created)
	common.WriteJSONResponse(w, created, http.StatusCreated)
}

// getJob handles GET /admin/jobs/{id}
//
// @Summary		Get a job
// @Tags			admin
// @Produce		json
// @Param			id	path		int	true	"Job ID"
// @Success		200	{object}	jobs.Job
// @Failure		403	{object}	authz.ForbiddenResponse
// @Failure		404	{object}	common.ErrorResponse
// @Router			/admin/jobs/{id} [get]
func (rt *Routes) getJob(w http.ResponseWriter, r *http.Request) {
	job, _, ok := rt.checkedJob(w, r, authz.ActShow, authz.JobParams{})
	if !ok {
		return
	}
	common.WriteJSONResponse(w, job, http.StatusOK)
}

// updateJob handles PUT /admin/jobs/{id}
//
// @Summary		Update a job
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			id		path		int			true	"Job ID"
// @Param			body	body		jobs.Job	true	"Job"
// @Success		200		{object}	jobs.Job
// @Failure		400		{object}	common.ErrorResponse
// @Failure		403		{object}	authz.ForbiddenResponse
// @Failure		404		{object}	common.ErrorResponse
// @Failure		409		{object}	common.ErrorResponse
// @Router			/admin/jobs/{id} [put]
func (rt *Routes) updateJob(w http.ResponseWriter, r *http.Request) {
	current, user, ok := rt.checkedJob(w, r, authz.ActEdit, authz.JobParams{})
	if !ok {
		return
	}
	ctx := r.Context()

	var job jobs.Job
	if !common.DecodeJSONBody(w, r, &job) {
		return
	}
	job.ID, job.PID = current.ID, current.PID
	if err := prepareJob(&job, user, current, rt.now(), rt.location()); err != nil {
		writeError(w, r, err)
		return
	}
	var err error
	if job.Alias, err = alias.Resolve(job.Alias, job.Headline, rt.aliasExists(ctx, current.ID)); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := rt.store.UpdateJob(ctx, &job)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.setJobTags(ctx, w, updated)
	common.WriteJSONResponse(w, updated, http.StatusOK)
}

// deleteJob handles DELETE /admin/jobs/{id}
//
// @Summary		Delete a job
// @Tags			admin
// @Param			id	path	int	true	"Job ID"
// @Success		204
// @Failure		403	{object}	authz.ForbiddenResponse
// @Failure		404	{object}	common.ErrorResponse
// @Router			/admin/jobs/{id} [delete]
func (rt *Routes) deleteJob(w http.ResponseWriter, r *http.Request) {
	job, user, ok := rt.checkedJob(w, r, authz.ActDelete, authz.JobParams{})
	if !ok {
		return
	}
	ctx := r.Context()

	rt.setJobTags(ctx, w, job)
	if err := rt.store.DeleteJob(ctx, job.ID); err != nil {
		w.Header().Del(CacheTagsHeader)
		writeError(w, r, err)
		return
	}
	logger.Infow("Job deleted", "job", job.ID, "user", user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// toggleJob handles POST /admin/jobs/{id}/toggle
//
// @Summary		Publish or unpublish a job
// @Tags			admin
// @Produce		json
// @Param			id	path		int	true	"Job ID"
// @Success		200	{object}	jobs.Job
// @Failure		403	{object}	authz.ForbiddenResponse
// @Failure		404	{object}	common.ErrorResponse
// @Router			/admin/jobs/{id}/toggle [post]
func (rt *Routes) toggleJob(w http.ResponseWriter, r *http.Request) {
	job, _, ok := rt.checkedJob(w, r, authz.ActToggle, authz.JobParams{})
	if !ok {
		return
	}
	ctx := r.Context()

	toggled, err := rt.store.ToggleJob(ctx, job.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.setJobTags(ctx, w, toggled)
	common.WriteJSONResponse(w, toggled, http.StatusOK)
}

// copyJob handles POST /admin/jobs/{id}/copy?pid=
//
// @Summary		Copy a job into an archive
// @Description	The copy is unpublished and gets no alias
// @Tags			admin
// @Produce		json
// @Param			id	path		int	true	"Job ID"
// @Param			pid	query		int	true	"Target archive ID"
// @Success		201	{object}	jobs.Job
// @Failure		400	{object}	common.ErrorResponse
// @Failure		403	{object}	authz.ForbiddenResponse
// @Router			/admin/jobs/{id}/copy [post]
func (rt *Routes) copyJob(w http.ResponseWriter, r *http.Request) {
	pid, ok := targetArchive(w, r)
	if !ok {
		return
	}
	job, _, ok := rt.checkedJob(w, r, authz.ActCopy, authz.JobParams{PID: pid})
	if !ok {
		return
	}
	ctx := r.Context()

	if _, err := rt.store.GetArchive(ctx, pid); err != nil {
		writeError(w, r, err)
		return
	}
	copied, err := rt.store.CopyJob(ctx, job.ID, pid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.setJobTags(ctx, w, copied)
	common.WriteJSONResponse(w, copied, http.StatusCreated)
}

// cutJob handles POST /admin/jobs/{id}/cut?pid=&mode=
//
// @Summary		Move a job into another archive
// @Description	With mode=1 pid names a reference job whose archive is the target
// @Tags			admin
// @Produce		json
// @Param			id		path		int		true	"Job ID"
// @Param			pid		query		int		true	"Target archive or reference job ID"
// @Param			mode	query		string	false	"Paste mode"
// @Success		200		{object}	jobs.Job
// @Failure		400		{object}	common.ErrorResponse
// @Failure		403		{object}	authz.ForbiddenResponse
// @Router			/admin/jobs/{id}/cut [post]
func (rt *Routes) cutJob(w http.ResponseWriter, r *http.Request) {
	pid, ok := targetArchive(w, r)
	if !ok {
		return
	}
	mode := r.URL.Query().Get("mode")
	job, _, ok := rt.checkedJob(w, r, authz.ActCut, authz.JobParams{PID: pid, Mode: mode})
	if !ok {
		return
	}
	ctx := r.Context()

	if mode == authz.ModeAfterReference {
		ref, err := rt.store.GetJob(ctx, pid)
		if err != nil {
			writeError(w, r, err)
			return
		}
		pid = ref.PID
	}
	if _, err := rt.store.GetArchive(ctx, pid); err != nil {
		writeError(w, r, err)
		return
	}

	moved, err := rt.store.MoveJob(ctx, job.ID, pid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.setJobTags(ctx, w, moved)
	if job.PID != moved.PID {
		w.Header().Add(CacheTagsHeader, frontend.ArchiveTag(job.PID))
	}
	common.WriteJSONResponse(w, moved, http.StatusOK)
}

func targetArchive(w http.ResponseWriter, r *http.Request) (int64, bool) {
	pid, err := common.GetIDQuery(r, "pid")
	if err == nil && pid == 0 {
		err = errPIDRequired
	}
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return pid, true
}

// checkedJob parses the job ID, runs the permission check for act and loads
// the job. It writes the error response on failure.
func (rt *Routes) checkedJob(w http.ResponseWriter, r *http.Request, act string, p authz.JobParams) (*jobs.Job, *jobs.User, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return nil, nil, false
	}
	id, err := common.GetIDParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}

	ctx := r.Context()
	p.ID = id
	if _, err := rt.checker.CheckJobAction(ctx, user, act, p); err != nil {
		writeError(w, r, err)
		return nil, nil, false
	}
	job, err := rt.store.GetJob(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return nil, nil, false
	}
	return job, user, true
}
