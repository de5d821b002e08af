package admin

import (
	"net/http"

	"github.com/maniaxatwork/jobs-server/internal/api/common"
	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// ArchiveRequest is the body of archive create and update requests
type ArchiveRequest struct {
	Title     string  `json:"title"`
	JumpTo    int64   `json:"jumpTo"`
	Protected bool    `json:"protected"`
	Groups    []int64 `json:"groups"`
}

func (a ArchiveRequest) archive(id int64) *jobs.Archive {
	return &jobs.Archive{ID: id, Title: a.Title, JumpTo: a.JumpTo, Protected: a.Protected, Groups: a.Groups}
}

// Restrictions are the archive list flags of the current user
type Restrictions struct {
	Closed       bool `json:"closed"`
	NotCreatable bool `json:"notCreatable"`
	NotCopyable  bool `json:"notCopyable"`
	NotDeletable bool `json:"notDeletable"`
}

// ArchiveListResponse is the result of GET /admin/archives
type ArchiveListResponse struct {
	Archives     []*jobs.Archive `json:"archives"`
	Restrictions Restrictions    `json:"restrictions"`
}

// listArchives handles GET /admin/archives
//
// @Summary		List job archives
// @Description	Lists the archives mounted for the current user
// @Tags			admin
// @Produce		json
// @Success		200	{object}	ArchiveListResponse
// @Failure		403	{object}	authz.ForbiddenResponse
// @Router			/admin/archives [get]
func (rt *Routes) listArchives(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	restrictions, err := rt.checker.ArchiveListRestrictions(ctx, user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var opts []service.Option
	if restrictions.Root != nil {
		opts = append(opts, service.WithArchives(restrictions.Root))
	}
	archives, err := rt.store.ListArchives(ctx, opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, ArchiveListResponse{
		Archives: archives,
		Restrictions: Restrictions{
			Closed:       restrictions.Closed,
			NotCreatable: restrictions.NotCreatable,
			NotCopyable:  restrictions.NotCopyable,
			NotDeletable: restrictions.NotDeletable,
		},
	}, http.StatusOK)
}

// createArchive handles POST /admin/archives
//
// @Summary		Create a job archive
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			body	body		ArchiveRequest	true	"Archive"
// @Success		201		{object}	jobs.Archive
// @Failure		400		{object}	common.ErrorResponse
// @Failure		403		{object}	authz.ForbiddenResponse
// @Router			/admin/archives [post]
func (rt *Routes) createArchive(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if _, err := rt.checker.CheckArchiveAction(ctx, user, authz.ActCreate, 0, nil); err != nil {
		writeError(w, r, err)
		return
	}

	var body ArchiveRequest
	if !common.DecodeJSONBody(w, r, &body) {
		return
	}
	archive := body.archive(0)
	if err := validateArchive(archive); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := rt.store.CreateArchive(ctx, archive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := rt.checker.AdjustPermissions(ctx, user, created.ID); err != nil {
		// the archive exists; the user just cannot see it until mounted
		logger.Errorw("Failed to mount new archive", "archive", created.ID, "user", user.ID, "error", err)
	}

	logger.Infow("Archive created", "archive", created.ID, "user", user.ID)
	rt.setArchiveTags(ctx, w, created)
	common.WriteJSONResponse(w, created, http.StatusCreated)
}

// getArchive handles GET /admin/archives/{id}
//
// @Summary		Get a job archive
// @Tags			admin
// @Produce		json
// @Param			id	path		int	true	"Archive ID"
// @Success		200	{object}	jobs.Archive
// @Failure		403	{object}	authz.ForbiddenResponse
// @Failure		404	{object}	common.ErrorResponse
// @Router			/admin/archives/{id} [get]
func (rt *Routes) getArchive(w http.ResponseWriter, r *http.Request) {
	archive, ok := rt.checkedArchive(w, r, authz.ActShow)
	if !ok {
		return
	}
	common.WriteJSONResponse(w, archive, http.StatusOK)
}

// updateArchive handles PUT /admin/archives/{id}
//
// @Summary		Update a job archive
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			id		path		int				true	"Archive ID"
// @Param			body	body		ArchiveRequest	true	"Archive"
// @Success		200		{object}	jobs.Archive
// @Failure		400		{object}	common.ErrorResponse
// @Failure		403		{object}	authz.ForbiddenResponse
// @Failure		404		{object}	common.ErrorResponse
// @Router			/admin/archives/{id} [put]
func (rt *Routes) updateArchive(w http.ResponseWriter, r *http.Request) {
	current, ok := rt.checkedArchive(w, r, authz.ActEdit)
	if !ok {
		return
	}
	ctx := r.Context()

	var body ArchiveRequest
	if !common.DecodeJSONBody(w, r, &body) {
		return
	}
	archive := body.archive(current.ID)
	if err := validateArchive(archive); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := rt.store.UpdateArchive(ctx, archive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// both the old and the new target tree lose their cached sitemaps
	rt.setArchiveTags(ctx, w, updated)
	if tag := rt.sitemapTag(ctx, current); tag != "" && current.JumpTo != updated.JumpTo {
		w.Header().Add(CacheTagsHeader, tag)
	}
	common.WriteJSONResponse(w, updated, http.StatusOK)
}

// deleteArchive handles DELETE /admin/archives/{id}
//
// @Summary		Delete a job archive and its jobs
// @Tags			admin
// @Param			id	path	int	true	"Archive ID"
// @Success		204
// @Failure		403	{object}	authz.ForbiddenResponse
// @Failure		404	{object}	common.ErrorResponse
// @Router			/admin/archives/{id} [delete]
func (rt *Routes) deleteArchive(w http.ResponseWriter, r *http.Request) {
	archive, ok := rt.checkedArchive(w, r, authz.ActDelete)
	if !ok {
		return
	}
	ctx := r.Context()

	// tags are computed first, the target page lookup needs the archive
	rt.setArchiveTags(ctx, w, archive)
	if err := rt.store.DeleteArchive(ctx, archive.ID); err != nil {
		w.Header().Del(CacheTagsHeader)
		writeError(w, r, err)
		return
	}

	logger.Infow("Archive deleted", "archive", archive.ID)
	w.WriteHeader(http.StatusNoContent)
}

// checkedArchive parses the archive ID, runs the permission check for act
// and loads the archive. It writes the error response on failure.
func (rt *Routes) checkedArchive(w http.ResponseWriter, r *http.Request, act string) (*jobs.Archive, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return nil, false
	}
	id, err := common.GetIDParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	ctx := r.Context()
	if _, err := rt.checker.CheckArchiveAction(ctx, user, act, id, nil); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	archive, err := rt.store.GetArchive(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return archive, true
}
