package authz

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// Store is the storage the checker needs; service.JobsService satisfies it.
type Store interface {
	GetJob(ctx context.Context, id int64) (*jobs.Job, error)
	ListJobs(ctx context.Context, pid int64) ([]*jobs.Job, error)
	GetUser(ctx context.Context, id int64) (*jobs.User, error)
	GetUserGroups(ctx context.Context, ids []int64) ([]*jobs.UserGroup, error)
	SetUserArchives(ctx context.Context, userID int64, archives []int64) error
	SetGroupArchives(ctx context.Context, groupID int64, archives []int64) error
}

// Inherit modes of a back-end user
const (
	InheritGroup  = "group"
	InheritExtend = "extend"
	InheritCustom = "custom"
)

// JobParams are the request parameters of a job command.
type JobParams struct {
	// ID is the job (or, for list commands, the archive) the command targets.
	ID int64
	// CurrentID is the archive being browsed; used when ID is zero.
	CurrentID int64
	// PID is the target archive of create, cut and copy, or the reference
	// job for cut in ModeAfterReference.
	PID  int64
	Mode string
	// Selected are the IDs of a multi-record command.
	Selected []int64
}

// Restrictions describe what a user may do in the archive list.
type Restrictions struct {
	// Root are the visible archive IDs; nil means all.
	Root         []int64
	Closed       bool
	NotCreatable bool
	NotCopyable  bool
	NotDeletable bool
}

// Checker applies the back-end permission rules for jobs and archives.
type Checker struct {
	authorizer Authorizer
	store      Store
}

// NewChecker creates a checker evaluating through authorizer.
func NewChecker(authorizer Authorizer, store Store) *Checker {
	return &Checker{authorizer: authorizer, store: store}
}

func principalOf(user *jobs.User) Principal {
	return Principal{ID: user.ID, Admin: user.Admin, Jobs: user.Jobs, Jobp: user.Jobp}
}

func (c *Checker) allowed(ctx context.Context, user *jobs.User, action string, archiveID int64) (bool, error) {
	decision, err := c.authorizer.Authorize(ctx, Request{
		Principal: principalOf(user),
		Action:    action,
		Archive:   &ArchiveResource{ID: archiveID},
	})
	if err != nil {
		return false, fmt.Errorf("authorization evaluation failed: %w", err)
	}
	return decision.Allowed, nil
}

func (c *Checker) canAccess(ctx context.Context, user *jobs.User, archiveID int64) (bool, error) {
	return c.allowed(ctx, user, ActionAccess, archiveID)
}

// CheckJobAction verifies user may run act on the jobs described by p. For
// the multi-record commands it returns the selected IDs that belong to the
// archive; otherwise it returns p.Selected unchanged.
func (c *Checker) CheckJobAction(ctx context.Context, user *jobs.User, act string, p JobParams) ([]int64, error) {
	if user.Admin {
		return p.Selected, nil
	}

	id := p.ID
	if id == 0 {
		id = p.CurrentID
	}

	switch act {
	case ActPaste, ActSelect:
		ok, err := c.canAccess(ctx, user, p.CurrentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, denied("Not enough permissions to access jobs archive ID %d.", id)
		}

	case ActCreate:
		ok := false
		if p.PID != 0 {
			var err error
			if ok, err = c.canAccess(ctx, user, p.PID); err != nil {
				return nil, err
			}
		}
		if !ok {
			return nil, denied("Not enough permissions to create job items in jobs archive ID %d.", p.PID)
		}

	case ActCut, ActCopy:
		pid := p.PID
		if act == ActCut && p.Mode == ModeAfterReference {
			ref, err := c.store.GetJob(ctx, p.PID)
			if err != nil {
				if errors.Is(err, service.ErrJobNotFound) {
					return nil, denied("Invalid job item ID %d.", p.PID)
				}
				return nil, err
			}
			pid = ref.PID
		}
		ok, err := c.canAccess(ctx, user, pid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, denied("Not enough permissions to %s job item ID %d to jobs archive ID %d.", act, id, pid)
		}
		return p.Selected, c.checkJob(ctx, user, act, id)

	case ActEdit, ActShow, ActDelete, ActToggle:
		return p.Selected, c.checkJob(ctx, user, act, id)

	case ActEditAll, ActDeleteAll, ActOverrideAll, ActCutAll, ActCopyAll:
		ok, err := c.canAccess(ctx, user, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, denied("Not enough permissions to access jobs archive ID %d.", id)
		}
		items, err := c.store.ListJobs(ctx, id)
		if err != nil {
			return nil, err
		}
		inArchive := make([]int64, 0, len(items))
		for _, j := range items {
			inArchive = append(inArchive, j.ID)
		}
		return intersect(p.Selected, inArchive), nil

	default:
		if act != "" {
			return nil, denied("Invalid command %q.", act)
		}
		ok, err := c.canAccess(ctx, user, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, denied("Not enough permissions to access jobs archive ID %d.", id)
		}
	}

	return p.Selected, nil
}

func (c *Checker) checkJob(ctx context.Context, user *jobs.User, act string, id int64) error {
	job, err := c.store.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			return denied("Invalid jobs item ID %d.", id)
		}
		return err
	}
	ok, err := c.canAccess(ctx, user, job.PID)
	if err != nil {
		return err
	}
	if !ok {
		return denied("Not enough permissions to %s jobs item ID %d of jobs archive ID %d.", act, id, job.PID)
	}
	return nil
}

// CheckArchiveAction verifies user may run act on archive id. Multi-record
// commands return the permitted subset of selected.
func (c *Checker) CheckArchiveAction(ctx context.Context, user *jobs.User, act string, id int64, selected []int64) ([]int64, error) {
	if user.Admin {
		return selected, nil
	}

	switch act {
	case ActSelect:
		return selected, nil

	case ActCreate:
		ok, err := c.allowed(ctx, user, ActionCreateArchive, 0)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, denied("Not enough permissions to create jobs archives.")
		}
		return selected, nil

	case ActCopy, ActEdit, ActDelete, ActShow:
		ok, err := c.canAccess(ctx, user, id)
		if err != nil {
			return nil, err
		}
		if ok && act == ActDelete {
			if ok, err = c.allowed(ctx, user, ActionDeleteArchive, id); err != nil {
				return nil, err
			}
		}
		if !ok {
			return nil, denied("Not enough permissions to %s jobs archive ID %d.", act, id)
		}
		return selected, nil

	case ActEditAll, ActDeleteAll, ActOverrideAll, ActCopyAll:
		if act == ActDeleteAll {
			ok, err := c.allowed(ctx, user, ActionDeleteArchive, 0)
			if err != nil {
				return nil, err
			}
			if !ok {
				return []int64{}, nil
			}
		}
		return intersect(selected, rootIDs(user.Jobs)), nil

	default:
		if act != "" {
			return nil, denied("Not enough permissions to %s jobs archives.", act)
		}
		return selected, nil
	}
}

// ArchiveListRestrictions computes the archive list flags for user.
func (c *Checker) ArchiveListRestrictions(ctx context.Context, user *jobs.User) (Restrictions, error) {
	if user.Admin {
		return Restrictions{}, nil
	}

	r := Restrictions{Root: rootIDs(user.Jobs)}

	canCreate, err := c.allowed(ctx, user, ActionCreateArchive, 0)
	if err != nil {
		return Restrictions{}, err
	}
	if !canCreate {
		r.Closed, r.NotCreatable, r.NotCopyable = true, true, true
	}

	canDelete, err := c.allowed(ctx, user, ActionDeleteArchive, 0)
	if err != nil {
		return Restrictions{}, err
	}
	r.NotDeletable = !canDelete
	return r, nil
}

// AdjustPermissions mounts a newly created archive for a non-admin user.
// Depending on user.Inherit the ID is added to every group of the user that
// holds the create permission, to the user's own mounts when the user holds
// it, or both. user.Jobs is updated in place.
func (c *Checker) AdjustPermissions(ctx context.Context, user *jobs.User, insertID int64) error {
	if user.Admin {
		return nil
	}

	root := rootIDs(user.Jobs)
	if slices.Contains(root, insertID) {
		return nil
	}

	if user.Inherit != InheritCustom && len(user.Groups) > 0 {
		groups, err := c.store.GetUserGroups(ctx, user.Groups)
		if err != nil {
			return fmt.Errorf("failed to load user groups: %w", err)
		}
		for _, g := range groups {
			if !slices.Contains(g.Jobp, jobs.PermCreate) {
				continue
			}
			if err := c.store.SetGroupArchives(ctx, g.ID, append(slices.Clone(g.Jobs), insertID)); err != nil {
				return fmt.Errorf("failed to mount archive %d for group %d: %w", insertID, g.ID, err)
			}
			logger.Debugw("Mounted archive for group", "archive", insertID, "group", g.ID)
		}
	}

	if user.Inherit != InheritGroup {
		stored, err := c.store.GetUser(ctx, user.ID)
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			// token-only users have no stored mounts
		case err != nil:
			return fmt.Errorf("failed to load user: %w", err)
		case stored.HasJobp(jobs.PermCreate):
			if err := c.store.SetUserArchives(ctx, user.ID, append(slices.Clone(stored.Jobs), insertID)); err != nil {
				return fmt.Errorf("failed to mount archive %d for user %d: %w", insertID, user.ID, err)
			}
			logger.Debugw("Mounted archive for user", "archive", insertID, "user", user.ID)
		}
	}

	user.Jobs = append(slices.Clone(user.Jobs), insertID)
	return nil
}

// Effective merges the group permissions of user according to its inherit
// mode and returns the resulting user. The input is not modified.
func (c *Checker) Effective(ctx context.Context, user *jobs.User) (*jobs.User, error) {
	out := *user
	if user.Admin || user.Inherit == InheritCustom || len(user.Groups) == 0 {
		return &out, nil
	}

	groups, err := c.store.GetUserGroups(ctx, user.Groups)
	if err != nil {
		return nil, fmt.Errorf("failed to load user groups: %w", err)
	}

	var mounts []int64
	var perms []string
	if user.Inherit == InheritExtend {
		mounts = slices.Clone(user.Jobs)
		perms = slices.Clone(user.Jobp)
	}
	for _, g := range groups {
		mounts = append(mounts, g.Jobs...)
		perms = append(perms, g.Jobp...)
	}
	slices.Sort(mounts)
	slices.Sort(perms)
	out.Jobs = slices.Compact(mounts)
	out.Jobp = slices.Compact(perms)
	return &out, nil
}

// CanView reports whether member may read archive on the front end.
func (c *Checker) CanView(ctx context.Context, member *jobs.Member, archive *jobs.Archive) (bool, error) {
	p := Principal{}
	if member != nil {
		p.ID = member.ID
		p.Groups = member.Groups
	}
	decision, err := c.authorizer.Authorize(ctx, Request{
		Principal: p,
		Action:    ActionView,
		Archive:   &ArchiveResource{ID: archive.ID, Protected: archive.Protected, Groups: archive.Groups},
	})
	if err != nil {
		return false, fmt.Errorf("authorization evaluation failed: %w", err)
	}
	return decision.Allowed, nil
}

// MemberInGroups reports whether member belongs to one of groups.
func MemberInGroups(member *jobs.Member, groups []int64) bool {
	if member == nil {
		return false
	}
	for _, g := range member.Groups {
		if slices.Contains(groups, g) {
			return true
		}
	}
	return false
}

// SourceOptions lists the job sources user may choose. Admins get default
// and internal; others get default, internal when they may edit the jumpTo
// field, and always the current value.
func SourceOptions(user *jobs.User, canEditJumpTo bool, current jobs.Source) []jobs.Source {
	if user.Admin {
		return []jobs.Source{jobs.SourceDefault, jobs.SourceInternal}
	}
	options := []jobs.Source{jobs.SourceDefault}
	if canEditJumpTo {
		options = append(options, jobs.SourceInternal)
	}
	if current != "" && !slices.Contains(options, current) {
		options = append(options, current)
	}
	return options
}

func intersect(selected, allowed []int64) []int64 {
	out := make([]int64, 0, len(selected))
	for _, id := range selected {
		if slices.Contains(allowed, id) {
			out = append(out, id)
		}
	}
	return out
}
