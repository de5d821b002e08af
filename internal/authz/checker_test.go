package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/service/inmemory"
)

const seedFile = "../service/inmemory/testdata/seed.yaml"

func newTestChecker(t *testing.T) (*Checker, service.JobsService) {
	t.Helper()
	store, err := inmemory.New(context.Background(), inmemory.NewFileDataProvider(seedFile))
	require.NoError(t, err)
	authorizer, err := NewCedarAuthorizer(nil)
	require.NoError(t, err)
	return NewChecker(authorizer, store), store
}

func TestChecker_CheckJobAction(t *testing.T) {
	t.Parallel()

	editor := &jobs.User{ID: 9, Jobs: []int64{1}}
	admin := &jobs.User{ID: 1, Admin: true}

	tests := []struct {
		name         string
		user         *jobs.User
		act          string
		params       JobParams
		wantReason   string
		wantSelected []int64
	}{
		{name: "admin bypasses checks", user: admin, act: ActEditAll, params: JobParams{ID: 2, Selected: []int64{5}}, wantSelected: []int64{5}},
		{name: "paste into mounted archive", user: editor, act: ActPaste, params: JobParams{CurrentID: 1}},
		{name: "select in foreign archive", user: editor, act: ActSelect, params: JobParams{CurrentID: 2}, wantReason: "Not enough permissions to access jobs archive ID 2."},
		{name: "create in mounted archive", user: editor, act: ActCreate, params: JobParams{PID: 1}},
		{name: "create without pid", user: editor, act: ActCreate, wantReason: "Not enough permissions to create job items in jobs archive ID 0."},
		{name: "create in foreign archive", user: editor, act: ActCreate, params: JobParams{PID: 2}, wantReason: "Not enough permissions to create job items in jobs archive ID 2."},
		{name: "cut within mounted archive", user: editor, act: ActCut, params: JobParams{ID: 2, PID: 1}},
		{name: "copy to foreign archive", user: editor, act: ActCopy, params: JobParams{ID: 2, PID: 2}, wantReason: "Not enough permissions to copy job item ID 2 to jobs archive ID 2."},
		{name: "cut after job in foreign archive", user: editor, act: ActCut, params: JobParams{ID: 2, PID: 5, Mode: ModeAfterReference}, wantReason: "Not enough permissions to cut job item ID 2 to jobs archive ID 2."},
		{name: "cut after unknown job", user: editor, act: ActCut, params: JobParams{ID: 2, PID: 99, Mode: ModeAfterReference}, wantReason: "Invalid job item ID 99."},
		{name: "cut job of foreign archive", user: editor, act: ActCut, params: JobParams{ID: 5, PID: 1}, wantReason: "Not enough permissions to cut jobs item ID 5 of jobs archive ID 2."},
		{name: "edit job of mounted archive", user: editor, act: ActEdit, params: JobParams{ID: 1}},
		{name: "toggle job of foreign archive", user: editor, act: ActToggle, params: JobParams{ID: 5}, wantReason: "Not enough permissions to toggle jobs item ID 5 of jobs archive ID 2."},
		{name: "show unknown job", user: editor, act: ActShow, params: JobParams{ID: 99}, wantReason: "Invalid jobs item ID 99."},
		{name: "editAll filters selection", user: editor, act: ActEditAll, params: JobParams{ID: 1, Selected: []int64{1, 2, 5}}, wantSelected: []int64{1, 2}},
		{name: "deleteAll in foreign archive", user: editor, act: ActDeleteAll, params: JobParams{ID: 2, Selected: []int64{5}}, wantReason: "Not enough permissions to access jobs archive ID 2."},
		{name: "unknown command", user: editor, act: "frobnicate", params: JobParams{ID: 1}, wantReason: `Invalid command "frobnicate".`},
		{name: "list mounted archive", user: editor, params: JobParams{ID: 1}},
		{name: "list foreign archive", user: editor, params: JobParams{ID: 3}, wantReason: "Not enough permissions to access jobs archive ID 3."},
	}

	checker, _ := newTestChecker(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			selected, err := checker.CheckJobAction(context.Background(), tt.user, tt.act, tt.params)
			if tt.wantReason != "" {
				require.ErrorIs(t, err, ErrAccessDenied)
				var denied *AccessDeniedError
				require.ErrorAs(t, err, &denied)
				assert.Equal(t, tt.wantReason, denied.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSelected, selected)
		})
	}
}

func TestChecker_CheckArchiveAction(t *testing.T) {
	t.Parallel()

	creator := &jobs.User{ID: 9, Jobs: []int64{1}, Jobp: []string{jobs.PermCreate}}
	deleter := &jobs.User{ID: 10, Jobs: []int64{1}, Jobp: []string{jobs.PermDelete}}

	tests := []struct {
		name         string
		user         *jobs.User
		act          string
		id           int64
		selected     []int64
		wantReason   string
		wantSelected []int64
	}{
		{name: "select is always allowed", user: deleter, act: ActSelect, selected: []int64{3}, wantSelected: []int64{3}},
		{name: "create with permission", user: creator, act: ActCreate},
		{name: "create without permission", user: deleter, act: ActCreate, wantReason: "Not enough permissions to create jobs archives."},
		{name: "edit mounted archive", user: creator, act: ActEdit, id: 1},
		{name: "show foreign archive", user: creator, act: ActShow, id: 2, wantReason: "Not enough permissions to show jobs archive ID 2."},
		{name: "delete without permission", user: creator, act: ActDelete, id: 1, wantReason: "Not enough permissions to delete jobs archive ID 1."},
		{name: "delete with permission", user: deleter, act: ActDelete, id: 1},
		{name: "delete foreign archive", user: deleter, act: ActDelete, id: 2, wantReason: "Not enough permissions to delete jobs archive ID 2."},
		{name: "editAll keeps mounted archives", user: creator, act: ActEditAll, selected: []int64{1, 2, 3}, wantSelected: []int64{1}},
		{name: "deleteAll without permission clears selection", user: creator, act: ActDeleteAll, selected: []int64{1}, wantSelected: []int64{}},
		{name: "deleteAll with permission", user: deleter, act: ActDeleteAll, selected: []int64{1, 2}, wantSelected: []int64{1}},
		{name: "unknown command", user: creator, act: "archive", wantReason: "Not enough permissions to archive jobs archives."},
		{name: "admin", user: &jobs.User{ID: 1, Admin: true}, act: ActDelete, id: 2},
	}

	checker, _ := newTestChecker(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			selected, err := checker.CheckArchiveAction(context.Background(), tt.user, tt.act, tt.id, tt.selected)
			if tt.wantReason != "" {
				var denied *AccessDeniedError
				require.ErrorAs(t, err, &denied)
				assert.Equal(t, tt.wantReason, denied.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSelected, selected)
		})
	}
}

func TestChecker_ArchiveListRestrictions(t *testing.T) {
	t.Parallel()

	checker, _ := newTestChecker(t)
	ctx := context.Background()

	r, err := checker.ArchiveListRestrictions(ctx, &jobs.User{ID: 1, Admin: true})
	require.NoError(t, err)
	assert.Equal(t, Restrictions{}, r)

	r, err = checker.ArchiveListRestrictions(ctx, &jobs.User{ID: 9})
	require.NoError(t, err)
	assert.Equal(t, Restrictions{Root: []int64{0}, Closed: true, NotCreatable: true, NotCopyable: true, NotDeletable: true}, r)

	r, err = checker.ArchiveListRestrictions(ctx, &jobs.User{ID: 9, Jobs: []int64{1, 3}, Jobp: []string{jobs.PermCreate, jobs.PermDelete}})
	require.NoError(t, err)
	assert.Equal(t, Restrictions{Root: []int64{1, 3}}, r)
}

func TestChecker_AdjustPermissions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		inherit    string
		wantUser   []int64
		wantGroup  []int64
		insertID   int64
		admin      bool
		wantMounts []int64
	}{
		{name: "extend mounts user and group", inherit: InheritExtend, insertID: 4, wantUser: []int64{1, 4}, wantGroup: []int64{1, 4}, wantMounts: []int64{1, 4}},
		{name: "custom mounts only the user", inherit: InheritCustom, insertID: 4, wantUser: []int64{1, 4}, wantGroup: []int64{1}, wantMounts: []int64{1, 4}},
		{name: "group mounts only the groups", inherit: InheritGroup, insertID: 4, wantUser: []int64{1}, wantGroup: []int64{1, 4}, wantMounts: []int64{1, 4}},
		{name: "already mounted", inherit: InheritExtend, insertID: 1, wantUser: []int64{1}, wantGroup: []int64{1}, wantMounts: []int64{1}},
		{name: "admin is skipped", inherit: InheritExtend, insertID: 4, admin: true, wantUser: []int64{1}, wantGroup: []int64{1}, wantMounts: []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker, store := newTestChecker(t)
			ctx := context.Background()

			user, err := store.GetUser(ctx, 2)
			require.NoError(t, err)
			user.Inherit = tt.inherit
			user.Admin = tt.admin

			require.NoError(t, checker.AdjustPermissions(ctx, user, tt.insertID))
			assert.Equal(t, tt.wantMounts, user.Jobs)

			stored, err := store.GetUser(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, stored.Jobs)

			groups, err := store.GetUserGroups(ctx, []int64{1})
			require.NoError(t, err)
			require.Len(t, groups, 1)
			assert.Equal(t, tt.wantGroup, groups[0].Jobs)
		})
	}
}

func TestChecker_AdjustPermissions_TokenOnlyUser(t *testing.T) {
	t.Parallel()

	checker, store := newTestChecker(t)
	ctx := context.Background()

	// unknown to the store, no groups: only the in-memory mounts change
	user := &jobs.User{ID: 77, Jobs: []int64{1}, Inherit: InheritCustom}
	require.NoError(t, checker.AdjustPermissions(ctx, user, 4))
	assert.Equal(t, []int64{1, 4}, user.Jobs)

	_, err := store.GetUser(ctx, 77)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestChecker_Effective(t *testing.T) {
	t.Parallel()

	checker, _ := newTestChecker(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		user     *jobs.User
		wantJobs []int64
		wantJobp []string
	}{
		{
			name:     "extend merges user and groups",
			user:     &jobs.User{ID: 2, Jobs: []int64{3}, Jobp: []string{"create"}, Groups: []int64{1}, Inherit: InheritExtend},
			wantJobs: []int64{1, 3},
			wantJobp: []string{"create", "delete"},
		},
		{
			name:     "group uses only group permissions",
			user:     &jobs.User{ID: 2, Jobs: []int64{3}, Groups: []int64{1}, Inherit: InheritGroup},
			wantJobs: []int64{1},
			wantJobp: []string{"create", "delete"},
		},
		{
			name:     "custom keeps user permissions",
			user:     &jobs.User{ID: 2, Jobs: []int64{3}, Jobp: []string{"create"}, Groups: []int64{1}, Inherit: InheritCustom},
			wantJobs: []int64{3},
			wantJobp: []string{"create"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := checker.Effective(ctx, tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.wantJobs, got.Jobs)
			assert.Equal(t, tt.wantJobp, got.Jobp)
		})
	}
}

func TestChecker_CanView(t *testing.T) {
	t.Parallel()

	checker, _ := newTestChecker(t)
	ctx := context.Background()
	public := &jobs.Archive{ID: 1}
	protected := &jobs.Archive{ID: 2, Protected: true, Groups: []int64{5}}

	ok, err := checker.CanView(ctx, nil, public)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checker.CanView(ctx, &jobs.Member{}, protected)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = checker.CanView(ctx, &jobs.Member{ID: 3, Groups: []int64{5}}, protected)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemberInGroups(t *testing.T) {
	t.Parallel()

	assert.False(t, MemberInGroups(nil, []int64{1}))
	assert.False(t, MemberInGroups(&jobs.Member{Groups: []int64{2}}, []int64{1}))
	assert.True(t, MemberInGroups(&jobs.Member{Groups: []int64{2, 1}}, []int64{1}))
}

func TestSourceOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		user          *jobs.User
		canEditJumpTo bool
		current       jobs.Source
		want          []jobs.Source
	}{
		{name: "admin", user: &jobs.User{Admin: true}, current: jobs.SourceExternal, want: []jobs.Source{jobs.SourceDefault, jobs.SourceInternal}},
		{name: "editor", user: &jobs.User{}, want: []jobs.Source{jobs.SourceDefault}},
		{name: "editor with jumpTo", user: &jobs.User{}, canEditJumpTo: true, want: []jobs.Source{jobs.SourceDefault, jobs.SourceInternal}},
		{name: "current value is kept", user: &jobs.User{}, current: jobs.SourceExternal, want: []jobs.Source{jobs.SourceDefault, jobs.SourceExternal}},
		{name: "current value is not duplicated", user: &jobs.User{}, current: jobs.SourceDefault, want: []jobs.Source{jobs.SourceDefault}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SourceOptions(tt.user, tt.canEditJumpTo, tt.current))
		})
	}
}
