package authz

// Cedar actions
const (
	// ActionAccess grants working with an archive and its jobs
	ActionAccess = "access"
	// ActionCreateArchive grants creating archives
	ActionCreateArchive = "createArchive"
	// ActionDeleteArchive grants deleting archives
	ActionDeleteArchive = "deleteArchive"
	// ActionView grants front-end members reading an archive
	ActionView = "view"
)

// Back-end commands checked by CheckJobAction and CheckArchiveAction.
const (
	ActPaste       = "paste"
	ActSelect      = "select"
	ActCreate      = "create"
	ActCut         = "cut"
	ActCopy        = "copy"
	ActEdit        = "edit"
	ActShow        = "show"
	ActDelete      = "delete"
	ActToggle      = "toggle"
	ActEditAll     = "editAll"
	ActDeleteAll   = "deleteAll"
	ActOverrideAll = "overrideAll"
	ActCutAll      = "cutAll"
	ActCopyAll     = "copyAll"
)

// ModeAfterReference is the cut mode placing a job after another job, whose
// ID is then passed as pid.
const ModeAfterReference = "1"
