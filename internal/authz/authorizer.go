// Package authz evaluates the back-end permission model of the jobs archives
// with Cedar policies.
package authz

import "context"

//go:generate mockgen -destination=mocks/mock_authorizer.go -package=mocks -source=authorizer.go Authorizer

// Authorizer evaluates authorization decisions using Cedar policies.
type Authorizer interface {
	// Authorize checks if the principal can perform the action on the archive.
	Authorize(ctx context.Context, req Request) (Decision, error)
}

// Request represents an authorization request.
type Request struct {
	// Principal is the back-end user or front-end member asking for access.
	Principal Principal

	// Action is the Cedar action name (access, createArchive, deleteArchive, view).
	Action string

	// Archive is the resource. A nil archive evaluates against archive 0.
	Archive *ArchiveResource
}

// Principal carries the permission attributes of a user or member.
type Principal struct {
	ID    int64
	Admin bool
	// Jobs are the mounted archive IDs; empty mounts are sent as {0}.
	Jobs []int64
	// Jobp are the archive permissions (create, delete).
	Jobp []string
	// Groups are the front-end member groups.
	Groups []int64
}

// ArchiveResource is the archive an action applies to.
type ArchiveResource struct {
	ID        int64
	Protected bool
	Groups    []int64
}

// Decision represents the result of an authorization check.
type Decision struct {
	// Allowed indicates whether the request is permitted.
	Allowed bool

	// Reasons provides policy IDs that contributed to the decision.
	Reasons []string
}
