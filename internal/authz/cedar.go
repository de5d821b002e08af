package authz

import (
	"context"
	"fmt"

	cedar "github.com/cedar-policy/cedar-go"

	"github.com/maniaxatwork/jobs-server/internal/logger"
)

const cedarNamespace = "Jobs"

type cedarAuthorizer struct {
	policySet *cedar.PolicySet
}

var _ Authorizer = (*cedarAuthorizer)(nil)

// NewCedarAuthorizer creates a new Cedar-based authorizer.
// If policyBytes is nil, built-in default policies are used.
func NewCedarAuthorizer(policyBytes []byte) (*cedarAuthorizer, error) {
	if policyBytes == nil {
		policyBytes = []byte(defaultPolicies)
	}

	ps, err := cedar.NewPolicySetFromBytes("policies.cedar", policyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Cedar policies: %w", err)
	}

	return &cedarAuthorizer{policySet: ps}, nil
}

// Authorize evaluates req against the policy set.
func (a *cedarAuthorizer) Authorize(_ context.Context, req Request) (Decision, error) {
	if req.Action == "" {
		return Decision{}, fmt.Errorf("authorization action is required")
	}

	principalUID := cedar.NewEntityUID(cedar.EntityType(cedarNamespace+"::User"), cedar.String(fmt.Sprint(req.Principal.ID)))

	jobp := make([]cedar.Value, len(req.Principal.Jobp))
	for i, p := range req.Principal.Jobp {
		jobp[i] = cedar.String(p)
	}

	archive := req.Archive
	if archive == nil {
		archive = &ArchiveResource{}
	}
	resourceUID := cedar.NewEntityUID(cedar.EntityType(cedarNamespace+"::Archive"), cedar.String(fmt.Sprint(archive.ID)))

	entities := cedar.EntityMap{
		principalUID: cedar.Entity{
			UID: principalUID,
			Attributes: cedar.NewRecord(cedar.RecordMap{
				"admin":  cedar.Boolean(req.Principal.Admin),
				"jobs":   longSet(rootIDs(req.Principal.Jobs)),
				"jobp":   cedar.NewSet(jobp...),
				"groups": longSet(req.Principal.Groups),
			}),
		},
		resourceUID: cedar.Entity{
			UID: resourceUID,
			Attributes: cedar.NewRecord(cedar.RecordMap{
				"id":        cedar.Long(archive.ID),
				"protected": cedar.Boolean(archive.Protected),
				"groups":    longSet(archive.Groups),
			}),
		},
	}

	cedarReq := cedar.Request{
		Principal: principalUID,
		Action:    cedar.NewEntityUID(cedar.EntityType(cedarNamespace+"::Action"), cedar.String(req.Action)),
		Resource:  resourceUID,
		Context:   cedar.NewRecord(cedar.RecordMap{}),
	}

	decision, diagnostic := cedar.Authorize(a.policySet, entities, cedarReq)
	for _, e := range diagnostic.Errors {
		logger.Warnw("Cedar policy evaluation error", "policy", e.PolicyID, "error", e.Message)
	}

	logger.Debugw("Authorization decision",
		"action", req.Action,
		"decision", decision,
		"principal", req.Principal.ID,
		"archive", archive.ID,
	)

	var reasons []string
	for _, r := range diagnostic.Reasons {
		reasons = append(reasons, string(r.PolicyID))
	}

	return Decision{
		Allowed: decision == cedar.Allow,
		Reasons: reasons,
	}, nil
}

func longSet(ids []int64) cedar.Set {
	values := make([]cedar.Value, len(ids))
	for i, id := range ids {
		values[i] = cedar.Long(id)
	}
	return cedar.NewSet(values...)
}

// rootIDs mirrors the archive mount fallback: no mounts means {0}.
func rootIDs(jobs []int64) []int64 {
	if len(jobs) == 0 {
		return []int64{0}
	}
	return jobs
}
