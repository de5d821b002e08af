package app

import (
	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/frontend"
	"github.com/maniaxatwork/jobs-server/internal/search"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/telemetry"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// JobsService provides storage access
	JobsService service.JobsService

	// Checker evaluates back-end permissions and member visibility
	Checker *authz.Checker

	// Modules holds the configured front-end modules
	Modules *frontend.Registry

	// Scheduler rebuilds the sitemap file. Nil when no sitemap path is configured.
	Scheduler *search.Scheduler

	// Telemetry owns the tracer and meter providers
	Telemetry *telemetry.Telemetry
}
