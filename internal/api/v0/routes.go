// Package v0 serves the system endpoints of the jobs server. They sit outside
// authentication and rate limiting so health checks keep working under load.
package v0

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maniaxatwork/jobs-server/internal/api/common"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/versions"
)

// readinessTimeout bounds a single storage readiness check
const readinessTimeout = 3 * time.Second

type healthHandlers struct {
	svc service.JobsService
}

// HealthRouter mounts /health, /readiness and /version.
// Liveness never touches storage; readiness asks svc.
func HealthRouter(svc service.JobsService) http.Handler {
	p := &healthHandlers{svc: svc}

	r := chi.NewRouter()
	r.Get("/health", p.live)
	r.Get("/readiness", p.ready)
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
	})
	return r
}

func (*healthHandlers) live(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

func (p *healthHandlers) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := p.svc.CheckReadiness(ctx); err != nil {
		logger.Warnw("Storage not ready", "error", err)
		common.WriteErrorResponse(w, "storage not ready: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
}
