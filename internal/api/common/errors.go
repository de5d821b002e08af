package common

import (
	"errors"
	"net/http"

	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/frontend"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

// notFoundErrors are the sentinels answered with 404
var notFoundErrors = []error{
	service.ErrJobNotFound,
	service.ErrArchiveNotFound,
	service.ErrPageNotFound,
	service.ErrUserNotFound,
	service.ErrFileNotFound,
	frontend.ErrUnknownModule,
}

// WriteServiceError maps store, permission and front-end errors to a JSON
// error response. Unknown errors are logged and answered with a generic 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if authz.WriteAccessDenied(w, err) {
		return
	}

	var (
		notFound *frontend.NotFoundError
		internal *frontend.InternalError
	)
	switch {
	case isNotFound(err), errors.As(err, &notFound):
		WriteErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidJob):
		WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrAliasConflict):
		WriteErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.As(err, &internal):
		logger.Errorw("Request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		WriteErrorResponse(w, internal.Message, http.StatusInternalServerError)
	default:
		logger.Errorw("Request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		WriteErrorResponse(w, "internal server error", http.StatusInternalServerError)
	}
}

func isNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
