package authz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/maniaxatwork/jobs-server/internal/auth"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

type userKey struct{}

type memberKey struct{}

// ForbiddenResponse is the JSON body returned when authorization is denied.
type ForbiddenResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WithUser stores the back-end user in ctx
func WithUser(ctx context.Context, user *jobs.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the back-end user stored by UserMiddleware
func UserFromContext(ctx context.Context) (*jobs.User, bool) {
	user, ok := ctx.Value(userKey{}).(*jobs.User)
	return user, ok && user != nil
}

// WithMember stores the front-end member in ctx
func WithMember(ctx context.Context, member *jobs.Member) context.Context {
	return context.WithValue(ctx, memberKey{}, member)
}

// MemberFromContext returns the front-end member, or the anonymous member
func MemberFromContext(ctx context.Context) *jobs.Member {
	if member, ok := ctx.Value(memberKey{}).(*jobs.Member); ok && member != nil {
		return member
	}
	return &jobs.Member{}
}

// UserMiddleware resolves the authenticated identity to a back-end user with
// its effective permissions. The stored user record wins over the token
// claims; claims are used only when no record exists. Requests without an
// identity are rejected.
func UserMiddleware(store Store, checker *Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				writeForbidden(w, "authentication required")
				return
			}

			claimed, err := UserFromClaims(identity.Claims)
			if err != nil {
				logger.Warnw("Rejected token claims", "error", err, "path", r.URL.Path)
				writeForbidden(w, "invalid user claims")
				return
			}

			user, err := store.GetUser(r.Context(), claimed.ID)
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				user = claimed
			case err != nil:
				logger.Errorw("Failed to load user", "error", err, "user", claimed.ID)
				writeJSONError(w, http.StatusInternalServerError, "failed to load user")
				return
			}

			effective, err := checker.Effective(r.Context(), user)
			if err != nil {
				logger.Errorw("Failed to compute permissions", "error", err, "user", user.ID)
				writeJSONError(w, http.StatusInternalServerError, "failed to compute permissions")
				return
			}

			logger.Debugw("Back-end user resolved",
				"user", effective.ID,
				"admin", effective.Admin,
				"jobs", effective.Jobs,
				"path", r.URL.Path,
			)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), effective)))
		})
	}
}

// MemberMiddleware stores the front-end member derived from the optional
// identity; anonymous requests get the zero member.
func MemberMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var claims map[string]any
		if identity, ok := auth.IdentityFromContext(r.Context()); ok {
			claims = identity.Claims
		}
		next.ServeHTTP(w, r.WithContext(WithMember(r.Context(), MemberFromClaims(claims))))
	})
}

// WriteAccessDenied writes a 403 for an AccessDeniedError and reports true,
// or reports false for any other error.
func WriteAccessDenied(w http.ResponseWriter, err error) bool {
	var denied *AccessDeniedError
	if !errors.As(err, &denied) {
		return false
	}
	logger.Warnw("Access denied", "reason", denied.Reason)
	writeForbidden(w, denied.Reason)
	return true
}

func writeForbidden(w http.ResponseWriter, message string) {
	resp := ForbiddenResponse{
		Error:   "forbidden",
		Message: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Errorf("Failed to encode forbidden response: %v", err)
	}
}

// writeJSONError writes a generic JSON error response with the given status code.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	resp := struct {
		Error string `json:"error"`
	}{
		Error: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Errorf("Failed to encode error response: %v", err)
	}
}
