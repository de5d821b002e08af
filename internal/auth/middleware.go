// Package auth authenticates requests with HMAC signed bearer tokens.
package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/maniaxatwork/jobs-server/internal/logger"
)

// RFC 6750 Section 3 error codes
const (
	// errorCodeInvalidRequest indicates a missing or malformed authorization header
	errorCodeInvalidRequest = "invalid_request"

	// errorCodeInvalidToken indicates an expired, malformed or otherwise invalid token
	errorCodeInvalidToken = "invalid_token"
)

// defaultRealm is the default protection space identifier
const defaultRealm = "jobs-server"

// Authenticator validates bearer tokens and stores the caller's Identity in
// the request context. Without a validator (anonymous mode) every request
// passes unauthenticated.
type Authenticator struct {
	validator   TokenValidatorInterface
	realm       string
	publicPaths PublicPaths
}

// Enabled reports whether tokens are validated. A nil Authenticator is disabled.
func (a *Authenticator) Enabled() bool {
	return a != nil && a.validator != nil
}

// Required rejects requests without a valid token. Public paths pass through.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return a.handler(next, false)
}

// Optional authenticates requests that carry a token and lets anonymous
// requests through. A token that is present but invalid is still rejected.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return a.handler(next, true)
}

func (a *Authenticator) handler(next http.Handler, optional bool) http.Handler {
	if !a.Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.publicPaths.Match(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" && optional {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			logger.Warnw("Token extraction failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			a.writeError(w, http.StatusUnauthorized, errorCodeInvalidRequest, "missing or malformed authorization header")
			return
		}

		claims, err := a.validator.ValidateToken(r.Context(), token)
		if err != nil {
			logger.Warnw("Token validation failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			a.writeError(w, http.StatusUnauthorized, errorCodeInvalidToken, "token validation failed")
			return
		}

		identity := newIdentity(claims)
		logger.Debugw("Authentication successful",
			"subject", identity.Subject,
			"remote_addr", r.RemoteAddr,
			"path", r.URL.Path)

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("authorization header is missing")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("authorization header is not a bearer token")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("bearer token is empty")
	}
	return token, nil
}

// sanitizeHeaderValue removes characters that could enable header injection attacks.
func sanitizeHeaderValue(s string) string {
	if !strings.ContainsAny(s, "\r\n\"") {
		return s
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	// quoted-string escaping per RFC 7230
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// writeError writes a JSON error with an RFC 6750 WWW-Authenticate header
func (a *Authenticator) writeError(w http.ResponseWriter, status int, errCode, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="%s", error="%s", error_description="%s"`,
		sanitizeHeaderValue(a.realm), errCode, sanitizeHeaderValue(description)))
	w.WriteHeader(status)

	resp := struct {
		Error string `json:"error"`
	}{
		Error: description,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Errorf("Failed to encode error response: %v", err)
	}
}
