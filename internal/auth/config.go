package auth

import (
	"path"
	"slices"
	"strings"
)

// DefaultPublicPaths never require a token, even in jwt mode
var DefaultPublicPaths = []string{"/health", "/readiness", "/version", "/metrics"}

// PublicPaths are cleaned path prefixes that bypass authentication
type PublicPaths []string

// NewPublicPaths returns DefaultPublicPaths plus configured, cleaned and
// without duplicates
func NewPublicPaths(configured ...string) PublicPaths {
	paths := make(PublicPaths, 0, len(DefaultPublicPaths)+len(configured))
	for _, p := range slices.Concat(DefaultPublicPaths, configured) {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if p = cleanPath(p); !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}
	return paths
}

func cleanPath(p string) string {
	return path.Clean("/" + p)
}

// Match reports whether requestPath lies below one of the public paths.
// Matching is segment aware, so /health covers /health/check but not
// /healthcheck. Paths with encoded separators or dots never match since
// they could resolve differently behind the router.
func (p PublicPaths) Match(requestPath string) bool {
	lower := strings.ToLower(requestPath)
	if strings.Contains(lower, "%2f") || strings.Contains(lower, "%2e") {
		return false
	}

	clean := cleanPath(requestPath)
	for _, public := range p {
		public = cleanPath(public)
		if public == "/" || clean == public || strings.HasPrefix(clean, public+"/") {
			return true
		}
	}
	return false
}
