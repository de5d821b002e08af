package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPublicPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		configured []string
		want       PublicPaths
	}{
		{
			name: "defaults only",
			want: PublicPaths{"/health", "/readiness", "/version", "/metrics"},
		},
		{
			name:       "configured paths are cleaned",
			configured: []string{"sitemap.xml", "/modules/", "//inserttags/./"},
			want:       PublicPaths{"/health", "/readiness", "/version", "/metrics", "/sitemap.xml", "/modules", "/inserttags"},
		},
		{
			name:       "duplicates and blanks are dropped",
			configured: []string{"/health/", "", "  ", "/modules", "modules"},
			want:       PublicPaths{"/health", "/readiness", "/version", "/metrics", "/modules"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewPublicPaths(tt.configured...))
		})
	}
}

func TestPublicPaths_Match(t *testing.T) {
	t.Parallel()

	public := PublicPaths{"/health", "/modules", "/sitemap.xml"}

	tests := []struct {
		name  string
		path  string
		paths PublicPaths
		want  bool
	}{
		{"exact match", "/health", public, true},
		{"module render", "/modules/3", public, true},
		{"admin", "/admin/archives", public, false},
		{"no public paths", "/health", nil, false},

		{"traversal into admin", "/health/../admin/jobs", public, false},
		{"traversal over two levels", "/modules/../../admin/archives", public, false},
		{"traversal within modules", "/modules/1/../2", public, true},
		{"encoded separators", "/modules/..%2f..%2fadmin/jobs", public, false},
		{"encoded dots", "/modules/%2E%2E/admin", public, false},

		{"healthcheck is not health", "/healthcheck", public, false},
		{"compressed sitemap", "/sitemap.xml.gz", public, false},
		{"segment below", "/health/check", public, true},
		{"trailing slash", "/health/", public, true},
		{"double slash", "//health", public, true},
		{"dot segment", "/./modules/1", public, true},
		{"relative request path", "modules/1", public, true},

		{"root exact", "/", PublicPaths{"/"}, true},
		{"root opens everything", "/admin/jobs/1", PublicPaths{"/"}, true},
		{"unclean public path", "/modules/1", PublicPaths{"modules/"}, true},

		{"case sensitive", "/Health", public, false},
		{"normalised traversal", "//health/..//admin", public, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.paths.Match(tt.path), "path=%q", tt.path)
		})
	}
}
