package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/gomega"
)

const (
	// TestSecret signs the tokens of the jwt configurations
	TestSecret = "integration-secret"
	// TestIssuer is the issuer of the jwt configurations
	TestIssuer = "https://issuer.example.org"

	seedSource = "../../internal/service/inmemory/testdata/seed.yaml"
)

// Module is a front-end module of a test configuration
type Module struct {
	ID       int64
	Type     string
	Name     string
	Archives []int64
}

// DefaultModules are a list and two readers for the public and the member
// archive of the seed data
func DefaultModules() []Module {
	return []Module{
		{ID: 10, Type: "jobslist", Name: "Job list", Archives: []int64{1}},
		{ID: 20, Type: "jobsreader", Archives: []int64{1}},
		{ID: 21, Type: "jobsreader", Archives: []int64{2}},
	}
}

// ConfigOptions describe a file backed test configuration
type ConfigOptions struct {
	// SeedPath is the seed data file; empty means a copy of the test seed
	SeedPath string
	Modules  []Module
	// JWT enables bearer tokens signed with TestSecret
	JWT         bool
	SitemapPath string
	RateLimit   float64
}

// CopySeed copies the test seed data into dir and returns the copy's path
func CopySeed(dir string) string {
	data, err := os.ReadFile(seedSource)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	path := filepath.Join(dir, "seed.yaml")
	gomega.Expect(os.WriteFile(path, data, 0600)).To(gomega.Succeed())
	return path
}

// WriteConfigYAML writes a configuration file for opts into dir and
// returns its path. Writing it again replaces the file in place.
func WriteConfigYAML(dir string, opts ConfigOptions) string {
	if opts.SeedPath == "" {
		opts.SeedPath = CopySeed(dir)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `site:
  baseUrl: https://www.example.org
file:
  path: %s
`, opts.SeedPath)

	if len(opts.Modules) > 0 {
		b.WriteString("modules:\n")
		for _, m := range opts.Modules {
			fmt.Fprintf(&b, "  - id: %d\n    type: %s\n", m.ID, m.Type)
			if m.Name != "" {
				fmt.Fprintf(&b, "    name: %s\n", m.Name)
			}
			fmt.Fprintf(&b, "    archives: %s\n", int64List(m.Archives))
		}
	}

	if opts.JWT {
		secret := filepath.Join(dir, "secret")
		gomega.Expect(os.WriteFile(secret, []byte(TestSecret+"\n"), 0600)).To(gomega.Succeed())
		fmt.Fprintf(&b, `auth:
  mode: jwt
  secretFile: %s
  issuer: %s
`, secret, TestIssuer)
	}

	if opts.SitemapPath != "" {
		fmt.Fprintf(&b, `search:
  sitemapPath: %s
  rootPage: 1
`, opts.SitemapPath)
	}

	if opts.RateLimit > 0 {
		fmt.Fprintf(&b, `rateLimit:
  requestsPerSecond: %g
  burst: 1
`, opts.RateLimit)
	}

	path := filepath.Join(dir, "config.yaml")
	// write and rename so watchers never read a partial file
	tmp := path + ".tmp"
	gomega.Expect(os.WriteFile(tmp, []byte(b.String()), 0600)).To(gomega.Succeed())
	gomega.Expect(os.Rename(tmp, path)).To(gomega.Succeed())
	return path
}

func int64List(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// UserToken signs a back-end user token for the seed user with the given ID
func UserToken(sub int64, extra jwt.MapClaims) string {
	claims := jwt.MapClaims{"sub": fmt.Sprint(sub)}
	for k, v := range extra {
		claims[k] = v
	}
	return SignToken(claims)
}

// MemberToken signs a front-end member token
func MemberToken(sub int64, groups ...int64) string {
	return SignToken(jwt.MapClaims{"sub": fmt.Sprint(sub), "member_groups": groups})
}

// SignToken signs claims with TestSecret, adding issuer and expiry
func SignToken(claims jwt.MapClaims) string {
	now := time.Now()
	claims["iss"] = TestIssuer
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(time.Hour).Unix()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestSecret))
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return token
}
