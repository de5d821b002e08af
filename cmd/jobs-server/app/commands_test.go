package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maniaxatwork/jobs-server/internal/versions"
)

const testSecret = "test-secret"

// writeTestConfig writes a file backed configuration and its HMAC secret
// into a temporary directory and returns the config path
func writeTestConfig(t *testing.T) string {
	t.Helper()

	seed, err := filepath.Abs("../../../internal/service/inmemory/testdata/seed.yaml")
	require.NoError(t, err)

	dir := t.TempDir()
	secret := filepath.Join(dir, "secret")
	require.NoError(t, os.WriteFile(secret, []byte(testSecret+"\n"), 0600))

	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`site:
  baseUrl: https://www.example.org
file:
  path: %s
modules:
  - id: 10
    type: jobslist
    archives: [1]
auth:
  mode: jwt
  secretFile: %s
  issuer: https://issuer.example.org
`, seed, secret)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// execute runs the root command with args and returns its output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)

	var info versions.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, versions.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "jobs-server "+versions.Version), out)
}

func TestConfigRequired(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"archives", "list"},
		{"sitemap"},
		{"migrate", "up", "--yes"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "--config or JOBS_CONFIG is required")
		})
	}
}

func TestArchivesList(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "archives", "list", "--config", writeTestConfig(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Open positions")
	assert.Contains(t, out, "Members only")
	assert.Contains(t, out, "Drafts")
	// archives are listed by title
	assert.Less(t, strings.Index(out, "Drafts"), strings.Index(out, "Members only"))
	assert.Less(t, strings.Index(out, "Members only"), strings.Index(out, "Open positions"))
}

func TestSitemapCmd(t *testing.T) {
	t.Parallel()

	config := writeTestConfig(t)

	t.Run("stdout", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "sitemap", "--config", config)
		require.NoError(t, err)
		assert.Contains(t, out, "<urlset")
		assert.Contains(t, out, "<loc>https://www.example.org/job-detail/items/senior-go-developer</loc>")
		assert.NotContains(t, out, "member-only")
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "sitemap.xml")
		out, err := execute(t, "sitemap", "--config", config, "--output", path)
		require.NoError(t, err)
		assert.Empty(t, out)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "senior-go-developer")
	})
}

func TestTokenCmd(t *testing.T) {
	t.Parallel()

	config := writeTestConfig(t)

	out, err := execute(t, "token", "--config", config, "--sub", "2",
		"--archives", "1,3", "--jobp", "create", "--member-groups", "5")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.NewParser(jwt.WithIssuer("https://issuer.example.org"), jwt.WithExpirationRequired()).
		ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (any, error) {
			return []byte(testSecret), nil
		})
	require.NoError(t, err)

	assert.Equal(t, "2", claims["sub"])
	assert.Equal(t, []any{float64(1), float64(3)}, claims["jobs"])
	assert.Equal(t, []any{"create"}, claims["jobp"])
	assert.Equal(t, []any{float64(5)}, claims["member_groups"])
	assert.NotContains(t, claims, "admin")
}

func TestTokenCmd_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{name: "no secret", args: []string{"token", "--sub", "1"}, errMsg: "--secret-file"},
		{name: "missing secret file", args: []string{"token", "--sub", "1", "--secret-file", "/nonexistent/secret"}, errMsg: "failed to read secret file"},
		{name: "no subject", args: []string{"token", "--secret-file", "/nonexistent/secret"}, errMsg: "--sub must be a numeric ID"},
		{name: "alias subject", args: []string{"token", "--secret-file", "/nonexistent/secret", "--sub", "jane"}, errMsg: "--sub must be a numeric ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMigrate_RequiresDatabase(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "migrate", "up", "--yes", "--config", writeTestConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database configuration is required")
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr bool
	}{
		{name: "yes", input: "yes\n", want: true},
		{name: "short yes", input: "Y\n", want: true},
		{name: "no newline", input: "y", want: true},
		{name: "no", input: "no\n"},
		{name: "anything else", input: "maybe\n"},
		{name: "empty line", input: "\n"},
		{name: "eof", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			got, err := confirm(strings.NewReader(tt.input), &out, "Continue?")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Continue? (yes/no): ", out.String())
		})
	}
}

//nolint:paralleltest // replaces isTerminal
func TestConfirmed_NonInteractive(t *testing.T) {
	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })
	isTerminal = func() bool { return false }

	cmd := newMigrateCmd()
	require.NoError(t, cmd.ParseFlags(nil))
	ok, err := confirmed(cmd, "Continue?")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "pass --yes")

	require.NoError(t, cmd.Flags().Set("yes", "true"))
	ok, err = confirmed(cmd, "Continue?")
	require.NoError(t, err)
	assert.True(t, ok)
}
