package app

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed bearer token for testing",
		Long: `Issue an HS256 bearer token accepted by a server running in jwt auth mode.

The secret, issuer and audience are taken from the auth section of --config
unless given as flags. Use --member-groups for front-end members and
--admin, --archives and --jobp for back-end users.

Example:
  jobs-server token --config config.yaml --sub 2 --archives 1,3 --jobp create`,
		RunE: runToken,
	}
	addConfigFlag(cmd)
	cmd.Flags().String("secret-file", "", "File holding the HMAC secret")
	cmd.Flags().String("issuer", "", "Issuer claim")
	cmd.Flags().String("audience", "", "Audience claim")
	cmd.Flags().String("sub", "", "Subject: the user or member ID (required)")
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().Bool("admin", false, "Issue an administrator token")
	cmd.Flags().Int64Slice("archives", nil, "Mounted archive IDs")
	cmd.Flags().StringSlice("jobp", nil, "Archive permissions (create, delete)")
	cmd.Flags().Int64Slice("member-groups", nil, "Front-end member groups")
	cmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	return cmd
}

// tokenSettings are the flags of the token command, completed from the
// configuration file when one is given
type tokenSettings struct {
	secretFile string
	issuer     string
	audience   string
}

func resolveTokenSettings(cmd *cobra.Command) (tokenSettings, error) {
	var s tokenSettings
	s.secretFile, _ = cmd.Flags().GetString("secret-file")
	s.issuer, _ = cmd.Flags().GetString("issuer")
	s.audience, _ = cmd.Flags().GetString("audience")

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return s, err
		}
		if cfg.Auth != nil {
			s.secretFile = cmp.Or(s.secretFile, cfg.Auth.SecretFile)
			s.issuer = cmp.Or(s.issuer, cfg.Auth.Issuer)
			s.audience = cmp.Or(s.audience, cfg.Auth.Audience)
		}
	}
	if s.secretFile == "" {
		return s, fmt.Errorf("--secret-file or an auth.secretFile in --config is required")
	}
	return s, nil
}

func runToken(cmd *cobra.Command, _ []string) error {
	settings, err := resolveTokenSettings(cmd)
	if err != nil {
		return err
	}

	sub, _ := cmd.Flags().GetString("sub")
	if _, err := strconv.ParseInt(sub, 10, 64); err != nil {
		return fmt.Errorf("--sub must be a numeric ID, got %q", sub)
	}

	secret, err := os.ReadFile(filepath.Clean(settings.secretFile))
	if err != nil {
		return fmt.Errorf("failed to read secret file: %w", err)
	}

	ttl, _ := cmd.Flags().GetDuration("ttl")
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if settings.issuer != "" {
		claims["iss"] = settings.issuer
	}
	if settings.audience != "" {
		claims["aud"] = settings.audience
	}
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		claims["name"] = name
	}
	if admin, _ := cmd.Flags().GetBool("admin"); admin {
		claims["admin"] = true
	}
	if archives, _ := cmd.Flags().GetInt64Slice("archives"); len(archives) > 0 {
		claims["jobs"] = archives
	}
	if jobp, _ := cmd.Flags().GetStringSlice("jobp"); len(jobp) > 0 {
		claims["jobp"] = jobp
	}
	if groups, _ := cmd.Flags().GetInt64Slice("member-groups"); len(groups) > 0 {
		claims["member_groups"] = groups
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(strings.TrimSpace(string(secret))))
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
