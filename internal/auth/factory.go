package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/logger"
)

// validatorFactory creates token validators from configuration.
type validatorFactory func(cfg *config.AuthConfig) (TokenValidatorInterface, error)

// DefaultValidatorFactory reads the HMAC secret from cfg.SecretFile
var DefaultValidatorFactory validatorFactory = func(cfg *config.AuthConfig) (TokenValidatorInterface, error) {
	data, err := os.ReadFile(filepath.Clean(cfg.SecretFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read auth secret file: %w", err)
	}
	return newHMACValidator([]byte(strings.TrimSpace(string(data))), cfg.Issuer, cfg.Audience)
}

// NewAuthenticator creates the authenticator for the configured auth mode.
// A nil config means anonymous mode.
func NewAuthenticator(cfg *config.AuthConfig, factory validatorFactory) (*Authenticator, error) {
	if cfg == nil {
		logger.Infof("auth: anonymous mode (no auth config)")
		return &Authenticator{}, nil
	}

	switch cfg.Mode {
	case config.AuthModeAnonymous, "":
		logger.Infof("auth: anonymous mode")
		return &Authenticator{}, nil
	case config.AuthModeJWT:
		validator, err := factory(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create token validator: %w", err)
		}
		realm := cfg.Realm
		if realm == "" {
			realm = defaultRealm
		}
		logger.Infof("auth: jwt mode")
		return &Authenticator{
			validator:   validator,
			realm:       realm,
			publicPaths: NewPublicPaths(cfg.PublicPaths...),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}
