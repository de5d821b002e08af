// Package main is the entry point for the jobs server.
package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/maniaxatwork/jobs-server/cmd/jobs-server/app"
	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/logger"
)

// getLogLevel reads JOBS_LOG_LEVEL, falling back to LOG_LEVEL
func getLogLevel() string {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if level := v.GetString("LOG_LEVEL"); level != "" {
		return level
	}
	return os.Getenv("LOG_LEVEL")
}

func main() {
	// A .env file is optional; the environment always wins over it
	envErr := godotenv.Load()

	// Logs go to stderr to keep stdout clean for commands that print data
	logger.Initialize(getLogLevel())
	defer logger.Sync()

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warnf("Failed to load .env file: %v", envErr)
	}

	if err := app.NewRootCmd().Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}
