// Package config provides configuration loading and management for the jobs server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/telemetry"
)

// EnvPrefix is the prefix of environment variables read by the server.
const EnvPrefix = "JOBS"

const (
	// StorageTypeDatabase stores archives and jobs in PostgreSQL
	StorageTypeDatabase = "database"

	// StorageTypeFile serves archives and jobs from a YAML seed file held in memory
	StorageTypeFile = "file"
)

const (
	// AuthModeAnonymous disables authentication; the admin API is not mounted
	AuthModeAnonymous = "anonymous"

	// AuthModeJWT validates HMAC signed bearer tokens
	AuthModeJWT = "jwt"
)

// Front-end module types.
const (
	ModuleTypeList    = "jobslist"
	ModuleTypeReader  = "jobsreader"
	ModuleTypeArchive = "jobsarchive"
	ModuleTypeMenu    = "jobsmenu"
)

const (
	defaultMaxPaginationLinks = 7
	defaultDateFormat         = "2006-01-02"
	defaultDatimFormat        = "2006-01-02 15:04"
	defaultSitemapSchedule    = "@hourly"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Site      SiteConfig        `yaml:"site"`
	Storage   StorageConfig     `yaml:"storage"`
	Database  *DatabaseConfig   `yaml:"database,omitempty"`
	File      *FileConfig       `yaml:"file,omitempty"`
	Modules   []ModuleConfig    `yaml:"modules"`
	Auth      *AuthConfig       `yaml:"auth,omitempty"`
	Authz     *AuthzConfig      `yaml:"authz,omitempty"`
	Search    *SearchConfig     `yaml:"search,omitempty"`
	RateLimit *RateLimitConfig  `yaml:"rateLimit,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// SiteConfig holds settings that apply to every rendered page
type SiteConfig struct {
	// BaseURL is the scheme and host used for absolute URLs, e.g. "https://example.org"
	BaseURL string `yaml:"baseUrl"`

	// UseAutoItem drops the "/items" fragment from reader URLs
	UseAutoItem bool `yaml:"useAutoItem,omitempty"`

	// URLSuffix is appended to every page URL, e.g. ".html"
	URLSuffix string `yaml:"urlSuffix,omitempty"`

	// MaxPaginationLinks is the number of numbered links shown by the pagination
	MaxPaginationLinks int `yaml:"maxPaginationLinks,omitempty"`

	// DateFormat and DatimFormat are Go time layouts
	DateFormat  string `yaml:"dateFormat,omitempty"`
	DatimFormat string `yaml:"datimFormat,omitempty"`

	// Timezone is an IANA location name used for archive periods. Defaults to UTC.
	Timezone string `yaml:"timezone,omitempty"`

	// Labels overrides the built-in English labels
	Labels map[string]string `yaml:"labels,omitempty"`
}

// StorageConfig selects the storage backend
type StorageConfig struct {
	// Type is either "database" or "file"
	Type string `yaml:"type"`
}

// FileConfig defines the YAML seed file for the in-memory store
type FileConfig struct {
	// Path is the path to the seed file
	Path string `yaml:"path"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// MigrationUser is the user used by the migrate commands. Defaults to User.
	MigrationUser string `yaml:"migrationUser,omitempty"`

	// PasswordFile is the path to a file containing the database password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the minimum number of connections kept in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`

	// ConnectTimeout bounds the retries performed while the database comes up
	ConnectTimeout string `yaml:"connectTimeout,omitempty"`
}

// ModuleConfig configures one front-end module instance
type ModuleConfig struct {
	ID       int64  `yaml:"id"`
	Type     string `yaml:"type"`
	Name     string `yaml:"name,omitempty"`
	Headline string `yaml:"headline,omitempty"`
	CSSClass string `yaml:"cssClass,omitempty"`

	Archives      []int64  `yaml:"archives"`
	ReaderModule  int64    `yaml:"readerModule,omitempty"`
	NumberOfItems int      `yaml:"numberOfItems,omitempty"`
	SkipFirst     int      `yaml:"skipFirst,omitempty"`
	PerPage       int      `yaml:"perPage,omitempty"`
	Order         string   `yaml:"order,omitempty"`
	Featured      string   `yaml:"featured,omitempty"`
	MetaFields    []string `yaml:"metaFields,omitempty"`
	Template      string   `yaml:"template,omitempty"`
	ImgSize       string   `yaml:"imgSize,omitempty"`

	// Reader settings
	OverviewPage int64  `yaml:"overviewPage,omitempty"`
	CustomLabel  string `yaml:"customLabel,omitempty"`

	// Archive and menu settings
	Format        string `yaml:"format,omitempty"`
	JumpToCurrent string `yaml:"jumpToCurrent,omitempty"`
	ShowQuantity  bool   `yaml:"showQuantity,omitempty"`
	JumpTo        int64  `yaml:"jumpTo,omitempty"`
}

// AuthConfig configures request authentication
type AuthConfig struct {
	// Mode is "anonymous" or "jwt"
	Mode string `yaml:"mode"`

	// SecretFile holds the HMAC secret used to verify tokens
	SecretFile string `yaml:"secretFile,omitempty"`

	Issuer   string `yaml:"issuer,omitempty"`
	Audience string `yaml:"audience,omitempty"`
	Realm    string `yaml:"realm,omitempty"`

	// PublicPaths never require authentication
	PublicPaths []string `yaml:"publicPaths,omitempty"`
}

// AuthzConfig configures Cedar policy evaluation
type AuthzConfig struct {
	// PolicyFile replaces the built-in policies when set
	PolicyFile string `yaml:"policyFile,omitempty"`
}

// SearchConfig configures sitemap generation
type SearchConfig struct {
	// Schedule is a cron expression for periodic sitemap rebuilds
	Schedule string `yaml:"schedule,omitempty"`

	// SitemapPath is where the rebuilt sitemap is written. Empty disables writing.
	SitemapPath string `yaml:"sitemapPath,omitempty"`

	// RootPage restricts the sitemap to a page tree
	RootPage int64 `yaml:"rootPage,omitempty"`
}

// RateLimitConfig limits front-end requests per client address
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from JOBS_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(EnvPrefix + "_DATABASE_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s_DATABASE_PASSWORD environment variable", EnvPrefix,
	)
}

// GetConnectionString builds a PostgreSQL connection string for the application user.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	return d.connectionString(d.User)
}

// GetMigrationUser returns the user that runs migrations
func (d *DatabaseConfig) GetMigrationUser() string {
	if d.MigrationUser != "" {
		return d.MigrationUser
	}
	return d.User
}

// GetMigrationConnectionString builds a connection string for the migration user
func (d *DatabaseConfig) GetMigrationConnectionString() (string, error) {
	return d.connectionString(d.GetMigrationUser())
}

// GetConnectTimeout returns the connect retry budget, defaulting to 30 seconds
func (d *DatabaseConfig) GetConnectTimeout() time.Duration {
	if d.ConnectTimeout == "" {
		return 30 * time.Second
	}
	timeout, err := time.ParseDuration(d.ConnectTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return timeout
}

func (d *DatabaseConfig) connectionString(user string) (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(user),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	), nil
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses and validates YAML configuration data
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetStorageType returns the storage type, defaulting to file when a seed file is configured
func (c *Config) GetStorageType() string {
	if c.Storage.Type != "" {
		return c.Storage.Type
	}
	if c.Database != nil {
		return StorageTypeDatabase
	}
	return StorageTypeFile
}

// GetAuthMode returns the auth mode, defaulting to anonymous
func (c *Config) GetAuthMode() string {
	if c.Auth == nil || c.Auth.Mode == "" {
		return AuthModeAnonymous
	}
	return c.Auth.Mode
}

// GetModule returns the module with the given ID
func (c *Config) GetModule(id int64) (ModuleConfig, bool) {
	for _, m := range c.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return ModuleConfig{}, false
}

// GetSitemapSchedule returns the cron schedule for sitemap rebuilds
func (c *Config) GetSitemapSchedule() string {
	if c.Search == nil || c.Search.Schedule == "" {
		return defaultSitemapSchedule
	}
	return c.Search.Schedule
}

// GetMaxPaginationLinks returns the pagination link count
func (s *SiteConfig) GetMaxPaginationLinks() int {
	if s.MaxPaginationLinks <= 0 {
		return defaultMaxPaginationLinks
	}
	return s.MaxPaginationLinks
}

// GetDateFormat returns the date layout
func (s *SiteConfig) GetDateFormat() string {
	if s.DateFormat == "" {
		return defaultDateFormat
	}
	return s.DateFormat
}

// GetDatimFormat returns the date and time layout
func (s *SiteConfig) GetDatimFormat() string {
	if s.DatimFormat == "" {
		return defaultDatimFormat
	}
	return s.DatimFormat
}

// GetLocation returns the configured time zone
func (s *SiteConfig) GetLocation() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := c.validateSite(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateModules(); err != nil {
		return err
	}

	if err := c.validateAuth(); err != nil {
		return err
	}

	if c.Search != nil && c.Search.Schedule != "" {
		if _, err := cron.ParseStandard(c.Search.Schedule); err != nil {
			return fmt.Errorf("search.schedule must be a valid cron expression: %w", err)
		}
	}

	if c.RateLimit != nil && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rateLimit.requestsPerSecond must be greater than zero")
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}

func (c *Config) validateSite() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.baseUrl is required")
	}
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site.baseUrl must be an absolute URL, got %q", c.Site.BaseURL)
	}
	if c.Site.Timezone != "" {
		if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
			return fmt.Errorf("site.timezone: %w", err)
		}
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.GetStorageType() {
	case StorageTypeDatabase:
		if c.Database == nil {
			return fmt.Errorf("database configuration is required for storage type %s", StorageTypeDatabase)
		}
	case StorageTypeFile:
		if c.File == nil || c.File.Path == "" {
			return fmt.Errorf("file.path is required for storage type %s", StorageTypeFile)
		}
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}
	return nil
}

func (c *Config) validateModules() error {
	seen := make(map[int64]bool, len(c.Modules))
	for i, m := range c.Modules {
		prefix := fmt.Sprintf("modules[%d]", i)
		if m.ID <= 0 {
			return fmt.Errorf("%s: id must be a positive number", prefix)
		}
		if seen[m.ID] {
			return fmt.Errorf("%s: duplicate module id %d", prefix, m.ID)
		}
		seen[m.ID] = true

		if err := validateModule(&m, prefix); err != nil {
			return err
		}
	}

	// Reader references must point to reader modules
	for i, m := range c.Modules {
		if m.ReaderModule == 0 {
			continue
		}
		reader, ok := c.GetModule(m.ReaderModule)
		if !ok || reader.Type != ModuleTypeReader {
			return fmt.Errorf("modules[%d]: readerModule %d is not a %s module", i, m.ReaderModule, ModuleTypeReader)
		}
	}
	return nil
}

func validateModule(m *ModuleConfig, prefix string) error {
	knownTypes := []string{ModuleTypeList, ModuleTypeReader, ModuleTypeArchive, ModuleTypeMenu}
	if !slices.Contains(knownTypes, m.Type) {
		return fmt.Errorf("%s: unknown module type %q", prefix, m.Type)
	}
	if len(m.Archives) == 0 {
		return fmt.Errorf("%s: at least one archive is required", prefix)
	}
	if m.NumberOfItems < 0 || m.SkipFirst < 0 || m.PerPage < 0 {
		return fmt.Errorf("%s: numberOfItems, skipFirst and perPage must not be negative", prefix)
	}
	if _, err := jobs.ParseOrder(m.Order); err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	if !jobs.FeaturedFilter(m.Featured).Valid() {
		return fmt.Errorf("%s: unknown featured filter %q", prefix, m.Featured)
	}
	for _, f := range m.MetaFields {
		if f != string(jobs.MetaDate) && f != string(jobs.MetaAuthor) {
			return fmt.Errorf("%s: unknown meta field %q", prefix, f)
		}
	}
	if m.Format != "" && !jobs.Format(m.Format).Valid() {
		return fmt.Errorf("%s: unknown format %q", prefix, m.Format)
	}
	if m.JumpToCurrent != "" && !jobs.JumpToCurrent(m.JumpToCurrent).Valid() {
		return fmt.Errorf("%s: unknown jumpToCurrent %q", prefix, m.JumpToCurrent)
	}
	return nil
}

func (c *Config) validateAuth() error {
	switch c.GetAuthMode() {
	case AuthModeAnonymous:
		return nil
	case AuthModeJWT:
		if c.Auth.SecretFile == "" {
			return fmt.Errorf("auth.secretFile is required for auth mode %s", AuthModeJWT)
		}
		return nil
	default:
		return fmt.Errorf("unknown auth mode: %s", c.Auth.Mode)
	}
}
