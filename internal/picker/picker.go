// Package picker implements the back-end link picker that selects a job and
// stores it as a jobs insert tag.
package picker

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

const (
	// Name identifies the jobs picker
	Name = "jobsPicker"
	// Label is the menu label of the picker
	Label = "Jobs picker"
	// DefaultInsertTag is stored when the picker config names none
	DefaultInsertTag = "{{jobs_url::%s}}"

	contextLink = "link"
	dcaTable    = "tl_jobs"
	basePath    = "/admin/jobs"
	jobsModule  = jobs.ModuleJobs
)

// Config is the state of one picker invocation
type Config struct {
	Context string `json:"context"`
	// Extras may carry "insertTag" to override DefaultInsertTag and "source"
	Extras  map[string]string `json:"extras"`
	Current string            `json:"current"`
	Value   string            `json:"value"`
}

// Attributes are the settings of the job selection widget
type Attributes struct {
	FieldType string   `json:"fieldType"`
	Value     string   `json:"value,omitempty"`
	Flags     []string `json:"flags,omitempty"`
}

// MenuItem is the entry of the picker in the picker menu
type MenuItem struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Class     string `json:"class"`
	IsCurrent bool   `json:"current"`
	URI       string `json:"uri"`
}

// Provider is the jobs picker
type Provider struct {
	store service.JobsService
}

// NewProvider returns a Provider looking up jobs in store
func NewProvider(store service.JobsService) *Provider {
	return &Provider{store: store}
}

// Name returns the picker name
func (p *Provider) Name() string {
	return Name
}

// SupportsContext reports whether the picker serves context for user. The
// user needs access to the jobs module; archive mounts alone do not grant it.
func (p *Provider) SupportsContext(pickerContext string, user *jobs.User) bool {
	if pickerContext != contextLink || user == nil {
		return false
	}
	return user.HasModule(jobsModule)
}

// IsCurrent reports whether cfg selects this picker
func (p *Provider) IsCurrent(cfg Config) bool {
	return cfg.Current == Name
}

// insertTag returns the tag format of cfg
func insertTag(cfg Config) string {
	if tag := cfg.Extras["insertTag"]; tag != "" {
		return tag
	}
	return DefaultInsertTag
}

// tagPattern turns a tag format into a pattern capturing the value and the flags
func tagPattern(format string) (*regexp.Regexp, error) {
	parts := strings.SplitN(format, "%s", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("insert tag %q has no %%s verb", format)
	}
	prefix := regexp.QuoteMeta(parts[0])
	suffix := regexp.QuoteMeta(strings.TrimSuffix(parts[1], "}}"))
	return regexp.Compile("^" + prefix + `([^|}]+)((?:\|[^|}]+)*)` + suffix + `\}\}$`)
}

func match(cfg Config) ([]string, bool) {
	re, err := tagPattern(insertTag(cfg))
	if err != nil {
		return nil, false
	}
	m := re.FindStringSubmatch(cfg.Value)
	return m, m != nil
}

// SupportsValue reports whether the current value is one of our insert tags
func (p *Provider) SupportsValue(cfg Config) bool {
	_, ok := match(cfg)
	return ok
}

// insertTagValue returns the job reference and the flags of the current value
func insertTagValue(cfg Config) (string, []string) {
	m, ok := match(cfg)
	if !ok {
		return "", nil
	}
	var flags []string
	if m[2] != "" {
		flags = strings.Split(strings.TrimPrefix(m[2], "|"), "|")
	}
	return m[1], flags
}

// DcaTable returns the table the picker selects from
func (p *Provider) DcaTable() string {
	return dcaTable
}

// DcaAttributes returns the widget settings, preselecting the current value
func (p *Provider) DcaAttributes(cfg Config) Attributes {
	attrs := Attributes{FieldType: "radio"}
	if value, flags := insertTagValue(cfg); value != "" {
		attrs.Value = value
		attrs.Flags = flags
	}
	return attrs
}

// ConvertDcaValue formats the selected job ID as insert tag
func (p *Provider) ConvertDcaValue(cfg Config, id int64) string {
	return strings.Replace(insertTag(cfg), "%s", strconv.FormatInt(id, 10), 1)
}

// RouteParameters returns the back-end route of the picker. When the
// current value refers to a job, the route opens the job's archive.
func (p *Provider) RouteParameters(ctx context.Context, cfg *Config) (url.Values, error) {
	params := url.Values{"do": {jobsModule}}
	if cfg == nil || cfg.Value == "" {
		return params, nil
	}
	value, _ := insertTagValue(*cfg)
	if value == "" {
		return params, nil
	}

	archiveID, err := p.archiveID(ctx, value)
	if err != nil {
		return nil, err
	}
	if archiveID > 0 {
		params.Set("table", dcaTable)
		params.Set("id", strconv.FormatInt(archiveID, 10))
	}
	return params, nil
}

func (p *Provider) archiveID(ctx context.Context, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, nil
	}
	job, err := p.store.GetJob(ctx, id)
	if errors.Is(err, service.ErrJobNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get job %d: %w", id, err)
	}
	archive, err := p.store.GetArchive(ctx, job.PID)
	if errors.Is(err, service.ErrArchiveNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get archive %d: %w", job.PID, err)
	}
	return archive.ID, nil
}

// URL returns the picker URL for cfg
func (p *Provider) URL(ctx context.Context, cfg Config) (string, error) {
	params, err := p.RouteParameters(ctx, &cfg)
	if err != nil {
		return "", err
	}
	encoded, err := EncodeConfig(cfg)
	if err != nil {
		return "", err
	}
	params.Set("popup", "1")
	params.Set("picker", encoded)
	return basePath + "?" + params.Encode(), nil
}

// MenuItem returns the menu entry of the picker
func (p *Provider) MenuItem(ctx context.Context, cfg Config) (MenuItem, error) {
	uri, err := p.URL(ctx, Config{Context: cfg.Context, Extras: cfg.Extras, Current: Name, Value: cfg.Value})
	if err != nil {
		return MenuItem{}, err
	}
	return MenuItem{Name: Name, Label: Label, Class: Name, IsCurrent: p.IsCurrent(cfg), URI: uri}, nil
}

var configEncoding = base64.URLEncoding.WithPadding(',')

// EncodeConfig serializes cfg for the picker query parameter: gzipped JSON
// in URL safe base64 with "," as padding
func EncodeConfig(cfg Config) (string, error) {
	if cfg.Extras == nil {
		cfg.Extras = map[string]string{}
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode picker config: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return "", fmt.Errorf("failed to compress picker config: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to compress picker config: %w", err)
	}
	return configEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeConfig reverses EncodeConfig. Uncompressed JSON is accepted as well.
func DecodeConfig(s string) (Config, error) {
	raw, err := configEncoding.DecodeString(s)
	if err != nil {
		return Config{}, fmt.Errorf("invalid picker config: %w", err)
	}

	data := raw
	if zr, err := gzip.NewReader(bytes.NewReader(raw)); err == nil {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(zr); err != nil {
			return Config{}, fmt.Errorf("invalid picker config: %w", err)
		}
		data = buf.Bytes()
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid picker config: %w", err)
	}
	return cfg, nil
}
