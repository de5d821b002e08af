package inmemory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
)

// Seed is the content of a YAML seed file
type Seed struct {
	Pages      []*jobs.Page      `yaml:"pages"`
	Users      []*jobs.User      `yaml:"users"`
	UserGroups []*jobs.UserGroup `yaml:"userGroups"`
	Files      []*jobs.File      `yaml:"files"`
	Archives   []*jobs.Archive   `yaml:"archives"`
	Jobs       []*jobs.Job       `yaml:"jobs"`
}

// DataProvider abstracts where the initial store content comes from
type DataProvider interface {
	// GetSeed returns the initial content of the store
	GetSeed(ctx context.Context) (*Seed, error)

	// GetSource describes the origin of the data, e.g. "file:/data/seed.yaml"
	GetSource() string
}

type fileDataProvider struct {
	path string
}

// NewFileDataProvider returns a DataProvider reading a YAML seed file
func NewFileDataProvider(path string) DataProvider {
	return &fileDataProvider{path: path}
}

// GetSeed implements DataProvider.GetSeed
func (p *fileDataProvider) GetSeed(_ context.Context) (*Seed, error) {
	data, err := os.ReadFile(filepath.Clean(p.path))
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// GetSource implements DataProvider.GetSource
func (p *fileDataProvider) GetSource() string {
	return "file:" + p.path
}

// staticDataProvider serves a seed held in memory
type staticDataProvider struct {
	seed *Seed
}

// NewStaticDataProvider returns a DataProvider serving seed as is
func NewStaticDataProvider(seed *Seed) DataProvider {
	return &staticDataProvider{seed: seed}
}

// GetSeed implements DataProvider.GetSeed
func (p *staticDataProvider) GetSeed(_ context.Context) (*Seed, error) {
	if p.seed == nil {
		return &Seed{}, nil
	}
	return p.seed, nil
}

// GetSource implements DataProvider.GetSource
func (*staticDataProvider) GetSource() string {
	return "static"
}

// ParseSeed decodes and checks a YAML seed
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	archives := make(map[int64]bool, len(s.Archives))
	for _, a := range s.Archives {
		if a.ID <= 0 {
			return fmt.Errorf("archive %q has no id", a.Title)
		}
		if archives[a.ID] {
			return fmt.Errorf("duplicate archive id %d", a.ID)
		}
		archives[a.ID] = true
	}

	ids := make(map[int64]bool, len(s.Jobs))
	aliases := make(map[string]int64, len(s.Jobs))
	for _, j := range s.Jobs {
		if j.ID <= 0 {
			return fmt.Errorf("job %q has no id", j.Headline)
		}
		if ids[j.ID] {
			return fmt.Errorf("duplicate job id %d", j.ID)
		}
		ids[j.ID] = true
		if j.Source == "" {
			j.Source = jobs.SourceDefault
		}
		if !archives[j.PID] {
			return fmt.Errorf("job %d references unknown archive %d", j.ID, j.PID)
		}
		if j.Alias != "" {
			if other, ok := aliases[j.Alias]; ok {
				return fmt.Errorf("jobs %d and %d share alias %q", other, j.ID, j.Alias)
			}
			aliases[j.Alias] = j.ID
		}
	}
	return nil
}
