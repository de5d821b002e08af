package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/maniaxatwork/jobs-server/internal/logger"
)

const defaultDebounce = 250 * time.Millisecond

// Manager holds the active configuration and reloads it when the file
// changes on disk. The file is only ever read. An invalid update keeps the
// last good configuration active.
type Manager interface {
	// Get returns the current configuration
	Get() *Config

	// Reload reads the file and applies it if valid
	Reload() error

	// Subscribe returns a channel receiving every applied configuration
	Subscribe(buffer int) <-chan *Config

	// Unsubscribe closes a channel returned by Subscribe
	Unsubscribe(ch <-chan *Config)

	// Watch observes the file until ctx is cancelled
	Watch(ctx context.Context) error

	// Close releases the file watcher
	Close() error
}

// Validator validates a configuration before it is applied
type Validator interface {
	Validate(config *Config) error
}

// ValidatorFunc adapts a function to Validator
type ValidatorFunc func(config *Config) error

// Validate calls f
func (f ValidatorFunc) Validate(config *Config) error {
	return f(config)
}

type manager struct {
	mu     sync.RWMutex
	config *Config

	path      string
	validator Validator
	debounce  time.Duration

	subsMu sync.Mutex
	subs   map[<-chan *Config]chan *Config

	watcherMu sync.Mutex
	watcher   *fsnotify.Watcher
}

// ManagerOption customizes a Manager
type ManagerOption func(*manager)

// WithValidator adds validation on top of the built-in checks
func WithValidator(v Validator) ManagerOption {
	return func(m *manager) {
		m.validator = v
	}
}

// WithDebounce sets how long the watcher waits for writes to settle
func WithDebounce(d time.Duration) ManagerOption {
	return func(m *manager) {
		m.debounce = d
	}
}

// NewManager loads the configuration at path and returns a Manager for it
func NewManager(path string, opts ...ManagerOption) (Manager, error) {
	m := &manager{
		path:     path,
		debounce: defaultDebounce,
		subs:     make(map[<-chan *Config]chan *Config),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.Reload(); err != nil {
		return nil, fmt.Errorf("failed to load initial configuration: %w", err)
	}

	return m, nil
}

func (m *manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Shallow copy; fields are replaced, never mutated in place
	c := *m.config
	return &c
}

func (m *manager) Reload() error {
	cfg, err := LoadConfig(WithConfigPath(m.path))
	if err != nil {
		return err
	}

	if m.validator != nil {
		if err := m.validator.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.publish(cfg)
	logger.Infof("Configuration loaded from %s", m.path)
	return nil
}

func (m *manager) Subscribe(buffer int) <-chan *Config {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *Config, buffer)

	m.subsMu.Lock()
	m.subs[ch] = ch
	m.subsMu.Unlock()

	return ch
}

func (m *manager) Unsubscribe(ch <-chan *Config) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	if c, ok := m.subs[ch]; ok {
		delete(m.subs, ch)
		close(c)
	}
}

// publish never blocks: a full subscriber loses its oldest pending config
func (m *manager) publish(cfg *Config) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- cfg:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- cfg:
			default:
			}
		}
	}
}

// Watch observes the directory holding the config file. Watching the
// directory rather than the file survives editors and ConfigMap updates that
// replace the file by rename.
func (m *manager) Watch(ctx context.Context) error {
	m.watcherMu.Lock()
	if m.watcher != nil {
		m.watcherMu.Unlock()
		return fmt.Errorf("config watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.watcherMu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	m.watcher = watcher
	m.watcherMu.Unlock()

	dir := filepath.Dir(m.path)
	base := filepath.Base(m.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}

	logger.Infof("Started watching configuration file: %s", m.path)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping config file watcher")
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}
			if !strings.EqualFold(filepath.Base(event.Name), base) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(m.debounce, func() {
				logger.Infof("Config update detected, reloading")
				if err := m.Reload(); err != nil {
					logger.Errorf("Failed to reload config: %v", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			logger.Errorf("File watcher error: %v", err)
		}
	}
}

func (m *manager) Close() error {
	m.watcherMu.Lock()
	defer m.watcherMu.Unlock()

	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			return fmt.Errorf("failed to close file watcher: %w", err)
		}
		m.watcher = nil
	}

	m.subsMu.Lock()
	for key, ch := range m.subs {
		delete(m.subs, key)
		close(ch)
	}
	m.subsMu.Unlock()

	return nil
}
