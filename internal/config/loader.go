package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// Loader owns the settings file: loading, watching, hot reload, and
// debounced persistence of UI-driven updates.
type Loader struct {
	path string

	mu       sync.RWMutex
	cfg      Config
	onChange []func(Config)

	watcher  *fsnotify.Watcher
	done     chan struct{}
	debounce func(func())
}

// NewLoader creates a loader for the given file path. An empty path
// selects the default location.
func NewLoader(path string) (*Loader, error) {
	if path == "" {
		def, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = def
	}
	return &Loader{
		path:     path,
		done:     make(chan struct{}),
		debounce: debounce.New(400 * time.Millisecond),
	}, nil
}

// Load reads the settings file, layering environment overrides and
// clamping invalid values. A missing file yields defaults.
func (l *Loader) Load() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse settings file %q: %w", l.path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// First run: defaults apply.
	default:
		return Config{}, fmt.Errorf("failed to read settings file %q: %w", l.path, err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid settings: %w", err)
	}

	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
	return cfg, nil
}

// Config returns the current settings snapshot.
func (l *Loader) Config() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// OnChange registers a callback invoked after any reload or update.
func (l *Loader) OnChange(fn func(Config)) {
	l.mu.Lock()
	l.onChange = append(l.onChange, fn)
	l.mu.Unlock()
}

// Update applies a mutation to the current settings, validates it, and
// schedules a debounced write so slider-style UI updates do not thrash
// the disk.
func (l *Loader) Update(mutate func(*Config)) (Config, error) {
	l.mu.Lock()
	next := l.cfg
	mutate(&next)
	if err := next.validate(); err != nil {
		l.mu.Unlock()
		return Config{}, err
	}
	l.cfg = next
	callbacks := append([]func(Config){}, l.onChange...)
	l.mu.Unlock()

	for _, fn := range callbacks {
		fn(next)
	}
	l.debounce(func() {
		// Persistence is best effort; the in-memory settings stand.
		_ = l.Save()
	})
	return next, nil
}

// Save writes the current settings to disk.
func (l *Loader) Save() error {
	l.mu.RLock()
	cfg := l.cfg
	l.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(l.path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create settings temp file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("close settings temp file: %w", err)
	}
	if err := os.Rename(f.Name(), l.path); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

// Watch begins hot-reloading the settings file. External edits are
// debounced and folded into the running configuration.
func (l *Loader) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch settings directory: %w", err)
	}
	l.watcher = watcher

	reload := debounce.New(300 * time.Millisecond)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != l.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				reload(func() {
					cfg, err := l.Load()
					if err != nil {
						return
					}
					l.mu.RLock()
					callbacks := append([]func(Config){}, l.onChange...)
					l.mu.RUnlock()
					for _, fn := range callbacks {
						fn(cfg)
					}
				})
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-l.done:
				return
			}
		}
	}()
	return nil
}

// Close stops the watcher.
func (l *Loader) Close() error {
	close(l.done)
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
