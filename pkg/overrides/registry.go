// Package overrides manages manually curated abbreviation overrides,
// loaded from YAML files and layered over the computed cache.
package overrides

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// Entry is one curated override: the abbreviations to use for a journal
// name instead of the computed ones.
type Entry struct {
	// Name is the journal name the override applies to.
	Name string `yaml:"name"`

	// Abbrevs maps language codes to the curated abbreviation.
	Abbrevs map[string]string `yaml:"abbrevs"`

	// Patterns optionally documents the rule patterns behind the
	// override, shown in reports.
	Patterns string `yaml:"patterns,omitempty"`
}

// File is the shape of one override YAML file.
type File struct {
	Overrides []Entry `yaml:"overrides"`
}

// Registry holds the loaded overrides and optionally watches their
// directory for changes.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(path string)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// NewRegistryWithDirectory creates a registry and loads all override
// files from the directory.
func NewRegistryWithDirectory(dir string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds an override entry, replacing any previous one for the
// same name.
func (r *Registry) Register(entry Entry) error {
	if entry.Name == "" {
		return fmt.Errorf("override entry: name is required")
	}
	if len(entry.Abbrevs) == 0 {
		return fmt.Errorf("override %q: at least one abbreviation is required", entry.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Name] = entry
	return nil
}

// Get returns the override for a journal name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	return entry, ok
}

// Count returns the number of loaded overrides.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// LoadDirectory loads all YAML override files from a directory. A
// missing directory is treated as empty.
func (r *Registry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, name)); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading overrides: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadFile loads a single override file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	for _, entry := range file.Overrides {
		if err := r.Register(entry); err != nil {
			return err
		}
	}
	return nil
}

// Reload reloads all overrides from the configured directory.
func (r *Registry) Reload() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}
	r.mu.Lock()
	r.entries = make(map[string]Entry)
	r.mu.Unlock()
	return r.LoadDirectory(r.dir)
}

// SetOnChange sets a callback invoked after the registry picks up a
// file change. The path is empty on removals, which trigger a reload.
func (r *Registry) SetOnChange(fn func(path string)) {
	r.onChange = fn
}

// Watch starts watching the override directory for changes.
func (r *Registry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	r.watcher = watcher
	r.stopChan = make(chan struct{})

	go r.watchLoop()

	if err := watcher.Add(r.dir); err != nil {
		r.watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}
	return nil
}

func (r *Registry) watchLoop() {
	for {
		select {
		case <-r.stopChan:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Write == fsnotify.Write:
				if err := r.LoadFile(event.Name); err != nil {
					continue
				}
				if r.onChange != nil {
					r.onChange(event.Name)
				}
			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				if err := r.Reload(); err != nil {
					continue
				}
				if r.onChange != nil {
					r.onChange("")
				}
			}

		case _, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// StopWatch stops watching the override directory.
func (r *Registry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
	}
	if r.watcher != nil {
		r.watcher.Close()
	}
}
