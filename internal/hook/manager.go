package hook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ayusman/handsphere/internal/store"
)

// ErrHookNotFound is returned when a requested hook does not exist.
var ErrHookNotFound = errors.New("hook not found")

// Manager discovers hooks below a directory, one subdirectory per hook.
type Manager struct {
	dir   string
	mu    sync.RWMutex
	hooks map[string]*Hook
}

// NewManager creates a Manager rooted at dir.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:   dir,
		hooks: make(map[string]*Hook),
	}
}

// Discover rescans the directory. A missing directory yields no hooks.
// Subdirectories without a readable manifest are skipped; a manifest naming
// an unknown event kind is an error.
func (m *Manager) Discover() error {
	hooks := make(map[string]*Hook)

	entries, err := os.ReadDir(m.dir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())

		data, err := os.ReadFile(filepath.Join(path, ManifestName))
		if err != nil {
			continue
		}
		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			continue
		}
		if manifest.Name == "" {
			manifest.Name = entry.Name()
		}
		for _, k := range manifest.Events {
			if !k.Valid() {
				return fmt.Errorf("hook %s: unknown event %q", manifest.Name, k)
			}
		}

		hooks[manifest.Name] = &Hook{
			Manifest:   manifest,
			Path:       path,
			Executable: filepath.Join(path, manifest.Executable),
		}
	}

	m.mu.Lock()
	m.hooks = hooks
	m.mu.Unlock()
	return nil
}

// Get returns a hook by name.
func (m *Manager) Get(name string) (*Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.hooks[name]
	if !ok {
		return nil, ErrHookNotFound
	}
	return h, nil
}

// List returns every discovered hook ordered by name.
func (m *Manager) List() []*Hook {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hooks := make([]*Hook, 0, len(m.hooks))
	for _, h := range m.hooks {
		hooks = append(hooks, h)
	}
	sort.Slice(hooks, func(i, j int) bool { return hooks[i].Manifest.Name < hooks[j].Manifest.Name })
	return hooks
}

// Match returns the hooks subscribed to kind, ordered by name.
func (m *Manager) Match(kind store.EventKind) []*Hook {
	var out []*Hook
	for _, h := range m.List() {
		if h.Handles(kind) {
			out = append(out, h)
		}
	}
	return out
}

// Dir returns the hook directory.
func (m *Manager) Dir() string {
	return m.dir
}
