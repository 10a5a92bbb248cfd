package plugin

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// ErrPluginNotFound is returned when no discovered plugin matches.
var ErrPluginNotFound = errors.New("plugin not found")

// Manager discovers plugins under one directory and looks them up.
type Manager struct {
	pluginDir string
	plugins   map[string]*Plugin
	mu        sync.RWMutex
}

// NewManager creates a Manager for pluginDir. Nothing is read until Discover.
func NewManager(pluginDir string) *Manager {
	return &Manager{
		pluginDir: pluginDir,
		plugins:   make(map[string]*Plugin),
	}
}

// Discover rescans the plugin directory. Each subdirectory with a readable
// plugin.json becomes a plugin; broken manifests are logged and skipped.
// A missing directory yields no plugins.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plugins = make(map[string]*Plugin)

	entries, err := os.ReadDir(m.pluginDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginPath := filepath.Join(m.pluginDir, entry.Name())
		data, err := os.ReadFile(filepath.Join(pluginPath, "plugin.json"))
		if err != nil {
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			log.Printf("plugin %s: bad manifest: %v", entry.Name(), err)
			continue
		}
		if strings.TrimSpace(manifest.Name) == "" {
			manifest.Name = entry.Name()
		}

		m.plugins[manifest.Name] = &Plugin{
			Manifest:   manifest,
			Path:       pluginPath,
			Executable: filepath.Join(pluginPath, manifest.Executable),
		}
	}

	return nil
}

// Get returns a plugin by name.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugin, ok := m.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound
	}
	return plugin, nil
}

// ForAction returns the first plugin, by name, whose manifest lists action.
func (m *Manager) ForAction(action string) (*Plugin, error) {
	for _, p := range m.List() {
		if p.Manifest.Handles(action) {
			return p, nil
		}
	}
	return nil, ErrPluginNotFound
}

// List returns all discovered plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, plugin := range m.plugins {
		plugins = append(plugins, plugin)
	}
	slices.SortFunc(plugins, func(a, b *Plugin) int {
		return strings.Compare(a.Manifest.Name, b.Manifest.Name)
	})
	return plugins
}

// PluginDir returns the plugin directory path.
func (m *Manager) PluginDir() string {
	return m.pluginDir
}
