// Package plugin discovers and runs external plugins. A plugin is a
// directory holding a plugin.json manifest and an executable that reads one
// JSON Request on stdin and writes one JSON Response on stdout.
package plugin

import (
	"encoding/json"
	"slices"
)

// Manifest describes a plugin's metadata and the actions it handles.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Handles reports whether the manifest lists action.
func (m Manifest) Handles(action string) bool {
	return slices.Contains(m.Actions, action)
}

// Request is sent to a plugin for one invocation. Cue, Game and Score
// describe the arcade event that triggered it.
type Request struct {
	Action string          `json:"action"`
	Cue    string          `json:"cue,omitempty"`
	Game   string          `json:"game,omitempty"`
	Score  int             `json:"score"`
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is a plugin's reply.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
