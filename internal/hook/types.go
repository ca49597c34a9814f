// Package hook runs external programs when a discrete gesture fires, so a
// swipe can page a slide deck or a pause can mute a player.
package hook

import (
	"encoding/json"
	"time"

	"github.com/ayusman/handsphere/internal/store"
)

// ManifestName is the file each hook directory must contain.
const ManifestName = "hook.json"

// Manifest describes a hook and the gesture events it subscribes to.
type Manifest struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Executable  string            `json:"executable"`
	Events      []store.EventKind `json:"events"`
	Config      json.RawMessage   `json:"config,omitempty"`
}

// Request is written to the hook's stdin as JSON.
type Request struct {
	Event     store.EventKind `json:"event"`
	At        time.Time       `json:"at"`
	WristX    float64         `json:"wristX"`
	VelocityY float64         `json:"velocityY"`
	ZoomLevel float64         `json:"zoomLevel"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Response is what the hook prints on stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribed to kind.
func (h *Hook) Handles(kind store.EventKind) bool {
	for _, k := range h.Manifest.Events {
		if k == kind {
			return true
		}
	}
	return false
}
