// Package main is a gesture hook for macOS that turns swipes into key
// presses via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request is the gesture event handed over by handsphere.
type Request struct {
	Event  string          `json:"event"`
	Config json.RawMessage `json:"config"`
}

// Response is printed on stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Binding is either a key code or a keystroke with optional modifiers.
type Binding struct {
	KeyCode   int      `json:"keyCode,omitempty"`
	Key       string   `json:"key,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"` // command, option, control, shift
}

type hookConfig struct {
	Bindings map[string]Binding `json:"bindings"`
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	var cfg hookConfig
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeResponse(fmt.Errorf("failed to parse config: %w", err))
			return
		}
	}

	b, ok := cfg.Bindings[req.Event]
	if !ok {
		writeResponse(fmt.Errorf("no binding for event %s", req.Event))
		return
	}

	script, err := buildScript(b)
	if err != nil {
		writeResponse(err)
		return
	}
	writeResponse(runAppleScript(script))
}

// buildScript generates the AppleScript for a binding.
func buildScript(b Binding) (string, error) {
	var press string
	switch {
	case b.KeyCode > 0:
		press = fmt.Sprintf("key code %d", b.KeyCode)
	case b.Key != "":
		press = fmt.Sprintf("keystroke %q", b.Key)
	default:
		return "", fmt.Errorf("binding needs a key or keyCode")
	}

	var mods []string
	for _, m := range b.Modifiers {
		if am, ok := modifierMap[strings.ToLower(m)]; ok {
			mods = append(mods, am)
		}
	}
	if len(mods) > 0 {
		press += " using {" + strings.Join(mods, ", ") + "}"
	}
	return `tell application "System Events" to ` + press, nil
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
