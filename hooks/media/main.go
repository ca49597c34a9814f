// Package main is a gesture hook for macOS that drives media playback and
// volume via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
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

type hookConfig struct {
	// Actions maps an event kind to a name in scripts.
	Actions map[string]string `json:"actions"`
}

var scripts = map[string]string{
	"volume-up":        `set volume output volume ((output volume of (get volume settings)) + 10)`,
	"volume-down":      `set volume output volume ((output volume of (get volume settings)) - 10)`,
	"volume-mute":      `set volume output muted (not (output muted of (get volume settings)))`,
	"media-play-pause": `tell application "System Events" to key code 100`,
	"media-next":       `tell application "System Events" to key code 101`,
	"media-prev":       `tell application "System Events" to key code 98`,
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

	action, ok := cfg.Actions[req.Event]
	if !ok {
		writeResponse(fmt.Errorf("no action for event %s", req.Event))
		return
	}
	script, ok := scripts[action]
	if !ok {
		writeResponse(fmt.Errorf("unknown action: %s", action))
		return
	}
	writeResponse(runAppleScript(script))
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
