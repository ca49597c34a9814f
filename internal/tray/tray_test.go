package tray

import (
	"testing"

	"github.com/ayusman/handsphere/internal/store"
)

func TestGestureLabel(t *testing.T) {
	tests := []struct {
		kind store.EventKind
		want string
	}{
		{store.EventSwipeLeft, "swipe left"},
		{store.EventSwipeRight, "swipe right"},
		{store.EventPause, "pause"},
		{store.EventResume, "resume"},
	}

	for _, tt := range tests {
		if got := GestureLabel(tt.kind); got != tt.want {
			t.Errorf("GestureLabel(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestTray_ToggleWithoutMenu(t *testing.T) {
	tr := New(true)

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("expected tracking enabled after two toggles")
	}
}

func TestTray_SetEnabledDoesNotNotify(t *testing.T) {
	tr := New(true)
	called := false
	tr.OnToggle(func(bool) { called = true })

	tr.SetEnabled(false)

	if called {
		t.Error("SetEnabled must not fire OnToggle")
	}
	if tr.IsEnabled() {
		t.Error("expected tracking disabled")
	}
}

func TestTray_LastGesture(t *testing.T) {
	tr := New(true)
	if tr.LastGesture() != "" {
		t.Errorf("initial LastGesture() = %q", tr.LastGesture())
	}
	if lastTitle(tr.LastGesture()) != lastNone {
		t.Errorf("title = %q, want %q", lastTitle(""), lastNone)
	}

	tr.SetLastGesture(store.EventSwipeRight)

	if got := lastTitle(tr.LastGesture()); got != "Last: swipe right" {
		t.Errorf("title = %q", got)
	}
}

func TestTray_Open(t *testing.T) {
	tr := New(false)
	opened := 0
	tr.OnOpen(func() { opened++ })

	tr.handleOpen()

	if opened != 1 {
		t.Errorf("open callback ran %d times, want 1", opened)
	}
}
