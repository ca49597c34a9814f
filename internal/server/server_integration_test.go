package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/handsphere/internal/app"
	"github.com/ayusman/handsphere/internal/detector"
	"github.com/ayusman/handsphere/internal/gallery"
	"github.com/ayusman/handsphere/internal/motion"
	"github.com/ayusman/handsphere/internal/store"
)

func getJSON(t *testing.T, client *http.Client, url string, v any) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, http.StatusOK)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("GET %s decode error = %v", url, err)
	}
}

func TestAPI_LandmarkWorkflow(t *testing.T) {
	// Setup
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	a := app.New(app.Config{Store: s, Enabled: true, Log: zerolog.Nop()})
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	srv := New(Config{App: a, Store: s, Gallery: gallery.New(gallery.Config{}), Log: zerolog.Nop()})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/api/landmarks"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	ts0 := time.Now().UnixMilli()
	send := func(h detector.HandLandmarks, i int) {
		t.Helper()
		msg := map[string]any{"points": h.Points[:], "timestamp": ts0 + int64(i)}
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
	}

	// 1. A pinch from the browser tracker zooms out.
	send(detector.PinchLandmarks(), 0)

	var state stateResponse
	deadline := time.Now().Add(2 * time.Second)
	for {
		getJSON(t, client, ts.URL+"/api/state", &state)
		if state.State.ZoomLevel > motion.InitialZoom || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if state.State.ZoomLevel <= motion.InitialZoom {
		t.Fatalf("zoom = %v, want above %v", state.State.ZoomLevel, motion.InitialZoom)
	}

	// 2. Holding an open hand still latches the pause and journals it.
	var events struct {
		Events []store.GestureEvent `json:"events"`
	}
	paused := false
	deadline = time.Now().Add(3 * time.Second)
	for i := 1; !paused && time.Now().Before(deadline); i++ {
		send(detector.OpenPalmLandmarks(), i)
		time.Sleep(20 * time.Millisecond)

		getJSON(t, client, ts.URL+"/api/events?session="+a.SessionID(), &events)
		for _, e := range events.Events {
			if e.Kind == store.EventPause {
				paused = true
			}
		}
	}
	if !paused {
		t.Fatalf("no pause event journaled, got %+v", events.Events)
	}

	// 3. Disabling tracking releases the pause.
	resp, err := client.Post(ts.URL+"/api/tracking", "application/json", bytes.NewBufferString(`{"enabled": false}`))
	if err != nil {
		t.Fatalf("POST /api/tracking error = %v", err)
	}
	resp.Body.Close()

	deadline = time.Now().Add(2 * time.Second)
	for {
		getJSON(t, client, ts.URL+"/api/state", &state)
		if !state.State.IsPaused || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if state.Enabled || state.State.IsPaused {
		t.Errorf("after disable: enabled=%v paused=%v, want both false", state.Enabled, state.State.IsPaused)
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{Gallery: gallery.New(gallery.Config{})})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
		Images int    `json:"images"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
	if health.Images != 0 {
		t.Errorf("images = %d, want 0", health.Images)
	}
}
