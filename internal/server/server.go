// Package server provides the HTTP server for the hand-controlled image sphere.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/handsphere/internal/capture"
	"github.com/ayusman/handsphere/internal/detector"
	"github.com/ayusman/handsphere/internal/gallery"
	"github.com/ayusman/handsphere/internal/motion"
	"github.com/ayusman/handsphere/internal/server/api"
	"github.com/ayusman/handsphere/internal/store"
)

// Controller is the part of the application the HTTP layer drives.
type Controller interface {
	State() motion.Values
	Transform() motion.Transform
	Subscribe() (<-chan motion.Transform, func())
	Submit(frame detector.Frame, at time.Time) bool
	SetEnabled(enabled bool)
	IsEnabled() bool
	Preview() *capture.Preview
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       Controller
	Gallery   *gallery.Gallery
	Store     *store.Store
	// Radius is the default sphere radius for /api/layout.
	Radius float64
	Log    zerolog.Logger
}

// Server represents the HTTP server.
type Server struct {
	config Config
	log    zerolog.Logger
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if !(config.Radius > 0) {
		config.Radius = 5
	}
	s := &Server{
		config: config,
		log:    config.Log.With().Str("component", "server").Logger(),
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/layout", api.NewLayoutHandler(s.config.Radius))

	if s.config.Gallery != nil {
		images := api.NewImageHandler(s.config.Gallery)
		s.mux.Handle("/api/images", images)
		s.mux.Handle("/api/images/", images)
	}

	if s.config.Store != nil {
		s.mux.Handle("/api/events", api.NewEventHandler(s.config.Store))
	}

	if s.config.App != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.HandleFunc("/api/tracking", s.handleTracking)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App.Preview()))
		s.mux.Handle("/api/motion", NewMotionHandler(s.config.App, s.log))
		s.mux.Handle("/api/landmarks", NewLandmarksHandler(s.config.App, s.log))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Gallery != nil {
		response["images"] = s.config.Gallery.Len()
	}

	api.WriteJSON(w, http.StatusOK, response)
}

type stateResponse struct {
	Enabled   bool             `json:"enabled"`
	State     motion.Values    `json:"state"`
	Transform motion.Transform `json:"transform"`
}

// handleState handles GET /api/state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	api.WriteJSON(w, http.StatusOK, stateResponse{
		Enabled:   s.config.App.IsEnabled(),
		State:     s.config.App.State(),
		Transform: s.config.App.Transform(),
	})
}

type trackingRequest struct {
	Enabled *bool `json:"enabled"`
}

type trackingResponse struct {
	Enabled bool `json:"enabled"`
}

// handleTracking handles GET and POST /api/tracking.
func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req trackingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.WriteError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			api.WriteError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		s.config.App.SetEnabled(*req.Enabled)
	default:
		api.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	api.WriteJSON(w, http.StatusOK, trackingResponse{Enabled: s.config.App.IsEnabled()})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		// Streams and sockets end with ctx instead of holding up Shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
