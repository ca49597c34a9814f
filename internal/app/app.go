// Package app wires the hand tracker, the gesture mapper and the render loop
// together around a single motion.State.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/handsphere/internal/capture"
	"github.com/ayusman/handsphere/internal/detector"
	"github.com/ayusman/handsphere/internal/gesture"
	"github.com/ayusman/handsphere/internal/motion"
	"github.com/ayusman/handsphere/internal/store"
)

// Pipeline timing defaults.
const (
	// IdleFPS is the camera rate while no hand is in view.
	IdleFPS = 5
	// ActiveFPS is the camera rate while a hand is being tracked.
	ActiveFPS = 30
	// IdleTimeout is how long without a hand before dropping back to IdleFPS.
	IdleTimeout = 2 * time.Second
	// RenderFPS is the display integration rate.
	RenderFPS = 60
)

// Source identifies where a landmark sample came from.
type Source string

const (
	SourceCamera  Source = "camera"
	SourceBrowser Source = "browser"
)

// Sample is one tracker observation. A nil Frame means no hand.
type Sample struct {
	Frame  detector.Frame
	At     time.Time
	Source Source
	// AfterLoss marks a hand frame that replaced an unread hand loss. The
	// loss is applied before the frame.
	AfterLoss bool
}

// Event is a discrete gesture the mapper produced.
type Event struct {
	Kind      store.EventKind `json:"kind"`
	At        time.Time       `json:"at"`
	WristX    float64         `json:"wristX"`
	VelocityY float64         `json:"velocityY"`
	ZoomLevel float64         `json:"zoomLevel"`
}

// Config holds configuration options for the application.
type Config struct {
	// Camera feeds the built-in tracker. When nil only frames passed to
	// Submit drive the sphere.
	Camera   capture.Camera
	Detector detector.Detector
	// Store enables the event journal and persisted settings.
	Store *store.Store
	Log   zerolog.Logger

	IdleFPS       int
	ActiveFPS     int
	IdleTimeout   time.Duration
	WakeThreshold float64
	RenderFPS     int

	// Enabled is the initial tracking state when the store has none saved.
	Enabled bool
}

// App is the main application that turns tracker samples into scene motion.
type App struct {
	config  Config
	log     zerolog.Logger
	state   *motion.State
	inbox   *Mailbox[Sample]
	preview *capture.Preview
	change  *capture.ChangeDetector
	metrics *metrics

	// Owned by the mapper goroutine while running.
	mapper   *gesture.Mapper
	smoother gesture.Smoother

	mu        sync.RWMutex
	detector  detector.Detector
	enabled   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	journal   *journal
	transform motion.Transform
	lastEvent *Event
	handlers  []func(Event)
	toggles   []func(bool)

	subMu sync.Mutex
	subs  map[*Mailbox[motion.Transform]]struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.IdleFPS <= 0 {
		config.IdleFPS = IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = ActiveFPS
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = IdleTimeout
	}
	if config.RenderFPS <= 0 {
		config.RenderFPS = RenderFPS
	}

	enabled := config.Enabled
	if config.Store != nil {
		enabled = config.Store.Settings().GetBool(store.SettingTrackingEnabled, enabled)
	}

	state := motion.NewState()
	a := &App{
		config:    config,
		log:       config.Log.With().Str("component", "app").Logger(),
		state:     state,
		inbox:     NewMailbox[Sample](),
		preview:   capture.NewPreview(),
		change:    capture.NewChangeDetector(config.WakeThreshold),
		metrics:   newMetrics(),
		mapper:    gesture.NewMapper(state),
		detector:  config.Detector,
		enabled:   enabled,
		transform: motion.NewIntegrator().Transform(state.Snapshot()),
		subs:      make(map[*Mailbox[motion.Transform]]struct{}),
	}
	return a
}

// Start launches the mapper, render and (with a camera) tracker loops.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	if a.config.Camera != nil {
		if err := a.config.Camera.Open(); err != nil {
			return fmt.Errorf("open camera: %w", err)
		}
		a.config.Camera.SetFPS(a.config.IdleFPS)
	}

	if a.config.Store != nil {
		j, err := newJournal(a.config.Store, a.log, a.metrics)
		if err != nil {
			a.log.Warn().Err(err).Msg("event journal unavailable")
		} else {
			a.journal = j
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(2)
	go a.runMapper(ctx)
	go a.runRender(ctx)
	if a.config.Camera != nil {
		a.wg.Add(1)
		go a.runTracker(ctx)
	}

	a.log.Info().
		Bool("camera", a.config.Camera != nil).
		Bool("enabled", a.enabled).
		Int("renderFps", a.config.RenderFPS).
		Msg("pipeline started")
	return nil
}

// Stop halts every loop, releases the camera and detector and leaves the
// motion state at rest.
func (a *App) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	j := a.journal
	a.journal = nil
	det := a.detector
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	a.wg.Wait()

	// The mapper goroutine is gone, so it is safe to clear the latch here.
	a.mapper.Update(nil, time.Now())
	a.mapper.Reset()
	a.smoother.Reset()
	a.inbox.TryReceive()

	if a.config.Camera != nil {
		if err := a.config.Camera.Close(); err != nil {
			a.log.Warn().Err(err).Msg("error closing camera")
		}
	}
	a.change.Close()

	if det != nil {
		if err := det.Close(); err != nil {
			a.log.Warn().Err(err).Msg("error closing detector")
		}
	}
	if j != nil {
		j.close()
	}

	a.log.Info().Msg("pipeline stopped")
}

// Submit hands a landmark frame from an external tracker to the mapper. It
// returns false when tracking is disabled.
func (a *App) Submit(frame detector.Frame, at time.Time) bool {
	if !a.IsEnabled() {
		return false
	}
	a.post(Sample{Frame: frame, At: at, Source: SourceBrowser})
	return true
}

func (a *App) post(s Sample) {
	if a.inbox.Merge(s, keepLoss) {
		a.metrics.frameDropped(s.Source)
	}
}

func keepLoss(pending, next Sample) Sample {
	if next.Frame != nil && (pending.Frame == nil || pending.AfterLoss) {
		next.AfterLoss = true
	}
	return next
}

// SetEnabled turns tracking on or off. Turning it off counts as losing the
// hand so a held pause is released.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	toggles := append([]func(bool)(nil), a.toggles...)
	a.mu.Unlock()

	if !changed {
		return
	}
	if !enabled {
		a.post(Sample{At: time.Now(), Source: SourceCamera})
	}
	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingTrackingEnabled, enabled); err != nil {
			a.log.Warn().Err(err).Msg("failed to persist tracking state")
		}
	}
	a.log.Info().Bool("enabled", enabled).Msg("tracking toggled")

	for _, fn := range toggles {
		fn(enabled)
	}
}

// OnEnabledChange registers fn for every change made through SetEnabled.
func (a *App) OnEnabledChange(fn func(enabled bool)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.toggles = append(a.toggles, fn)
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// OnGesture registers fn for every discrete gesture event. Handlers run on
// the mapper goroutine and must not block.
func (a *App) OnGesture(fn func(Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers = append(a.handlers, fn)
}

// LastEvent returns the most recent discrete gesture event.
func (a *App) LastEvent() (Event, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastEvent == nil {
		return Event{}, false
	}
	return *a.lastEvent, true
}

// State returns a snapshot of the motion record.
func (a *App) State() motion.Values {
	return a.state.Snapshot()
}

// Transform returns the pose from the latest render tick.
func (a *App) Transform() motion.Transform {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.transform
}

// Subscribe returns a channel receiving every rendered transform; a slow
// reader only ever sees the latest. cancel must be called to unsubscribe.
func (a *App) Subscribe() (<-chan motion.Transform, func()) {
	mb := NewMailbox[motion.Transform]()

	a.subMu.Lock()
	a.subs[mb] = struct{}{}
	a.subMu.Unlock()

	return mb.C(), func() {
		a.subMu.Lock()
		delete(a.subs, mb)
		a.subMu.Unlock()
	}
}

// Preview returns the camera preview buffer for the MJPEG stream.
func (a *App) Preview() *capture.Preview {
	return a.preview
}

// SessionID returns the journal session of the current run, if any.
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.journal == nil {
		return ""
	}
	return a.journal.session.ID
}
