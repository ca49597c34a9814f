package app

import (
	"context"
	"errors"
	"time"

	"github.com/ayusman/handsphere/internal/capture"
	"github.com/ayusman/handsphere/internal/detector"
	"github.com/ayusman/handsphere/internal/gesture"
	"github.com/ayusman/handsphere/internal/motion"
	"github.com/ayusman/handsphere/internal/store"
)

// runTracker reads the camera and feeds the primary hand to the mapper.
//
// The tracker idles at IdleFPS and only differences frames until something
// moves in view. It then runs the hand detector at ActiveFPS and drops back
// to idle once no hand has been seen for IdleTimeout.
func (a *App) runTracker(ctx context.Context) {
	defer a.wg.Done()

	active := false
	var lastHand time.Time

	ticker := time.NewTicker(time.Second / time.Duration(a.config.IdleFPS))
	defer ticker.Stop()

	setMode := func(toActive bool) {
		active = toActive
		fps := a.config.IdleFPS
		if active {
			fps = a.config.ActiveFPS
		} else {
			a.change.Reset()
		}
		a.config.Camera.SetFPS(fps)
		ticker.Reset(time.Second / time.Duration(fps))
		a.log.Debug().Bool("active", active).Int("fps", fps).Msg("tracker mode changed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !a.IsEnabled() {
			if active {
				setMode(false)
			}
			continue
		}

		frame, err := a.config.Camera.ReadFrame()
		if err != nil {
			if !errors.Is(err, capture.ErrNoFrame) {
				a.log.Warn().Err(err).Msg("error reading frame")
			}
			continue
		}
		now := time.Now()

		if a.preview.Watched() {
			if err := a.preview.Publish(frame); err != nil {
				a.log.Debug().Err(err).Msg("preview publish failed")
			}
		}

		if !active {
			if change := a.change.Detect(frame); change.Detected {
				a.log.Debug().Float64("percent", change.Percent).Msg("scene change")
				lastHand = now
				setMode(true)
			}
		}

		var hand detector.Frame
		if det := a.Detector(); active && det != nil {
			hands, err := det.Detect(frame)
			if err != nil {
				a.log.Warn().Err(err).Msg("error detecting hands")
			} else {
				hand = detector.PrimaryFrame(hands)
			}
		}
		frame.Close()

		if !active {
			continue
		}

		if hand != nil {
			lastHand = now
		}
		a.post(Sample{Frame: hand, At: now, Source: SourceCamera})

		if hand == nil && now.Sub(lastHand) > a.config.IdleTimeout {
			setMode(false)
		}
	}
}

// runMapper applies samples to the motion state one at a time.
func (a *App) runMapper(ctx context.Context) {
	defer a.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-a.inbox.C():
			a.apply(s)
		}
	}
}

func (a *App) apply(s Sample) {
	if s.AfterLoss && s.Frame != nil {
		a.apply(Sample{At: s.At, Source: s.Source})
	}
	out := a.mapper.Update(a.smoother.Next(s.Frame), s.At)
	a.metrics.frameMapped(s.Source)

	if out.Swipe != gesture.None {
		a.metrics.swipe(out.Swipe.String())
		kind := store.EventSwipeRight
		if out.Swipe == gesture.Left {
			kind = store.EventSwipeLeft
		}
		a.emit(kind, s.At, out)
	}
	if out.PauseChanged() {
		kind := store.EventResume
		if out.Paused {
			kind = store.EventPause
		}
		a.emit(kind, s.At, out)
	}
}

func (a *App) emit(kind store.EventKind, at time.Time, out gesture.Outcome) {
	e := Event{
		Kind:      kind,
		At:        at,
		WristX:    out.WristX,
		VelocityY: out.VelocityY,
		ZoomLevel: out.ZoomLevel,
	}

	a.mu.Lock()
	a.lastEvent = &e
	j := a.journal
	handlers := append([]func(Event)(nil), a.handlers...)
	a.mu.Unlock()

	a.log.Info().
		Str("event", string(kind)).
		Float64("wristX", e.WristX).
		Float64("velocityY", e.VelocityY).
		Msg("gesture")

	if j != nil {
		j.record(e)
	}
	for _, fn := range handlers {
		fn(e)
	}
}

// runRender integrates the motion state at RenderFPS and fans the resulting
// transform out to subscribers.
func (a *App) runRender(ctx context.Context) {
	defer a.wg.Done()

	integ := motion.NewIntegrator()
	ticker := time.NewTicker(time.Second / time.Duration(a.config.RenderFPS))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tr := integ.Step(a.state.Snapshot(), now.Sub(last))
			last = now
			a.publish(tr)
		}
	}
}

func (a *App) publish(tr motion.Transform) {
	a.mu.Lock()
	a.transform = tr
	a.mu.Unlock()

	a.subMu.Lock()
	defer a.subMu.Unlock()
	for mb := range a.subs {
		mb.Post(tr)
	}
}
