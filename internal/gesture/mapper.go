package gesture

import (
	"math"
	"time"

	"github.com/ayusman/handsphere/internal/detector"
	"github.com/ayusman/handsphere/internal/motion"
)

// Mapping constants.
const (
	ZoomStep       = 0.8
	RotationStep   = 0.05
	SwipeImpulse   = 1.0
	StillThreshold = 0.002
	MoveThreshold  = 0.01
)

// Outcome describes what one Update did to the motion state.
type Outcome struct {
	Gesture   Gesture
	Swipe     Direction
	Paused    bool
	WasPaused bool
	WristX    float64
	VelocityY float64
	ZoomLevel float64
}

// PauseChanged reports whether the pause latch flipped in this pass.
func (o Outcome) PauseChanged() bool {
	return o.Paused != o.WasPaused
}

// Mapper applies classified frames to a motion.State. All changes from one
// frame land in a single State.Update. A Mapper is driven by one goroutine.
type Mapper struct {
	state    *motion.State
	swipes   *SwipeTracker
	cooldown time.Duration

	prevWristX float64
	hasPrev    bool
}

// NewMapper returns a mapper writing into state with the default swipe cooldown.
func NewMapper(state *motion.State) *Mapper {
	return &Mapper{
		state:    state,
		swipes:   NewSwipeTracker(),
		cooldown: DefaultCooldown,
	}
}

// SetCooldown overrides the minimum gap between accepted swipes.
func (m *Mapper) SetCooldown(d time.Duration) {
	m.cooldown = d
}

// Update maps one smoothed frame observed at now. A nil frame only clears the
// pause latch: residual velocity is left to decay and the previous wrist
// position is kept.
func (m *Mapper) Update(f detector.Frame, now time.Time) Outcome {
	g := Classify(f)
	out := Outcome{Gesture: g}

	m.state.Update(func(v *motion.Values) {
		out.WasPaused = v.IsPaused
		defer func() {
			out.Paused = v.IsPaused
			out.VelocityY = v.RotationVelocity.Y
			out.ZoomLevel = v.ZoomLevel
		}()

		if g == NoHand {
			v.IsPaused = false
			return
		}

		wrist, _ := WristPosition(f)
		out.WristX = wrist.X
		v.IsInteracting = g.Interacting()

		switch g {
		case Pinch:
			v.AddZoom(ZoomStep)
			v.IsPaused = false
		case Open:
			m.applyOpen(v, wrist.X)
			v.AddZoom(-ZoomStep)
		default:
			v.IsPaused = false
		}

		m.prevWristX, m.hasPrev = wrist.X, true

		m.swipes.Record(WristSample{X: wrist.X, At: now})
		if dir := m.swipes.TryDetect(now, m.cooldown); dir != None {
			v.AddRotation(0, dir.Sign()*SwipeImpulse)
			v.LastGestureTime = now
			out.Swipe = dir
		}
	})

	return out
}

// applyOpen drives rotation from horizontal wrist motion. Holding still
// latches the pause and stops rotation outright.
func (m *Mapper) applyOpen(v *motion.Values, wristX float64) {
	if !m.hasPrev {
		return
	}
	dx := wristX - m.prevWristX
	if math.Abs(dx) < StillThreshold {
		v.IsPaused = true
		v.StopRotation()
		return
	}

	v.IsPaused = false
	switch {
	case dx < -MoveThreshold:
		v.AddRotation(0, -RotationStep)
	case dx > MoveThreshold:
		v.AddRotation(0, RotationStep)
	}
}

// Reset forgets the previous wrist position and the swipe window.
func (m *Mapper) Reset() {
	m.hasPrev = false
	m.swipes = NewSwipeTracker()
}

// PreviousWristX returns the wrist x used for the next rotation delta.
func (m *Mapper) PreviousWristX() (float64, bool) {
	return m.prevWristX, m.hasPrev
}
