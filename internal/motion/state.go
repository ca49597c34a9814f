// Package motion holds the shared motion record written by the gesture
// mapper and the per-frame integrator that turns it into scene transforms.
package motion

import (
	"math"
	"sync"
	"time"
)

// Zoom bounds are camera distances from the sphere centre.
const (
	MinZoom     = 2.0
	MaxZoom     = 15.0
	InitialZoom = 10.0
)

// Vec2 is a per-axis angular velocity accumulator.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Values is a point-in-time copy of the motion record.
type Values struct {
	RotationVelocity Vec2      `json:"rotationVelocity"`
	ZoomLevel        float64   `json:"zoomLevel"`
	IsInteracting    bool      `json:"isInteracting"`
	IsPaused         bool      `json:"isPaused"`
	LastGestureTime  time.Time `json:"lastGestureTime"`

	// StopEpoch increments every time rotation is force-stopped, so readers
	// holding their own decayed copy of the velocity can tell a stop apart
	// from an ordinary delta.
	StopEpoch uint64 `json:"stopEpoch"`
}

// AddRotation adds to the rotation velocity accumulator.
func (v *Values) AddRotation(x, y float64) {
	v.RotationVelocity.X += x
	v.RotationVelocity.Y += y
}

// StopRotation zeroes the rotation velocity.
func (v *Values) StopRotation() {
	v.RotationVelocity = Vec2{}
	v.StopEpoch++
}

// AddZoom moves the zoom target by delta, clamped to [MinZoom, MaxZoom].
func (v *Values) AddZoom(delta float64) {
	v.ZoomLevel = ClampZoom(v.ZoomLevel + delta)
}

// ClampZoom limits z to [MinZoom, MaxZoom]. NaN clamps to InitialZoom.
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return InitialZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// State is the single hand-off point between the gesture pipeline and the
// render loop. Writers go through Update so one classification pass lands
// as one atomic change; readers take Snapshots.
type State struct {
	mu sync.RWMutex
	v  Values
}

// NewState returns a resting state with the camera at InitialZoom.
func NewState() *State {
	return &State{v: Values{ZoomLevel: InitialZoom}}
}

// Update applies fn to the record under the write lock. The zoom invariant
// is re-established after fn returns.
func (s *State) Update(fn func(v *Values)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.v)
	s.v.ZoomLevel = ClampZoom(s.v.ZoomLevel)
}

// Snapshot returns a consistent copy of the record.
func (s *State) Snapshot() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}
