package motion

import (
	"math"
	"time"
)

// Integration constants, applied once per displayed frame.
const (
	// DecayFactor is the per-frame falloff of gesture-driven rotation.
	DecayFactor = 0.96
	// VelocityEpsilon is the speed below which the sphere returns to idle spin.
	VelocityEpsilon = 0.0001
	// IdleRotationRate is the auto-rotation speed in radians per second.
	IdleRotationRate = 0.2
	// ZoomLerp is the per-frame interpolation factor toward the zoom target.
	ZoomLerp = 0.08
)

// Transform is the scene pose produced for one displayed frame.
type Transform struct {
	RotationY   float64 `json:"rotationY"`
	CameraZ     float64 `json:"cameraZ"`
	VelocityY   float64 `json:"velocityY"`
	Paused      bool    `json:"paused"`
	Interacting bool    `json:"interacting"`
}

// Integrator is the render-side reader of State. It never writes to the
// shared record: it folds the accumulator's changes into its own velocity
// and decays that copy locally.
type Integrator struct {
	rotationY float64
	cameraZ   float64
	velocity  float64

	lastRaw float64
	epoch   uint64
	primed  bool
}

// NewIntegrator returns an integrator with the camera at InitialZoom.
func NewIntegrator() *Integrator {
	return &Integrator{cameraZ: InitialZoom}
}

// Step advances the scene by one displayed frame of length dt.
func (in *Integrator) Step(v Values, dt time.Duration) Transform {
	raw := v.RotationVelocity.Y
	switch {
	case !in.primed || v.StopEpoch != in.epoch:
		// Rotation was force-stopped since the last frame; whatever the
		// accumulator holds now was added after the stop.
		in.velocity = raw
		in.primed = true
	default:
		in.velocity += raw - in.lastRaw
	}
	in.lastRaw = raw
	in.epoch = v.StopEpoch

	switch {
	case v.IsPaused:
	case math.Abs(in.velocity) > VelocityEpsilon:
		in.rotationY += in.velocity
		in.velocity *= DecayFactor
	default:
		in.rotationY += IdleRotationRate * dt.Seconds()
	}

	in.cameraZ = lerp(in.cameraZ, ClampZoom(v.ZoomLevel), ZoomLerp)

	return in.Transform(v)
}

// Transform reports the current pose without advancing it.
func (in *Integrator) Transform(v Values) Transform {
	return Transform{
		RotationY:   in.rotationY,
		CameraZ:     in.cameraZ,
		VelocityY:   in.velocity,
		Paused:      v.IsPaused,
		Interacting: v.IsInteracting,
	}
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}
