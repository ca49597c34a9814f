// Package detector provides hand landmark types and the tracker interface
// that turns camera frames into per-frame hand landmarks.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point in normalized image space.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Frame is one tracker sample for a single hand, indexed by landmark id.
// A nil Frame means no hand was detected. Frames are treated as immutable
// once built; transformations return new frames.
type Frame []Point3D

// Valid reports whether the frame carries every anatomical landmark.
func (f Frame) Valid() bool {
	return len(f) >= NumLandmarks
}

// Clone returns a copy of the frame. Cloning nil yields nil.
func (f Frame) Clone() Frame {
	if f == nil {
		return nil
	}
	out := make(Frame, len(f))
	copy(out, f)
	return out
}

// HandLandmarks represents the 21 hand landmarks reported by the tracker.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Frame returns a copy of the landmarks as a Frame.
func (h HandLandmarks) Frame() Frame {
	f := make(Frame, NumLandmarks)
	copy(f, h.Points[:])
	return f
}

// Translate returns a copy of the hand shifted by dx, dy in image space.
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// Distance2D is the Euclidean distance between two points in the x/y plane.
// Depth is ignored because the tracker's z estimate is too noisy for
// gesture thresholds.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
