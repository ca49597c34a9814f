package gesture

import "github.com/ayusman/handsphere/internal/detector"

// PinchThreshold is the largest thumb-to-index distance still counted as a pinch.
const PinchThreshold = 0.05

// fingers pairs each non-thumb fingertip with its PIP joint.
var fingers = [4][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// DetectPinch reports whether the thumb and index tips touch in the image plane.
func DetectPinch(f detector.Frame) bool {
	if !f.Valid() {
		return false
	}
	return detector.Distance2D(f[detector.ThumbTip], f[detector.IndexTip]) < PinchThreshold
}

// DetectOpenHand reports whether all four fingers are extended, meaning each
// tip lies farther from the wrist than its PIP joint. The thumb is ignored.
func DetectOpenHand(f detector.Frame) bool {
	if !f.Valid() {
		return false
	}
	wrist := f[detector.Wrist]
	for _, finger := range fingers {
		tip, pip := f[finger[0]], f[finger[1]]
		if detector.Distance2D(wrist, tip) <= detector.Distance2D(wrist, pip) {
			return false
		}
	}
	return true
}

// WristPosition returns landmark 0. ok is false when the frame is unusable.
func WristPosition(f detector.Frame) (p detector.Point3D, ok bool) {
	if !f.Valid() {
		return detector.Point3D{}, false
	}
	return f[detector.Wrist], true
}

// Gesture is the classified pose of one frame.
type Gesture int

const (
	NoHand Gesture = iota
	Neutral
	Open
	Pinch
)

func (g Gesture) String() string {
	switch g {
	case NoHand:
		return "none"
	case Neutral:
		return "neutral"
	case Open:
		return "open"
	case Pinch:
		return "pinch"
	default:
		return "unknown"
	}
}

// Interacting reports whether the pose drives continuous motion.
func (g Gesture) Interacting() bool {
	return g == Pinch || g == Open
}

type rule struct {
	gesture Gesture
	match   func(detector.Frame) bool
}

// precedence is evaluated top to bottom; the first matching rule wins.
// A hand that satisfies both the pinch and open predicates is a pinch.
var precedence = []rule{
	{NoHand, func(f detector.Frame) bool { return !f.Valid() }},
	{Pinch, DetectPinch},
	{Open, DetectOpenHand},
	{Neutral, func(detector.Frame) bool { return true }},
}

// Classify maps a smoothed frame to a single Gesture.
func Classify(f detector.Frame) Gesture {
	for _, r := range precedence {
		if r.match(f) {
			return r.gesture
		}
	}
	return Neutral
}
