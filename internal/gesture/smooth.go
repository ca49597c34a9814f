// Package gesture turns a stream of hand-landmark frames into motion: it
// smooths the raw landmarks, classifies the hand pose, tracks wrist flicks
// and maps the result onto a motion.State.
package gesture

import "github.com/ayusman/handsphere/internal/detector"

// SmoothingAlpha is the weight of the newest sample in the landmark EMA.
const SmoothingAlpha = 0.3

// Smooth blends raw into previous with an exponential moving average.
//
// A nil raw frame returns nil, which tells the caller to drop previous. When
// previous is empty or has a different number of landmarks, raw is returned
// as the new seed. Neither argument is modified.
func Smooth(raw, previous detector.Frame) detector.Frame {
	if raw == nil {
		return nil
	}
	if len(previous) == 0 || len(previous) != len(raw) {
		return raw.Clone()
	}

	out := make(detector.Frame, len(raw))
	for i := range raw {
		out[i] = detector.Point3D{
			X: blend(raw[i].X, previous[i].X),
			Y: blend(raw[i].Y, previous[i].Y),
			Z: blend(raw[i].Z, previous[i].Z),
		}
	}
	return out
}

func blend(cur, prev float64) float64 {
	return SmoothingAlpha*cur + (1-SmoothingAlpha)*prev
}

// Smoother keeps the previous smoothed frame between calls.
// It is not safe for concurrent use.
type Smoother struct {
	prev detector.Frame
}

// Next smooths raw against the last output. A nil raw resets the filter.
func (s *Smoother) Next(raw detector.Frame) detector.Frame {
	s.prev = Smooth(raw, s.prev)
	return s.prev
}

// Reset drops the previous frame so the next one seeds the filter.
func (s *Smoother) Reset() {
	s.prev = nil
}
