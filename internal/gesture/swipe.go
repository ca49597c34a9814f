package gesture

import (
	"math"
	"time"
)

// Swipe detection window.
const (
	SwipeHistorySize = 10
	SwipeMinSamples  = 4
	SwipeMinSpan     = 20 * time.Millisecond
	SwipeMaxSpan     = 400 * time.Millisecond
	SwipeMinDistance = 0.08
	DefaultCooldown  = 500 * time.Millisecond
)

// Direction is the horizontal direction of a swipe.
type Direction int

const (
	None Direction = iota
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// Sign returns -1 for Left, +1 for Right and 0 otherwise.
func (d Direction) Sign() float64 {
	switch d {
	case Left:
		return -1
	case Right:
		return 1
	default:
		return 0
	}
}

// WristSample is one wrist x-coordinate observation.
type WristSample struct {
	X  float64
	At time.Time
}

// SwipeTracker keeps a short FIFO of wrist samples and spots fast flicks.
// It is not safe for concurrent use.
type SwipeTracker struct {
	history   []WristSample
	lastSwipe time.Time
}

// NewSwipeTracker creates an empty tracker.
func NewSwipeTracker() *SwipeTracker {
	return &SwipeTracker{history: make([]WristSample, 0, SwipeHistorySize)}
}

// Record appends a sample, evicting the oldest once the window is full.
func (t *SwipeTracker) Record(s WristSample) {
	if len(t.history) == SwipeHistorySize {
		copy(t.history, t.history[1:])
		t.history = t.history[:SwipeHistorySize-1]
	}
	t.history = append(t.history, s)
}

// TryDetect compares the oldest and newest samples in the window. A swipe is
// accepted when the window holds enough samples, the cooldown since the last
// accepted swipe has passed, the window spans between SwipeMinSpan and
// SwipeMaxSpan (both exclusive) and the wrist travelled more than
// SwipeMinDistance. An accepted swipe clears the window and restarts the
// cooldown; a rejected one leaves the window as it was.
func (t *SwipeTracker) TryDetect(now time.Time, cooldown time.Duration) Direction {
	if len(t.history) < SwipeMinSamples {
		return None
	}
	if !t.lastSwipe.IsZero() && now.Sub(t.lastSwipe) <= cooldown {
		return None
	}

	oldest, newest := t.history[0], t.history[len(t.history)-1]
	span := newest.At.Sub(oldest.At)
	if span <= SwipeMinSpan || span >= SwipeMaxSpan {
		return None
	}

	dx := newest.X - oldest.X
	if math.Abs(dx) <= SwipeMinDistance {
		return None
	}

	t.lastSwipe = now
	t.history = t.history[:0]
	if dx < 0 {
		return Left
	}
	return Right
}

// Len returns the number of samples in the window.
func (t *SwipeTracker) Len() int {
	return len(t.history)
}

// History returns a copy of the window, oldest first.
func (t *SwipeTracker) History() []WristSample {
	return append([]WristSample(nil), t.history...)
}

// LastSwipe returns when the last swipe was accepted.
func (t *SwipeTracker) LastSwipe() time.Time {
	return t.lastSwipe
}
