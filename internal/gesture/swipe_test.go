package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// feed records n samples evenly spread over span with a total travel of dx.
func feed(tr *SwipeTracker, start time.Time, n int, span time.Duration, x0, dx float64) time.Time {
	var at time.Time
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		at = start.Add(time.Duration(frac * float64(span)))
		tr.Record(WristSample{X: x0 + frac*dx, At: at})
	}
	return at
}

func TestSwipeTracker_Detects(t *testing.T) {
	tr := NewSwipeTracker()
	now := feed(tr, epoch, 5, 200*time.Millisecond, 0.6, -0.12)

	assert.Equal(t, Left, tr.TryDetect(now, DefaultCooldown))
	assert.Equal(t, 0, tr.Len(), "accepted swipe clears the window")
	assert.Equal(t, now, tr.LastSwipe())
}

func TestSwipeTracker_Right(t *testing.T) {
	tr := NewSwipeTracker()
	now := feed(tr, epoch, 5, 200*time.Millisecond, 0.3, 0.12)

	assert.Equal(t, Right, tr.TryDetect(now, DefaultCooldown))
}

func TestSwipeTracker_ShortTravelKeepsHistory(t *testing.T) {
	tr := NewSwipeTracker()
	now := feed(tr, epoch, 5, 200*time.Millisecond, 0.5, 0.05)

	assert.Equal(t, None, tr.TryDetect(now, DefaultCooldown))
	assert.Equal(t, 5, tr.Len())
}

func TestSwipeTracker_Window(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		span    time.Duration
		want    Direction
	}{
		{"too few samples", 3, 200 * time.Millisecond, None},
		{"minimum samples", 4, 200 * time.Millisecond, Right},
		{"span at lower bound", 5, 20 * time.Millisecond, None},
		{"span just above lower bound", 5, 21 * time.Millisecond, Right},
		{"span at upper bound", 5, 400 * time.Millisecond, None},
		{"slow drag", 5, 900 * time.Millisecond, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewSwipeTracker()
			now := feed(tr, epoch, tt.samples, tt.span, 0.2, 0.2)
			assert.Equal(t, tt.want, tr.TryDetect(now, DefaultCooldown))
		})
	}
}

func TestSwipeTracker_Cooldown(t *testing.T) {
	tr := NewSwipeTracker()

	first := feed(tr, epoch, 5, 100*time.Millisecond, 0.2, 0.2)
	assert.Equal(t, Right, tr.TryDetect(first, DefaultCooldown))

	second := feed(tr, first.Add(50*time.Millisecond), 5, 100*time.Millisecond, 0.6, -0.2)
	assert.Less(t, second.Sub(first), DefaultCooldown)
	assert.Equal(t, None, tr.TryDetect(second, DefaultCooldown))
	assert.Equal(t, 5, tr.Len(), "cooldown rejection keeps the window")

	// Exactly at the cooldown boundary is still too soon.
	assert.Equal(t, None, tr.TryDetect(first.Add(DefaultCooldown), DefaultCooldown))

	// Once the cooldown has passed the retained window qualifies.
	assert.Equal(t, Left, tr.TryDetect(first.Add(DefaultCooldown+time.Millisecond), DefaultCooldown))
}

func TestSwipeTracker_Evicts(t *testing.T) {
	tr := NewSwipeTracker()
	for i := 0; i < 15; i++ {
		tr.Record(WristSample{X: float64(i), At: epoch.Add(time.Duration(i) * time.Second)})
	}

	h := tr.History()
	assert.Len(t, h, SwipeHistorySize)
	assert.Equal(t, 5.0, h[0].X)
	assert.Equal(t, 14.0, h[len(h)-1].X)

	h[0].X = -1
	assert.Equal(t, 5.0, tr.History()[0].X, "History returns a copy")
}

func TestDirection(t *testing.T) {
	assert.Equal(t, -1.0, Left.Sign())
	assert.Equal(t, 1.0, Right.Sign())
	assert.Equal(t, 0.0, None.Sign())
	assert.Equal(t, "left", Left.String())
}
