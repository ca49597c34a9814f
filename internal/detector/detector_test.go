package detector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func TestHandLandmarks_Frame(t *testing.T) {
	t.Run("copies all landmarks", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		frame := hand.Frame()

		require.Len(t, frame, NumLandmarks)
		assert.True(t, frame.Valid())
		assert.Equal(t, hand.Points[IndexTip], frame[IndexTip])

		frame[Wrist].X = 42
		assert.Equal(t, 0.5, hand.Points[Wrist].X, "frame must not alias the hand")
	})

	t.Run("no hands yields nil frame", func(t *testing.T) {
		assert.Nil(t, PrimaryFrame(nil))
		assert.Equal(t, FistLandmarks().Frame(), PrimaryFrame([]HandLandmarks{FistLandmarks()}))
	})
}

func TestFrame_Clone(t *testing.T) {
	var empty Frame
	assert.Nil(t, empty.Clone())

	hand := FistLandmarks()
	frame := hand.Frame()
	clone := frame.Clone()
	clone[ThumbTip].Y = 0
	assert.NotEqual(t, frame[ThumbTip].Y, clone[ThumbTip].Y)
}

func TestFrame_Valid(t *testing.T) {
	assert.False(t, Frame(nil).Valid())
	assert.False(t, make(Frame, NumLandmarks-1).Valid())
	assert.True(t, make(Frame, NumLandmarks).Valid())
}

func TestHandLandmarks_Translate(t *testing.T) {
	hand := OpenPalmLandmarks()
	moved := hand.Translate(-0.03, 0.01)

	for i := 0; i < NumLandmarks; i++ {
		if math.Abs(moved.Points[i].X-(hand.Points[i].X-0.03)) > epsilon {
			t.Errorf("landmark %d: X = %f, want %f", i, moved.Points[i].X, hand.Points[i].X-0.03)
		}
		if math.Abs(moved.Points[i].Y-(hand.Points[i].Y+0.01)) > epsilon {
			t.Errorf("landmark %d: Y = %f, want %f", i, moved.Points[i].Y, hand.Points[i].Y+0.01)
		}
	}
	assert.Equal(t, 0.5, hand.Points[Wrist].X, "original must be untouched")
}

func TestDistance2D(t *testing.T) {
	tests := []struct {
		name string
		a, b Point3D
		want float64
	}{
		{"same point", Point3D{X: 0.2, Y: 0.2}, Point3D{X: 0.2, Y: 0.2}, 0},
		{"3-4-5 triangle", Point3D{}, Point3D{X: 0.3, Y: 0.4}, 0.5},
		{"depth ignored", Point3D{Z: 0}, Point3D{Z: 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance2D(tt.a, tt.b), epsilon)
		})
	}
}

func TestPrimary(t *testing.T) {
	assert.Nil(t, Primary(nil))

	hands := []HandLandmarks{FistLandmarks(), OpenPalmLandmarks()}
	primary := Primary(hands)
	require.NotNil(t, primary)
	assert.Equal(t, hands[0].Points, primary.Points)
}

func TestParseResponse(t *testing.T) {
	t.Run("drops short hands", func(t *testing.T) {
		hands, err := parseResponse([]byte(`{"hands":[{"points":[{"x":0.1,"y":0.2,"z":0}],"handedness":"Left","score":0.9}]}`))
		require.NoError(t, err)
		assert.Empty(t, hands)
	})

	t.Run("decodes full hand", func(t *testing.T) {
		line := `{"hands":[{"points":[`
		for i := 0; i < NumLandmarks; i++ {
			if i > 0 {
				line += ","
			}
			line += `{"x":0.5,"y":0.5,"z":0}`
		}
		line += `],"handedness":"Right","score":0.8}]}`

		hands, err := parseResponse([]byte(line))
		require.NoError(t, err)
		require.Len(t, hands, 1)
		assert.Equal(t, "Right", hands[0].Handedness)
		assert.Equal(t, 0.5, hands[0].Points[PinkyTip].X)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"hands":`))
		assert.Error(t, err)
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		assert.NoError(t, err)
		assert.Nil(t, hands)
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{FistLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		assert.NoError(t, err)
		assert.Len(t, hands, 2)
	})

	t.Run("plays back a sequence", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetSequence([][]HandLandmarks{
			{OpenPalmLandmarks()},
			nil,
			{PinchLandmarks()},
		})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)
		after, _ := mock.Detect(nil)

		assert.Len(t, first, 1)
		assert.Empty(t, second)
		assert.Len(t, third, 1)
		assert.Empty(t, after)
		assert.Equal(t, 4, mock.Calls())
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, hands)
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPoseFixtures(t *testing.T) {
	wrist := func(h HandLandmarks) Point3D { return h.Points[Wrist] }
	extended := func(h HandLandmarks, tip, pip int) bool {
		return Distance2D(wrist(h), h.Points[tip]) > Distance2D(wrist(h), h.Points[pip])
	}
	fingers := [][2]int{{IndexTip, IndexPIP}, {MiddleTip, MiddlePIP}, {RingTip, RingPIP}, {PinkyTip, PinkyPIP}}

	t.Run("open palm extends every finger", func(t *testing.T) {
		palm := OpenPalmLandmarks()
		for _, f := range fingers {
			assert.True(t, extended(palm, f[0], f[1]), "finger tip %d should be extended", f[0])
		}
		assert.Greater(t, Distance2D(palm.Points[ThumbTip], palm.Points[IndexTip]), 0.05)
	})

	t.Run("fist curls every finger", func(t *testing.T) {
		fist := FistLandmarks()
		for _, f := range fingers {
			assert.False(t, extended(fist, f[0], f[1]), "finger tip %d should be curled", f[0])
		}
		assert.Greater(t, Distance2D(fist.Points[ThumbTip], fist.Points[IndexTip]), 0.05)
	})

	t.Run("pinch brings thumb to index", func(t *testing.T) {
		pinch := PinchLandmarks()
		assert.Less(t, Distance2D(pinch.Points[ThumbTip], pinch.Points[IndexTip]), 0.05)
		assert.False(t, extended(pinch, IndexTip, IndexPIP))
	})
}
