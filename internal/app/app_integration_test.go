package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/handsphere/internal/capture"
	"github.com/ayusman/handsphere/internal/detector"
	"github.com/ayusman/handsphere/internal/motion"
)

func solidFrame(t *testing.T, v float64) *gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), 120, 160, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })
	return &m
}

func TestApp_TrackerWakesOnChange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cam := capture.NewMockCamera([]*gocv.Mat{solidFrame(t, 0), solidFrame(t, 255)}, true)
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.PinchLandmarks()})

	a := New(Config{
		Camera:      cam,
		Detector:    det,
		Log:         zerolog.Nop(),
		IdleFPS:     50,
		ActiveFPS:   100,
		IdleTimeout: 100 * time.Millisecond,
		Enabled:     true,
	})
	release := a.Preview().Watch()
	defer release()
	require.NoError(t, a.Start(context.Background()))
	defer a.Stop()

	require.Eventually(t, func() bool {
		return a.State().ZoomLevel > motion.InitialZoom
	}, 2*time.Second, 10*time.Millisecond, "pinch from the camera should zoom out")
	assert.Contains(t, cam.FPSLog(), 100)

	_, seq := a.Preview().Latest()
	assert.NotZero(t, seq, "camera frames reach the preview")

	// With the hand gone the tracker falls back to the idle rate.
	det.SetHands(nil)
	require.Eventually(t, func() bool {
		log := cam.FPSLog()
		return len(log) >= 3 && log[0] == 50 && log[1] == 100 && log[2] == 50
	}, 2*time.Second, 10*time.Millisecond)
}

func TestApp_TrackerIdleWithoutChange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cam := capture.NewMockCamera([]*gocv.Mat{solidFrame(t, 40)}, true)
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	a := New(Config{
		Camera:   cam,
		Detector: det,
		Log:      zerolog.Nop(),
		IdleFPS:  100,
		Enabled:  true,
	})
	require.NoError(t, a.Start(context.Background()))
	defer a.Stop()

	require.Eventually(t, func() bool { return cam.Reads() >= 5 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, det.Calls(), "a static scene never wakes the hand detector")
	assert.Equal(t, []int{100}, cam.FPSLog())

	_, seq := a.Preview().Latest()
	assert.Zero(t, seq, "frames are not encoded without a viewer")
}

func TestApp_TrackerDisabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cam := capture.NewMockCamera([]*gocv.Mat{solidFrame(t, 0), solidFrame(t, 255)}, true)
	a := New(Config{
		Camera:   cam,
		Detector: detector.NewMockDetector(),
		Log:      zerolog.Nop(),
		IdleFPS:  100,
	})
	require.NoError(t, a.Start(context.Background()))
	defer a.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, cam.Reads())
	assert.True(t, cam.IsOpen())

	a.Stop()
	assert.False(t, cam.IsOpen())
}
