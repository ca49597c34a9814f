// Package capture provides camera capture using GoCV (OpenCV): the webcam
// itself, a scene-change detector that wakes the hand tracker and a preview
// buffer for the MJPEG stream.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrame is returned when the device delivered no usable frame.
	ErrNoFrame = errors.New("no frame available")
)

// Camera is a frame source for the hand tracker. The tracker changes the
// rate between its idle and active modes.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame; the caller closes it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Config selects the capture device and resolution.
type Config struct {
	DeviceID int
	Width    int
	Height   int
	// Mirror flips frames horizontally so that moving the hand to the
	// user's left moves the wrist toward x=0, as in a selfie view.
	Mirror bool
}

// webcam reads frames from an OpenCV capture device.
type webcam struct {
	config Config

	mu     sync.Mutex
	device *gocv.VideoCapture
	fps    int
}

// NewCamera creates a Camera for the configured device. Zero width or height
// falls back to 640x480. The initial rate is DefaultFPS.
func NewCamera(config Config) Camera {
	if config.Width <= 0 {
		config.Width = DefaultWidth
	}
	if config.Height <= 0 {
		config.Height = DefaultHeight
	}
	return &webcam{config: config, fps: DefaultFPS}
}

func (c *webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		return nil
	}

	device, err := gocv.OpenVideoCapture(c.config.DeviceID)
	if err != nil {
		return fmt.Errorf("open device %d: %w", c.config.DeviceID, err)
	}
	device.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
	device.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	device.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.device = device
	return nil
}

func (c *webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil
	}
	err := c.device.Close()
	c.device = nil
	return err
}

func (c *webcam) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.device.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrNoFrame
	}
	if c.config.Mirror {
		gocv.Flip(mat, &mat, 1)
	}
	return &mat, nil
}

// SetFPS changes the capture rate. Non-positive values are ignored.
func (c *webcam) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.device != nil {
		c.device.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *webcam) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device != nil
}
