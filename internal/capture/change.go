package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Scene-change detection constants
const (
	// BlurSize is the Gaussian kernel size applied before differencing.
	BlurSize = 21
	// DiffThreshold is the per-pixel intensity change counted as "changed".
	DiffThreshold = 25
	// DefaultWakeThreshold is the percentage of changed pixels that wakes the tracker.
	DefaultWakeThreshold = 1.0
)

// Change is the result of comparing a frame to its predecessor.
type Change struct {
	Detected bool
	Percent  float64
}

// ChangeDetector spots movement in front of the camera by differencing
// consecutive blurred grayscale frames. The tracker uses it while idle so the
// landmark model only runs once something enters the scene.
type ChangeDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewChangeDetector creates a detector that fires when more than threshold
// percent of the pixels change. Non-positive thresholds use DefaultWakeThreshold.
func NewChangeDetector(threshold float64) *ChangeDetector {
	if threshold <= 0 {
		threshold = DefaultWakeThreshold
	}
	return &ChangeDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect compares frame with the previous one. The first frame only sets
// the baseline and never reports a change.
func (d *ChangeDetector) Detect(frame *gocv.Mat) Change {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return Change{}
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: BlurSize, Y: BlurSize}, 0, 0, gocv.BorderDefault)

	if !d.initialized || blurred.Rows() != d.prevGray.Rows() || blurred.Cols() != d.prevGray.Cols() {
		blurred.CopyTo(&d.prevGray)
		d.initialized = true
		return Change{}
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, d.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	percent := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0

	blurred.CopyTo(&d.prevGray)

	return Change{Detected: percent > d.threshold, Percent: percent}
}

// Reset drops the baseline so the next frame starts a new comparison.
func (d *ChangeDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initialized = false
}

// Close releases the baseline frame.
func (d *ChangeDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.prevGray.Close()
	d.prevGray = gocv.NewMat()
	d.initialized = false
}
