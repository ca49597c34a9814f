package capture

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Preview holds the most recent JPEG-encoded camera frame for the MJPEG
// stream. The tracker publishes into it; any number of viewers wait on it
// without touching the camera themselves.
type Preview struct {
	mu     sync.Mutex
	jpeg   []byte
	seq    uint64
	notify chan struct{}

	watchers atomic.Int32
}

// NewPreview creates an empty preview buffer.
func NewPreview() *Preview {
	return &Preview{notify: make(chan struct{})}
}

// Watch registers a viewer until release is called. release is idempotent.
func (p *Preview) Watch() (release func()) {
	p.watchers.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { p.watchers.Add(-1) })
	}
}

// Watched reports whether any viewer is registered. Publishers skip encoding
// when it is false.
func (p *Preview) Watched() bool {
	return p.watchers.Load() > 0
}

// Publish encodes frame as JPEG and makes it the latest preview.
func (p *Preview) Publish(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return ErrNoFrame
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	p.PublishJPEG(buf.GetBytes())
	return nil
}

// PublishJPEG stores an already encoded frame. data is copied.
func (p *Preview) PublishJPEG(data []byte) {
	cp := append([]byte(nil), data...)

	p.mu.Lock()
	p.jpeg = cp
	p.seq++
	close(p.notify)
	p.notify = make(chan struct{})
	p.mu.Unlock()
}

// Latest returns the newest frame and its sequence number. seq is 0 when
// nothing has been published yet.
func (p *Preview) Latest() (data []byte, seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jpeg, p.seq
}

// Next blocks until a frame newer than after is available or ctx ends.
func (p *Preview) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		p.mu.Lock()
		if p.seq > after {
			data, seq := p.jpeg, p.seq
			p.mu.Unlock()
			return data, seq, nil
		}
		wait := p.notify
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-wait:
		}
	}
}
