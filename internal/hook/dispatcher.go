package hook

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// queueSize is how many events may wait for hooks before new ones are dropped.
const queueSize = 16

// Dispatcher runs matching hooks for each event on a single background
// goroutine so gesture handling never waits on a child process.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	queue  chan Request
	done   chan struct{}
}

// NewDispatcher starts a Dispatcher. Close must be called to stop it.
func NewDispatcher(m *Manager, ex *Executor, log zerolog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		manager:  m,
		executor: ex,
		log:      log.With().Str("component", "hooks").Logger(),
		ctx:      ctx,
		cancel:   cancel,
		queue:    make(chan Request, queueSize),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch queues req without blocking. It returns false when no hook handles
// the event, the queue is full or the dispatcher is closed.
func (d *Dispatcher) Dispatch(req Request) bool {
	if len(d.manager.Match(req.Event)) == 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- req:
		return true
	default:
		d.log.Warn().Str("event", string(req.Event)).Msg("hook queue full, event dropped")
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for req := range d.queue {
		for _, h := range d.manager.Match(req.Event) {
			if d.ctx.Err() != nil {
				return
			}
			resp, err := d.executor.Execute(d.ctx, h, req)
			switch {
			case err != nil:
				d.log.Warn().Err(err).Str("hook", h.Manifest.Name).Msg("hook failed")
			case !resp.Success:
				d.log.Warn().Str("hook", h.Manifest.Name).Str("error", resp.Error).Msg("hook reported failure")
			default:
				d.log.Debug().Str("hook", h.Manifest.Name).Str("event", string(req.Event)).Msg("hook ran")
			}
		}
	}
}

// Close drains queued events and waits for the worker. Running hooks are
// killed when ctx ends first.
func (d *Dispatcher) Close(ctx context.Context) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
	case <-ctx.Done():
		d.cancel()
		<-d.done
	}
	d.cancel()
}
