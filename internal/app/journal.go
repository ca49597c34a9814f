package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/handsphere/internal/store"
)

// journalBuffer is how many events may wait for SQLite before new ones are dropped.
const journalBuffer = 64

// journal writes gesture events to the store off the mapper goroutine.
type journal struct {
	store   *store.Store
	session *store.Session
	log     zerolog.Logger
	metrics *metrics

	ch        chan store.GestureEvent
	done      chan struct{}
	closeOnce sync.Once
}

func newJournal(st *store.Store, log zerolog.Logger, m *metrics) (*journal, error) {
	sess, err := st.Sessions().Start(time.Now())
	if err != nil {
		return nil, err
	}

	j := &journal{
		store:   st,
		session: sess,
		log:     log.With().Str("session", sess.ID).Logger(),
		metrics: m,
		ch:      make(chan store.GestureEvent, journalBuffer),
		done:    make(chan struct{}),
	}
	go j.run()
	return j, nil
}

// record queues e without blocking. It reports false when the buffer is full.
func (j *journal) record(e Event) bool {
	ge := store.GestureEvent{
		SessionID: j.session.ID,
		Kind:      e.Kind,
		WristX:    e.WristX,
		VelocityY: e.VelocityY,
		ZoomLevel: e.ZoomLevel,
		CreatedAt: e.At,
	}
	select {
	case j.ch <- ge:
		return true
	default:
		j.metrics.journalDropped.Add(context.Background(), 1)
		return false
	}
}

func (j *journal) run() {
	defer close(j.done)
	events := j.store.Events()
	for e := range j.ch {
		if err := events.Create(&e); err != nil {
			j.log.Warn().Err(err).Str("kind", string(e.Kind)).Msg("failed to journal gesture event")
		}
	}
}

// close flushes pending events and ends the session.
func (j *journal) close() {
	j.closeOnce.Do(func() {
		close(j.ch)
		<-j.done
		if err := j.store.Sessions().End(j.session.ID, time.Now()); err != nil {
			j.log.Warn().Err(err).Msg("failed to end session")
		}
	})
}
