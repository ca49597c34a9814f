package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind classifies a discrete gesture event.
type EventKind string

const (
	EventSwipeLeft  EventKind = "swipe_left"
	EventSwipeRight EventKind = "swipe_right"
	EventPause      EventKind = "pause"
	EventResume     EventKind = "resume"
)

// Valid reports whether k is one of the known kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventSwipeLeft, EventSwipeRight, EventPause, EventResume:
		return true
	}
	return false
}

// GestureEvent is a journaled discrete gesture together with the motion
// state it left behind.
type GestureEvent struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Kind      EventKind `json:"kind"`
	WristX    float64   `json:"wristX"`
	VelocityY float64   `json:"velocityY"`
	ZoomLevel float64   `json:"zoomLevel"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventRepository stores gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the gesture event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts e, assigning an ID and timestamp when they are empty.
func (r *EventRepository) Create(e *GestureEvent) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("invalid event kind %q", e.Kind)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO gesture_events (id, session_id, kind, wrist_x, velocity_y, zoom_level, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, string(e.Kind), e.WristX, e.VelocityY, e.ZoomLevel, e.CreatedAt,
	)
	return err
}

// Recent returns up to limit events, newest first.
func (r *EventRepository) Recent(limit int) ([]*GestureEvent, error) {
	return r.query(
		`SELECT id, session_id, kind, wrist_x, velocity_y, zoom_level, created_at
		 FROM gesture_events ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
}

// ListBySession returns all events of a session in chronological order.
func (r *EventRepository) ListBySession(sessionID string) ([]*GestureEvent, error) {
	return r.query(
		`SELECT id, session_id, kind, wrist_x, velocity_y, zoom_level, created_at
		 FROM gesture_events WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`,
		sessionID,
	)
}

// CountByKind tallies the events of a session per kind.
func (r *EventRepository) CountByKind(sessionID string) (map[EventKind]int, error) {
	rows, err := r.db.Query(
		`SELECT kind, COUNT(*) FROM gesture_events WHERE session_id = ? GROUP BY kind`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[EventKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[EventKind(kind)] = n
	}
	return counts, rows.Err()
}

func (r *EventRepository) query(q string, args ...any) ([]*GestureEvent, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*GestureEvent
	for rows.Next() {
		e := &GestureEvent{}
		var kind string
		if err := rows.Scan(&e.ID, &e.SessionID, &kind, &e.WristX, &e.VelocityY, &e.ZoomLevel, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = EventKind(kind)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
