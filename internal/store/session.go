package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one tracking run of the application.
type Session struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// SessionRepository records tracking sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start opens a new session beginning at t.
func (r *SessionRepository) Start(t time.Time) (*Session, error) {
	sess := &Session{ID: uuid.NewString(), StartedAt: t}
	_, err := r.db.Exec(`INSERT INTO sessions (id, started_at) VALUES (?, ?)`, sess.ID, sess.StartedAt)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// End closes the session with the given ID at t.
func (r *SessionRepository) End(id string, t time.Time) error {
	result, err := r.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, t, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime

	err := r.db.QueryRow(`SELECT id, started_at, ended_at FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.StartedAt, &ended)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if ended.Valid {
		sess.EndedAt = &ended.Time
	}
	return sess, nil
}
