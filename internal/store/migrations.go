package store

import "fmt"

// migrations are applied in order; the schema version is the number of
// entries applied, tracked in PRAGMA user_version.
var migrations = []string{
	`CREATE TABLE sessions (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		ended_at DATETIME
	)`,

	`CREATE TABLE gesture_events (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK(kind IN ('swipe_left', 'swipe_right', 'pause', 'resume')),
		wrist_x REAL NOT NULL,
		velocity_y REAL NOT NULL,
		zoom_level REAL NOT NULL,
		created_at DATETIME NOT NULL
	)`,

	`CREATE TABLE settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	`CREATE INDEX idx_gesture_events_session_id ON gesture_events(session_id)`,
	`CREATE INDEX idx_gesture_events_created_at ON gesture_events(created_at)`,
}

// SchemaVersion is the version a fully migrated database reports.
var SchemaVersion = len(migrations)

func (s *Store) schemaVersion() (int, error) {
	var v int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}

// runMigrations applies the migrations the database has not seen yet, each
// in its own transaction.
func (s *Store) runMigrations() error {
	version, err := s.schemaVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
