// Package localstate persists widget state between runs: session
// identity, drafts, preferences, rating caches and bounded event logs.
// It is the Go stand-in for the browser's localStorage, keyed by a
// per-user namespace.
package localstate

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// GlobalNamespace is used when no authenticated user is known.
const GlobalNamespace = "global"

// DefaultEventCap bounds each event ring to the most recent N entries.
const DefaultEventCap = 100

// Store is a SQLite-backed key/value and event store.
type Store struct {
	db       *sql.DB
	eventCap int
}

// Event is one entry in a bounded analytics or error ring.
type Event struct {
	Kind      string
	Payload   string
	CreatedAt time.Time
}

// Open opens (creating if needed) the state database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, eventCap: DefaultEventCap}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS kv (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (namespace, key)
);
CREATE TABLE IF NOT EXISTS events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	namespace  TEXT NOT NULL,
	kind       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_ns_kind ON events (namespace, kind, id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate state db: %w", err)
	}
	return nil
}

// Get returns the value for key in namespace, and whether it exists.
func (s *Store) Get(namespace, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM kv WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

// Set stores value under key in namespace, replacing any prior value.
func (s *Store) Set(namespace, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes key from namespace. Missing keys are not an error.
func (s *Store) Delete(namespace, key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE namespace = ? AND key = ?`, namespace, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// DeletePrefix removes every key in namespace starting with prefix.
// Used when a session reset invalidates per-session caches.
func (s *Store) DeletePrefix(namespace, prefix string) error {
	if _, err := s.db.Exec(
		`DELETE FROM kv WHERE namespace = ? AND key LIKE ?`,
		namespace, prefix+"%",
	); err != nil {
		return fmt.Errorf("delete prefix %s/%s: %w", namespace, prefix, err)
	}
	return nil
}

// AppendEvent records an event and prunes the ring past the cap.
func (s *Store) AppendEvent(namespace, kind, payload string) error {
	if _, err := s.db.Exec(
		`INSERT INTO events (namespace, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
		namespace, kind, payload, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	_, err := s.db.Exec(
		`DELETE FROM events WHERE namespace = ? AND kind = ? AND id NOT IN (
			SELECT id FROM events WHERE namespace = ? AND kind = ? ORDER BY id DESC LIMIT ?
		)`,
		namespace, kind, namespace, kind, s.eventCap,
	)
	if err != nil {
		return fmt.Errorf("prune events: %w", err)
	}
	return nil
}

// Events returns up to limit most recent events of kind, oldest first.
func (s *Store) Events(namespace, kind string, limit int) ([]Event, error) {
	if limit <= 0 || limit > s.eventCap {
		limit = s.eventCap
	}
	rows, err := s.db.Query(
		`SELECT kind, payload, created_at FROM (
			SELECT id, kind, payload, created_at FROM events
			WHERE namespace = ? AND kind = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		namespace, kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Kind, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
