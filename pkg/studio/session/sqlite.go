package session

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists session state and snapshots to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a SQLite session store. The path should be a
// file path (e.g., "./studio.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			data BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Stable key names; keep them unchanged so existing session files load.
const (
	keyToken     = "studio_token"
	keyEmail     = "user_email"
	keyWorkspace = "active_workspace_id"
)

// LoadState implements Store.
func (s *SQLiteStore) LoadState() (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return State{}, ErrStoreClosed
	}

	rows, err := s.db.Query(`SELECT key, value FROM session`)
	if err != nil {
		return State{}, fmt.Errorf("load session: %w", err)
	}
	defer rows.Close()

	var state State
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return State{}, fmt.Errorf("scan session row: %w", err)
		}
		switch key {
		case keyToken:
			state.Token = value
		case keyEmail:
			state.Email = value
		case keyWorkspace:
			state.WorkspaceID = value
		}
	}
	if err := rows.Err(); err != nil {
		return State{}, fmt.Errorf("iterate session rows: %w", err)
	}
	return state, nil
}

// SaveState implements Store.
func (s *SQLiteStore) SaveState(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	for key, value := range map[string]string{
		keyToken:     state.Token,
		keyEmail:     state.Email,
		keyWorkspace: state.WorkspaceID,
	} {
		if _, err := s.db.Exec(`
			INSERT INTO session (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value); err != nil {
			return fmt.Errorf("save session key %s: %w", key, err)
		}
	}
	return nil
}

// ClearState implements Store.
func (s *SQLiteStore) ClearState() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SaveSnapshot implements Store.
func (s *SQLiteStore) SaveSnapshot(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO snapshots (id, name, created_at, data)
		VALUES (?, ?, ?, ?)
	`, id, name, time.Now().UTC().Format(time.RFC3339Nano), data)
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return id, nil
}

// LoadSnapshot implements Store.
func (s *SQLiteStore) LoadSnapshot(id string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Snapshot{}, ErrStoreClosed
	}

	var snap Snapshot
	var created string
	err := s.db.QueryRow(`
		SELECT id, name, created_at, data FROM snapshots WHERE id = ?
	`, id).Scan(&snap.ID, &snap.Name, &created, &snap.Data)
	if err == sql.ErrNoRows {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return snap, nil
}

// ListSnapshots implements Store.
func (s *SQLiteStore) ListSnapshots() ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, name, created_at FROM snapshots
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var created string
		if err := rows.Scan(&snap.ID, &snap.Name, &created); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}

// DeleteSnapshot implements Store.
func (s *SQLiteStore) DeleteSnapshot(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
