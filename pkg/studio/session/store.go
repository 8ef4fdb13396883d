// Package session persists client-local state between runs: the bearer
// token, user email, and active workspace id, plus locally saved
// workflow snapshots. Two implementations are provided: an in-memory
// store for tests and a SQLite store for real sessions.
package session

import (
	"errors"
	"time"
)

// Sentinel errors for store operations.
var (
	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("session store closed")

	// ErrNotFound indicates the requested snapshot does not exist.
	ErrNotFound = errors.New("snapshot not found")
)

// State is the persisted session: read at startup to restore the
// previous login, written on login/workspace switch, cleared on logout.
type State struct {
	Token       string
	Email       string
	WorkspaceID string
}

// Authenticated reports whether the state carries a bearer token.
func (s State) Authenticated() bool {
	return s.Token != ""
}

// Snapshot is a locally saved workflow document.
type Snapshot struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Data      []byte
}

// Store persists session state and local workflow snapshots.
type Store interface {
	// LoadState returns the persisted session state. A store with no
	// saved session returns the zero State, not an error.
	LoadState() (State, error)

	// SaveState replaces the persisted session state.
	SaveState(State) error

	// ClearState removes the persisted session, e.g. on logout.
	ClearState() error

	// SaveSnapshot stores a workflow document under a display name and
	// returns its generated id.
	SaveSnapshot(name string, data []byte) (string, error)

	// LoadSnapshot returns a snapshot by id.
	LoadSnapshot(id string) (Snapshot, error)

	// ListSnapshots returns all snapshots, newest first, without their
	// document payloads.
	ListSnapshots() ([]Snapshot, error)

	// DeleteSnapshot removes a snapshot by id.
	DeleteSnapshot(id string) error

	// Close releases the store.
	Close() error
}
