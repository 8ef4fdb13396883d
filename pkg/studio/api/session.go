package api

import (
	"sync"

	"github.com/tyboo/studiograph/pkg/studio/session"
)

// Session is the process-wide authentication context: the bearer token,
// user email, and active workspace id attached to every request. It is
// an explicit dependency of the Client with a defined lifecycle (set on
// login or restore, cleared on logout) rather than a mutated ambient
// global.
//
// When backed by a session.Store, changes are persisted so the next
// start can restore the login.
type Session struct {
	mu          sync.RWMutex
	token       string
	email       string
	workspaceID string
	store       session.Store
}

// NewSession creates an unauthenticated session without persistence.
func NewSession() *Session {
	return &Session{}
}

// RestoreSession loads the persisted state from the store and keeps the
// store attached so later changes are written back.
func RestoreSession(store session.Store) (*Session, error) {
	state, err := store.LoadState()
	if err != nil {
		return nil, err
	}
	return &Session{
		token:       state.Token,
		email:       state.Email,
		workspaceID: state.WorkspaceID,
		store:       store,
	}, nil
}

// Token returns the bearer token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Email returns the logged-in user's email, or "".
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// WorkspaceID returns the active workspace id, or "".
func (s *Session) WorkspaceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspaceID
}

// Authenticated reports whether a bearer token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) persist() error {
	if s.store == nil {
		return nil
	}
	return s.store.SaveState(session.State{
		Token:       s.token,
		Email:       s.email,
		WorkspaceID: s.workspaceID,
	})
}

// SetAuth records a successful login.
func (s *Session) SetAuth(token, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.email = email
	return s.persist()
}

// SetWorkspace switches the active workspace.
func (s *Session) SetWorkspace(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaceID = id
	return s.persist()
}

// Clear logs out: the token, email, and workspace are dropped and the
// persisted session is removed.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.email = ""
	s.workspaceID = ""
	if s.store == nil {
		return nil
	}
	return s.store.ClearState()
}
