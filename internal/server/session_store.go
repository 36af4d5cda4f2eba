package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/anmicius0/lims-batch-composer/internal/client"
	"github.com/anmicius0/lims-batch-composer/internal/wizard"
)

// Session is one mounted wizard.
type Session struct {
	// ID is the unique identifier handed to the UI
	ID string
	// Role is the token role that opened the session; only that role may drive it
	Role string
	// CreatedAt is the time the wizard was mounted
	CreatedAt time.Time
	// UpdatedAt is the time of the last accepted action
	UpdatedAt time.Time
	// LastCreated is the most recent batch this session submitted, if any
	LastCreated *client.CreatedBatch
	// Controller drives the wizard; it is set once at creation
	Controller *wizard.Controller
}

// SessionStore manages in-memory wizard sessions. Drafts are never persisted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates a new session store instance
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// Add registers a session under its ID.
func (ss *SessionStore) Add(session *Session) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[session.ID] = session
}

// Get retrieves a session by ID
func (ss *SessionStore) Get(id string) (*Session, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	session, exists := ss.sessions[id]
	return session, exists
}

// Snapshot returns a copy of the session's bookkeeping fields.
func (ss *SessionStore) Snapshot(id string) (Session, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	session, exists := ss.sessions[id]
	if !exists {
		return Session{}, false
	}
	return *session, true
}

// Update applies updateFn to a session and bumps its UpdatedAt.
func (ss *SessionStore) Update(id string, updateFn func(*Session)) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session, exists := ss.sessions[id]
	if !exists {
		return fmt.Errorf("session %s not found", id)
	}
	updateFn(session)
	session.UpdatedAt = time.Now()
	return nil
}

// Remove deletes a session and returns it.
func (ss *SessionStore) Remove(id string) (*Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, exists := ss.sessions[id]
	delete(ss.sessions, id)
	return session, exists
}

// RemoveIdle removes and returns every session last updated before cutoff.
func (ss *SessionStore) RemoveIdle(cutoff time.Time) []*Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	var out []*Session
	for id, session := range ss.sessions {
		if session.UpdatedAt.Before(cutoff) {
			out = append(out, session)
			delete(ss.sessions, id)
		}
	}
	return out
}

// Drain removes and returns every session.
func (ss *SessionStore) Drain() []*Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	out := make([]*Session, 0, len(ss.sessions))
	for id, session := range ss.sessions {
		out = append(out, session)
		delete(ss.sessions, id)
	}
	return out
}

// Len returns the number of mounted sessions.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}
