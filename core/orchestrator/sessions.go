package orchestrator

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Factory builds the Orchestrator for a new session. Implementations should
// pass WithSessionID(sessionID) and give every session its own memory.
type Factory func(sessionID string) (*Orchestrator, error)

// ErrEmptySessionID is returned by Sessions.Get for an empty id.
var ErrEmptySessionID = errors.New("jarvis: empty session id")

// Sessions keeps one isolated Orchestrator per session id. It is safe for
// concurrent use.
type Sessions struct {
	factory Factory

	mu       sync.Mutex
	sessions map[string]*Orchestrator
}

// NewSessions returns an empty registry backed by factory.
func NewSessions(factory Factory) *Sessions {
	return &Sessions{
		factory:  factory,
		sessions: make(map[string]*Orchestrator),
	}
}

// Get returns the session for id, creating it on first use.
func (s *Sessions) Get(id string) (*Orchestrator, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if orch, ok := s.sessions[id]; ok {
		return orch, nil
	}
	orch, err := s.factory(id)
	if err != nil {
		return nil, err
	}
	s.sessions[id] = orch
	return orch, nil
}

// Create starts a session under a fresh uuid.
func (s *Sessions) Create() (*Orchestrator, error) {
	return s.Get(uuid.NewString())
}

// Drop forgets the session for id and reports whether it existed.
func (s *Sessions) Drop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
