// Package session holds per-conversation state: an append-only log of
// turns plus the greeted flag. Each session serializes its own appends so
// append order is conversational order.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/PjVineeth/vocab-assist/internal/domain"
)

// Session is one conversation. Turns only ever grow; a committed turn is
// never rewritten or pruned.
type Session struct {
	id string

	mu      sync.Mutex
	turns   []domain.Turn
	greeted bool
}

// New creates an empty session with a generated ID.
func New() *Session {
	return &Session{id: uuid.NewString()}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Len returns the number of recorded turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// History returns a copy of the turn log in append order.
func (s *Session) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Append records one completed exchange.
func (s *Session) Append(t domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, t)
}

// EnsureGreeting appends the synthetic opening turn ({"Hello", greeting})
// the first time it is called on an empty session. It reports whether the
// greeting was appended by this call.
func (s *Session) EnsureGreeting(greeting string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.greeted || len(s.turns) > 0 {
		return false
	}
	s.turns = append(s.turns, domain.Turn{User: "Hello", Agent: greeting})
	s.greeted = true
	return true
}

// Manager tracks live sessions by ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create registers and returns a new session.
func (m *Manager) Create() *Session {
	s := New()
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove forgets a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
