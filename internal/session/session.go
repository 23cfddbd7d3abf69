// Package session carries per-caller authorization state.
//
// There is deliberately no notion of user identity: a session holds a
// single privileged flag (set and cleared only by the login and logout
// commands) plus a queue of one-shot flash messages.
package session

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session is the authorization context for one caller. It is passed
// explicitly into the pipeline rather than held as process state.
type Session struct {
	mu         sync.Mutex
	token      string
	privileged bool
	flash      []string
}

// Token returns the session's opaque identifier.
func (s *Session) Token() string {
	return s.token
}

// Privileged reports whether this caller may delete memories.
func (s *Session) Privileged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.privileged
}

// SetPrivileged sets or clears deletion rights.
func (s *Session) SetPrivileged(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.privileged = v
}

// Flash queues a message to show the caller once.
func (s *Session) Flash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = append(s.flash, msg)
}

// PopFlashes drains and returns queued flash messages.
func (s *Session) PopFlashes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flash
	s.flash = nil
	return out
}

// Manager issues and resolves sessions by token.
type Manager struct {
	mu       sync.Mutex
	entropy  *rand.Rand
	sessions map[string]*Session
}

// NewManager returns an empty session manager.
func NewManager() *Manager {
	return &Manager{
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
		sessions: make(map[string]*Session),
	}
}

// New creates a session with a fresh ULID token.
func (m *Manager) New() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := ulid.MustNew(ulid.Timestamp(time.Now()), m.entropy).String()
	s := &Session{token: token}
	m.sessions[token] = s
	return s
}

// Get resolves a token to its session, or nil if unknown.
func (m *Manager) Get(token string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[token]
}

// GetOrNew resolves a token, falling back to a fresh session when the
// token is empty or unknown.
func (m *Manager) GetOrNew(token string) *Session {
	if token != "" {
		if s := m.Get(token); s != nil {
			return s
		}
	}
	return m.New()
}
