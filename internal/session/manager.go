package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config holds session lifetimes. The recovery TTL is the longer sliding
// window applied while a password-recovery flow is in progress.
type Config struct {
	TTL         time.Duration
	RecoveryTTL time.Duration
}

// DefaultConfig returns the default session lifetimes.
func DefaultConfig() Config {
	return Config{
		TTL:         24 * time.Minute,
		RecoveryTTL: 30 * time.Minute,
	}
}

// Manager is the process-wide session store. Sessions live in memory; a
// lookup by an unknown or expired ID behaves as if the session never existed.
type Manager struct {
	config   Config
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.RecoveryTTL <= 0 {
		cfg.RecoveryTTL = DefaultConfig().RecoveryTTL
	}
	return &Manager{
		config:   cfg,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with a fresh CSRF token.
func (m *Manager) Create() (*Session, error) {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.config.TTL),
	}
	if err := s.EnsureCSRFToken(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the live session for id, extending its sliding window. Expired
// sessions are dropped on access.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if s.Expired() {
		delete(m.sessions, id)
		return nil, false
	}
	s.ExpiresAt = time.Now().Add(m.ttlFor(s))
	return s, true
}

// Update applies fn to the session under the manager lock, then refreshes the
// sliding window. Mutations of session state go through here so concurrent
// requests on the same session never interleave partial writes.
func (m *Manager) Update(s *Session, fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(s)
	s.ExpiresAt = time.Now().Add(m.ttlFor(s))
}

// RotateID re-keys the session under a new identifier, keeping all state.
// Used when entering the recovery flow to mitigate session fixation.
func (m *Manager) RotateID(s *Session) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, s.ID)
	s.ID = uuid.NewString()
	s.ExpiresAt = time.Now().Add(m.ttlFor(s))
	m.sessions[s.ID] = s
	return s.ID
}

// Destroy removes the session entirely.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// ttlFor picks the sliding window: the longer recovery window applies while
// a reset email is bound to the session.
func (m *Manager) ttlFor(s *Session) time.Duration {
	if s.ResetEmail != "" {
		return m.config.RecoveryTTL
	}
	return m.config.TTL
}
