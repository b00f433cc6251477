package session

import (
	"log/slog"
	"sync"
)

// Manager creates and looks up sessions by ID for the transport boundary.
// Sessions live for the lifetime of the process; durability is out of scope.
type Manager struct {
	runner TurnRunner
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(runner TurnRunner, logger *slog.Logger) *Manager {
	return &Manager{
		runner:   runner,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session with the given ID, or nil if unknown.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Create makes a new session and registers it.
func (m *Manager) Create() *Session {
	s := New(m.runner, m.logger)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	return s
}

// GetOrCreate returns the session with the given ID, creating a fresh one
// when the ID is unknown or empty.
func (m *Manager) GetOrCreate(id string) *Session {
	if id != "" {
		if s := m.Get(id); s != nil {
			return s
		}
	}
	return m.Create()
}
