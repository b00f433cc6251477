// Package session owns transcript lifecycles and serializes turns so that
// at most one is active per session.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	chat "github.com/medifinder/chat/internal/chat/models"
	"github.com/medifinder/chat/internal/events"
	"github.com/medifinder/chat/internal/transcript"
)

// TurnRunner drives one user turn against a transcript. Implemented by
// orchestrator.Orchestrator.
type TurnRunner interface {
	RunTurn(ctx context.Context, store *transcript.Store, userText string, em *events.Emitter) error
}

// Session owns exactly one transcript and enforces the single-active-turn
// invariant by rejecting, not queuing, concurrent starts.
type Session struct {
	id     string
	runner TurnRunner
	logger *slog.Logger

	mu     sync.Mutex
	active bool
	store  *transcript.Store
}

// New creates a session with a fresh transcript containing the canonical
// greeting.
func New(runner TurnRunner, logger *slog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		runner: runner,
		logger: logger.With("session", id),
		store:  transcript.New(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// StartTurn begins a turn for the given user text. It fails with
// ErrTurnActive if a turn is already running. The returned channel yields
// exactly one StartEvent and one EndEvent, with all other events strictly
// between them; it is closed after the EndEvent.
func (s *Session) StartTurn(ctx context.Context, text string) (<-chan events.Event, error) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil, chat.ErrTurnActive
	}
	s.active = true
	store := s.store
	s.mu.Unlock()

	em := events.NewEmitter(ctx, 16)

	go func() {
		defer func() {
			s.mu.Lock()
			s.active = false
			s.mu.Unlock()
		}()

		em.Start()
		err := s.runner.RunTurn(ctx, store, text, em)
		if err != nil {
			s.logger.Warn("turn failed", "error", err)
		}
		em.End(err)
	}()

	return em.Events(), nil
}

// Reset clears the transcript back to the canonical greeting. It fails
// with ErrTurnActive while a turn is running; an in-flight turn is never
// silently corrupted.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return chat.ErrTurnActive
	}

	s.store.Reset()
	s.logger.Info("session reset")
	return nil
}

// Transcript returns a copy of the session's transcript.
func (s *Session) Transcript() []chat.Message {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()
	return store.Messages()
}
