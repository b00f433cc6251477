// Package transcript holds the ordered conversation history for one session.
// The store is append-only except for an explicit reset.
package transcript

import (
	"fmt"
	"sync"

	"github.com/medifinder/chat/internal/chat/models"
)

// Greeting is the canonical assistant message a fresh (or reset) transcript
// starts with.
const Greeting = "¡Hola! Soy el asistente de Medifinder. Pregúntame por la " +
	"disponibilidad de medicamentos en los centros de salud del noroeste peruano."

// Store is the transcript for one session. Safe for concurrent use, though
// the session controller guarantees a single writer per active turn.
type Store struct {
	mu       sync.RWMutex
	messages []models.Message
}

// New returns a store initialized with the canonical greeting message.
func New() *Store {
	s := &Store{}
	s.install()
	return s
}

func (s *Store) install() {
	s.messages = []models.Message{models.AssistantMessage(Greeting)}
}

// Append adds a message to the transcript. It rejects messages that would
// violate the tool-result invariant: every ToolResultFragment must reference
// a tool_use_id that appears in a strictly earlier message.
func (s *Store) Append(msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range msg.Fragments {
		r, ok := f.(models.ToolResultFragment)
		if !ok {
			continue
		}
		if !s.hasToolUse(r.ToolUseID) {
			return fmt.Errorf("orphaned tool result: no prior tool use with id %q", r.ToolUseID)
		}
	}

	s.messages = append(s.messages, msg)
	return nil
}

// hasToolUse reports whether any already-appended message contains a
// tool-use fragment with the given id. Callers hold s.mu.
func (s *Store) hasToolUse(id string) bool {
	for _, m := range s.messages {
		for _, u := range m.ToolUses() {
			if u.ID == id {
				return true
			}
		}
	}
	return false
}

// Messages returns a copy of the transcript in order.
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the transcript.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Reset clears the transcript and reinstalls the canonical greeting.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.install()
}
