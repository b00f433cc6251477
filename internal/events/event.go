// Package events defines the ordered event stream a turn produces for the
// presentation layer.
package events

import "github.com/medifinder/chat/internal/chat/models"

// Event is the interface for all turn events.
// Consumers handle events via type switch.
type Event interface {
	isEvent()
}

// StartEvent marks the beginning of a turn. Exactly one per turn.
type StartEvent struct{}

func (StartEvent) isEvent() {}

// ChunkEvent carries incremental assistant text.
type ChunkEvent struct {
	Text string
}

func (ChunkEvent) isEvent() {}

// ToolUseEvent is emitted when a tool invocation is dispatched.
type ToolUseEvent struct {
	ID        string
	Name      string
	Arguments map[string]any
}

func (ToolUseEvent) isEvent() {}

// ToolResultEvent carries a successful tool outcome.
type ToolResultEvent struct {
	ID     string
	Name   string
	Result string
}

func (ToolResultEvent) isEvent() {}

// ToolErrorEvent carries a failed tool outcome. The turn continues.
type ToolErrorEvent struct {
	ID   string
	Name string
	Err  *models.ToolError
}

func (ToolErrorEvent) isEvent() {}

// EndEvent marks turn termination. Err is nil on success. Exactly one per
// turn, always delivered so the client can recover its UI state.
type EndEvent struct {
	Err error
}

func (EndEvent) isEvent() {}
