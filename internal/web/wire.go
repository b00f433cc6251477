package web

import (
	"github.com/medifinder/chat/internal/events"
)

// wireEvent is the JSON framing for one SSE event. Field presence depends
// on Type; the renderer switches on Type.
type wireEvent struct {
	Type      string         `json:"type"`
	Content   string         `json:"content,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// toWire converts an internal turn event to its wire framing.
func toWire(ev events.Event) wireEvent {
	switch e := ev.(type) {
	case events.StartEvent:
		return wireEvent{Type: "start"}
	case events.ChunkEvent:
		return wireEvent{Type: "chunk", Content: e.Text}
	case events.ToolUseEvent:
		return wireEvent{Type: "tool_use", ID: e.ID, Name: e.Name, Arguments: e.Arguments}
	case events.ToolResultEvent:
		return wireEvent{Type: "tool_result", ID: e.ID, Name: e.Name, Result: e.Result}
	case events.ToolErrorEvent:
		return wireEvent{Type: "tool_error", ID: e.ID, Name: e.Name, Error: e.Err.Message}
	case events.EndEvent:
		out := wireEvent{Type: "end"}
		if e.Err != nil {
			out.Error = e.Err.Error()
		}
		return out
	default:
		return wireEvent{Type: "unknown"}
	}
}
