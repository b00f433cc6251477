// Package models defines the conversation data model shared by the
// transcript store, the orchestrator, and the provider layer.
package models

import "strings"

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Fragment is an atomic unit of model output. It is a closed sum type;
// consumers switch exhaustively over the three variants.
type Fragment interface {
	isFragment()
}

// TextFragment carries assistant (or user) text.
type TextFragment struct {
	Text string
}

func (TextFragment) isFragment() {}

// ToolUseFragment is a structured tool invocation requested by the model.
type ToolUseFragment struct {
	ID        string
	Name      string
	Arguments map[string]any
}

func (ToolUseFragment) isFragment() {}

// ToolResultFragment carries the outcome of one tool invocation.
// Exactly one of Result or Err is meaningful.
type ToolResultFragment struct {
	ToolUseID string
	Name      string
	Result    string
	Err       *ToolError
}

func (ToolResultFragment) isFragment() {}

// Message is one entry in a transcript. Immutable once appended.
// A single assistant message may interleave text and tool-use fragments.
type Message struct {
	Role      Role
	Fragments []Fragment
}

// Text returns the concatenated text fragments of the message.
func (m Message) Text() string {
	var b strings.Builder
	for _, f := range m.Fragments {
		if t, ok := f.(TextFragment); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// ToolUses returns the tool-use fragments of the message in emission order.
func (m Message) ToolUses() []ToolUseFragment {
	var uses []ToolUseFragment
	for _, f := range m.Fragments {
		if u, ok := f.(ToolUseFragment); ok {
			uses = append(uses, u)
		}
	}
	return uses
}

// UserMessage builds a single-fragment user message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Fragments: []Fragment{TextFragment{Text: text}}}
}

// AssistantMessage builds a single-fragment assistant message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Fragments: []Fragment{TextFragment{Text: text}}}
}

// ToolMessage wraps one tool result as a tool-role message.
func ToolMessage(result ToolResultFragment) Message {
	return Message{Role: RoleTool, Fragments: []Fragment{result}}
}
