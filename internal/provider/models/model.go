package models

import (
	chat "github.com/medifinder/chat/internal/chat/models"
)

// GenerateRequest encapsulates all parameters for a completion request.
type GenerateRequest struct {
	// History is the full transcript for this session, ending with the
	// user message that triggered the turn.
	History []chat.Message

	// Config contains optional generation parameters.
	Config *GenerateConfig
}

// GenerateConfig contains optional generation parameters.
// All fields are pointers to distinguish between "not set" and "zero value".
type GenerateConfig struct {
	Temperature     *float32
	TopP            *float32
	MaxOutputTokens *int32
	StopSequences   []string
}

// GenerateResponse contains the model's complete response for one round.
type GenerateResponse struct {
	// Text is the assistant text, possibly empty for pure tool-call rounds.
	Text string

	// ToolUses are the structured tool invocations the model requested,
	// in emission order.
	ToolUses []chat.ToolUseFragment
}

// ResponseStream provides access to streaming response chunks.
type ResponseStream interface {
	// Next returns the next chunk, or io.EOF when done.
	Next() (*StreamChunk, error)

	// Close releases resources.
	Close() error
}

// StreamChunk is a single fragment of a streaming response. Exactly one of
// Delta or ToolUse is set, unless Done is true.
type StreamChunk struct {
	// Delta is incremental assistant text.
	Delta string

	// ToolUse is a completed tool invocation request.
	ToolUse *chat.ToolUseFragment

	// Done indicates the model's turn is complete.
	Done bool
}

// ToolDefinition declares a tool the model may invoke.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *ParameterSchema // nil means no parameters
}

// ParameterSchema maps directly to standard JSON Schema.
type ParameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// PropertySchema defines a single parameter property.
type PropertySchema struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Enum        []string        `json:"enum,omitempty"`
	Items       *PropertySchema `json:"items,omitempty"`
}

// Capabilities describes what features a provider supports.
type Capabilities struct {
	SupportsStreaming   bool
	SupportsToolCalling bool
	MaxOutputTokens     int
}
