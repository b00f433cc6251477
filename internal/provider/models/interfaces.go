package models

import (
	"context"
)

// Provider defines the interface for LLM backends.
type Provider interface {
	// Generate sends a request to the model and returns the complete
	// response. Used as a fallback when streaming is unavailable; the
	// orchestrator then synthesizes chunk events from the full text.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// GenerateStream returns a stream that yields response fragments
	// incrementally. Returns ErrStreamingNotSupported if the backend
	// cannot stream.
	GenerateStream(ctx context.Context, req *GenerateRequest) (ResponseStream, error)

	// DefineTools registers tool declarations with the provider for
	// native tool calling. Call before Generate/GenerateStream.
	DefineTools(ctx context.Context, tools []ToolDefinition) error

	// GetModel returns the currently active model name.
	GetModel() string

	// GetCapabilities returns what features the provider supports.
	GetCapabilities() Capabilities
}
