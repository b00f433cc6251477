// Package gemini implements the completion provider over the Google Gemini API.
package gemini

import (
	"context"
	"strings"
	"sync"

	provider "github.com/medifinder/chat/internal/provider/models"
)

// GeminiProvider implements the Provider interface for Google Gemini.
type GeminiProvider struct {
	client       GeminiClient
	modelName    string
	systemPrompt string

	mu    sync.RWMutex
	tools []provider.ToolDefinition
}

// New creates a new GeminiProvider with the specified client and model.
func New(client GeminiClient, modelName, systemPrompt string) *GeminiProvider {
	return &GeminiProvider{
		client:       client,
		modelName:    modelName,
		systemPrompt: systemPrompt,
	}
}

// Generate sends a request to the Gemini API and returns the full response.
func (p *GeminiProvider) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	p.mu.RLock()
	model := p.modelName
	tools := p.tools
	p.mu.RUnlock()

	contents := toGeminiContents(req.History)
	config := toGeminiConfig(req.Config, p.systemPrompt, tools)

	resp, err := p.client.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	return fromGeminiResponse(resp)
}

// GenerateStream sends a request to the Gemini API and yields the response
// incrementally.
func (p *GeminiProvider) GenerateStream(ctx context.Context, req *provider.GenerateRequest) (provider.ResponseStream, error) {
	p.mu.RLock()
	model := p.modelName
	tools := p.tools
	p.mu.RUnlock()

	contents := toGeminiContents(req.History)
	config := toGeminiConfig(req.Config, p.systemPrompt, tools)

	return newGeminiStream(p.client.GenerateContentStream(ctx, model, contents, config)), nil
}

// DefineTools registers tool definitions with the provider for native tool calling.
func (p *GeminiProvider) DefineTools(ctx context.Context, tools []provider.ToolDefinition) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tools = tools
	return nil
}

// GetModel returns the currently active model name.
func (p *GeminiProvider) GetModel() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modelName
}

// GetCapabilities returns what features the provider supports.
func (p *GeminiProvider) GetCapabilities() provider.Capabilities {
	return provider.Capabilities{
		SupportsStreaming:   true,
		SupportsToolCalling: true,
		MaxOutputTokens:     8192, // Gemini default
	}
}

// mapGeminiError classifies SDK errors into ProviderError codes.
func mapGeminiError(err error) error {
	msg := err.Error()

	code := provider.ErrorCodeNetwork
	switch {
	case strings.Contains(msg, "API key") || strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		code = provider.ErrorCodeAuth
	case strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "rate"):
		code = provider.ErrorCodeRateLimit
	case strings.Contains(msg, "400"):
		code = provider.ErrorCodeInvalidRequest
	}

	return &provider.ProviderError{
		Code:       code,
		Message:    "gemini request failed",
		Underlying: err,
	}
}

var _ provider.Provider = (*GeminiProvider)(nil)
