package executor

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"

	provider "github.com/medifinder/chat/internal/provider/models"
)

// toToolDefinition converts an MCP tool declaration into the provider's
// schema types. MCP delivers the input schema as loosely-typed JSON; the
// properties map is decoded into typed PropertySchema values.
func toToolDefinition(t mcp.Tool) (provider.ToolDefinition, error) {
	def := provider.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
	}

	if len(t.InputSchema.Properties) == 0 {
		return def, nil
	}

	var props map[string]provider.PropertySchema
	if err := mapstructure.Decode(t.InputSchema.Properties, &props); err != nil {
		return def, fmt.Errorf("invalid input schema: %w", err)
	}

	schemaType := t.InputSchema.Type
	if schemaType == "" {
		schemaType = "object"
	}

	def.Parameters = &provider.ParameterSchema{
		Type:       schemaType,
		Properties: props,
		Required:   t.InputSchema.Required,
	}
	return def, nil
}
