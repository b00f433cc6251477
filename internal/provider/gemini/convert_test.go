package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	chat "github.com/medifinder/chat/internal/chat/models"
	provider "github.com/medifinder/chat/internal/provider/models"
)

func TestToGeminiContentsRoles(t *testing.T) {
	history := []chat.Message{
		chat.AssistantMessage("¡Hola!"),
		chat.UserMessage("¿Tienen paracetamol?"),
	}

	contents := toGeminiContents(history)
	require.Len(t, contents, 2)
	assert.Equal(t, "model", contents[0].Role)
	assert.Equal(t, "user", contents[1].Role)
}

func TestToGeminiContentsSkipsEmptyMessages(t *testing.T) {
	history := []chat.Message{
		{Role: chat.RoleAssistant},
		chat.UserMessage("hola"),
	}

	contents := toGeminiContents(history)
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
}

func TestToGeminiContentToolUse(t *testing.T) {
	msg := chat.Message{
		Role: chat.RoleAssistant,
		Fragments: []chat.Fragment{
			chat.TextFragment{Text: "Déjame buscar."},
			chat.ToolUseFragment{
				ID:        "use-1",
				Name:      "searchMedication",
				Arguments: map[string]any{"medication": "ibuprofeno"},
			},
		},
	}

	content := messageToGeminiContent(msg)
	require.NotNil(t, content)
	require.Len(t, content.Parts, 2)
	assert.Equal(t, "Déjame buscar.", content.Parts[0].Text)

	call := content.Parts[1].FunctionCall
	require.NotNil(t, call)
	assert.Equal(t, "use-1", call.ID)
	assert.Equal(t, "searchMedication", call.Name)
	assert.Equal(t, "ibuprofeno", call.Args["medication"])
}

func TestToGeminiContentToolResult(t *testing.T) {
	msg := chat.ToolMessage(chat.ToolResultFragment{
		ToolUseID: "use-1",
		Name:      "searchMedication",
		Result:    `{"available": true}`,
	})

	content := messageToGeminiContent(msg)
	require.NotNil(t, content)
	assert.Equal(t, "user", content.Role)

	resp := content.Parts[0].FunctionResponse
	require.NotNil(t, resp)
	assert.Equal(t, "use-1", resp.ID)
	assert.Equal(t, `{"available": true}`, resp.Response["content"])
}

func TestToGeminiContentToolResultError(t *testing.T) {
	msg := chat.ToolMessage(chat.ToolResultFragment{
		ToolUseID: "use-1",
		Name:      "searchMedication",
		Err:       &chat.ToolError{Kind: chat.ToolErrorKindTimeout, Message: "deadline exceeded"},
	})

	content := messageToGeminiContent(msg)
	require.NotNil(t, content)
	resp := content.Parts[0].FunctionResponse
	require.NotNil(t, resp)
	assert.Equal(t, "Error: deadline exceeded", resp.Response["content"])
}

func TestToGeminiConfigSystemPromptAndParams(t *testing.T) {
	temp := float32(0.7)
	maxTokens := int32(2000)
	cfg := toGeminiConfig(&provider.GenerateConfig{
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
	}, "Eres un asistente.", nil)

	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "Eres un asistente.", cfg.SystemInstruction.Parts[0].Text)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.7, float64(*cfg.Temperature), 0.001)
	assert.Equal(t, int32(2000), cfg.MaxOutputTokens)
	assert.Len(t, cfg.SafetySettings, 4)
}

func TestToGeminiConfigNilConfig(t *testing.T) {
	cfg := toGeminiConfig(nil, "", nil)
	require.NotNil(t, cfg)
	assert.Nil(t, cfg.SystemInstruction)
	assert.Nil(t, cfg.Temperature)
}

func TestToGeminiSchemaArrayItems(t *testing.T) {
	schema := toGeminiSchema(&provider.ParameterSchema{
		Type: "object",
		Properties: map[string]provider.PropertySchema{
			"regions": {
				Type:  "array",
				Items: &provider.PropertySchema{Type: "string"},
			},
		},
	})

	prop := schema.Properties["regions"]
	require.NotNil(t, prop)
	assert.Equal(t, genai.TypeArray, prop.Type)
	require.NotNil(t, prop.Items)
	assert.Equal(t, genai.TypeString, prop.Items.Type)
}

func TestToGeminiTypeDefaultsToString(t *testing.T) {
	assert.Equal(t, genai.TypeString, toGeminiType("unknown"))
	assert.Equal(t, genai.TypeBoolean, toGeminiType("boolean"))
	assert.Equal(t, genai.TypeInteger, toGeminiType("integer"))
}

func TestFromGeminiResponseNoCandidates(t *testing.T) {
	_, err := fromGeminiResponse(&genai.GenerateContentResponse{})
	require.Error(t, err)

	var provErr *provider.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, provider.ErrorCodeMalformed, provErr.Code)
}
