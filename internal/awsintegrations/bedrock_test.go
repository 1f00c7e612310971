package awsintegrations

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/domain"
)

func TestNewBedrockSuggestionGenerator_DefaultsModelID(t *testing.T) {
	g := NewBedrockSuggestionGenerator(nil, "")
	assert.Equal(t, defaultSuggestionModelID, g.modelID)

	g = NewBedrockSuggestionGenerator(nil, "anthropic.claude-3-sonnet")
	assert.Equal(t, "anthropic.claude-3-sonnet", g.modelID)
}

func TestAnthropicMessagesRequest_MarshalsExpectedShape(t *testing.T) {
	req := anthropicMessagesRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        200,
		Messages: []anthropicMessagesPayload{
			{Role: "user", Content: "describe conflict: " + string(domain.ConflictKeywordCannibalization)},
		},
	}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "bedrock-2023-05-31", decoded["anthropic_version"])
	assert.Equal(t, float64(200), decoded["max_tokens"])
}
