package awsintegrations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/ignite/seo-noc/internal/domain"
)

const defaultSuggestionModelID = "anthropic.claude-3-haiku-20240307-v1:0"

// anthropicMessagesRequest/Response mirror the subset of the Bedrock
// Anthropic Messages API this drafter needs.
type anthropicMessagesRequest struct {
	AnthropicVersion string                     `json:"anthropic_version"`
	MaxTokens        int                        `json:"max_tokens"`
	Messages         []anthropicMessagesPayload `json:"messages"`
}

type anthropicMessagesPayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicMessagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// BedrockSuggestionGenerator implements linker.SuggestionGenerator: a
// best-effort drafter for the human-readable suggestion field on a newly
// detected conflict. Invoked only when
// the detector itself didn't produce a suggestion; a failure here leaves
// the field empty and never blocks conflict ingestion.
type BedrockSuggestionGenerator struct {
	client  *bedrockruntime.Client
	modelID string
}

// NewBedrockSuggestionGenerator builds a drafter against modelID (empty
// defaults to a Claude Haiku model on Bedrock).
func NewBedrockSuggestionGenerator(client *bedrockruntime.Client, modelID string) *BedrockSuggestionGenerator {
	if modelID == "" {
		modelID = defaultSuggestionModelID
	}
	return &BedrockSuggestionGenerator{client: client, modelID: modelID}
}

// Suggest satisfies linker.SuggestionGenerator.
func (g *BedrockSuggestionGenerator) Suggest(ctx context.Context, conflictType domain.ConflictType, description string) (string, error) {
	prompt := fmt.Sprintf(
		"An SEO network conflict of type %q was detected: %s\n"+
			"In one or two sentences, suggest a concrete remediation an SEO operator could take.",
		conflictType, description,
	)

	body, err := json.Marshal(anthropicMessagesRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        200,
		Messages:         []anthropicMessagesPayload{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal bedrock request: %w", err)
	}

	out, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("invoke bedrock model: %w", err)
	}

	var resp anthropicMessagesResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal bedrock response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", nil
	}
	return resp.Content[0].Text, nil
}
