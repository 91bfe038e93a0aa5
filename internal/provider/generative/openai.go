package generative

import (
	"context"
	"net/http"

	"github.com/octobees/leads-generator/discovery/internal/provider"
)

const (
	// OpenAISource marks records generated by OpenAI models.
	OpenAISource = "AI Discovery (OpenAI)"

	OpenAIDefaultModel = "gpt-4o-mini"
	openAIName         = "OpenAI"
	openAIDefaultURL   = "https://api.openai.com"
)

// OpenAIClient calls the OpenAI chat completions API.
type OpenAIClient struct {
	client
}

// NewOpenAIClient builds a client authenticated with an API key.
func NewOpenAIClient(apiKey string, opts ...Option) (*OpenAIClient, error) {
	c, err := newClient(openAIName, apiKey, OpenAIDefaultModel, openAIDefaultURL, opts)
	if err != nil {
		return nil, err
	}
	return &OpenAIClient{client: c}, nil
}

type openAIRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type openAIResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate asks the model for synthesized businesses lacking a website.
// JSON mode only returns objects, so the array is requested under
// "businesses".
func (c *OpenAIClient) Generate(ctx context.Context, q provider.Query) ([]provider.DirectoryRecord, error) {
	req := openAIRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: BuildPrompt(q) + "\n\nWrap the array in a JSON object under the key \"businesses\".",
		}},
	}
	req.ResponseFormat.Type = "json_object"

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	var resp openAIResponse
	if err := c.post(ctx, "/v1/chat/completions", header, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &provider.ResponseError{Provider: openAIName, Message: "empty response"}
	}
	return ParseRecords(resp.Choices[0].Message.Content, OpenAISource)
}

var _ provider.GenerativeProvider = (*OpenAIClient)(nil)
