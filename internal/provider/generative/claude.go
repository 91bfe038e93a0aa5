package generative

import (
	"context"
	"net/http"
	"strings"

	"github.com/octobees/leads-generator/discovery/internal/provider"
)

const (
	// ClaudeSource marks records generated by Claude.
	ClaudeSource = "AI Discovery (Claude)"

	ClaudeDefaultModel = "claude-3-5-sonnet-20241022"
	claudeName         = "Claude"
	claudeDefaultURL   = "https://api.anthropic.com"
	claudeAPIVersion   = "2023-06-01"
	claudeMaxTokens    = 4000
)

// ClaudeClient calls the Anthropic Messages API.
type ClaudeClient struct {
	client
}

// NewClaudeClient builds a client authenticated with an API key.
func NewClaudeClient(apiKey string, opts ...Option) (*ClaudeClient, error) {
	c, err := newClient(claudeName, apiKey, ClaudeDefaultModel, claudeDefaultURL, opts)
	if err != nil {
		return nil, err
	}
	return &ClaudeClient{client: c}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate asks Claude for synthesized businesses lacking a website.
func (c *ClaudeClient) Generate(ctx context.Context, q provider.Query) ([]provider.DirectoryRecord, error) {
	req := claudeRequest{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		Messages: []chatMessage{{
			Role:    "user",
			Content: BuildPrompt(q) + "\n\nReturn only the JSON array, without markdown.",
		}},
	}

	header := http.Header{}
	header.Set("x-api-key", c.apiKey)
	header.Set("anthropic-version", claudeAPIVersion)

	var resp claudeResponse
	if err := c.post(ctx, "/v1/messages", header, req, &resp); err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return nil, &provider.ResponseError{Provider: claudeName, Message: "empty response"}
	}
	return ParseRecords(b.String(), ClaudeSource)
}

var _ provider.GenerativeProvider = (*ClaudeClient)(nil)
