package generative

import (
	"context"
	"net/http"
	"strings"

	"github.com/octobees/leads-generator/discovery/internal/provider"
)

const (
	// CohereSource marks records generated by Cohere.
	CohereSource = "AI Discovery (Cohere)"

	CohereDefaultModel = "command-r-plus"
	cohereName         = "Cohere"
	cohereDefaultURL   = "https://api.cohere.com"
)

// CohereClient calls the Cohere v2 chat API.
type CohereClient struct {
	client
}

// NewCohereClient builds a client authenticated with an API key.
func NewCohereClient(apiKey string, opts ...Option) (*CohereClient, error) {
	c, err := newClient(cohereName, apiKey, CohereDefaultModel, cohereDefaultURL, opts)
	if err != nil {
		return nil, err
	}
	return &CohereClient{client: c}, nil
}

type cohereRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type cohereResponse struct {
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// Generate asks Cohere for synthesized businesses lacking a website.
func (c *CohereClient) Generate(ctx context.Context, q provider.Query) ([]provider.DirectoryRecord, error) {
	req := cohereRequest{
		Model:       c.model,
		Temperature: 0.7,
		Messages: []chatMessage{{
			Role:    "user",
			Content: BuildPrompt(q) + "\n\nReturn only the JSON array, without markdown.",
		}},
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	var resp cohereResponse
	if err := c.post(ctx, "/v2/chat", header, req, &resp); err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, block := range resp.Message.Content {
		b.WriteString(block.Text)
	}
	if b.Len() == 0 {
		return nil, &provider.ResponseError{Provider: cohereName, Message: "empty response"}
	}
	return ParseRecords(b.String(), CohereSource)
}

var _ provider.GenerativeProvider = (*CohereClient)(nil)
