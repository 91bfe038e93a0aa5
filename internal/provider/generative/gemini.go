package generative

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/octobees/leads-generator/discovery/internal/provider"
)

const (
	// Source marks Gemini records. It contains "AI" so verification
	// treats them as synthetic.
	Source = "AI (Gemini)"

	DefaultModel     = "gemini-2.0-flash"
	geminiName       = "Gemini"
	geminiDefaultURL = "https://generativelanguage.googleapis.com"
)

// GeminiClient calls the Generative Language REST API.
type GeminiClient struct {
	client
}

// NewGeminiClient builds a client authenticated with an API key.
func NewGeminiClient(apiKey string, opts ...Option) (*GeminiClient, error) {
	c, err := newClient(geminiName, apiKey, DefaultModel, geminiDefaultURL, opts)
	if err != nil {
		return nil, err
	}
	c.model = strings.TrimPrefix(c.model, "models/")
	return &GeminiClient{client: c}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string         `json:"responseMimeType"`
		ResponseSchema   map[string]any `json:"responseSchema"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

// leadSchema constrains the reply to an array of lead objects.
var leadSchema = map[string]any{
	"type": "ARRAY",
	"items": map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"name":           map[string]any{"type": "STRING"},
			"phone":          map[string]any{"type": "STRING"},
			"email":          map[string]any{"type": "STRING", "nullable": true},
			"emailSource":    map[string]any{"type": "STRING"},
			"isActive":       map[string]any{"type": "BOOLEAN"},
			"reviewCount":    map[string]any{"type": "INTEGER"},
			"lastReviewDate": map[string]any{"type": "STRING"},
			"notes":          map[string]any{"type": "STRING"},
		},
		"required": []string{"name", "phone", "isActive"},
	},
}

// Generate asks the model for synthesized businesses lacking a website.
// Every record is returned without a website.
func (c *GeminiClient) Generate(ctx context.Context, q provider.Query) ([]provider.DirectoryRecord, error) {
	var req geminiRequest
	req.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: BuildPrompt(q)}}}}
	req.GenerationConfig.ResponseMimeType = "application/json"
	req.GenerationConfig.ResponseSchema = leadSchema

	header := http.Header{}
	header.Set("x-goog-api-key", c.apiKey)

	var resp geminiResponse
	path := "/v1beta/models/" + url.PathEscape(c.model) + ":generateContent"
	if err := c.post(ctx, path, header, req, &resp); err != nil {
		return nil, err
	}

	text := geminiText(resp)
	if text == "" {
		return nil, &provider.ResponseError{Provider: geminiName, Message: "empty response"}
	}
	return ParseRecords(text, Source)
}

func geminiText(resp geminiResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

var _ provider.GenerativeProvider = (*GeminiClient)(nil)
