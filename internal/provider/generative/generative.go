// Package generative implements the AI fallback that synthesizes
// plausible leads when real sources return too few. Several model APIs
// can back it; one is chosen per deployment.
package generative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/provider"
)

// Backend names a model API able to serve the fallback.
type Backend string

const (
	BackendGemini Backend = "gemini"
	BackendOpenAI Backend = "openai"
	BackendClaude Backend = "claude"
	BackendCohere Backend = "cohere"
)

// Priority is the order backends are tried in when no preference is set.
var Priority = []Backend{BackendGemini, BackendOpenAI, BackendClaude, BackendCohere}

// ParseBackend maps a configured name, or its vendor, to a backend.
func ParseBackend(value string) (Backend, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "gemini", "google":
		return BackendGemini, true
	case "openai", "gpt":
		return BackendOpenAI, true
	case "claude", "anthropic":
		return BackendClaude, true
	case "cohere":
		return BackendCohere, true
	default:
		return "", false
	}
}

// Order returns Priority with preferred moved to the front.
func Order(preferred Backend) []Backend {
	order := make([]Backend, 0, len(Priority))
	if preferred != "" {
		order = append(order, preferred)
	}
	for _, b := range Priority {
		if b != preferred {
			order = append(order, b)
		}
	}
	return order
}

// New builds the client for one backend.
func New(backend Backend, apiKey string, opts ...Option) (provider.GenerativeProvider, error) {
	switch backend {
	case BackendGemini:
		c, err := NewGeminiClient(apiKey, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendOpenAI:
		c, err := NewOpenAIClient(apiKey, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendClaude:
		c, err := NewClaudeClient(apiKey, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendCohere:
		c, err := NewCohereClient(apiKey, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("generative: %w: unknown backend %q", provider.ErrUnavailable, backend)
	}
}

// Option configures a client.
type Option func(*options)

type options struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// WithModel selects the model. Blank values keep the backend default.
func WithModel(model string) Option {
	return func(o *options) {
		if strings.TrimSpace(model) != "" {
			o.model = strings.TrimSpace(model)
		}
	}
}

// WithBaseURL overrides the API host.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets the HTTP client. Nil keeps the default.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// client carries what every backend needs to post a prompt.
type client struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	hc      *http.Client
}

func newClient(name, apiKey, defaultModel, defaultURL string, opts []Option) (client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return client{}, fmt.Errorf("%s: %w: missing api key", strings.ToLower(name), provider.ErrUnavailable)
	}
	cfg := options{
		model:      defaultModel,
		baseURL:    defaultURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return client{name: name, apiKey: apiKey, model: cfg.model, baseURL: cfg.baseURL, hc: cfg.httpClient}, nil
}

// post sends a JSON body and decodes a successful JSON reply into out.
func (c client) post(ctx context.Context, path string, header http.Header, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", c.name, err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", strings.ToLower(c.name), provider.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &provider.ResponseError{Provider: c.name, StatusCode: resp.StatusCode, Message: extractError(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &provider.ResponseError{Provider: c.name, Message: "could not decode response: " + err.Error()}
	}
	return nil
}

// extractError reads the message out of the error shapes the model APIs
// use: {"error":{"message":..}}, {"error":".."} or {"message":..}.
func extractError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return "model API returned an error"
	}

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		var nested struct {
			Message string `json:"message"`
		}
		var plain string
		switch {
		case json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "":
			return nested.Message
		case json.Unmarshal(payload.Error, &plain) == nil && plain != "":
			return plain
		case payload.Message != "":
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}

// BuildPrompt renders the instruction sent to every backend.
func BuildPrompt(q provider.Query) string {
	return fmt.Sprintf(`Act as a business directory researcher.
Find 5-8 realistic but synthesized active businesses in %[1]s, %[2]s in the %[3]s sector that lack a professional website.

Return a JSON array. Each item has:
- "name": business name
- "phone": a realistic local phone number
- "email": a public business email likely found on social media or directories, or null
- "emailSource": one of Directory, Facebook, Instagram, LinkedIn, Search when an email is given
- "isActive": true when recent reviews or opening hours suggest the business operates
- "reviewCount": number of reviews
- "lastReviewDate": a date within the last 12 months formatted YYYY-MM-DD
- "notes": street address or a short note`, q.City, q.Country, q.Industry)
}

type generatedLead struct {
	Name           string    `json:"name"`
	Phone          flexText  `json:"phone"`
	Email          flexText  `json:"email"`
	EmailSource    flexText  `json:"emailSource"`
	IsActive       *flexBool `json:"isActive"`
	ReviewCount    flexInt   `json:"reviewCount"`
	LastReviewDate flexText  `json:"lastReviewDate"`
	Notes          flexText  `json:"notes"`
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if text == "" || text == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("review count %s: %w", data, err)
	}
	*n = flexInt(f)
	return nil
}

// flexBool accepts a JSON bool or "true"/"false".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseBool(strings.Trim(strings.TrimSpace(string(data)), `"`))
	if err != nil {
		return fmt.Errorf("boolean %s: %w", data, err)
	}
	*b = flexBool(v)
	return nil
}

// flexText accepts a string, null, or a scalar rendered as text.
type flexText string

func (s *flexText) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = flexText(text)
		return nil
	}
	raw := strings.TrimSpace(string(data))
	if raw == "null" || strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		*s = ""
		return nil
	}
	*s = flexText(raw)
	return nil
}

var fencedArray = regexp.MustCompile("```(?:json)?\\s*(\\[[\\s\\S]*\\])")

// decodeItems finds the lead array in a model reply. It accepts a bare
// array, an object wrapping it under "businesses", "results" or "leads",
// or either form inside a markdown fence.
func decodeItems(text string) ([]json.RawMessage, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return items, true
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil {
		for _, key := range []string{"businesses", "results", "leads"} {
			if raw, ok := wrapped[key]; ok && json.Unmarshal(raw, &items) == nil {
				return items, true
			}
		}
	}
	if m := fencedArray.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &items); err == nil {
			return items, true
		}
	}
	return nil, false
}

// ParseRecords decodes a model reply into records labelled with source.
// Items that do not decode are dropped; the batch fails only when no
// lead array can be found.
func ParseRecords(text, source string) ([]provider.DirectoryRecord, error) {
	items, ok := decodeItems(text)
	if !ok {
		return nil, &provider.ResponseError{Provider: source, Message: "malformed JSON: no lead array in reply"}
	}

	records := make([]provider.DirectoryRecord, 0, len(items))
	for _, raw := range items {
		var item generatedLead
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if strings.TrimSpace(item.Name) == "" {
			continue
		}
		rec := provider.DirectoryRecord{
			Name:        item.Name,
			Phone:       string(item.Phone),
			Email:       strings.TrimSpace(string(item.Email)),
			Address:     string(item.Notes),
			ReviewCount: max(int(item.ReviewCount), 0),
			Source:      source,
		}
		if item.IsActive != nil {
			active := bool(*item.IsActive)
			rec.Active = &active
		}
		if strings.EqualFold(rec.Email, "null") {
			rec.Email = ""
		}
		if rec.Email != "" {
			rec.EmailSource = entity.ParseEmailSource(string(item.EmailSource))
			if rec.EmailSource == entity.EmailSourceNone {
				rec.EmailSource = entity.EmailSourceSearch
			}
		}
		if ts, ok := parseReviewDate(string(item.LastReviewDate)); ok {
			rec.LastReviewDate = &ts
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseReviewDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
