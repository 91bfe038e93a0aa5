package generative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/provider"
)

var ghanaQuery = provider.Query{Country: entity.CountryGhana, Industry: entity.IndustrySalonsSpas, City: "Kumasi"}

const oneLead = `[{"name":"Adwoa Beauty Parlour","phone":"024 000 1111"}]`

func TestParseRecords(t *testing.T) {
	text := "```json\n" + `[
		{"name":"Adwoa Beauty Parlour","phone":"024 000 1111","email":"adwoa@gmail.com","emailSource":"Instagram","isActive":true,"reviewCount":14,"lastReviewDate":"2026-08-02","notes":"Adum, Kumasi"},
		{"name":"Mensah Barbering","phone":"020 000 2222","email":"mensah@yahoo.com","emailSource":"Carrier pigeon","reviewCount":-3},
		{"name":"  "}
	]` + "\n```"

	records, err := ParseRecords(text, Source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Source != Source || first.Website != "" {
		t.Fatalf("unexpected source/website %+v", first)
	}
	if first.EmailSource != entity.EmailSourceInstagram || first.Active == nil || !*first.Active {
		t.Fatalf("unexpected first record %+v", first)
	}
	if first.LastReviewDate == nil || first.LastReviewDate.Format("2006-01-02") != "2026-08-02" {
		t.Fatalf("unexpected review date %v", first.LastReviewDate)
	}

	second := records[1]
	if second.EmailSource != entity.EmailSourceSearch || second.ReviewCount != 0 || second.Active != nil {
		t.Fatalf("unexpected second record %+v", second)
	}
}

func TestParseRecords_TypeDrift(t *testing.T) {
	text := `[
		{"name":"Adwoa Beauty Parlour","phone":244001111,"reviewCount":"8","isActive":"true","email":null},
		{"name":{"first":"Broken"}},
		{"name":"Mensah Barbering","reviewCount":12.0,"lastReviewDate":"2026-08-02T10:00:00Z"}
	]`

	records, err := ParseRecords(text, ClaudeSource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected the undecodable item to be dropped, got %d records", len(records))
	}
	first := records[0]
	if first.ReviewCount != 8 || first.Phone != "244001111" || first.Active == nil || !*first.Active {
		t.Fatalf("unexpected first record %+v", first)
	}
	if first.Email != "" || first.EmailSource != "" {
		t.Fatalf("expected no email, got %+v", first)
	}
	if records[1].ReviewCount != 12 || records[1].LastReviewDate == nil || records[1].Source != ClaudeSource {
		t.Fatalf("unexpected second record %+v", records[1])
	}
}

func TestParseRecords_Shapes(t *testing.T) {
	tests := map[string]string{
		"wrapped":         `{"businesses":` + oneLead + `}`,
		"results key":     `{"results":` + oneLead + `}`,
		"prose and fence": "Here you go:\n```json\n" + oneLead + "\n```\nEnjoy.",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			records, err := ParseRecords(text, OpenAISource)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(records) != 1 || records[0].Name != "Adwoa Beauty Parlour" {
				t.Fatalf("unexpected records %+v", records)
			}
		})
	}
}

func TestParseRecords_Malformed(t *testing.T) {
	_, err := ParseRecords("sorry, I cannot help with that", Source)
	var respErr *provider.ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected response error, got %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(ghanaQuery)
	for _, want := range []string{"Kumasi, Ghana", "Salons & spas", "JSON array"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to mention %q", want)
		}
	}
}

func TestSourcesAreMarkedSynthetic(t *testing.T) {
	for _, source := range []string{Source, ClaudeSource, CohereSource, OpenAISource} {
		if !strings.Contains(source, "AI") {
			t.Fatalf("source %q must contain AI", source)
		}
	}
}

func TestParseBackendAndOrder(t *testing.T) {
	tests := map[string]Backend{
		"Gemini":    BackendGemini,
		"anthropic": BackendClaude,
		" gpt ":     BackendOpenAI,
		"cohere":    BackendCohere,
	}
	for value, want := range tests {
		got, ok := ParseBackend(value)
		if !ok || got != want {
			t.Fatalf("ParseBackend(%q) = %q, %v", value, got, ok)
		}
	}
	if _, ok := ParseBackend("llama"); ok {
		t.Fatalf("expected unknown backend to be rejected")
	}

	order := Order(BackendCohere)
	want := []Backend{BackendCohere, BackendGemini, BackendOpenAI, BackendClaude}
	if len(order) != len(want) {
		t.Fatalf("unexpected order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order %v", order)
		}
	}
	if got := Order(""); len(got) != len(Priority) || got[0] != BackendGemini {
		t.Fatalf("expected default priority, got %v", got)
	}
}

func TestNew(t *testing.T) {
	tests := map[Backend]any{
		BackendGemini: (*GeminiClient)(nil),
		BackendOpenAI: (*OpenAIClient)(nil),
		BackendClaude: (*ClaudeClient)(nil),
		BackendCohere: (*CohereClient)(nil),
	}
	for backend, want := range tests {
		got, err := New(backend, "key")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", backend, err)
		}
		if gotType, wantType := typeName(got), typeName(want); gotType != wantType {
			t.Fatalf("%s: expected %s, got %s", backend, wantType, gotType)
		}
		if _, err := New(backend, " "); !errors.Is(err, provider.ErrUnavailable) {
			t.Fatalf("%s: expected ErrUnavailable without key, got %v", backend, err)
		}
	}
	if _, err := New("llama", "key"); !errors.Is(err, provider.ErrUnavailable) {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *GeminiClient:
		return "gemini"
	case *OpenAIClient:
		return "openai"
	case *ClaudeClient:
		return "claude"
	case *CohereClient:
		return "cohere"
	default:
		return "unknown"
	}
}

// modelServer answers path with reply after check accepts the request.
func modelServer(t *testing.T, path string, check func(r *http.Request, body map[string]any) bool, reply any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != path {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !check(r, body) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	}))
}

func TestGeminiClient_Generate(t *testing.T) {
	server := modelServer(t, "/v1beta/models/test-model:generateContent", func(r *http.Request, body map[string]any) bool {
		cfg, _ := body["generationConfig"].(map[string]any)
		schema, _ := cfg["responseSchema"].(map[string]any)
		return r.Header.Get("x-goog-api-key") == "key" &&
			cfg["responseMimeType"] == "application/json" &&
			schema["type"] == "ARRAY"
	}, map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{"parts": []map[string]any{{"text": oneLead}}},
		}},
	})
	defer server.Close()

	client, err := NewGeminiClient("key", WithModel("models/test-model"), WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := client.Generate(context.Background(), ghanaQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Name != "Adwoa Beauty Parlour" || records[0].Source != Source {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestClaudeClient_Generate(t *testing.T) {
	server := modelServer(t, "/v1/messages", func(r *http.Request, body map[string]any) bool {
		return r.Header.Get("x-api-key") == "key" &&
			r.Header.Get("anthropic-version") == claudeAPIVersion &&
			body["model"] == ClaudeDefaultModel &&
			body["max_tokens"] == float64(claudeMaxTokens)
	}, map[string]any{
		"content": []map[string]any{{"type": "text", "text": oneLead}},
	})
	defer server.Close()

	client, err := NewClaudeClient("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := client.Generate(context.Background(), ghanaQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Source != ClaudeSource {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestCohereClient_Generate(t *testing.T) {
	server := modelServer(t, "/v2/chat", func(r *http.Request, body map[string]any) bool {
		return r.Header.Get("Authorization") == "Bearer key" && body["model"] == "command-a"
	}, map[string]any{
		"message": map[string]any{"content": []map[string]any{{"type": "text", "text": oneLead}}},
	})
	defer server.Close()

	client, err := NewCohereClient("key", WithModel("command-a"), WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := client.Generate(context.Background(), ghanaQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Source != CohereSource {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestOpenAIClient_Generate(t *testing.T) {
	server := modelServer(t, "/v1/chat/completions", func(r *http.Request, body map[string]any) bool {
		format, _ := body["response_format"].(map[string]any)
		return r.Header.Get("Authorization") == "Bearer key" && format["type"] == "json_object"
	}, map[string]any{
		"choices": []map[string]any{{
			"message": map[string]any{"role": "assistant", "content": `{"businesses":` + oneLead + `}`},
		}},
	})
	defer server.Close()

	client, err := NewOpenAIClient("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := client.Generate(context.Background(), ghanaQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Source != OpenAISource {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestGenerate_HTTPError(t *testing.T) {
	tests := map[string]struct {
		body    string
		backend Backend
		message string
	}{
		"gemini nested": {body: `{"error":{"code":429,"message":"quota exceeded"}}`, backend: BackendGemini, message: "quota exceeded"},
		"claude nested": {body: `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, backend: BackendClaude, message: "slow down"},
		"cohere flat":   {body: `{"message":"too many requests"}`, backend: BackendCohere, message: "too many requests"},
		"plain text":    {body: "busy", backend: BackendOpenAI, message: "busy"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gen, err := New(tt.backend, "key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, err = gen.Generate(context.Background(), ghanaQuery)
			var respErr *provider.ResponseError
			if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusTooManyRequests {
				t.Fatalf("expected 429 response error, got %v", err)
			}
			if respErr.Message != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, respErr.Message)
			}
		})
	}
}

func TestGenerate_EmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = client.Generate(context.Background(), ghanaQuery)
	var respErr *provider.ResponseError
	if !errors.As(err, &respErr) || respErr.Provider != geminiName {
		t.Fatalf("expected empty response error, got %v", err)
	}
}
