package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/octobees/leads-generator/discovery/internal/provider"
)

const (
	backendSearchPath = "/api/directories/search"
	backendName       = "Directory Backend"
	defaultSource     = "Directory"
)

// BackendClient queries the directory scraping backend.
type BackendClient struct {
	client  *http.Client
	baseURL string
}

// NewBackendClient builds a backend client, auto-configuring an ID token
// client when none is given.
func NewBackendClient(client *http.Client, baseURL string) (*BackendClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("directory backend: %w: missing base url", provider.ErrUnavailable)
	}
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 15 * time.Second}
		} else {
			client = idc
		}
	}
	return &BackendClient{client: client, baseURL: baseURL}, nil
}

// Name identifies the provider in logs.
func (c *BackendClient) Name() string { return backendName }

type backendResult struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Address     string  `json:"address"`
	Website     string  `json:"website"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	Source      string  `json:"source"`
}

// Search posts the query to the backend and returns the records without a
// website.
func (c *BackendClient) Search(ctx context.Context, q provider.Query) ([]provider.DirectoryRecord, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal directory query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+backendSearchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create directory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID := provider.RequestIDFrom(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory backend: %w: %v", provider.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &provider.ResponseError{Provider: backendName, StatusCode: resp.StatusCode, Message: extractError(resp.Body)}
	}

	var payload struct {
		Results []backendResult `json:"results"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil && err != io.EOF {
		return nil, &provider.ResponseError{Provider: backendName, Message: "could not decode response: " + err.Error()}
	}
	if payload.Error != "" {
		return nil, &provider.ResponseError{Provider: backendName, Message: payload.Error}
	}

	records := make([]provider.DirectoryRecord, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.Website != "" || strings.TrimSpace(r.Name) == "" {
			continue
		}
		source := r.Source
		if source == "" {
			source = defaultSource
		}
		records = append(records, provider.DirectoryRecord{
			Name:        r.Name,
			Phone:       r.Phone,
			Email:       r.Email,
			Address:     r.Address,
			Rating:      r.Rating,
			ReviewCount: r.ReviewCount,
			Source:      source,
		})
	}
	return records, nil
}

func extractError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "directory backend returned an error"
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(data)
}

var _ provider.DirectoryProvider = (*BackendClient)(nil)
