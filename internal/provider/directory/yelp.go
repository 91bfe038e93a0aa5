package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/provider"
)

const (
	yelpName        = "Yelp"
	yelpDefaultURL  = "https://api.yelp.com"
	yelpSearchPath  = "/v3/businesses/search"
	yelpDefaultSize = 10
)

// YelpClient searches the Yelp Fusion business search. Yelp only covers
// the United States here; other countries return no records.
type YelpClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limit   int
}

// YelpOption configures a YelpClient.
type YelpOption func(*YelpClient)

// WithYelpBaseURL overrides the API host.
func WithYelpBaseURL(baseURL string) YelpOption {
	return func(c *YelpClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithYelpHTTPClient sets the HTTP client.
func WithYelpHTTPClient(client *http.Client) YelpOption {
	return func(c *YelpClient) {
		if client != nil {
			c.client = client
		}
	}
}

// NewYelpClient builds a client for the given API key.
func NewYelpClient(apiKey string, opts ...YelpOption) (*YelpClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("yelp: %w: missing api key", provider.ErrUnavailable)
	}
	c := &YelpClient{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: yelpDefaultURL,
		apiKey:  apiKey,
		limit:   yelpDefaultSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *YelpClient) Name() string { return yelpName }

type yelpBusiness struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	IsClosed    bool    `json:"is_closed"`
	Location    struct {
		Address1 string `json:"address1"`
	} `json:"location"`
}

// Search returns Yelp businesses for the query. Yelp exposes no business
// website, so every record qualifies as a no-website lead.
func (c *YelpClient) Search(ctx context.Context, q provider.Query) ([]provider.DirectoryRecord, error) {
	if q.Country != entity.CountryUnitedStates {
		return nil, nil
	}

	params := url.Values{}
	params.Set("term", fmt.Sprintf("%s %s", q.Industry, q.City))
	params.Set("location", q.City)
	params.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+yelpSearchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create yelp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yelp: %w: %v", provider.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &provider.ResponseError{Provider: yelpName, StatusCode: resp.StatusCode, Message: extractError(resp.Body)}
	}

	var payload struct {
		Businesses []yelpBusiness `json:"businesses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &provider.ResponseError{Provider: yelpName, Message: "could not decode response: " + err.Error()}
	}

	records := make([]provider.DirectoryRecord, 0, len(payload.Businesses))
	for _, b := range payload.Businesses {
		if strings.TrimSpace(b.Name) == "" {
			continue
		}
		active := !b.IsClosed && b.ReviewCount > 0
		records = append(records, provider.DirectoryRecord{
			Name:        b.Name,
			Phone:       b.Phone,
			Address:     b.Location.Address1,
			Rating:      b.Rating,
			ReviewCount: b.ReviewCount,
			Active:      &active,
			Source:      yelpName,
		})
	}
	return records, nil
}

var _ provider.DirectoryProvider = (*YelpClient)(nil)
