// Package places adapts the Google Places API (New) to provider.PlacesProvider.
package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	placesapi "google.golang.org/api/places/v1"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/provider"
)

const (
	searchFieldMask = "places.id,places.displayName,places.formattedAddress,places.nationalPhoneNumber," +
		"places.internationalPhoneNumber,places.websiteUri,places.userRatingCount,places.businessStatus,places.googleMapsUri"
	detailFieldMask = "id,displayName,formattedAddress,nationalPhoneNumber,internationalPhoneNumber," +
		"websiteUri,userRatingCount,businessStatus,googleMapsUri"

	defaultPageSize = 20
	anyType         = "establishment"
)

var placeTypes = map[entity.Industry]string{
	entity.IndustrySalonsSpas:     "beauty_salon",
	entity.IndustryBeautyWellness: "beauty_salon",
	entity.IndustryFoodBeverage:   "restaurant",
	entity.IndustryClinics:        "doctor",
	entity.IndustryFashionRetail:  "clothing_store",
	entity.IndustryLogistics:      "storage",
	entity.IndustryProfessional:   "lawyer",
	entity.IndustrySMEs:           anyType,
	entity.IndustryLocalServices:  anyType,
}

// PlaceType maps an industry to a Places type, "establishment" when
// there is no closer match.
func PlaceType(industry entity.Industry) string {
	if t, ok := placeTypes[industry]; ok {
		return t
	}
	return anyType
}

// Client queries text search and place details.
type Client struct {
	svc      *placesapi.Service
	pageSize int64
}

// Option configures the Client.
type Option func(*clientOptions)

type clientOptions struct {
	endpoint   string
	httpClient *http.Client
	pageSize   int64
}

// WithEndpoint overrides the API base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) {
		o.endpoint = endpoint
	}
}

// WithHTTPClient sets the transport used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithPageSize limits the number of search results requested.
func WithPageSize(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.pageSize = int64(n)
		}
	}
}

// NewClient builds a Places client authenticated with an API key.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("places: %w: missing api key", provider.ErrUnavailable)
	}

	cfg := clientOptions{pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	apiOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, option.WithHTTPClient(cfg.httpClient))
	}
	if cfg.endpoint != "" {
		apiOpts = append(apiOpts, option.WithEndpoint(cfg.endpoint))
	}

	svc, err := placesapi.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("places: create service: %w", err)
	}
	return &Client{svc: svc, pageSize: cfg.pageSize}, nil
}

// Search runs a text search for the industry in the query's city.
func (c *Client) Search(ctx context.Context, q provider.Query) ([]provider.Place, error) {
	req := &placesapi.GoogleMapsPlacesV1SearchTextRequest{
		TextQuery: fmt.Sprintf("%s in %s, %s", q.Industry, q.City, q.Country),
		PageSize:  c.pageSize,
	}
	if t := PlaceType(q.Industry); t != anyType {
		req.IncludedType = t
	}

	call := c.svc.Places.SearchText(req).Context(ctx)
	call.Header().Set("X-Goog-FieldMask", searchFieldMask)
	resp, err := call.Do()
	if err != nil {
		return nil, wrapError(err)
	}

	out := make([]provider.Place, 0, len(resp.Places))
	for _, p := range resp.Places {
		if p == nil {
			continue
		}
		out = append(out, toPlace(p))
	}
	return out, nil
}

// FetchDetail loads one place. Unknown ids return nil without error.
func (c *Client) FetchDetail(ctx context.Context, id string) (*provider.Place, error) {
	name := id
	if !strings.HasPrefix(name, "places/") {
		name = "places/" + id
	}

	call := c.svc.Places.Get(name).Context(ctx)
	call.Header().Set("X-Goog-FieldMask", detailFieldMask)
	p, err := call.Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, wrapError(err)
	}
	place := toPlace(p)
	return &place, nil
}

func toPlace(p *placesapi.GoogleMapsPlacesV1Place) provider.Place {
	place := provider.Place{
		ID:                p.Id,
		Phone:             p.NationalPhoneNumber,
		Website:           p.WebsiteUri,
		Address:           p.FormattedAddress,
		MapsURL:           p.GoogleMapsUri,
		RatingCount:       int(p.UserRatingCount),
		OperationalStatus: p.BusinessStatus,
	}
	if place.Phone == "" {
		place.Phone = p.InternationalPhoneNumber
	}
	if p.DisplayName != nil {
		place.Name = p.DisplayName.Text
	}
	return place
}

func wrapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &provider.ResponseError{Provider: "Google Places", StatusCode: gerr.Code, Message: gerr.Message}
	}
	return fmt.Errorf("places: %w: %v", provider.ErrUnavailable, err)
}

var _ provider.PlacesProvider = (*Client)(nil)
