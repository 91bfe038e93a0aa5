// Package provider defines the contracts of the lead sources queried by a
// discovery run. Adapters live in the places, directory and generative
// subpackages.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/octobees/leads-generator/discovery/internal/entity"
)

// ErrUnavailable reports a provider that is not configured or cannot be
// reached.
var ErrUnavailable = errors.New("provider unavailable")

// ResponseError reports an HTTP error status or a malformed response body.
type ResponseError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Query selects the market searched by a discovery run.
type Query struct {
	Country  entity.Country  `json:"country"`
	Industry entity.Industry `json:"industry"`
	City     string          `json:"city"`
}

// Place is a raw record from a places lookup.
type Place struct {
	ID                string
	Name              string
	Phone             string
	Website           string
	Address           string
	MapsURL           string
	RatingCount       int
	OperationalStatus string
}

// StatusOperational is the operational status of an open business.
const StatusOperational = "OPERATIONAL"

// DirectoryRecord is a raw record from a directory or the generative
// fallback.
type DirectoryRecord struct {
	Name           string
	Phone          string
	Email          string
	EmailSource    entity.EmailSource
	Address        string
	Website        string
	Rating         float64
	ReviewCount    int
	Active         *bool
	LastReviewDate *time.Time
	MapsURL        string
	Source         string
}

// PlacesProvider is the primary, maps-style lookup.
type PlacesProvider interface {
	Search(ctx context.Context, q Query) ([]Place, error)
	// FetchDetail returns nil without error when the place is unknown.
	FetchDetail(ctx context.Context, id string) (*Place, error)
}

// DirectoryProvider searches one business directory. Records are already
// filtered to businesses without a website.
type DirectoryProvider interface {
	Name() string
	Search(ctx context.Context, q Query) ([]DirectoryRecord, error)
}

// GenerativeProvider synthesizes plausible candidates when real sources
// come back thin.
type GenerativeProvider interface {
	Generate(ctx context.Context, q Query) ([]DirectoryRecord, error)
}

// Kind enumerates the provider categories a run can query.
type Kind int

const (
	KindPlaces Kind = iota
	KindDirectory
	KindGenerative
)

func (k Kind) String() string {
	switch k {
	case KindPlaces:
		return "places"
	case KindDirectory:
		return "directory"
	case KindGenerative:
		return "generative"
	default:
		return "unknown"
	}
}

// Set holds the adapters configured for a deployment. Nil members are
// skipped.
type Set struct {
	Places      PlacesProvider
	Directories []DirectoryProvider
	Generative  GenerativeProvider
}

// Kinds lists the configured provider kinds in query order.
func (s Set) Kinds() []Kind {
	var kinds []Kind
	if s.Places != nil {
		kinds = append(kinds, KindPlaces)
	}
	if len(s.Directories) > 0 {
		kinds = append(kinds, KindDirectory)
	}
	if s.Generative != nil {
		kinds = append(kinds, KindGenerative)
	}
	return kinds
}

// Empty reports whether no provider is configured.
func (s Set) Empty() bool {
	return len(s.Kinds()) == 0
}

type requestIDKey struct{}

// WithRequestID attaches a request id that adapters forward upstream.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFrom returns the request id attached to ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
