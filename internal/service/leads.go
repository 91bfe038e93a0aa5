package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/leads-generator/discovery/internal/dto"
	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/provider"
	"github.com/octobees/leads-generator/discovery/internal/repository"
	"github.com/octobees/leads-generator/discovery/internal/service/discovery"
	"github.com/octobees/leads-generator/discovery/internal/service/scoring"
	"github.com/octobees/leads-generator/discovery/internal/service/verification"
)

// ValidationError indicates that a request carries invalid input.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// Discoverer runs one discovery pass against the configured providers.
type Discoverer interface {
	Run(ctx context.Context, q provider.Query, existing []entity.Lead) (discovery.Result, error)
}

// LeadsService coordinates discovery runs with the lead store.
type LeadsService struct {
	repo       repository.LeadsRepository
	discoverer Discoverer
	mx         EmailVerifier
	region     string
	logger     *zap.Logger
	now        func() time.Time
}

// LeadsOption configures a LeadsService.
type LeadsOption func(*LeadsService)

// WithEmailVerifier enables MX checks in the quality report.
func WithEmailVerifier(mx EmailVerifier) LeadsOption {
	return func(s *LeadsService) {
		s.mx = mx
	}
}

// WithPhoneRegion sets the region used to parse numbers of unknown countries.
func WithPhoneRegion(region string) LeadsOption {
	return func(s *LeadsService) {
		if strings.TrimSpace(region) != "" {
			s.region = strings.ToUpper(strings.TrimSpace(region))
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) LeadsOption {
	return func(s *LeadsService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for imported leads and exports.
func WithClock(now func() time.Time) LeadsOption {
	return func(s *LeadsService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewLeadsService creates a new instance of LeadsService. discoverer may
// be nil when no provider is configured; Discover then reports
// discovery.ErrNoProviders.
func NewLeadsService(repo repository.LeadsRepository, discoverer Discoverer, opts ...LeadsOption) *LeadsService {
	s := &LeadsService{
		repo:       repo,
		discoverer: discoverer,
		region:     "US",
		logger:     zap.L(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseQuery validates a discover request against the supported values.
func ParseQuery(req dto.DiscoverRequest) (provider.Query, error) {
	country, ok := entity.ParseCountry(req.Country)
	if !ok {
		return provider.Query{}, ValidationError{Message: fmt.Sprintf("unsupported country %q", req.Country)}
	}
	industry, ok := entity.ParseIndustry(req.Industry)
	if !ok {
		return provider.Query{}, ValidationError{Message: fmt.Sprintf("unsupported industry %q", req.Industry)}
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		return provider.Query{}, ValidationError{Message: "city is required"}
	}
	return provider.Query{Country: country, Industry: industry, City: city}, nil
}

// Discover runs the pipeline for q and stores the new leads. A cancelled
// run still stores the leads gathered before cancellation.
func (s *LeadsService) Discover(ctx context.Context, q provider.Query) (dto.DiscoverResponse, error) {
	if s.discoverer == nil {
		return dto.DiscoverResponse{}, discovery.ErrNoProviders
	}

	existing, err := s.repo.ListAll(ctx)
	if err != nil {
		return dto.DiscoverResponse{}, fmt.Errorf("load existing leads: %w", err)
	}

	result, err := s.discoverer.Run(ctx, q, existing)
	if err != nil {
		if errors.Is(err, discovery.ErrInvalidQuery) {
			return dto.DiscoverResponse{}, ValidationError{Message: err.Error()}
		}
		return dto.DiscoverResponse{}, err
	}

	added, err := s.repo.Insert(context.WithoutCancel(ctx), result.NewLeads)
	if err != nil {
		return dto.DiscoverResponse{}, fmt.Errorf("store leads: %w", err)
	}

	s.logger.Info("discovery stored",
		zap.String("country", string(q.Country)),
		zap.String("industry", string(q.Industry)),
		zap.String("city", q.City),
		zap.Int("added", added),
		zap.Int("skipped_duplicates", result.SkippedDuplicates),
		zap.Bool("cancelled", result.Cancelled),
	)
	return summarize(result, added), nil
}

func summarize(result discovery.Result, added int) dto.DiscoverResponse {
	resp := dto.DiscoverResponse{
		Outcome:           string(result.Outcome),
		Added:             added,
		SkippedDuplicates: result.SkippedDuplicates,
		FoundBySource:     make(map[string]int, len(result.Found)),
		Messages:          make([]string, 0, 5),
		Transitions:       make([]string, 0, len(result.Transitions)),
		Cancelled:         result.Cancelled,
	}
	for kind, n := range result.Found {
		resp.FoundBySource[kind.String()] = n
	}
	for _, st := range result.Transitions {
		resp.Transitions = append(resp.Transitions, st.String())
	}

	if n := result.Found[provider.KindPlaces]; n > 0 {
		resp.Messages = append(resp.Messages, fmt.Sprintf("Found %d businesses from Google Places", n))
	}
	if n := result.Found[provider.KindDirectory]; n > 0 {
		resp.Messages = append(resp.Messages, fmt.Sprintf("Found %d businesses from directories", n))
	}
	if n := result.Found[provider.KindGenerative]; n > 0 {
		resp.Messages = append(resp.Messages, fmt.Sprintf("Discovered %d additional leads using AI", n))
	}
	if result.Outcome == discovery.OutcomeNoLeads {
		resp.Messages = append(resp.Messages, "No leads found. Try different search parameters.")
		return resp
	}
	if result.SkippedDuplicates > 0 {
		resp.Messages = append(resp.Messages, fmt.Sprintf("Skipped %d duplicate lead(s)", result.SkippedDuplicates))
	}
	if added > 0 {
		resp.Messages = append(resp.Messages, fmt.Sprintf("Successfully added %d new lead(s) from multiple sources", added))
	} else {
		resp.Messages = append(resp.Messages, "No new leads to add. Everything found is already in the collection.")
	}
	return resp
}

// List returns one page of stored leads.
func (s *LeadsService) List(ctx context.Context, filter dto.ListFilter) (dto.LeadListResponse, error) {
	leads, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.LeadListResponse{}, err
	}

	page, perPage := filter.Page, filter.PerPage
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = repository.DefaultPerPage
	}
	perPage = min(perPage, repository.MaxPerPage)

	return dto.LeadListResponse{
		Leads:      leads,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: (total + perPage - 1) / perPage,
	}, nil
}

// Stats summarises the stored collection.
func (s *LeadsService) Stats(ctx context.Context) (entity.DiscoveryStats, error) {
	return s.repo.Stats(ctx)
}

// Clear removes every stored lead.
func (s *LeadsService) Clear(ctx context.Context) (int64, error) {
	removed, err := s.repo.Clear(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Warn("lead collection cleared", zap.Int64("removed", removed))
	return removed, nil
}

// QualityReport validates every stored lead.
func (s *LeadsService) QualityReport(ctx context.Context) (QualityReport, error) {
	leads, err := s.repo.ListAll(ctx)
	if err != nil {
		return QualityReport{}, err
	}
	return buildQualityReport(ctx, leads, s.region, s.mx), nil
}

// Verify checks an ad-hoc lead against the stored collection.
func (s *LeadsService) Verify(ctx context.Context, req dto.VerifyRequest) (verification.Result, error) {
	if strings.TrimSpace(req.Name) == "" {
		return verification.Result{}, ValidationError{Message: "name is required"}
	}
	country, ok := entity.ParseCountry(req.Country)
	if !ok {
		return verification.Result{}, ValidationError{Message: fmt.Sprintf("unsupported country %q", req.Country)}
	}

	lead := entity.Lead{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(req.Name),
		Country:         country,
		City:            strings.TrimSpace(req.City),
		Phone:           strings.TrimSpace(req.Phone),
		HasWebsite:      req.HasWebsite,
		IsActive:        req.IsActive,
		ReviewCount:     max(req.ReviewCount, 0),
		DirectorySource: strings.TrimSpace(req.DirectorySource),
		DateAdded:       s.now().UTC(),
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		lead.Email = &email
	}
	lead = scoring.Rescore(discovery.NormalizeLead(lead))

	existing, err := s.repo.ListAll(ctx)
	if err != nil {
		return verification.Result{}, err
	}
	return verification.Verify(lead, existing), nil
}
