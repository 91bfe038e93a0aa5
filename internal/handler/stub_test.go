package handler

import (
	"context"
	"sync"
	"time"

	"github.com/octobees/leads-generator/discovery/internal/dto"
	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/provider"
	"github.com/octobees/leads-generator/discovery/internal/service"
	"github.com/octobees/leads-generator/discovery/internal/service/discovery"
)

type stubLeadsRepo struct {
	mu         sync.Mutex
	leads      []entity.Lead
	lastFilter dto.ListFilter
	err        error
}

func (s *stubLeadsRepo) ListAll(ctx context.Context) ([]entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]entity.Lead(nil), s.leads...), nil
}

func (s *stubLeadsRepo) List(ctx context.Context, filter dto.ListFilter) ([]entity.Lead, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = filter
	if s.err != nil {
		return nil, 0, s.err
	}
	return append([]entity.Lead(nil), s.leads...), len(s.leads), nil
}

func (s *stubLeadsRepo) Insert(ctx context.Context, leads []entity.Lead) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.leads = append(s.leads, leads...)
	return len(leads), nil
}

func (s *stubLeadsRepo) Clear(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	n := int64(len(s.leads))
	s.leads = nil
	return n, nil
}

func (s *stubLeadsRepo) Stats(ctx context.Context) (entity.DiscoveryStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return entity.DiscoveryStats{}, s.err
	}
	return entity.ComputeStats(s.leads), nil
}

type stubDiscoverer struct {
	run func(ctx context.Context, q provider.Query, existing []entity.Lead) (discovery.Result, error)
}

func (s *stubDiscoverer) Run(ctx context.Context, q provider.Query, existing []entity.Lead) (discovery.Result, error) {
	return s.run(ctx, q, existing)
}

var testNow = func() time.Time { return time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC) }

func newTestLeadsService(repo *stubLeadsRepo, discoverer service.Discoverer) *service.LeadsService {
	return service.NewLeadsService(repo, discoverer, service.WithClock(testNow), service.WithPhoneRegion("GH"))
}

func sampleLead(id, name string) entity.Lead {
	return entity.Lead{
		ID:              id,
		Name:            name,
		Industry:        entity.IndustryFoodBeverage,
		Country:         entity.CountryGhana,
		City:            "Accra",
		Phone:           "024 123 4567",
		PhoneValid:      true,
		IsActive:        true,
		DirectorySource: "Google Places",
		ReviewCount:     7,
		LeadScore:       6,
		DateAdded:       testNow(),
	}
}
