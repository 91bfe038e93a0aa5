// Package discovery runs the ordered provider fallback that turns a
// country/industry/city query into new, deduplicated and scored leads.
package discovery

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/metrics"
	"github.com/octobees/leads-generator/discovery/internal/provider"
	"github.com/octobees/leads-generator/discovery/internal/service/dedupe"
	"github.com/octobees/leads-generator/discovery/internal/service/scoring"
	"github.com/octobees/leads-generator/discovery/internal/service/verification"
)

// Fixed run contract. Callers word their messages around these values.
const (
	PrimaryDetailCap  = 10
	FallbackThreshold = 5
)

var (
	// ErrNoProviders is returned by New when the set has no adapter.
	ErrNoProviders = errors.New("no lead provider configured")
	// ErrInvalidQuery is returned by Run before any provider is queried.
	ErrInvalidQuery = errors.New("country, industry and city are required")
)

// State is a step of a discovery run.
type State int

const (
	StateIdle State = iota
	StateQueryingPrimary
	StateQueryingSecondary
	StateQueryingFallback
	StateAggregating
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQueryingPrimary:
		return "querying_primary"
	case StateQueryingSecondary:
		return "querying_secondary"
	case StateQueryingFallback:
		return "querying_fallback"
	case StateAggregating:
		return "aggregating"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome summarises how a run ended.
type Outcome string

const (
	OutcomeLeadsFound Outcome = "leads_found"
	OutcomeNoLeads    Outcome = "no_leads"
)

// Result is returned by Run.
type Result struct {
	NewLeads          []entity.Lead
	SkippedDuplicates int
	Outcome           Outcome
	Transitions       []State
	// Found counts candidates accumulated per provider kind, before
	// normalization and deduplication.
	Found     map[provider.Kind]int
	Cancelled bool
}

// FallbackUsed reports whether the run entered the fallback step.
func (r Result) FallbackUsed() bool {
	for _, s := range r.Transitions {
		if s == StateQueryingFallback {
			return true
		}
	}
	return false
}

// Orchestrator queries the configured providers in a fixed order.
type Orchestrator struct {
	places      provider.PlacesProvider
	directories []provider.DirectoryProvider
	generative  provider.GenerativeProvider

	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for per-step outcomes.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source used for DateAdded.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides lead id generation.
func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// New resolves the provider set once. It fails with ErrNoProviders when
// nothing is configured.
func New(set provider.Set, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		places:     set.Places,
		generative: set.Generative,
		logger:     zap.L(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, d := range set.Directories {
		if d != nil {
			o.directories = append(o.directories, d)
		}
	}
	if o.places == nil && len(o.directories) == 0 && o.generative == nil {
		return nil, ErrNoProviders
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

type run struct {
	query       provider.Query
	log         *zap.Logger
	accumulator []entity.Lead
	transitions []State
	found       map[provider.Kind]int
	cancelled   bool
}

func (r *run) enter(s State) {
	r.transitions = append(r.transitions, s)
}

func (r *run) add(kind provider.Kind, leads []entity.Lead) {
	if len(leads) == 0 {
		return
	}
	r.accumulator = append(r.accumulator, leads...)
	r.found[kind] += len(leads)
	metrics.RecordLeadsAccumulated(kind.String(), len(leads))
}

// interrupted marks the run cancelled once the context is done.
func (r *run) interrupted(ctx context.Context) bool {
	if ctx.Err() != nil {
		if !r.cancelled {
			r.log.Warn("discovery: run cancelled, aggregating partial results", zap.Error(ctx.Err()))
		}
		r.cancelled = true
	}
	return r.cancelled
}

// Run executes one discovery run. Provider failures are logged and
// skipped; existing is the persisted collection used for cross-run
// deduplication and verification.
func (o *Orchestrator) Run(ctx context.Context, q provider.Query, existing []entity.Lead) (Result, error) {
	q.City = strings.TrimSpace(q.City)
	if q.Country == "" || q.Industry == "" || q.City == "" {
		return Result{}, ErrInvalidQuery
	}

	r := &run{
		query: q,
		log: o.logger.With(
			zap.String("country", string(q.Country)),
			zap.String("industry", string(q.Industry)),
			zap.String("city", q.City),
		),
		transitions: []State{StateIdle},
		found:       map[provider.Kind]int{},
	}

	if !r.interrupted(ctx) {
		r.enter(StateQueryingPrimary)
		r.add(provider.KindPlaces, o.queryPrimary(ctx, r))
	}
	if !r.interrupted(ctx) {
		r.enter(StateQueryingSecondary)
		r.add(provider.KindDirectory, o.querySecondary(ctx, r))
	}
	if !r.interrupted(ctx) && len(r.accumulator) < FallbackThreshold {
		r.enter(StateQueryingFallback)
		r.add(provider.KindGenerative, o.queryFallback(ctx, r))
	}

	r.enter(StateAggregating)
	res := o.aggregate(r, existing)
	r.enter(StateDone)
	res.Transitions = r.transitions

	metrics.RecordDiscoveryRun(string(res.Outcome))
	r.log.Info("discovery: run finished",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("accumulated", len(r.accumulator)),
		zap.Int("new_leads", len(res.NewLeads)),
		zap.Int("skipped_duplicates", res.SkippedDuplicates),
		zap.Bool("cancelled", r.cancelled),
	)
	return res, nil
}

func (o *Orchestrator) queryPrimary(ctx context.Context, r *run) []entity.Lead {
	if o.places == nil {
		r.log.Debug("discovery: places provider not configured")
		return nil
	}

	start := time.Now()
	places, err := o.places.Search(ctx, r.query)
	if err != nil {
		o.providerFailed(r, provider.KindPlaces, "places", err)
		return nil
	}

	candidates := make([]provider.Place, 0, len(places))
	for _, p := range places {
		if p.Website == "" {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) > PrimaryDetailCap {
		candidates = candidates[:PrimaryDetailCap]
	}

	detailed := o.fetchDetails(ctx, r, candidates)

	leads := make([]entity.Lead, 0, len(detailed))
	for _, p := range detailed {
		if p.Website != "" {
			continue
		}
		if lead, ok := o.placeToLead(p, r.query); ok {
			leads = append(leads, lead)
		}
	}

	r.log.Info("discovery: places step finished",
		zap.Int("returned", len(places)),
		zap.Int("accepted", len(leads)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return leads
}

// fetchDetails enriches each place concurrently. A failed or empty detail
// lookup keeps the search record.
func (o *Orchestrator) fetchDetails(ctx context.Context, r *run, places []provider.Place) []provider.Place {
	out := make([]provider.Place, len(places))
	copy(out, places)

	var g errgroup.Group
	for i, p := range places {
		if p.ID == "" {
			continue
		}
		i, p := i, p
		g.Go(func() error {
			detail, err := o.places.FetchDetail(ctx, p.ID)
			if err != nil {
				metrics.RecordProviderError(provider.KindPlaces.String())
				r.log.Warn("discovery: place detail failed, using search record",
					zap.String("place_id", p.ID),
					zap.Error(err),
				)
				return nil
			}
			if detail != nil {
				if detail.ID == "" {
					detail.ID = p.ID
				}
				out[i] = *detail
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (o *Orchestrator) querySecondary(ctx context.Context, r *run) []entity.Lead {
	var leads []entity.Lead
	for _, dir := range o.directories {
		if r.interrupted(ctx) {
			break
		}
		records, err := dir.Search(ctx, r.query)
		if err != nil {
			o.providerFailed(r, provider.KindDirectory, dir.Name(), err)
			continue
		}
		accepted := 0
		for _, rec := range records {
			if lead, ok := o.recordToLead(rec, r.query, dir.Name()); ok {
				leads = append(leads, lead)
				accepted++
			}
		}
		r.log.Info("discovery: directory step finished",
			zap.String("directory", dir.Name()),
			zap.Int("returned", len(records)),
			zap.Int("accepted", accepted),
		)
	}
	return leads
}

func (o *Orchestrator) queryFallback(ctx context.Context, r *run) []entity.Lead {
	if o.generative == nil {
		r.log.Debug("discovery: generative provider not configured")
		return nil
	}
	records, err := o.generative.Generate(ctx, r.query)
	if err != nil {
		o.providerFailed(r, provider.KindGenerative, "generative", err)
		return nil
	}

	leads := make([]entity.Lead, 0, len(records))
	for _, rec := range records {
		rec.Website = ""
		if lead, ok := o.recordToLead(rec, r.query, GenerativeSource); ok {
			leads = append(leads, lead)
		}
	}
	r.log.Info("discovery: fallback step finished",
		zap.Int("returned", len(records)),
		zap.Int("accepted", len(leads)),
	)
	return leads
}

func (o *Orchestrator) providerFailed(r *run, kind provider.Kind, name string, err error) {
	metrics.RecordProviderError(kind.String())
	if errors.Is(err, provider.ErrUnavailable) {
		r.log.Info("discovery: provider unavailable, continuing",
			zap.String("provider", name),
			zap.Error(err),
		)
		return
	}
	r.log.Warn("discovery: provider failed, continuing",
		zap.String("provider", name),
		zap.Stringer("kind", kind),
		zap.Error(err),
	)
}

func (o *Orchestrator) aggregate(r *run, existing []entity.Lead) Result {
	res := Result{
		NewLeads:  []entity.Lead{},
		Outcome:   OutcomeNoLeads,
		Found:     r.found,
		Cancelled: r.cancelled,
	}
	if len(r.accumulator) == 0 {
		return res
	}
	res.Outcome = OutcomeLeadsFound

	normalized := make([]entity.Lead, 0, len(r.accumulator))
	for _, lead := range r.accumulator {
		normalized = append(normalized, NormalizeLead(lead))
	}

	merged := dedupe.Merge(normalized)
	retained := make([]entity.Lead, 0, len(merged))
	for _, lead := range merged {
		lead = scoring.Rescore(lead)
		if lead.HasWebsite {
			continue
		}
		retained = append(retained, lead)
	}

	unique, skipped := dedupe.FilterKnown(retained, existing)
	for _, lead := range unique {
		res.NewLeads = append(res.NewLeads, verification.Apply(lead, existing))
	}
	res.SkippedDuplicates = skipped
	metrics.RecordDuplicatesSkipped(skipped)
	return res
}
