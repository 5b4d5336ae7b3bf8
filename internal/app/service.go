package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vidiannovantry/datatracker/internal/dashboard"
	"github.com/vidiannovantry/datatracker/internal/domain"
)

// Service defaults.
const (
	DefaultMaxResults    = 1000
	DefaultMaxADResults  = 500
	DefaultCacheTTL      = 5 * time.Minute
	DefaultSlowCacheTTL  = 30 * time.Minute
	DefaultRecentDays    = 7
	maxSuggestionResults = 20
)

// ServiceConfig holds configuration for service. Zero values select defaults; a negative
// cache TTL disables that cache.
type ServiceConfig struct {
	StalenessWindow time.Duration
	MaxResults      int
	MaxADResults    int
	CacheTTL        time.Duration
	SlowCacheTTL    time.Duration
	Seeds           []dashboard.Seed
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Logger receives structured service diagnostics.
type Logger = dashboard.Logger

// Service represents the search, view, and dashboard operations.
type Service struct {
	repo            Repository
	idGen           IDGenerator
	clock           Clock
	logger          Logger
	metrics         *Metrics
	cache           *resultCache
	stalenessWindow time.Duration
	maxResults      int
	maxADResults    int
	cacheTTL        time.Duration
	slowCacheTTL    time.Duration
	seeds           []dashboard.Seed
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = dashboard.DefaultStalenessWindow
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.MaxADResults <= 0 {
		cfg.MaxADResults = DefaultMaxADResults
	}
	switch {
	case cfg.CacheTTL == 0:
		cfg.CacheTTL = DefaultCacheTTL
	case cfg.CacheTTL < 0:
		cfg.CacheTTL = 0
	}
	switch {
	case cfg.SlowCacheTTL == 0:
		cfg.SlowCacheTTL = DefaultSlowCacheTTL
	case cfg.SlowCacheTTL < 0:
		cfg.SlowCacheTTL = 0
	}
	if cfg.Seeds == nil {
		cfg.Seeds = dashboard.DefaultSeeds()
	}
	return &Service{
		repo:            repo,
		idGen:           idGen,
		clock:           clock,
		logger:          nopLogger{},
		cache:           newResultCache(clock),
		stalenessWindow: cfg.StalenessWindow,
		maxResults:      cfg.MaxResults,
		maxADResults:    cfg.MaxADResults,
		cacheTTL:        cfg.CacheTTL,
		slowCacheTTL:    cfg.SlowCacheTTL,
		seeds:           cfg.Seeds,
	}
}

// WithLogger attaches a logger; nil restores the no-op logger.
func (s *Service) WithLogger(logger Logger) *Service {
	if logger == nil {
		logger = nopLogger{}
	}
	s.logger = logger
	return s
}

// WithMetrics attaches Prometheus collectors.
func (s *Service) WithMetrics(m *Metrics) *Service {
	s.metrics = m
	return s
}

// PurgeCache drops cached search and view results.
func (s *Service) PurgeCache() {
	s.cache.purge()
}

// Ready reports whether the store answers a cheap query.
func (s *Service) Ready(ctx context.Context) error {
	if _, err := s.repo.ListStates(ctx, domain.StateTypeDraft); err != nil {
		return fmt.Errorf("list states: %w", err)
	}
	return nil
}

// stateCatalog loads the canonical state rows for one request.
func (s *Service) stateCatalog(ctx context.Context) (*domain.StateCatalog, error) {
	states, err := s.repo.ListStates(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	return domain.NewStateCatalog(states), nil
}

// storeSource adapts the repository to the dashboard's document source.
type storeSource struct {
	svc *Service
}

// DocumentsForResponsible runs the dashboard query for one responsible party: every draft
// state plus every searchable non-draft type.
func (src storeSource) DocumentsForResponsible(ctx context.Context, personID string) ([]domain.Document, error) {
	q := responsibleQuery(personID, "").Clean()
	return src.svc.retrieve(ctx, q)
}

// LatestEvent returns the newest event of the given types, reporting false when none exists.
func (src storeSource) LatestEvent(ctx context.Context, docName string, types []domain.EventType) (domain.DocEvent, bool, error) {
	ev, err := src.svc.repo.LatestDocEvent(ctx, docName, types)
	if errors.Is(err, ErrNotFound) {
		return domain.DocEvent{}, false, nil
	}
	if err != nil {
		return domain.DocEvent{}, false, err
	}
	return ev, true, nil
}

// responsibleQuery selects every document assigned to one responsible party.
func responsibleQuery(personID, sort string) SearchQuery {
	return SearchQuery{
		By:           SearchByAD,
		AD:           personID,
		RFCs:         true,
		ActiveDrafts: true,
		OldDrafts:    true,
		DocTypes:     domain.SearchableDocTypes(),
		Sort:         sort,
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
