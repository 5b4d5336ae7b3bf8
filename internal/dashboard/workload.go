package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vidiannovantry/datatracker/internal/domain"
)

// DefaultStalenessWindow is how long a document may sit in one state before it counts as stale.
const DefaultStalenessWindow = 120 * 24 * time.Hour

// Clock returns the current time.
type Clock func() time.Time

// DocumentSource supplies a responsible party's documents and their history.
type DocumentSource interface {
	EventSource
	DocumentsForResponsible(ctx context.Context, personID string) ([]domain.Document, error)
}

// Config holds workload computation settings.
type Config struct {
	StalenessWindow time.Duration
	Seeds           []Seed
}

// Aggregator computes per-party workload snapshots.
type Aggregator struct {
	source     DocumentSource
	classifier *Classifier
	clock      Clock
	logger     Logger
	window     time.Duration
	seeds      []Seed
}

// NewAggregator constructs a workload aggregator.
func NewAggregator(source DocumentSource, states StateLookup, clock Clock, logger Logger, cfg Config) *Aggregator {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = nopLogger{}
	}
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = DefaultStalenessWindow
	}
	if cfg.Seeds == nil {
		cfg.Seeds = DefaultSeeds()
	}
	return &Aggregator{
		source:     source,
		classifier: NewClassifier(states),
		clock:      clock,
		logger:     logger,
		window:     cfg.StalenessWindow,
		seeds:      cfg.Seeds,
	}
}

// Workload is one dashboard snapshot.
type Workload struct {
	Window     time.Duration
	ComputedAt time.Time
	Parties    []domain.Person
	Sections   []Section
}

// Section holds one group type's buckets, per-party rows, and column sums.
type Section struct {
	GroupType GroupType
	Buckets   []BucketHeader
	Rows      []PartyRow
	Sums      []BucketSum
}

// BucketHeader describes one column.
type BucketHeader struct {
	Key   BucketKey
	Short string
	Label string
	Trend Trend
}

// PartyRow holds one responsible party's cells aligned with the section's buckets.
type PartyRow struct {
	Party domain.Person
	Cells []Cell
}

// Cell counts one party's documents in one bucket.
// Diff lists documents that entered or left staleness, sorted by name.
type Cell struct {
	Bucket  BucketHeader
	Current int
	Prior   int
	Diff    []string
}

// BucketSum totals one column across parties.
type BucketSum struct {
	Bucket  BucketHeader
	Current int
	Prior   int
}

// docSet is a set of document names.
type docSet map[string]struct{}

// tally accumulates one party's counts for one group type, aligned with the registry.
type tally struct {
	current  []int
	prior    []int
	docNow   []docSet
	docPrior []docSet
	diff     []docSet
}

// pad grows every slice to n entries with zero counts and empty sets.
func (t *tally) pad(n int) {
	for len(t.current) < n {
		t.current = append(t.current, 0)
		t.prior = append(t.prior, 0)
		t.docNow = append(t.docNow, docSet{})
		t.docPrior = append(t.docPrior, docSet{})
	}
}

// partyTally holds one party's tallies keyed by group type.
type partyTally struct {
	party  domain.Person
	groups map[GroupType]*tally
}

func (p *partyTally) group(gt GroupType) *tally {
	t, ok := p.groups[gt]
	if !ok {
		t = &tally{}
		p.groups[gt] = t
	}
	return t
}

// Compute scans every party's documents, then reconciles all parties to the final registry.
func (a *Aggregator) Compute(ctx context.Context, parties []domain.Person) (Workload, error) {
	now := a.clock().UTC()
	registry := NewRegistry(a.seeds)

	tallies := make([]*partyTally, 0, len(parties))
	for _, party := range parties {
		pt, err := a.scanParty(ctx, registry, party, now)
		if err != nil {
			return Workload{}, err
		}
		tallies = append(tallies, pt)
	}

	reconcile(registry, tallies)

	out := Workload{
		Window:     a.window,
		ComputedAt: now,
		Parties:    append([]domain.Person(nil), parties...),
		Sections:   make([]Section, 0, len(TrackedGroupTypes())),
	}
	for _, gt := range TrackedGroupTypes() {
		out.Sections = append(out.Sections, buildSection(registry, gt, tallies))
	}
	a.logger.Debug("workload computed", "parties", len(parties), "window", a.window)
	return out, nil
}

// scanParty classifies one party's documents; the registry may grow.
func (a *Aggregator) scanParty(ctx context.Context, registry *Registry, party domain.Person, now time.Time) (*partyTally, error) {
	docs, err := a.source.DocumentsForResponsible(ctx, party.ID)
	if err != nil {
		return nil, fmt.Errorf("documents for %s: %w", party.ID, err)
	}
	pt := &partyTally{party: party, groups: map[GroupType]*tally{}}
	for _, doc := range docs {
		gt := GroupTypeOf(doc)
		if !IsTracked(gt) {
			continue
		}
		idx := registry.Index(gt, a.classifier.BucketOf(doc))
		t := pt.group(gt)
		t.pad(registry.Len(gt))
		t.current[idx]++
		t.docNow[idx][doc.Name] = struct{}{}

		stale, err := a.isStale(ctx, doc, now)
		if err != nil {
			return nil, err
		}
		if stale {
			t.prior[idx]++
			t.docPrior[idx][doc.Name] = struct{}{}
		}
	}
	return pt, nil
}

// isStale reports whether the document's last state transition is missing or older than the window.
func (a *Aggregator) isStale(ctx context.Context, doc domain.Document, now time.Time) (bool, error) {
	ev, ok, err := a.source.LatestEvent(ctx, doc.Name, domain.StateChangeEvents)
	if err != nil {
		return false, fmt.Errorf("latest state event for %s: %w", doc.Name, err)
	}
	if !ok {
		return true, nil
	}
	return now.Sub(ev.Time) > a.window, nil
}

// reconcile pads every party to the final registry size and computes diff sets.
func reconcile(registry *Registry, tallies []*partyTally) {
	for _, pt := range tallies {
		for _, gt := range TrackedGroupTypes() {
			t := pt.group(gt)
			n := registry.Len(gt)
			t.pad(n)
			t.diff = make([]docSet, n)
			for i := 0; i < n; i++ {
				t.diff[i] = symmetricDifference(t.docNow[i], t.docPrior[i])
			}
		}
	}
}

func symmetricDifference(a, b docSet) docSet {
	out := docSet{}
	for name := range a {
		if _, ok := b[name]; !ok {
			out[name] = struct{}{}
		}
	}
	for name := range b {
		if _, ok := a[name]; !ok {
			out[name] = struct{}{}
		}
	}
	return out
}

// buildSection renders one group type from reconciled tallies.
func buildSection(registry *Registry, gt GroupType, tallies []*partyTally) Section {
	buckets := registry.Buckets(gt)
	headers := make([]BucketHeader, len(buckets))
	for i, b := range buckets {
		headers[i] = BucketHeader{
			Key:   b.Key,
			Short: ShortenLabel(b.Label),
			Label: b.Label,
			Trend: registry.Trend(gt, i),
		}
	}
	section := Section{
		GroupType: gt,
		Buckets:   headers,
		Rows:      make([]PartyRow, 0, len(tallies)),
		Sums:      make([]BucketSum, len(headers)),
	}
	for i, h := range headers {
		section.Sums[i].Bucket = h
	}
	for _, pt := range tallies {
		t := pt.group(gt)
		row := PartyRow{Party: pt.party, Cells: make([]Cell, len(headers))}
		for i, h := range headers {
			row.Cells[i] = Cell{
				Bucket:  h,
				Current: t.current[i],
				Prior:   t.prior[i],
				Diff:    t.diff[i].sorted(),
			}
			section.Sums[i].Current += t.current[i]
			section.Sums[i].Prior += t.prior[i]
		}
		section.Rows = append(section.Rows, row)
	}
	return section
}

func (s docSet) sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
