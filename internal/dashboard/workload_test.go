package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidiannovantry/datatracker/internal/domain"
)

func sectionFor(t *testing.T, w Workload, gt GroupType) Section {
	t.Helper()
	for _, s := range w.Sections {
		if s.GroupType == gt {
			return s
		}
	}
	t.Fatalf("section %q missing", gt)
	return Section{}
}

func TestComputeZeroParties(t *testing.T) {
	agg := NewAggregator(&fakeSource{}, canonicalCatalog(), testClock, nil, Config{})
	w, err := agg.Compute(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, w.Parties)
	assert.Equal(t, DefaultStalenessWindow, w.Window)
	require.Len(t, w.Sections, len(TrackedGroupTypes()))
	want := map[GroupType]int{}
	for _, seed := range DefaultSeeds() {
		want[seed.GroupType]++
	}
	for _, s := range w.Sections {
		assert.Empty(t, s.Rows)
		assert.Len(t, s.Buckets, want[s.GroupType], "group %s", s.GroupType)
		assert.Len(t, s.Sums, want[s.GroupType])
	}
	id := sectionFor(t, w, GroupInternetDraft)
	assert.Equal(t, "Pub Req", id.Buckets[0].Short)
	assert.Equal(t, "Publication Requested Internet-Draft", id.Buckets[0].Label)
	assert.Equal(t, TrendBad, id.Buckets[0].Trend)
}

func TestComputeReconcilesBucketsDiscoveredByLaterParty(t *testing.T) {
	seeds := []Seed{
		{GroupType: GroupInternetDraft, Bucket: Bucket{Key: "draft-iesg/pub-req", Label: "A"}, Trend: TrendBad},
		{GroupType: GroupInternetDraft, Bucket: Bucket{Key: "draft-iesg/ad-eval", Label: "B"}, Trend: TrendBad},
	}
	recent := testNow.Add(-24 * time.Hour)
	source := &fakeSource{
		docs: map[string][]domain.Document{
			"y": {docWith(t, "draft-y", domain.DocTypeDraft, st(domain.StateTypeDraft, "active"), st(domain.StateTypeDraftIESG, "pub-req"))},
			"x": {docWith(t, "draft-x", domain.DocTypeDraft, st(domain.StateTypeDraft, "active"), st(domain.StateTypeDraftIESG, "iesg-eva"))},
		},
		events: map[string][]domain.DocEvent{
			"draft-y": {stateEvent("draft-y", recent)},
			"draft-x": {stateEvent("draft-x", recent)},
		},
	}
	agg := NewAggregator(source, canonicalCatalog(), testClock, nil, Config{Seeds: seeds})
	parties := []domain.Person{{ID: "y", Name: "Yan Young"}, {ID: "x", Name: "Xia Xu"}}
	w, err := agg.Compute(context.Background(), parties)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, source.calls)

	id := sectionFor(t, w, GroupInternetDraft)
	require.Len(t, id.Buckets, 3)
	assert.Equal(t, "IESG Evaluation Internet-Draft", id.Buckets[2].Label)
	assert.Equal(t, TrendNeutral, id.Buckets[2].Trend)

	require.Len(t, id.Rows, 2)
	for _, row := range id.Rows {
		assert.Len(t, row.Cells, len(id.Buckets), "party %s", row.Party.ID)
	}
	yRow, xRow := id.Rows[0], id.Rows[1]
	assert.Equal(t, "y", yRow.Party.ID)
	assert.Equal(t, 0, yRow.Cells[2].Current)
	assert.Equal(t, 0, yRow.Cells[2].Prior)
	assert.Empty(t, yRow.Cells[2].Diff)
	assert.Equal(t, 1, yRow.Cells[0].Current)
	assert.Equal(t, 1, xRow.Cells[2].Current)

	for _, s := range w.Sections {
		for _, row := range s.Rows {
			assert.Len(t, row.Cells, len(s.Buckets))
		}
	}
}

func TestComputeStalenessAndDiff(t *testing.T) {
	fresh := testNow.Add(-10 * 24 * time.Hour)
	old := testNow.Add(-200 * 24 * time.Hour)
	ad := st(domain.StateTypeDraftIESG, "ad-eval")
	active := st(domain.StateTypeDraft, "active")
	source := &fakeSource{
		docs: map[string][]domain.Document{
			"p1": {
				docWith(t, "draft-fresh", domain.DocTypeDraft, active, ad),
				docWith(t, "draft-old", domain.DocTypeDraft, active, ad),
				docWith(t, "draft-noevent", domain.DocTypeDraft, active, ad),
			},
		},
		events: map[string][]domain.DocEvent{
			"draft-fresh": {
				stateEvent("draft-fresh", old),
				stateEvent("draft-fresh", fresh),
				{ID: "n1", DocName: "draft-fresh", Type: domain.EventNewRevision, Time: testNow},
			},
			"draft-old": {
				stateEvent("draft-old", old),
				{ID: "n2", DocName: "draft-old", Type: domain.EventChangedDocument, Time: fresh},
			},
		},
	}
	agg := NewAggregator(source, canonicalCatalog(), testClock, nil, Config{})
	w, err := agg.Compute(context.Background(), []domain.Person{{ID: "p1", Name: "Pat One"}})
	require.NoError(t, err)

	id := sectionFor(t, w, GroupInternetDraft)
	idx := -1
	for i, b := range id.Buckets {
		if b.Key == "draft-iesg/ad-eval" {
			idx = i
		}
	}
	require.Equal(t, 1, idx)
	cell := id.Rows[0].Cells[idx]
	assert.Equal(t, 3, cell.Current)
	assert.Equal(t, 2, cell.Prior)
	assert.Equal(t, []string{"draft-fresh"}, cell.Diff)
	assert.Equal(t, 3, id.Sums[idx].Current)
	assert.Equal(t, 2, id.Sums[idx].Prior)
}

func TestComputeUsesConfiguredWindow(t *testing.T) {
	source := &fakeSource{
		docs: map[string][]domain.Document{
			"p1": {docWith(t, "conflict-review-a", domain.DocTypeConflRev, st(domain.StateTypeConflRev, "adrev"))},
		},
		events: map[string][]domain.DocEvent{
			"conflict-review-a": {{ID: "s", DocName: "conflict-review-a", Type: domain.EventStartedIESGProcess, Time: testNow.Add(-48 * time.Hour)}},
		},
	}
	agg := NewAggregator(source, canonicalCatalog(), testClock, nil, Config{StalenessWindow: 24 * time.Hour})
	w, err := agg.Compute(context.Background(), []domain.Person{{ID: "p1"}})
	require.NoError(t, err)

	cr := sectionFor(t, w, GroupConflictReview)
	assert.Equal(t, 1, cr.Rows[0].Cells[0].Current)
	assert.Equal(t, 1, cr.Rows[0].Cells[0].Prior)
	assert.Empty(t, cr.Rows[0].Cells[0].Diff)
}

func TestComputeSkipsUntrackedDocuments(t *testing.T) {
	source := &fakeSource{
		docs: map[string][]domain.Document{
			"p1": {
				docWith(t, "bofreq-a", domain.DocTypeBOFReq),
				docWith(t, "draft-dead", domain.DocTypeDraft, st(domain.StateTypeDraft, "active"), st(domain.StateTypeDraftIESG, "dead")),
				docWith(t, "draft-rfc", domain.DocTypeDraft, st(domain.StateTypeDraft, "rfc")),
			},
		},
	}
	agg := NewAggregator(source, canonicalCatalog(), testClock, nil, Config{})
	w, err := agg.Compute(context.Background(), []domain.Person{{ID: "p1"}})
	require.NoError(t, err)

	total := 0
	for _, s := range w.Sections {
		for _, sum := range s.Sums {
			total += sum.Current
		}
	}
	assert.Equal(t, 1, total)
	rfc := sectionFor(t, w, GroupRFC)
	assert.Equal(t, 1, rfc.Sums[1].Current)
	assert.Equal(t, 1, rfc.Sums[1].Prior)
}

func TestComputePropagatesStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	agg := NewAggregator(&fakeSource{err: boom}, canonicalCatalog(), testClock, nil, Config{})
	_, err := agg.Compute(context.Background(), []domain.Person{{ID: "p1"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSymmetricDifference(t *testing.T) {
	a := docSet{"x": {}, "y": {}}
	b := docSet{"y": {}, "z": {}}
	assert.Equal(t, []string{"x", "z"}, symmetricDifference(a, b).sorted())
	assert.Empty(t, symmetricDifference(docSet{}, docSet{}).sorted())
}
