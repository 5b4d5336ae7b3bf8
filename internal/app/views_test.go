package app

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vidiannovantry/datatracker/internal/dashboard"
	"github.com/vidiannovantry/datatracker/internal/domain"
)

func personNames(persons []domain.Person) []string {
	out := make([]string, 0, len(persons))
	for _, p := range persons {
		out = append(out, p.Name)
	}
	return out
}

func TestActiveADsAndResponsibleParties(t *testing.T) {
	svc := newTestService(corpus(t))
	ads, err := svc.ActiveADs(context.Background())
	if err != nil {
		t.Fatalf("ActiveADs() error = %v", err)
	}
	if got, want := personNames(ads), []string{"Alice Example", "Bob Sample"}; !slices.Equal(got, want) {
		t.Fatalf("ActiveADs() = %v, want %v", got, want)
	}

	parties, err := svc.ResponsibleParties(context.Background())
	if err != nil {
		t.Fatalf("ResponsibleParties() error = %v", err)
	}
	if got, want := personNames(parties), []string{"Alice Example", "Bob Sample", "Dan Former"}; !slices.Equal(got, want) {
		t.Fatalf("ResponsibleParties() = %v, want %v", got, want)
	}
}

func TestDocsForADRanksAndFilters(t *testing.T) {
	svc := newTestService(corpus(t))
	cases := []struct {
		key      string
		names    []string
		headings []string
	}{
		{
			key:      "alice.example",
			names:    []string{"draft-ietf-tls-foo", "draft-ietf-tls-bar", "charter-ietf-tls"},
			headings: []string{"In Last Call Internet-Draft", "RFC", "Approved Charter"},
		},
		{
			key:      "Bob.Sample",
			names:    []string{"draft-ops-eval", "draft-smith-old-thing"},
			headings: []string{"IESG Evaluation Internet-Draft", "Expired Internet-Draft"},
		},
		{
			key:      "dan.former",
			names:    []string{"conflict-review-smith-thing"},
			headings: []string{"AD Review Conflict Review"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			got, err := svc.DocsForAD(context.Background(), tc.key)
			if err != nil {
				t.Fatalf("DocsForAD() error = %v", err)
			}
			if names := resultNames(got.Rows); !slices.Equal(names, tc.names) {
				t.Fatalf("DocsForAD() rows = %v, want %v", names, tc.names)
			}
			headings := make([]string, 0, len(got.Rows))
			for _, row := range got.Rows {
				headings = append(headings, row.SearchHeading)
			}
			if !slices.Equal(headings, tc.headings) {
				t.Fatalf("DocsForAD() headings = %v, want %v", headings, tc.headings)
			}
		})
	}
}

func TestDocsForADUnknown(t *testing.T) {
	svc := newTestService(corpus(t))
	if _, err := svc.DocsForAD(context.Background(), "carol.writer"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DocsForAD() error = %v, want ErrNotFound", err)
	}
}

func TestDocsForADTruncates(t *testing.T) {
	svc := NewService(corpus(t), nil, func() time.Time { return testNow }, ServiceConfig{MaxADResults: 1})
	got, err := svc.DocsForAD(context.Background(), "alice.example")
	if err != nil {
		t.Fatalf("DocsForAD() error = %v", err)
	}
	if !got.Truncated || len(got.Rows) > 1 {
		t.Fatalf("expected truncated list, got truncated=%t rows=%d", got.Truncated, len(got.Rows))
	}
}

func findCell(t *testing.T, w dashboard.Workload, gt dashboard.GroupType, party string, key dashboard.BucketKey) dashboard.Cell {
	t.Helper()
	for _, section := range w.Sections {
		if section.GroupType != gt {
			continue
		}
		for _, row := range section.Rows {
			if row.Party.ID != party {
				continue
			}
			for _, cell := range row.Cells {
				if cell.Bucket.Key == key {
					return cell
				}
			}
		}
	}
	t.Fatalf("no cell for %s/%s/%s", gt, party, key)
	return dashboard.Cell{}
}

func TestADWorkload(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	svc := newTestService(corpus(t)).WithMetrics(metrics)

	w, err := svc.ADWorkload(context.Background())
	if err != nil {
		t.Fatalf("ADWorkload() error = %v", err)
	}
	if got, want := personNames(w.Parties), []string{"Alice Example", "Bob Sample"}; !slices.Equal(got, want) {
		t.Fatalf("ADWorkload() parties = %v, want %v", got, want)
	}
	if len(w.Sections) != len(dashboard.TrackedGroupTypes()) {
		t.Fatalf("expected %d sections, got %d", len(dashboard.TrackedGroupTypes()), len(w.Sections))
	}
	if w.Window != dashboard.DefaultStalenessWindow || !w.ComputedAt.Equal(testNow) {
		t.Fatalf("unexpected window/time %s %s", w.Window, w.ComputedAt)
	}

	lc := findCell(t, w, dashboard.GroupInternetDraft, "p1", "draft-iesg/lc")
	if lc.Current != 1 || lc.Prior != 0 || !slices.Equal(lc.Diff, []string{"draft-ietf-tls-foo"}) {
		t.Fatalf("unexpected last-call cell %#v", lc)
	}
	eval := findCell(t, w, dashboard.GroupInternetDraft, "p2", "draft-iesg/iesg-eva")
	if eval.Current != 1 || eval.Prior != 1 || len(eval.Diff) != 0 {
		t.Fatalf("unexpected evaluation cell %#v", eval)
	}
	rfc := findCell(t, w, dashboard.GroupRFC, "p1", dashboard.KeyRFC)
	if rfc.Current != 1 || rfc.Prior != 1 {
		t.Fatalf("unexpected rfc cell %#v", rfc)
	}

	if got := testutil.ToFloat64(metrics.workloadDocs); got != 5 {
		t.Fatalf("workload documents gauge = %v, want 5", got)
	}
	if got := testutil.CollectAndCount(metrics.viewDuration); got != 1 {
		t.Fatalf("expected one view duration series, got %d", got)
	}
}

func TestDraftsInLastCall(t *testing.T) {
	svc := newTestService(corpus(t))
	got, err := svc.DraftsInLastCall(context.Background())
	if err != nil {
		t.Fatalf("DraftsInLastCall() error = %v", err)
	}
	if names := resultNames(got.Rows); !slices.Equal(names, []string{"draft-ietf-tls-foo"}) || got.Pages != 20 {
		t.Fatalf("DraftsInLastCall() = %v pages=%d", names, got.Pages)
	}
}

func TestDraftsInIESGProcess(t *testing.T) {
	repo := corpus(t)
	second, _ := domain.NewDocument(domain.DocumentInput{
		Name: "draft-ietf-tls-baz", Type: domain.DocTypeDraft, ResponsibleID: "p1", Time: testNow,
		States: repo.documents["draft-ietf-tls-foo"].States,
	})
	_ = repo.UpsertDocument(context.Background(), second)
	svc := newTestService(repo)

	groups, err := svc.DraftsInIESGProcess(context.Background())
	if err != nil {
		t.Fatalf("DraftsInIESGProcess() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 state groups, got %d", len(groups))
	}
	if groups[0].State.Slug != domain.IESGLastCall || groups[1].State.Slug != domain.IESGEval {
		t.Fatalf("unexpected group order %s, %s", groups[0].State.Slug, groups[1].State.Slug)
	}
	lc := groups[0].Rows
	if names := resultNames(lc); !slices.Equal(names, []string{"draft-ietf-tls-baz", "draft-ietf-tls-foo"}) {
		t.Fatalf("last call rows = %v", names)
	}
	if lc[0].LastCallExpires == nil || lc[0].LastCallExpires.Year() != 1950 {
		t.Fatalf("expected fallback expiry for draft without last call event, got %v", lc[0].LastCallExpires)
	}
	if want := testNow.Add(10 * 24 * time.Hour); lc[1].LastCallExpires == nil || !lc[1].LastCallExpires.Equal(want) {
		t.Fatalf("expected expiry %s, got %v", want, lc[1].LastCallExpires)
	}
}

func TestRecentDrafts(t *testing.T) {
	repo := corpus(t)
	svc := newTestService(repo)
	got, err := svc.RecentDrafts(context.Background(), DefaultRecentDays)
	if err != nil {
		t.Fatalf("RecentDrafts() error = %v", err)
	}
	if names := resultNames(got.Rows); !slices.Equal(names, []string{"draft-ietf-tls-foo", "draft-ops-eval"}) {
		t.Fatalf("RecentDrafts() rows = %v", names)
	}
	if got.Pages != 32 || got.Days != DefaultRecentDays {
		t.Fatalf("unexpected pages/days %d/%d", got.Pages, got.Days)
	}

	calls := repo.listDocumentsCalls
	if _, err := svc.RecentDrafts(context.Background(), DefaultRecentDays); err != nil {
		t.Fatalf("RecentDrafts() error = %v", err)
	}
	if repo.listDocumentsCalls != calls {
		t.Fatal("expected second call to be served from cache")
	}

	if _, err := svc.RecentDrafts(context.Background(), 0); !errors.Is(err, ErrInvalidDays) {
		t.Fatalf("RecentDrafts(0) error = %v, want ErrInvalidDays", err)
	}
}

func TestIndexAllDrafts(t *testing.T) {
	svc := newTestService(corpus(t))
	cats, err := svc.IndexAllDrafts(context.Background())
	if err != nil {
		t.Fatalf("IndexAllDrafts() error = %v", err)
	}
	if len(cats) != len(draftIndexStates) {
		t.Fatalf("expected %d categories, got %d", len(draftIndexStates), len(cats))
	}
	want := map[string]struct {
		heading string
		names   []string
	}{
		domain.DraftActive:  {"Active Internet-Drafts", []string{"draft-ietf-tls-dead", "draft-ietf-tls-foo", "draft-ops-eval"}},
		domain.DraftRFC:     {"RFCs", []string{"RFC9000"}},
		domain.DraftExpired: {"Expired Internet-Drafts", []string{"draft-smith-old-thing"}},
		domain.DraftAuthRm:  {"Internet-Drafts Withdrawn by Submitter", []string{}},
	}
	for _, cat := range cats {
		w, ok := want[cat.State.Slug]
		if !ok {
			continue
		}
		if cat.Heading != w.heading || !slices.Equal(cat.Names, w.names) {
			t.Fatalf("category %s = %q %v, want %q %v", cat.State.Slug, cat.Heading, cat.Names, w.heading, w.names)
		}
	}
}

func TestIndexActiveDraftsGroupsByGroup(t *testing.T) {
	repo := corpus(t)
	var active domain.State
	for _, st := range repo.states {
		if st.Type == domain.StateTypeDraft && st.Slug == domain.DraftActive {
			active = st
		}
	}
	doc, err := domain.NewDocument(domain.DocumentInput{
		Name: "draft-jones-solo", Type: domain.DocTypeDraft, Title: "Solo Work", Rev: "00",
		Time: testNow, States: []domain.State{active},
	})
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	_ = repo.UpsertDocument(context.Background(), doc)
	svc := newTestService(repo)

	groups, err := svc.IndexActiveDrafts(context.Background())
	if err != nil {
		t.Fatalf("IndexActiveDrafts() error = %v", err)
	}
	type group struct {
		acronym, name string
		docs          []string
	}
	want := []group{
		{"gone", "Gone Working Group", []string{"draft-ops-eval"}},
		{"tls", "Transport Layer Security", []string{"draft-ietf-tls-dead", "draft-ietf-tls-foo"}},
		{"", "Individual Submissions", []string{"draft-jones-solo"}},
	}
	if len(groups) != len(want) {
		t.Fatalf("IndexActiveDrafts() returned %d groups, want %d", len(groups), len(want))
	}
	for i, w := range want {
		got := groups[i]
		if got.Acronym != w.acronym || got.Name != w.name || !slices.Equal(resultNames(got.Rows), w.docs) {
			t.Fatalf("group %d = %q %q %v, want %q %q %v", i, got.Acronym, got.Name, resultNames(got.Rows), w.acronym, w.name, w.docs)
		}
	}

	calls := repo.listDocumentsCalls
	if _, err := svc.IndexActiveDrafts(context.Background()); err != nil {
		t.Fatalf("IndexActiveDrafts() error = %v", err)
	}
	if repo.listDocumentsCalls != calls {
		t.Fatal("expected second call to be served from cache")
	}
}

func TestIndexNamesOrdersRFCsNewestFirst(t *testing.T) {
	got := indexNames([]AliasRow{
		{Name: "draft-a", DocName: "draft-a"},
		{Name: "rfc100", DocName: "draft-a"},
		{Name: "draft-b", DocName: "draft-b"},
		{Name: "rfc2000", DocName: "draft-b"},
	})
	if want := []string{"RFC2000", "RFC100"}; !slices.Equal(got, want) {
		t.Fatalf("indexNames() = %v, want %v", got, want)
	}
	if RFCIndexKey(2000) >= RFCIndexKey(100) {
		t.Fatal("expected newer RFC keys to sort first")
	}
}

func TestSuggestDocuments(t *testing.T) {
	svc := newTestService(corpus(t))
	got, err := svc.SuggestDocuments(context.Background(), "TLS fo", domain.DocTypeDraft)
	if err != nil {
		t.Fatalf("SuggestDocuments() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "draft-ietf-tls-foo" {
		t.Fatalf("SuggestDocuments() = %#v", got)
	}
	empty, err := svc.SuggestDocuments(context.Background(), "   ", domain.DocTypeDraft)
	if err != nil || len(empty) != 0 {
		t.Fatalf("SuggestDocuments(blank) = %#v, %v", empty, err)
	}
	if _, err := svc.SuggestDocuments(context.Background(), "x", "recipe"); !errors.Is(err, ErrInvalidSearch) {
		t.Fatalf("SuggestDocuments(bad type) error = %v, want ErrInvalidSearch", err)
	}
}

func TestSuggestAliasesMatchesRFCAliases(t *testing.T) {
	svc := newTestService(corpus(t))
	docs, err := svc.SuggestDocuments(context.Background(), "rfc90", domain.DocTypeDraft)
	if err != nil || len(docs) != 0 {
		t.Fatalf("SuggestDocuments(rfc90) = %#v, %v; want no document names", docs, err)
	}
	got, err := svc.SuggestAliases(context.Background(), "rfc90", domain.DocTypeDraft)
	if err != nil {
		t.Fatalf("SuggestAliases() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "rfc9000" || got[0].Text != "rfc9000" {
		t.Fatalf("SuggestAliases() = %#v", got)
	}
	charters, err := svc.SuggestAliases(context.Background(), "tls", domain.DocTypeCharter)
	if err != nil || len(charters) != 1 || charters[0].ID != "charter-ietf-tls" {
		t.Fatalf("SuggestAliases(charter) = %#v, %v", charters, err)
	}
	if _, err := svc.SuggestAliases(context.Background(), "x", "recipe"); !errors.Is(err, ErrInvalidSearch) {
		t.Fatalf("SuggestAliases(bad type) error = %v, want ErrInvalidSearch", err)
	}
}

func TestResolveName(t *testing.T) {
	svc := newTestService(corpus(t))
	cases := []struct {
		input    string
		name     string
		rev      string
		location string
	}{
		{input: "draft-ietf-tls-foo.txt", name: "draft-ietf-tls-foo", location: "/doc/draft-ietf-tls-foo/"},
		{input: "RFC9000", name: "rfc9000", location: "/doc/rfc9000/"},
		{input: "tls-fo", name: "draft-ietf-tls-foo", location: "/doc/draft-ietf-tls-foo/"},
		{input: "draft-ietf-tls-foo-02", name: "draft-ietf-tls-foo", rev: "02", location: "/doc/draft-ietf-tls-foo/02/"},
		{input: "draft-ietf-tls-foo-05", name: "draft-ietf-tls-foo", location: "/doc/draft-ietf-tls-foo/"},
		{input: "draft-ietf-tls", location: "/search?activedrafts=on&name=draft-ietf-tls&olddrafts=on&rfcs=on"},
		{input: "charter-ietf", location: "/search?doctypes=charter&name=charter-ietf"},
		{input: "zzz", location: "/search?activedrafts=on&name=zzz&olddrafts=on&rfcs=on"},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := svc.ResolveName(context.Background(), tc.input)
			if err != nil {
				t.Fatalf("ResolveName() error = %v", err)
			}
			if got.Name != tc.name || got.Rev != tc.rev || got.Location != tc.location {
				t.Fatalf("ResolveName(%q) = %#v", tc.input, got)
			}
			if (tc.name == "") != (got.Query != nil) {
				t.Fatalf("expected a search query only for unresolved names, got %#v", got.Query)
			}
			if got.Input != tc.input {
				t.Fatalf("expected input %q to be echoed, got %q", tc.input, got.Input)
			}
		})
	}

	if _, err := svc.ResolveName(context.Background(), " "); !errors.Is(err, ErrInvalidSearch) {
		t.Fatalf("ResolveName(blank) error = %v, want ErrInvalidSearch", err)
	}
}
