package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vidiannovantry/datatracker/internal/domain"
)

func TestExportImportSnapshotRoundTrip(t *testing.T) {
	src := newTestService(corpus(t))
	snap, err := src.ExportSnapshot(context.Background())
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if snap.Version != SnapshotVersion || !snap.ExportedAt.Equal(testNow) {
		t.Fatalf("unexpected header %q %s", snap.Version, snap.ExportedAt)
	}
	if len(snap.Persons) != 4 || len(snap.Groups) != 4 || len(snap.Roles) != 3 || len(snap.Documents) != 8 || len(snap.Events) != 6 {
		t.Fatalf("unexpected snapshot sizes p=%d g=%d r=%d d=%d e=%d", len(snap.Persons), len(snap.Groups), len(snap.Roles), len(snap.Documents), len(snap.Events))
	}
	for _, doc := range snap.Documents {
		for _, alias := range doc.Aliases {
			if alias == doc.Name {
				t.Fatalf("expected primary name to be dropped from aliases of %s", doc.Name)
			}
		}
	}

	for _, format := range []SnapshotFormat{SnapshotJSON, SnapshotYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeSnapshot(&buf, snap, format); err != nil {
				t.Fatalf("EncodeSnapshot() error = %v", err)
			}
			decoded, err := DecodeSnapshot(&buf, format)
			if err != nil {
				t.Fatalf("DecodeSnapshot() error = %v", err)
			}

			dst := newFakeRepo()
			svc := newTestService(dst)
			stats, err := svc.ImportSnapshot(context.Background(), decoded)
			if err != nil {
				t.Fatalf("ImportSnapshot() error = %v", err)
			}
			if stats.Documents != 8 || stats.Events != 6 || stats.Persons != 4 {
				t.Fatalf("unexpected import stats %#v", stats)
			}
			doc, err := dst.GetDocument(context.Background(), "draft-ietf-tls-bar")
			if err != nil {
				t.Fatalf("GetDocument() error = %v", err)
			}
			if !doc.IsRFC() || doc.StateName(domain.StateTypeDraftIESG) != "RFC Published" {
				t.Fatalf("unexpected imported document %#v", doc)
			}
			ev, err := dst.LatestDocEvent(context.Background(), "draft-ietf-tls-foo", []domain.EventType{domain.EventSentLastCall})
			if err != nil {
				t.Fatalf("LatestDocEvent() error = %v", err)
			}
			if ev.Expires == nil || !ev.Expires.Equal(testNow.Add(10*24*time.Hour)) {
				t.Fatalf("unexpected imported expiry %v", ev.Expires)
			}
		})
	}
}

func TestImportSnapshotAssignsEventIDs(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, func() string { return "generated" }, func() time.Time { return testNow }, ServiceConfig{})
	snap := Snapshot{
		Persons: []SnapshotPerson{{ID: "p1", Name: "Alice Example"}},
		Documents: []SnapshotDocument{{
			Name: "charter-ietf-x", Type: domain.DocTypeCharter, Time: testNow, ResponsibleID: "p1",
			States: []SnapshotStateRef{{Type: domain.StateTypeCharter, Slug: "intrev"}},
		}},
		Events: []SnapshotEvent{{DocName: "charter-ietf-x", Type: domain.EventChangedState, Time: testNow}},
	}
	if _, err := svc.ImportSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].ID != "generated" {
		t.Fatalf("unexpected events %#v", repo.events)
	}
}

func TestImportSnapshotRejectsUnknownState(t *testing.T) {
	svc := newTestService(newFakeRepo())
	snap := Snapshot{Documents: []SnapshotDocument{{
		Name: "draft-x", Type: domain.DocTypeDraft, Time: testNow,
		States: []SnapshotStateRef{{Type: domain.StateTypeDraft, Slug: "pending"}},
	}}}
	if _, err := svc.ImportSnapshot(context.Background(), snap); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("ImportSnapshot() error = %v, want ErrInvalidState", err)
	}
}

func TestImportSnapshotPurgesCacheOnFailure(t *testing.T) {
	repo := corpus(t)
	svc := newTestService(repo)
	ctx := context.Background()
	query := SearchQuery{Name: "tls", ActiveDrafts: true}
	if _, err := svc.Search(ctx, query); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	snap := Snapshot{
		Persons: []SnapshotPerson{{ID: "p9", Name: "Dana New", Email: "dana@example.org"}},
		Documents: []SnapshotDocument{{
			Name: "draft-x", Type: domain.DocTypeDraft, Time: testNow,
			States: []SnapshotStateRef{{Type: domain.StateTypeDraft, Slug: "pending"}},
		}},
	}
	stats, err := svc.ImportSnapshot(ctx, snap)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("ImportSnapshot() error = %v, want ErrInvalidState", err)
	}
	if stats.Persons != 1 {
		t.Fatalf("expected person upserted before failure, got %d", stats.Persons)
	}

	calls := repo.listDocumentsCalls
	again, err := svc.Search(ctx, query)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if again.Cached || repo.listDocumentsCalls == calls {
		t.Fatal("expected failed import to drop cached search results")
	}
}

func TestSnapshotValidate(t *testing.T) {
	base := func() Snapshot {
		return Snapshot{
			Persons:   []SnapshotPerson{{ID: "p1", Name: "Alice"}},
			Groups:    []SnapshotGroup{{Acronym: "sec", Name: "Security", Type: "area"}},
			Roles:     []SnapshotRole{{PersonID: "p1", Name: "ad", Group: "sec"}},
			Documents: []SnapshotDocument{{Name: "draft-a", Type: domain.DocTypeDraft, Time: testNow, ResponsibleID: "p1"}},
			Events:    []SnapshotEvent{{DocName: "draft-a", Type: domain.EventNewRevision, Time: testNow}},
		}
	}
	cases := []struct {
		name string
		mod  func(*Snapshot)
		want string
	}{
		{name: "version", mod: func(s *Snapshot) { s.Version = "other" }, want: "unsupported snapshot version"},
		{name: "person id", mod: func(s *Snapshot) { s.Persons[0].ID = " " }, want: "persons[0].id is required"},
		{name: "duplicate person", mod: func(s *Snapshot) { s.Persons = append(s.Persons, s.Persons[0]) }, want: "duplicate person id"},
		{name: "role person", mod: func(s *Snapshot) { s.Roles[0].PersonID = "p9" }, want: "unknown person_id"},
		{name: "role group", mod: func(s *Snapshot) { s.Roles[0].Group = "ops" }, want: "unknown group"},
		{name: "doc type", mod: func(s *Snapshot) { s.Documents[0].Type = "recipe" }, want: "documents[0].type"},
		{name: "doc time", mod: func(s *Snapshot) { s.Documents[0].Time = time.Time{} }, want: "documents[0].time is required"},
		{name: "responsible", mod: func(s *Snapshot) { s.Documents[0].ResponsibleID = "p9" }, want: "unknown responsible_id"},
		{name: "event doc", mod: func(s *Snapshot) { s.Events[0].DocName = "draft-b" }, want: "unknown doc"},
		{name: "event type", mod: func(s *Snapshot) { s.Events[0].Type = "ballot" }, want: "events[0].type"},
	}
	ok := base()
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := base()
			tc.mod(&snap)
			err := snap.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() error = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestSnapshotFormatForPath(t *testing.T) {
	cases := map[string]SnapshotFormat{
		"corpus.yaml": SnapshotYAML,
		"corpus.YML":  SnapshotYAML,
		"corpus.json": SnapshotJSON,
		"corpus":      SnapshotJSON,
	}
	for path, want := range cases {
		if got := SnapshotFormatForPath(path); got != want {
			t.Fatalf("SnapshotFormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
