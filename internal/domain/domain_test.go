package domain

import (
	"slices"
	"testing"
	"time"
)

func mustState(t *testing.T, stateType StateType, slug, name string, order int) State {
	t.Helper()
	state, err := NewState(stateType, slug, name, order)
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	return state
}

func TestNewDocumentNormalizes(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.FixedZone("x", 3600))
	doc, err := NewDocument(DocumentInput{
		Name:      "  Draft-IETF-Foo-Bar  ",
		Type:      DocTypeDraft,
		Title:     " Foo Bar ",
		RFCNumber: 9000,
		Group:     " FOO ",
		Time:      now,
		States: []State{
			mustState(t, StateTypeDraft, "rfc", "RFC", 2),
		},
		Tags:    []string{"Point", "point", " "},
		Authors: []string{"P1", "P1", "p2"},
	})
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	if doc.Name != "draft-ietf-foo-bar" {
		t.Fatalf("unexpected name %q", doc.Name)
	}
	if doc.Group != "foo" || doc.Title != "Foo Bar" {
		t.Fatalf("unexpected group/title %q/%q", doc.Group, doc.Title)
	}
	if !slices.Equal(doc.Aliases, []string{"draft-ietf-foo-bar", "rfc9000"}) {
		t.Fatalf("unexpected aliases %#v", doc.Aliases)
	}
	if !slices.Equal(doc.Tags, []string{"point"}) {
		t.Fatalf("unexpected tags %#v", doc.Tags)
	}
	if !slices.Equal(doc.Authors, []string{"P1", "p2"}) {
		t.Fatalf("unexpected authors %#v", doc.Authors)
	}
	if doc.Time.Location() != time.UTC {
		t.Fatalf("expected UTC time, got %v", doc.Time.Location())
	}
	if !doc.IsRFC() {
		t.Fatal("expected rfc draft")
	}
	if doc.StateSlug(StateTypeDraftIESG) != "" {
		t.Fatalf("expected empty iesg slug, got %q", doc.StateSlug(StateTypeDraftIESG))
	}
}

func TestNewDocumentValidation(t *testing.T) {
	cases := []struct {
		name string
		in   DocumentInput
		want error
	}{
		{name: "empty name", in: DocumentInput{Name: " ", Type: DocTypeDraft}, want: ErrInvalidName},
		{name: "bad type", in: DocumentInput{Name: "x", Type: "memo"}, want: ErrInvalidDocType},
		{
			name: "duplicate state type",
			in: DocumentInput{Name: "x", Type: DocTypeDraft, States: []State{
				{Type: StateTypeDraft, Slug: "active", Name: "Active"},
				{Type: StateTypeDraft, Slug: "rfc", Name: "RFC"},
			}},
			want: ErrInvalidState,
		},
		{
			name: "unknown state type",
			in:   DocumentInput{Name: "x", Type: DocTypeDraft, States: []State{{Type: "ballot", Slug: "x"}}},
			want: ErrInvalidState,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewDocument(tc.in); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestStateCatalogLookups(t *testing.T) {
	catalog := NewStateCatalog([]State{
		mustState(t, StateTypeDraftIESG, "lc", "In Last Call", 16),
		mustState(t, StateTypeDraftIESG, "pub-req", "Publication Requested", 10),
		mustState(t, StateTypeDraftIESG, "ad-eval", "AD Evaluation", 11),
		mustState(t, StateTypeDraft, "active", "Active", 1),
	})
	state, ok := catalog.LookupState(StateTypeDraftIESG, "ad-eval")
	if !ok || state.Name != "AD Evaluation" {
		t.Fatalf("unexpected slug lookup %#v ok=%t", state, ok)
	}
	state, ok = catalog.LookupStateByName(StateTypeDraftIESG, "In Last Call")
	if !ok || state.Order != 16 {
		t.Fatalf("unexpected name lookup %#v ok=%t", state, ok)
	}
	if _, ok := catalog.LookupState(StateTypeDraft, "ad-eval"); ok {
		t.Fatal("expected lookup to respect state type")
	}
	got := []string{}
	for _, s := range catalog.States(StateTypeDraftIESG) {
		got = append(got, s.Slug)
	}
	if !slices.Equal(got, []string{"pub-req", "ad-eval", "lc"}) {
		t.Fatalf("unexpected order %#v", got)
	}

	var nilCatalog *StateCatalog
	if _, ok := nilCatalog.LookupState(StateTypeDraft, "active"); ok {
		t.Fatal("expected nil catalog miss")
	}
}

func TestNewStateValidation(t *testing.T) {
	if _, err := NewState("ballot", "x", "X", 0); err != ErrInvalidStateType {
		t.Fatalf("expected ErrInvalidStateType, got %v", err)
	}
	if _, err := NewState(StateTypeDraft, " ", "X", 0); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestNewDocEvent(t *testing.T) {
	expires := time.Date(2026, 3, 1, 0, 0, 0, 0, time.FixedZone("y", -7200))
	ev, err := NewDocEvent(DocEventInput{
		ID:      "e1",
		DocName: "Draft-X",
		Type:    EventSentLastCall,
		Time:    time.Now(),
		Expires: &expires,
	})
	if err != nil {
		t.Fatalf("NewDocEvent() error = %v", err)
	}
	if ev.DocName != "draft-x" || ev.Expires == nil || ev.Expires.Location() != time.UTC {
		t.Fatalf("unexpected event %#v", ev)
	}
	if _, err := NewDocEvent(DocEventInput{ID: "e2", DocName: "draft-x", Type: "balloted"}); err != ErrInvalidEventType {
		t.Fatalf("expected ErrInvalidEventType, got %v", err)
	}
	if _, err := NewDocEvent(DocEventInput{DocName: "draft-x", Type: EventNewRevision}); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestPersonNames(t *testing.T) {
	p, err := NewPerson("p1", "  Ada   Byron Lovelace ", " ADA@Example.org ")
	if err != nil {
		t.Fatalf("NewPerson() error = %v", err)
	}
	if p.NameKey() != "ada.byron.lovelace" {
		t.Fatalf("unexpected name key %q", p.NameKey())
	}
	if p.LastName() != "Lovelace" || p.Email != "ada@example.org" {
		t.Fatalf("unexpected person %#v", p)
	}
	if _, err := NewPerson("p2", " ", ""); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestActiveADs(t *testing.T) {
	persons := []Person{
		{ID: "1", Name: "Zed Zulu"},
		{ID: "2", Name: "Amy Alpha"},
		{ID: "3", Name: "Old Timer"},
		{ID: "4", Name: "Pre Ad"},
	}
	roles := []Role{
		{PersonID: "1", Name: RoleAD, GroupAcronym: "ops"},
		{PersonID: "2", Name: RoleAD, GroupAcronym: "sec"},
		{PersonID: "3", Name: RoleAD, GroupAcronym: "gone"},
		{PersonID: "4", Name: RolePreAD, GroupAcronym: "ops"},
	}
	groups := []Group{
		{Acronym: "ops", Type: GroupTypeArea, State: GroupStateActive},
		{Acronym: "sec", Type: GroupTypeArea, State: GroupStateActive},
		{Acronym: "gone", Type: GroupTypeArea, State: "conclude"},
	}
	got := []string{}
	for _, p := range ActiveADs(persons, roles, groups) {
		got = append(got, p.ID)
	}
	if !slices.Equal(got, []string{"2", "1"}) {
		t.Fatalf("unexpected active ads %#v", got)
	}
}

func TestSearchableDocTypes(t *testing.T) {
	types := SearchableDocTypes()
	if slices.Contains(types, DocTypeDraft) || slices.Contains(types, DocTypeLiaison) {
		t.Fatalf("unexpected searchable types %#v", types)
	}
	if !slices.Contains(types, DocTypeCharter) || !slices.Contains(types, DocTypeConflRev) {
		t.Fatalf("missing searchable types %#v", types)
	}
}
