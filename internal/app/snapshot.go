package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vidiannovantry/datatracker/internal/domain"
	"gopkg.in/yaml.v3"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "datatracker.snapshot.v1"

// SnapshotFormat selects the snapshot encoding.
type SnapshotFormat string

// SnapshotFormat values.
const (
	SnapshotJSON SnapshotFormat = "json"
	SnapshotYAML SnapshotFormat = "yaml"
)

// SnapshotFormatForPath picks the encoding from a file extension; anything but .yaml/.yml is JSON.
func SnapshotFormatForPath(path string) SnapshotFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SnapshotYAML
	default:
		return SnapshotJSON
	}
}

// Snapshot represents the full document corpus.
type Snapshot struct {
	Version    string             `json:"version" yaml:"version"`
	ExportedAt time.Time          `json:"exported_at" yaml:"exported_at"`
	Persons    []SnapshotPerson   `json:"persons" yaml:"persons"`
	Roles      []SnapshotRole     `json:"roles,omitempty" yaml:"roles,omitempty"`
	Groups     []SnapshotGroup    `json:"groups,omitempty" yaml:"groups,omitempty"`
	States     []SnapshotState    `json:"states,omitempty" yaml:"states,omitempty"`
	Documents  []SnapshotDocument `json:"documents" yaml:"documents"`
	Events     []SnapshotEvent    `json:"events,omitempty" yaml:"events,omitempty"`
}

// SnapshotPerson represents snapshot person data used by this package.
type SnapshotPerson struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// SnapshotRole represents snapshot role data used by this package.
type SnapshotRole struct {
	PersonID string `json:"person_id" yaml:"person_id"`
	Name     string `json:"name" yaml:"name"`
	Group    string `json:"group" yaml:"group"`
}

// SnapshotGroup represents snapshot group data used by this package.
type SnapshotGroup struct {
	Acronym string `json:"acronym" yaml:"acronym"`
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	State   string `json:"state,omitempty" yaml:"state,omitempty"`
	Parent  string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// SnapshotState is one state catalog row.
type SnapshotState struct {
	Type  domain.StateType `json:"type" yaml:"type"`
	Slug  string           `json:"slug" yaml:"slug"`
	Name  string           `json:"name" yaml:"name"`
	Order int              `json:"order" yaml:"order"`
}

// SnapshotStateRef names a document's state by machine and slug.
type SnapshotStateRef struct {
	Type domain.StateType `json:"type" yaml:"type"`
	Slug string           `json:"slug" yaml:"slug"`
}

// SnapshotDocument represents snapshot document data used by this package.
type SnapshotDocument struct {
	Name          string             `json:"name" yaml:"name"`
	Type          domain.DocType     `json:"type" yaml:"type"`
	Title         string             `json:"title,omitempty" yaml:"title,omitempty"`
	Rev           string             `json:"rev,omitempty" yaml:"rev,omitempty"`
	RFCNumber     int                `json:"rfc_number,omitempty" yaml:"rfc_number,omitempty"`
	Group         string             `json:"group,omitempty" yaml:"group,omitempty"`
	Stream        string             `json:"stream,omitempty" yaml:"stream,omitempty"`
	ResponsibleID string             `json:"responsible_id,omitempty" yaml:"responsible_id,omitempty"`
	Pages         int                `json:"pages,omitempty" yaml:"pages,omitempty"`
	Time          time.Time          `json:"time" yaml:"time"`
	States        []SnapshotStateRef `json:"states,omitempty" yaml:"states,omitempty"`
	Tags          []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	Aliases       []string           `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Authors       []string           `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// SnapshotEvent represents snapshot event data used by this package.
type SnapshotEvent struct {
	ID          string           `json:"id,omitempty" yaml:"id,omitempty"`
	DocName     string           `json:"doc" yaml:"doc"`
	Type        domain.EventType `json:"type" yaml:"type"`
	Time        time.Time        `json:"time" yaml:"time"`
	By          string           `json:"by,omitempty" yaml:"by,omitempty"`
	Description string           `json:"desc,omitempty" yaml:"desc,omitempty"`
	Rev         string           `json:"rev,omitempty" yaml:"rev,omitempty"`
	Expires     *time.Time       `json:"expires,omitempty" yaml:"expires,omitempty"`
}

// DecodeSnapshot reads one snapshot in the given format.
func DecodeSnapshot(r io.Reader, format SnapshotFormat) (Snapshot, error) {
	var snap Snapshot
	switch format {
	case SnapshotYAML:
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil && err != io.EOF {
			return Snapshot{}, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode json snapshot: %w", err)
		}
	}
	return snap, nil
}

// EncodeSnapshot writes one snapshot in the given format.
func EncodeSnapshot(w io.Writer, snap Snapshot, format SnapshotFormat) error {
	switch format {
	case SnapshotYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode yaml snapshot: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode json snapshot: %w", err)
		}
		return nil
	}
}

// ExportSnapshot handles export snapshot.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	persons, roles, groups, err := s.directory(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	states, err := s.repo.ListStates(ctx, "")
	if err != nil {
		return Snapshot{}, fmt.Errorf("list states: %w", err)
	}
	docs, err := s.repo.ListDocuments(ctx, DocumentFilter{Order: OrderByName})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list documents: %w", err)
	}
	events, err := s.repo.ListDocEvents(ctx, EventFilter{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list events: %w", err)
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Persons:    make([]SnapshotPerson, 0, len(persons)),
		Roles:      make([]SnapshotRole, 0, len(roles)),
		Groups:     make([]SnapshotGroup, 0, len(groups)),
		States:     make([]SnapshotState, 0, len(states)),
		Documents:  make([]SnapshotDocument, 0, len(docs)),
		Events:     make([]SnapshotEvent, 0, len(events)),
	}
	for _, p := range persons {
		snap.Persons = append(snap.Persons, SnapshotPerson{ID: p.ID, Name: p.Name, Email: p.Email})
	}
	for _, r := range roles {
		snap.Roles = append(snap.Roles, SnapshotRole{PersonID: r.PersonID, Name: r.Name, Group: r.GroupAcronym})
	}
	for _, g := range groups {
		snap.Groups = append(snap.Groups, SnapshotGroup{Acronym: g.Acronym, Name: g.Name, Type: g.Type, State: g.State, Parent: g.Parent})
	}
	for _, st := range states {
		snap.States = append(snap.States, SnapshotState{Type: st.Type, Slug: st.Slug, Name: st.Name, Order: st.Order})
	}
	for _, doc := range docs {
		snap.Documents = append(snap.Documents, snapshotDocumentFromDomain(doc))
	}
	for _, ev := range events {
		snap.Events = append(snap.Events, snapshotEventFromDomain(ev))
	}
	snap.sort()
	return snap, nil
}

// ImportStats counts rows written by one import.
type ImportStats struct {
	Persons   int
	Roles     int
	Groups    int
	States    int
	Documents int
	Events    int
}

// ImportSnapshot validates and upserts every snapshot row. Document state refs resolve
// against the snapshot's states plus those already stored. Cached results are dropped
// whether or not the import completes.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) (ImportStats, error) {
	if err := snap.Validate(); err != nil {
		return ImportStats{}, err
	}
	snap.sort()
	var stats ImportStats
	// Rows upserted before a failure are already visible.
	defer s.cache.purge()

	for i, sp := range snap.Persons {
		p, err := domain.NewPerson(sp.ID, sp.Name, sp.Email)
		if err != nil {
			return stats, fmt.Errorf("persons[%d]: %w", i, err)
		}
		if err := s.repo.UpsertPerson(ctx, p); err != nil {
			return stats, fmt.Errorf("upsert person %q: %w", p.ID, err)
		}
		stats.Persons++
	}
	for i, sg := range snap.Groups {
		g, err := domain.NewGroup(sg.Acronym, sg.Name, sg.Type, sg.State, sg.Parent)
		if err != nil {
			return stats, fmt.Errorf("groups[%d]: %w", i, err)
		}
		if err := s.repo.UpsertGroup(ctx, g); err != nil {
			return stats, fmt.Errorf("upsert group %q: %w", g.Acronym, err)
		}
		stats.Groups++
	}
	for i, sr := range snap.Roles {
		r, err := domain.NewRole(sr.PersonID, sr.Name, sr.Group)
		if err != nil {
			return stats, fmt.Errorf("roles[%d]: %w", i, err)
		}
		if err := s.repo.UpsertRole(ctx, r); err != nil {
			return stats, fmt.Errorf("upsert role %s/%s: %w", r.PersonID, r.Name, err)
		}
		stats.Roles++
	}
	for i, ss := range snap.States {
		st, err := domain.NewState(ss.Type, ss.Slug, ss.Name, ss.Order)
		if err != nil {
			return stats, fmt.Errorf("states[%d]: %w", i, err)
		}
		if err := s.repo.UpsertState(ctx, st); err != nil {
			return stats, fmt.Errorf("upsert state %s/%s: %w", st.Type, st.Slug, err)
		}
		stats.States++
	}

	catalog, err := s.stateCatalog(ctx)
	if err != nil {
		return stats, err
	}
	for i, sd := range snap.Documents {
		doc, err := sd.toDomain(catalog)
		if err != nil {
			return stats, fmt.Errorf("documents[%d]: %w", i, err)
		}
		if err := s.repo.UpsertDocument(ctx, doc); err != nil {
			return stats, fmt.Errorf("upsert document %q: %w", doc.Name, err)
		}
		stats.Documents++
	}
	for i, se := range snap.Events {
		if strings.TrimSpace(se.ID) == "" {
			se.ID = s.idGen()
		}
		ev, err := se.toDomain()
		if err != nil {
			return stats, fmt.Errorf("events[%d]: %w", i, err)
		}
		if err := s.repo.CreateDocEvent(ctx, ev); err != nil {
			return stats, fmt.Errorf("create event for %q: %w", ev.DocName, err)
		}
		stats.Events++
	}

	s.logger.Info("snapshot imported",
		"persons", stats.Persons,
		"documents", stats.Documents,
		"events", stats.Events,
	)
	return stats, nil
}

// Validate validates the requested operation.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}

	personIDs := map[string]struct{}{}
	for i, p := range s.Persons {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("persons[%d].id is required", i)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("persons[%d].name is required", i)
		}
		if _, exists := personIDs[id]; exists {
			return fmt.Errorf("duplicate person id: %q", id)
		}
		personIDs[id] = struct{}{}
	}

	groupAcronyms := map[string]struct{}{}
	for i, g := range s.Groups {
		acronym := strings.ToLower(strings.TrimSpace(g.Acronym))
		if acronym == "" {
			return fmt.Errorf("groups[%d].acronym is required", i)
		}
		if _, exists := groupAcronyms[acronym]; exists {
			return fmt.Errorf("duplicate group acronym: %q", acronym)
		}
		groupAcronyms[acronym] = struct{}{}
	}

	for i, r := range s.Roles {
		if _, ok := personIDs[strings.TrimSpace(r.PersonID)]; !ok {
			return fmt.Errorf("roles[%d] references unknown person_id %q", i, r.PersonID)
		}
		if _, ok := groupAcronyms[strings.ToLower(strings.TrimSpace(r.Group))]; !ok {
			return fmt.Errorf("roles[%d] references unknown group %q", i, r.Group)
		}
	}

	docNames := map[string]struct{}{}
	for i, d := range s.Documents {
		name := strings.ToLower(strings.TrimSpace(d.Name))
		if name == "" {
			return fmt.Errorf("documents[%d].name is required", i)
		}
		if !domain.IsValidDocType(d.Type) {
			return fmt.Errorf("documents[%d].type %q is unknown", i, d.Type)
		}
		if d.Time.IsZero() {
			return fmt.Errorf("documents[%d].time is required", i)
		}
		if _, exists := docNames[name]; exists {
			return fmt.Errorf("duplicate document name: %q", name)
		}
		if id := strings.TrimSpace(d.ResponsibleID); id != "" {
			if _, ok := personIDs[id]; !ok {
				return fmt.Errorf("documents[%d] references unknown responsible_id %q", i, id)
			}
		}
		docNames[name] = struct{}{}
	}

	for i, e := range s.Events {
		if _, ok := docNames[strings.ToLower(strings.TrimSpace(e.DocName))]; !ok {
			return fmt.Errorf("events[%d] references unknown doc %q", i, e.DocName)
		}
		if !domain.IsValidEventType(e.Type) {
			return fmt.Errorf("events[%d].type %q is unknown", i, e.Type)
		}
		if e.Time.IsZero() {
			return fmt.Errorf("events[%d].time is required", i)
		}
	}
	return nil
}

// sort orders rows deterministically.
func (s *Snapshot) sort() {
	sort.Slice(s.Persons, func(i, j int) bool { return s.Persons[i].ID < s.Persons[j].ID })
	sort.Slice(s.Groups, func(i, j int) bool { return s.Groups[i].Acronym < s.Groups[j].Acronym })
	sort.Slice(s.Roles, func(i, j int) bool {
		a, b := s.Roles[i], s.Roles[j]
		if a.PersonID != b.PersonID {
			return a.PersonID < b.PersonID
		}
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Name < b.Name
	})
	sort.Slice(s.States, func(i, j int) bool {
		a, b := s.States[i], s.States[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Slug < b.Slug
	})
	sort.Slice(s.Documents, func(i, j int) bool { return s.Documents[i].Name < s.Documents[j].Name })
	sort.SliceStable(s.Events, func(i, j int) bool {
		a, b := s.Events[i], s.Events[j]
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		return a.ID < b.ID
	})
}

func snapshotDocumentFromDomain(doc domain.Document) SnapshotDocument {
	refs := make([]SnapshotStateRef, 0, len(doc.States))
	for _, st := range doc.States {
		refs = append(refs, SnapshotStateRef{Type: st.Type, Slug: st.Slug})
	}
	aliases := make([]string, 0, len(doc.Aliases))
	for _, alias := range doc.Aliases {
		if alias != doc.Name {
			aliases = append(aliases, alias)
		}
	}
	return SnapshotDocument{
		Name:          doc.Name,
		Type:          doc.Type,
		Title:         doc.Title,
		Rev:           doc.Rev,
		RFCNumber:     doc.RFCNumber,
		Group:         doc.Group,
		Stream:        doc.Stream,
		ResponsibleID: doc.ResponsibleID,
		Pages:         doc.Pages,
		Time:          doc.Time.UTC(),
		States:        refs,
		Tags:          append([]string(nil), doc.Tags...),
		Aliases:       aliases,
		Authors:       append([]string(nil), doc.Authors...),
	}
}

func snapshotEventFromDomain(ev domain.DocEvent) SnapshotEvent {
	return SnapshotEvent{
		ID:          ev.ID,
		DocName:     ev.DocName,
		Type:        ev.Type,
		Time:        ev.Time.UTC(),
		By:          ev.By,
		Description: ev.Description,
		Rev:         ev.Rev,
		Expires:     copyTimePtr(ev.Expires),
	}
}

// toDomain resolves state refs against catalog and builds the document.
func (d SnapshotDocument) toDomain(catalog *domain.StateCatalog) (domain.Document, error) {
	states := make([]domain.State, 0, len(d.States))
	for _, ref := range d.States {
		st, ok := catalog.LookupState(ref.Type, strings.ToLower(strings.TrimSpace(ref.Slug)))
		if !ok {
			return domain.Document{}, fmt.Errorf("%w: unknown state %s/%s", domain.ErrInvalidState, ref.Type, ref.Slug)
		}
		states = append(states, st)
	}
	return domain.NewDocument(domain.DocumentInput{
		Name:          d.Name,
		Type:          d.Type,
		Title:         d.Title,
		Rev:           d.Rev,
		RFCNumber:     d.RFCNumber,
		Group:         d.Group,
		Stream:        d.Stream,
		ResponsibleID: d.ResponsibleID,
		Pages:         d.Pages,
		Time:          d.Time,
		States:        states,
		Tags:          d.Tags,
		Aliases:       d.Aliases,
		Authors:       d.Authors,
	})
}

func (e SnapshotEvent) toDomain() (domain.DocEvent, error) {
	return domain.NewDocEvent(domain.DocEventInput{
		ID:          e.ID,
		DocName:     e.DocName,
		Type:        e.Type,
		Time:        e.Time,
		By:          e.By,
		Description: e.Description,
		Rev:         e.Rev,
		Expires:     copyTimePtr(e.Expires),
	})
}

func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	out := in.UTC()
	return &out
}
