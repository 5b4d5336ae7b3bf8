package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// DocType identifies the kind of a tracked document.
type DocType string

// DocType values known to search and the dashboard.
const (
	DocTypeDraft    DocType = "draft"
	DocTypeCharter  DocType = "charter"
	DocTypeConflRev DocType = "conflrev"
	DocTypeStatChg  DocType = "statchg"
	DocTypeBOFReq   DocType = "bofreq"
	DocTypeLiaison  DocType = "liai-att"
	DocTypeSlides   DocType = "slides"
	DocTypeMinutes  DocType = "minutes"
	DocTypeAgenda   DocType = "agenda"
)

// DocTypeInfo describes one document type and its name prefix.
type DocTypeInfo struct {
	Slug   DocType
	Name   string
	Prefix string
	Used   bool
}

// docTypes stores the document type table in display order.
var docTypes = []DocTypeInfo{
	{Slug: DocTypeAgenda, Name: "Agenda", Prefix: "agenda", Used: true},
	{Slug: DocTypeBOFReq, Name: "BOF Request", Prefix: "bofreq", Used: true},
	{Slug: DocTypeCharter, Name: "Charter", Prefix: "charter", Used: true},
	{Slug: DocTypeConflRev, Name: "Conflict Review", Prefix: "conflict-review", Used: true},
	{Slug: DocTypeDraft, Name: "Draft", Prefix: "draft", Used: true},
	{Slug: DocTypeLiaison, Name: "Liaison Attachment", Prefix: "liai-att", Used: true},
	{Slug: DocTypeMinutes, Name: "Minutes", Prefix: "minutes", Used: true},
	{Slug: DocTypeSlides, Name: "Slides", Prefix: "slides", Used: true},
	{Slug: DocTypeStatChg, Name: "Status Change", Prefix: "status-change", Used: true},
}

// DocTypes returns the used document types.
func DocTypes() []DocTypeInfo {
	out := make([]DocTypeInfo, 0, len(docTypes))
	for _, info := range docTypes {
		if info.Used {
			out = append(out, info)
		}
	}
	return out
}

// SearchableDocTypes returns used types other than drafts and liaison attachments.
func SearchableDocTypes() []DocType {
	out := []DocType{}
	for _, info := range DocTypes() {
		if info.Slug == DocTypeDraft || info.Slug == DocTypeLiaison {
			continue
		}
		out = append(out, info.Slug)
	}
	return out
}

// IsValidDocType reports whether t is a known document type.
func IsValidDocType(t DocType) bool {
	for _, info := range docTypes {
		if info.Slug == t {
			return true
		}
	}
	return false
}

// Document represents one tracked document and the state attributes search reads.
// Authors holds person IDs in author order.
type Document struct {
	Name          string
	Type          DocType
	Title         string
	Rev           string
	RFCNumber     int
	Group         string
	Stream        string
	ResponsibleID string
	Pages         int
	Time          time.Time
	States        []State
	Tags          []string
	Aliases       []string
	Authors       []string
}

// DocumentInput holds input values for document construction.
type DocumentInput struct {
	Name          string
	Type          DocType
	Title         string
	Rev           string
	RFCNumber     int
	Group         string
	Stream        string
	ResponsibleID string
	Pages         int
	Time          time.Time
	States        []State
	Tags          []string
	Aliases       []string
	Authors       []string
}

// NewDocument constructs one normalized document.
func NewDocument(in DocumentInput) (Document, error) {
	in.Name = strings.TrimSpace(strings.ToLower(in.Name))
	if in.Name == "" {
		return Document{}, ErrInvalidName
	}
	if !IsValidDocType(in.Type) {
		return Document{}, ErrInvalidDocType
	}
	states := make([]State, 0, len(in.States))
	seen := map[StateType]struct{}{}
	for _, state := range in.States {
		if !IsValidStateType(state.Type) || strings.TrimSpace(state.Slug) == "" {
			return Document{}, ErrInvalidState
		}
		if _, ok := seen[state.Type]; ok {
			return Document{}, ErrInvalidState
		}
		seen[state.Type] = struct{}{}
		states = append(states, state)
	}
	aliases := normalizeNames(in.Aliases)
	if !slices.Contains(aliases, in.Name) {
		aliases = append([]string{in.Name}, aliases...)
	}
	if in.RFCNumber > 0 {
		rfcAlias := "rfc" + strconv.Itoa(in.RFCNumber)
		if !slices.Contains(aliases, rfcAlias) {
			aliases = append(aliases, rfcAlias)
		}
	}
	return Document{
		Name:          in.Name,
		Type:          in.Type,
		Title:         strings.TrimSpace(in.Title),
		Rev:           strings.TrimSpace(in.Rev),
		RFCNumber:     in.RFCNumber,
		Group:         strings.TrimSpace(strings.ToLower(in.Group)),
		Stream:        strings.TrimSpace(strings.ToLower(in.Stream)),
		ResponsibleID: strings.TrimSpace(in.ResponsibleID),
		Pages:         in.Pages,
		Time:          in.Time.UTC(),
		States:        states,
		Tags:          normalizeNames(in.Tags),
		Aliases:       aliases,
		Authors:       normalizeIDs(in.Authors),
	}, nil
}

// State returns the document's current state in one state machine.
func (d Document) State(stateType StateType) (State, bool) {
	for _, state := range d.States {
		if state.Type == stateType {
			return state, true
		}
	}
	return State{}, false
}

// StateSlug returns the current state slug for one state machine, or "".
func (d Document) StateSlug(stateType StateType) string {
	state, ok := d.State(stateType)
	if !ok {
		return ""
	}
	return state.Slug
}

// StateName returns the current state name for one state machine, or "".
func (d Document) StateName(stateType StateType) string {
	state, ok := d.State(stateType)
	if !ok {
		return ""
	}
	return state.Name
}

// HasTag reports whether the document carries one tag.
func (d Document) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// IsRFC reports whether the document is a published RFC.
func (d Document) IsRFC() bool {
	return d.Type == DocTypeDraft && d.StateSlug(StateTypeDraft) == DraftRFC
}

// normalizeNames lowercases, trims, and de-duplicates names while keeping first-seen order.
func normalizeNames(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, raw := range in {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// normalizeIDs trims and de-duplicates identifiers while keeping first-seen order.
func normalizeIDs(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, raw := range in {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
