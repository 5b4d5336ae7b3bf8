package domain

import (
	"slices"
	"sort"
	"strings"
)

// StateType identifies one document state machine.
type StateType string

// StateType values read by search and the workload dashboard.
const (
	StateTypeDraft     StateType = "draft"
	StateTypeDraftIESG StateType = "draft-iesg"
	StateTypeDraftIRTF StateType = "draft-stream-irtf"
	StateTypeCharter   StateType = "charter"
	StateTypeConflRev  StateType = "conflrev"
	StateTypeStatChg   StateType = "statchg"
)

// validStateTypes stores all accepted state machine identifiers.
var validStateTypes = []StateType{
	StateTypeDraft,
	StateTypeDraftIESG,
	StateTypeDraftIRTF,
	StateTypeCharter,
	StateTypeConflRev,
	StateTypeStatChg,
}

// IsValidStateType reports whether t names a known state machine.
func IsValidStateType(t StateType) bool {
	return slices.Contains(validStateTypes, t)
}

// Draft state slugs.
const (
	DraftActive   = "active"
	DraftExpired  = "expired"
	DraftRFC      = "rfc"
	DraftReplaced = "repl"
	DraftAuthRm   = "auth-rm"
	DraftIETFRm   = "ietf-rm"
)

// IESG state slugs.
const (
	IESGIDExists  = "idexists"
	IESGPubReq    = "pub-req"
	IESGADEval    = "ad-eval"
	IESGLCReq     = "lc-req"
	IESGLastCall  = "lc"
	IESGWriteupW  = "writeupw"
	IESGEval      = "iesg-eva"
	IESGDefer     = "defer"
	IESGGoAheadW  = "goaheadw"
	IESGApproved  = "approved"
	IESGAnnounced = "ann"
	IESGRFCQueue  = "rfcqueue"
	IESGPublished = "pub"
	IESGDead      = "dead"
	IESGWatching  = "watching"
)

// IESGSubstateTags lists the document tags that act as IESG substates.
var IESGSubstateTags = []string{"point", "ad-f-up", "need-rev", "extpty"}

// State represents one labeled state in a state machine.
type State struct {
	Type  StateType
	Slug  string
	Name  string
	Order int
}

// NewState constructs a validated state row.
func NewState(stateType StateType, slug, name string, order int) (State, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	name = strings.TrimSpace(name)
	if !IsValidStateType(stateType) {
		return State{}, ErrInvalidStateType
	}
	if slug == "" || name == "" {
		return State{}, ErrInvalidState
	}
	return State{Type: stateType, Slug: slug, Name: name, Order: order}, nil
}

// String returns the display name of the state.
func (s State) String() string {
	return s.Name
}

// stateKey identifies one state row in a catalog.
type stateKey struct {
	stateType StateType
	value     string
}

// StateCatalog indexes canonical state rows by slug and by name.
type StateCatalog struct {
	bySlug map[stateKey]State
	byName map[stateKey]State
	byType map[StateType][]State
}

// NewStateCatalog builds one catalog from state rows; later duplicates replace earlier ones.
func NewStateCatalog(states []State) *StateCatalog {
	c := &StateCatalog{
		bySlug: make(map[stateKey]State, len(states)),
		byName: make(map[stateKey]State, len(states)),
		byType: map[StateType][]State{},
	}
	for _, state := range states {
		c.bySlug[stateKey{state.Type, state.Slug}] = state
		c.byName[stateKey{state.Type, state.Name}] = state
	}
	for _, state := range c.bySlug {
		c.byType[state.Type] = append(c.byType[state.Type], state)
	}
	for stateType := range c.byType {
		rows := c.byType[stateType]
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].Order != rows[j].Order {
				return rows[i].Order < rows[j].Order
			}
			return rows[i].Slug < rows[j].Slug
		})
	}
	return c
}

// LookupState returns the canonical row for one (type, slug) pair.
func (c *StateCatalog) LookupState(stateType StateType, slug string) (State, bool) {
	if c == nil {
		return State{}, false
	}
	state, ok := c.bySlug[stateKey{stateType, slug}]
	return state, ok
}

// LookupStateByName returns the canonical row for one (type, name) pair.
func (c *StateCatalog) LookupStateByName(stateType StateType, name string) (State, bool) {
	if c == nil {
		return State{}, false
	}
	state, ok := c.byName[stateKey{stateType, name}]
	return state, ok
}

// States returns one state machine's rows in order.
func (c *StateCatalog) States(stateType StateType) []State {
	if c == nil {
		return nil
	}
	return append([]State(nil), c.byType[stateType]...)
}
