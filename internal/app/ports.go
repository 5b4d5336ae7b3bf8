package app

import (
	"context"
	"time"

	"github.com/vidiannovantry/datatracker/internal/domain"
)

// Repository represents the document store used by search, views, and the dashboard.
type Repository interface {
	UpsertPerson(context.Context, domain.Person) error
	GetPerson(context.Context, string) (domain.Person, error)
	ListPersons(context.Context) ([]domain.Person, error)
	UpsertRole(context.Context, domain.Role) error
	ListRoles(context.Context) ([]domain.Role, error)
	UpsertGroup(context.Context, domain.Group) error
	ListGroups(context.Context) ([]domain.Group, error)

	UpsertState(context.Context, domain.State) error
	ListStates(context.Context, domain.StateType) ([]domain.State, error)

	UpsertDocument(context.Context, domain.Document) error
	GetDocument(context.Context, string) (domain.Document, error)
	ListDocuments(context.Context, DocumentFilter) ([]domain.Document, error)
	ListResponsibleIDs(context.Context) ([]string, error)
	FindAliases(context.Context, AliasMatch, string, int) ([]AliasRow, error)
	ListAliasesByDraftState(context.Context, string) ([]AliasRow, error)
	SuggestAliases(context.Context, domain.DocType, []string, int) ([]AliasRow, error)

	CreateDocEvent(context.Context, domain.DocEvent) error
	LatestDocEvent(context.Context, string, []domain.EventType) (domain.DocEvent, error)
	ListDocEvents(context.Context, EventFilter) ([]domain.DocEvent, error)
}

// StateRef names one state by machine and slug.
type StateRef struct {
	Type domain.StateType
	Slug string
}

// DocumentOrder selects the store-side ordering of ListDocuments.
type DocumentOrder string

// DocumentOrder values.
const (
	OrderByName     DocumentOrder = "name"
	OrderByTime     DocumentOrder = "time"
	OrderByTimeDesc DocumentOrder = "-time"
)

// DocumentFilter is the document query built from search input.
// Zero-valued fields do not constrain the result. DraftStates restricts drafts only;
// documents of other types always pass it.
type DocumentFilter struct {
	Types          []domain.DocType
	DraftStates    []string
	NameContains   string
	AuthorContains string
	Group          string
	Area           string
	ResponsibleID  string
	States         []StateRef
	Tag            string
	NoIESGSubstate bool
	Stream         string
	Names          []string
	NameTokens     []string
	Order          DocumentOrder
	Limit          int
}

// AliasMatch selects how FindAliases compares names.
type AliasMatch string

// AliasMatch values, all case-insensitive.
const (
	AliasExact    AliasMatch = "exact"
	AliasPrefix   AliasMatch = "prefix"
	AliasContains AliasMatch = "contains"
)

// AliasRow pairs one alias with the document it names.
type AliasRow struct {
	Name    string
	DocName string
}

// EventFilter selects document events.
type EventFilter struct {
	DocName string
	Types   []domain.EventType
	Since   time.Time
}
