// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrServiceUnavailable reports a missing backing service.
var ErrServiceUnavailable = errors.New("service unavailable")

// SearchRequest captures one document search. Field names follow the search form parameters.
type SearchRequest struct {
	Name         string   `json:"name,omitempty"`
	RFCs         bool     `json:"rfcs,omitempty"`
	ActiveDrafts bool     `json:"activedrafts,omitempty"`
	OldDrafts    bool     `json:"olddrafts,omitempty"`
	By           string   `json:"by,omitempty"`
	Author       string   `json:"author,omitempty"`
	Group        string   `json:"group,omitempty"`
	Area         string   `json:"area,omitempty"`
	AD           string   `json:"ad,omitempty"`
	State        string   `json:"state,omitempty"`
	Substate     string   `json:"substate,omitempty"`
	IRTFState    string   `json:"irtfstate,omitempty"`
	Stream       string   `json:"stream,omitempty"`
	DocTypes     []string `json:"doctypes,omitempty"`
	Sort         string   `json:"sort,omitempty"`
}

// Suggest models select what a completion lookup matches against.
const (
	SuggestModelDocument = "document"
	SuggestModelAlias    = "docalias"
)

// SuggestRequest captures one document-name completion lookup. Model is
// SuggestModelDocument (the default) or SuggestModelAlias.
type SuggestRequest struct {
	Query   string
	DocType string
	Model   string
}

// DocumentRow is one document in a result table.
type DocumentRow struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	Rev             string     `json:"rev,omitempty"`
	RFCNumber       int        `json:"rfc_number,omitempty"`
	Group           string     `json:"group,omitempty"`
	Stream          string     `json:"stream,omitempty"`
	Status          string     `json:"status,omitempty"`
	AD              string     `json:"ad,omitempty"`
	Pages           int        `json:"pages,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Time            time.Time  `json:"time"`
	Heading         string     `json:"heading,omitempty"`
	LastCallExpires *time.Time `json:"last_call_expires,omitempty"`
}

// SearchResult is one page of document search output.
type SearchResult struct {
	Query     string        `json:"query"`
	Total     int           `json:"total"`
	Truncated bool          `json:"truncated"`
	Cached    bool          `json:"cached"`
	Rows      []DocumentRow `json:"rows"`
}

// Party describes one responsible party.
type Party struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	NameKey string `json:"name_key"`
}

// BucketHeader describes one dashboard column.
type BucketHeader struct {
	Key   string `json:"key"`
	Short string `json:"short"`
	Label string `json:"label"`
	Trend string `json:"trend"`
}

// WorkloadCell holds current and prior counts for one bucket. Diff lists documents
// that entered (+name) or left (-name) the bucket within the window.
type WorkloadCell struct {
	Bucket  string   `json:"bucket"`
	Current int      `json:"current"`
	Prior   int      `json:"prior"`
	Diff    []string `json:"diff,omitempty"`
}

// WorkloadRow holds one party's cells within a section.
type WorkloadRow struct {
	Party Party          `json:"party"`
	Cells []WorkloadCell `json:"cells"`
}

// WorkloadSection is one document group of the dashboard.
type WorkloadSection struct {
	GroupType string         `json:"group_type"`
	Buckets   []BucketHeader `json:"buckets"`
	Rows      []WorkloadRow  `json:"rows"`
	Sums      []WorkloadCell `json:"sums"`
}

// Workload is the AD workload dashboard.
type Workload struct {
	ComputedAt time.Time         `json:"computed_at"`
	WindowDays int               `json:"window_days"`
	Parties    []Party           `json:"parties"`
	Sections   []WorkloadSection `json:"sections"`
}

// ADDocuments is one responsible party's ranked document list.
type ADDocuments struct {
	AD        Party         `json:"ad"`
	Truncated bool          `json:"truncated"`
	Rows      []DocumentRow `json:"rows"`
}

// DraftList is a document list with its page total.
type DraftList struct {
	Days  int           `json:"days,omitempty"`
	Pages int           `json:"pages"`
	Rows  []DocumentRow `json:"rows"`
}

// IESGStateGroup holds drafts in one IESG state.
type IESGStateGroup struct {
	State     string        `json:"state"`
	StateName string        `json:"state_name"`
	Rows      []DocumentRow `json:"rows"`
}

// DraftIndexCategory is one heading of the all-drafts index.
type DraftIndexCategory struct {
	State   string   `json:"state"`
	Heading string   `json:"heading"`
	Names   []string `json:"names"`
}

// ActiveDraftGroup lists one group's active drafts. Acronym is empty for individual submissions.
type ActiveDraftGroup struct {
	Acronym string        `json:"acronym"`
	Name    string        `json:"name"`
	Rows    []DocumentRow `json:"rows"`
}

// Suggestion is one document completion.
type Suggestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// NameResolution is the outcome of resolving a free-form document name. Name is set
// when one document matched; otherwise Search carries the fallback search parameters.
type NameResolution struct {
	Input    string `json:"input"`
	Name     string `json:"name,omitempty"`
	Rev      string `json:"rev,omitempty"`
	Search   string `json:"search,omitempty"`
	Location string `json:"location"`
}

// DocumentSearcher runs document searches.
type DocumentSearcher interface {
	SearchDocuments(context.Context, SearchRequest) (SearchResult, error)
}

// WorkloadReader serves the AD dashboard views.
type WorkloadReader interface {
	ADWorkload(context.Context) (Workload, error)
	DocsForAD(context.Context, string) (ADDocuments, error)
}

// DraftListReader serves the fixed draft listings.
type DraftListReader interface {
	DraftsInLastCall(context.Context) (DraftList, error)
	DraftsInIESGProcess(context.Context) ([]IESGStateGroup, error)
	RecentDrafts(context.Context, int) (DraftList, error)
	IndexAllDrafts(context.Context) ([]DraftIndexCategory, error)
	IndexActiveDrafts(context.Context) ([]ActiveDraftGroup, error)
}

// NameResolver serves name completion and lookup.
type NameResolver interface {
	SuggestDocuments(context.Context, SuggestRequest) ([]Suggestion, error)
	ResolveName(context.Context, string) (NameResolution, error)
}

// DatatrackerService is the full app-facing surface served by transports.
type DatatrackerService interface {
	DocumentSearcher
	WorkloadReader
	DraftListReader
	NameResolver
}

// SearchRequestFromValues decodes search form parameters, including legacy spellings.
func SearchRequestFromValues(values url.Values) SearchRequest {
	return searchRequestFromQuery(parseSearchValues(values))
}
