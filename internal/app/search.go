package app

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vidiannovantry/datatracker/internal/domain"
)

// SearchBy selects which single filter field a search applies.
type SearchBy string

// SearchBy values.
const (
	SearchByNone      SearchBy = ""
	SearchByAuthor    SearchBy = "author"
	SearchByGroup     SearchBy = "group"
	SearchByArea      SearchBy = "area"
	SearchByAD        SearchBy = "ad"
	SearchByState     SearchBy = "state"
	SearchByIRTFState SearchBy = "irtfstate"
	SearchByStream    SearchBy = "stream"
)

var validSearchBy = []SearchBy{
	SearchByAuthor, SearchByGroup, SearchByArea, SearchByAD, SearchByState, SearchByIRTFState, SearchByStream,
}

// NoSubstate is the substate value that matches documents carrying no IESG substate tag.
const NoSubstate = "0"

// Sort fields accepted by SearchQuery.Sort; a leading "-" sorts descending.
const (
	SortDocument = "document"
	SortTitle    = "title"
	SortDate     = "date"
	SortStatus   = "status"
	SortAD       = "ad"
)

var validSortFields = []string{SortDocument, SortTitle, SortDate, SortStatus, SortAD}

// OldDraftStates lists draft states included by the "old drafts" search option.
var OldDraftStates = []string{domain.DraftReplaced, domain.DraftExpired, domain.DraftAuthRm, domain.DraftIETFRm}

// SearchQuery holds document search input.
type SearchQuery struct {
	Name         string
	RFCs         bool
	ActiveDrafts bool
	OldDrafts    bool
	By           SearchBy
	Author       string
	Group        string
	Area         string
	AD           string
	State        string
	Substate     string
	IRTFState    string
	Stream       string
	DocTypes     []domain.DocType
	Sort         string
}

// legacyParams maps old parameter spellings onto current field names.
var legacyParams = map[string]string{
	"activeDrafts": "activedrafts",
	"oldDrafts":    "olddrafts",
	"subState":     "substate",
}

// ParseSearchQuery decodes search parameters, accepting legacy parameter names.
func ParseSearchQuery(values url.Values) SearchQuery {
	params := url.Values{}
	for key, vals := range values {
		params[key] = append([]string(nil), vals...)
	}
	for legacy, current := range legacyParams {
		if v, ok := values[legacy]; ok {
			params[current] = append([]string(nil), v...)
		}
	}
	q := SearchQuery{
		Name:         params.Get("name"),
		RFCs:         parseCheckbox(params.Get("rfcs")),
		ActiveDrafts: parseCheckbox(params.Get("activedrafts")),
		OldDrafts:    parseCheckbox(params.Get("olddrafts")),
		By:           SearchBy(strings.TrimSpace(params.Get("by"))),
		Author:       params.Get("author"),
		Group:        params.Get("group"),
		Area:         params.Get("area"),
		AD:           params.Get("ad"),
		State:        params.Get("state"),
		Substate:     params.Get("substate"),
		IRTFState:    params.Get("irtfstate"),
		Stream:       params.Get("stream"),
		Sort:         params.Get("sort"),
	}
	for _, raw := range params["doctypes"] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				q.DocTypes = append(q.DocTypes, domain.DocType(part))
			}
		}
	}
	return q
}

// parseCheckbox reports whether a form checkbox value is set.
func parseCheckbox(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

var (
	draftExtensionPattern = regexp.MustCompile(`\.txt$`)
	draftRevisionPattern  = regexp.MustCompile(`-\d\d$`)
)

// NormalizeDraftName trims a draft name and drops a ".txt" extension and a trailing revision.
func NormalizeDraftName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = draftExtensionPattern.ReplaceAllString(name, "")
	return draftRevisionPattern.ReplaceAllString(name, "")
}

// Clean returns a normalized copy: By resets when its field is empty and every
// filter field other than the selected one is blanked.
func (q SearchQuery) Clean() SearchQuery {
	q.Name = NormalizeDraftName(q.Name)
	for _, field := range []*string{&q.Author, &q.Group, &q.Area, &q.AD, &q.State, &q.Substate, &q.IRTFState, &q.Stream, &q.Sort} {
		*field = strings.TrimSpace(*field)
	}
	q.Group = strings.ToLower(q.Group)
	q.Area = strings.ToLower(q.Area)
	q.Stream = strings.ToLower(q.Stream)

	switch q.By {
	case SearchByAuthor:
		if q.Author == "" {
			q.By = SearchByNone
		}
	case SearchByGroup:
		if q.Group == "" {
			q.By = SearchByNone
		}
	case SearchByArea:
		if q.Area == "" {
			q.By = SearchByNone
		}
	case SearchByAD:
		if q.AD == "" {
			q.By = SearchByNone
		}
	case SearchByState:
		if q.State == "" && q.Substate == "" {
			q.By = SearchByNone
		}
	case SearchByIRTFState:
		if q.IRTFState == "" {
			q.By = SearchByNone
		}
	case SearchByStream:
		if q.Stream == "" {
			q.By = SearchByNone
		}
	}
	if q.By != SearchByAuthor {
		q.Author = ""
	}
	if q.By != SearchByGroup {
		q.Group = ""
	}
	if q.By != SearchByArea {
		q.Area = ""
	}
	if q.By != SearchByAD {
		q.AD = ""
	}
	if q.By != SearchByState {
		q.State, q.Substate = "", ""
	}
	if q.By != SearchByIRTFState {
		q.IRTFState = ""
	}
	if q.By != SearchByStream {
		q.Stream = ""
	}

	types := make([]domain.DocType, 0, len(q.DocTypes))
	for _, t := range q.DocTypes {
		t = domain.DocType(strings.ToLower(strings.TrimSpace(string(t))))
		if t != "" && !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	slices.Sort(types)
	q.DocTypes = types
	return q
}

// Validate checks choice fields against known values and the state catalog.
func (q SearchQuery) Validate(catalog *domain.StateCatalog) error {
	if q.By != SearchByNone && !slices.Contains(validSearchBy, q.By) {
		return fmt.Errorf("%w: unknown by %q", ErrInvalidSearch, q.By)
	}
	searchable := domain.SearchableDocTypes()
	for _, t := range q.DocTypes {
		if !slices.Contains(searchable, t) {
			return fmt.Errorf("%w: unknown doctype %q", ErrInvalidSearch, t)
		}
	}
	if q.State != "" {
		if _, ok := catalog.LookupState(domain.StateTypeDraftIESG, q.State); !ok {
			return fmt.Errorf("%w: unknown state %q", ErrInvalidSearch, q.State)
		}
	}
	if q.IRTFState != "" {
		if _, ok := catalog.LookupState(domain.StateTypeDraftIRTF, q.IRTFState); !ok {
			return fmt.Errorf("%w: unknown irtfstate %q", ErrInvalidSearch, q.IRTFState)
		}
	}
	if q.Substate != "" && q.Substate != NoSubstate && !slices.Contains(domain.IESGSubstateTags, q.Substate) {
		return fmt.Errorf("%w: unknown substate %q", ErrInvalidSearch, q.Substate)
	}
	if q.Sort != "" {
		if field, _ := parseSort(q.Sort); !slices.Contains(validSortFields, field) {
			return fmt.Errorf("%w: unknown sort %q", ErrInvalidSearch, q.Sort)
		}
	}
	return nil
}

// CacheKey returns a canonical key for one cleaned query.
func (q SearchQuery) CacheKey() string {
	return "search?" + q.Values().Encode()
}

// Values encodes the query as URL parameters, omitting empty fields.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("name", q.Name)
	set("by", string(q.By))
	set("author", q.Author)
	set("group", q.Group)
	set("area", q.Area)
	set("ad", q.AD)
	set("state", q.State)
	set("substate", q.Substate)
	set("irtfstate", q.IRTFState)
	set("stream", q.Stream)
	set("sort", q.Sort)
	set("rfcs", boolParam(q.RFCs))
	set("activedrafts", boolParam(q.ActiveDrafts))
	set("olddrafts", boolParam(q.OldDrafts))
	for _, t := range q.DocTypes {
		v.Add("doctypes", string(t))
	}
	return v
}

func boolParam(on bool) string {
	if on {
		return "on"
	}
	return ""
}

// AllowedDraftStates returns the draft states selected by the rfc/active/old options.
func (q SearchQuery) AllowedDraftStates() []string {
	states := []string{}
	if q.RFCs {
		states = append(states, domain.DraftRFC)
	}
	if q.ActiveDrafts {
		states = append(states, domain.DraftActive)
	}
	if q.OldDrafts {
		states = append(states, OldDraftStates...)
	}
	return states
}

// Filter builds the store filter for a cleaned query. It reports false when no
// document type is selected, in which case the result is empty.
func (q SearchQuery) Filter() (DocumentFilter, bool) {
	types := []domain.DocType{}
	if q.RFCs || q.ActiveDrafts || q.OldDrafts {
		types = append(types, domain.DocTypeDraft)
	}
	types = append(types, q.DocTypes...)
	if len(types) == 0 {
		return DocumentFilter{}, false
	}
	f := DocumentFilter{
		Types:        types,
		DraftStates:  q.AllowedDraftStates(),
		NameContains: q.Name,
		Order:        OrderByTimeDesc,
	}
	switch q.By {
	case SearchByAuthor:
		f.AuthorContains = q.Author
	case SearchByGroup:
		f.Group = q.Group
	case SearchByArea:
		f.Area = q.Area
	case SearchByAD:
		f.ResponsibleID = q.AD
	case SearchByState:
		if q.State != "" {
			f.States = append(f.States, StateRef{Type: domain.StateTypeDraftIESG, Slug: q.State})
		}
		switch q.Substate {
		case "":
		case NoSubstate:
			f.NoIESGSubstate = true
		default:
			f.Tag = q.Substate
		}
	case SearchByIRTFState:
		f.States = append(f.States, StateRef{Type: domain.StateTypeDraftIRTF, Slug: q.IRTFState})
	case SearchByStream:
		f.Stream = q.Stream
	}
	return f, true
}

// DocumentRow is one document plus the derived columns of a result table.
// LastCallExpires is set only by the IESG process view.
type DocumentRow struct {
	Document        domain.Document
	Status          string
	StatusRank      int
	ADName          string
	SearchHeading   string
	LastCallExpires *time.Time
}

// SearchResult holds one page of search output.
type SearchResult struct {
	Query     SearchQuery
	Rows      []DocumentRow
	Total     int
	Truncated bool
	Cached    bool
}

// Search cleans, validates, and runs one document search, serving repeats from the result cache.
func (s *Service) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	q = q.Clean()
	catalog, err := s.stateCatalog(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	if err := q.Validate(catalog); err != nil {
		return SearchResult{}, err
	}
	key := q.CacheKey()
	if cached, ok := s.cache.get(key); ok {
		if result, ok := cached.(SearchResult); ok {
			s.metrics.observeSearch(true)
			result.Cached = true
			return result, nil
		}
	}
	s.metrics.observeSearch(false)

	docs, err := s.retrieve(ctx, q)
	if err != nil {
		return SearchResult{}, err
	}
	rows, err := s.documentRows(ctx, docs)
	if err != nil {
		return SearchResult{}, err
	}
	sortRows(rows, q.Sort)
	result := SearchResult{Query: q, Total: len(rows)}
	result.Rows, result.Truncated = capRows(rows, s.maxResults)
	s.cache.set(key, result, s.cacheTTL)
	s.logger.Debug("search results computed", "query", key, "total", result.Total)
	return result, nil
}

// retrieve runs a cleaned query against the store.
func (s *Service) retrieve(ctx context.Context, q SearchQuery) ([]domain.Document, error) {
	filter, ok := q.Filter()
	if !ok {
		return []domain.Document{}, nil
	}
	docs, err := s.repo.ListDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// documentRows derives display columns for documents.
func (s *Service) documentRows(ctx context.Context, docs []domain.Document) ([]DocumentRow, error) {
	persons, err := s.repo.ListPersons(ctx)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	names := make(map[string]string, len(persons))
	for _, p := range persons {
		names[p.ID] = p.PlainName()
	}
	rows := make([]DocumentRow, 0, len(docs))
	for _, doc := range docs {
		status, rank := documentStatus(doc)
		rows = append(rows, DocumentRow{
			Document:   doc,
			Status:     status,
			StatusRank: rank,
			ADName:     names[doc.ResponsibleID],
		})
	}
	return rows, nil
}

// documentStatus returns the status column and its rank; lower ranks are earlier in review.
func documentStatus(doc domain.Document) (string, int) {
	switch doc.Type {
	case domain.DocTypeDraft:
		if doc.IsRFC() {
			return "RFC " + strconv.Itoa(doc.RFCNumber), 3000
		}
		if iesg, ok := doc.State(domain.StateTypeDraftIESG); ok && iesg.Slug != domain.IESGIDExists {
			return iesg.Name, iesg.Order
		}
		if draft, ok := doc.State(domain.StateTypeDraft); ok {
			return draft.Name, 1000 + draft.Order
		}
	case domain.DocTypeCharter, domain.DocTypeConflRev, domain.DocTypeStatChg:
		if state, ok := doc.State(domain.StateType(doc.Type)); ok {
			return state.Name, 2000 + state.Order
		}
	default:
		if len(doc.States) > 0 {
			return doc.States[0].Name, 2000 + doc.States[0].Order
		}
	}
	return "", 4000
}

// parseSort splits a sort value into field and direction.
func parseSort(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "-") {
		return raw[1:], true
	}
	return raw, false
}

// sortRows orders rows by one sort field, falling back to document name.
func sortRows(rows []DocumentRow, raw string) {
	field, desc := parseSort(raw)
	if field == "" {
		field = SortDocument
	}
	less := func(a, b DocumentRow) int {
		switch field {
		case SortTitle:
			if c := strings.Compare(strings.ToLower(a.Document.Title), strings.ToLower(b.Document.Title)); c != 0 {
				return c
			}
		case SortDate:
			if c := a.Document.Time.Compare(b.Document.Time); c != 0 {
				return c
			}
		case SortStatus:
			if a.StatusRank != b.StatusRank {
				return a.StatusRank - b.StatusRank
			}
		case SortAD:
			if c := strings.Compare(a.ADName, b.ADName); c != 0 {
				return c
			}
		}
		return strings.Compare(a.Document.Name, b.Document.Name)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := less(rows[i], rows[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// capRows truncates rows to limit when limit is positive.
func capRows(rows []DocumentRow, limit int) ([]DocumentRow, bool) {
	if limit > 0 && len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}

// sumPages totals page counts across rows.
func sumPages(rows []DocumentRow) int {
	total := 0
	for _, row := range rows {
		total += row.Document.Pages
	}
	return total
}

// daysAgo returns the instant n days before now.
func daysAgo(now time.Time, n int) time.Time {
	return now.Add(-time.Duration(n) * 24 * time.Hour)
}
