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

	"github.com/vidiannovantry/datatracker/internal/dashboard"
	"github.com/vidiannovantry/datatracker/internal/domain"
)

// ActiveADs returns persons holding the AD role in an active area, ordered by last name.
func (s *Service) ActiveADs(ctx context.Context) ([]domain.Person, error) {
	persons, roles, groups, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	return domain.ActiveADs(persons, roles, groups), nil
}

// ResponsibleParties returns current and past responsible parties: AD and pre-AD role
// holders in active areas plus anyone responsible for a document.
func (s *Service) ResponsibleParties(ctx context.Context) ([]domain.Person, error) {
	persons, roles, groups, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	responsible, err := s.repo.ListResponsibleIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list responsible ids: %w", err)
	}
	ids := map[string]struct{}{}
	for _, id := range responsible {
		ids[id] = struct{}{}
	}
	activeAreas := map[string]struct{}{}
	for _, g := range groups {
		if g.Type == domain.GroupTypeArea && g.State == domain.GroupStateActive {
			activeAreas[g.Acronym] = struct{}{}
		}
	}
	for _, r := range roles {
		if r.Name != domain.RoleAD && r.Name != domain.RolePreAD {
			continue
		}
		if _, ok := activeAreas[r.GroupAcronym]; ok {
			ids[r.PersonID] = struct{}{}
		}
	}
	out := make([]domain.Person, 0, len(ids))
	for _, p := range persons {
		if _, ok := ids[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// directory loads persons, roles, and groups.
func (s *Service) directory(ctx context.Context) ([]domain.Person, []domain.Role, []domain.Group, error) {
	persons, err := s.repo.ListPersons(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list persons: %w", err)
	}
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list roles: %w", err)
	}
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list groups: %w", err)
	}
	return persons, roles, groups, nil
}

// ADWorkload computes the workload dashboard across all active ADs.
func (s *Service) ADWorkload(ctx context.Context) (dashboard.Workload, error) {
	started := s.clock()
	ads, err := s.ActiveADs(ctx)
	if err != nil {
		return dashboard.Workload{}, err
	}
	catalog, err := s.stateCatalog(ctx)
	if err != nil {
		return dashboard.Workload{}, err
	}
	agg := dashboard.NewAggregator(storeSource{svc: s}, catalog, dashboard.Clock(s.clock), s.logger, dashboard.Config{
		StalenessWindow: s.stalenessWindow,
		Seeds:           s.seeds,
	})
	workload, err := agg.Compute(ctx, ads)
	if err != nil {
		return dashboard.Workload{}, err
	}
	total := 0
	for _, section := range workload.Sections {
		for _, sum := range section.Sums {
			total += sum.Current
		}
	}
	s.metrics.setWorkloadDocuments(total)
	s.metrics.observeView("ad_workload", started, s.clock())
	s.logger.Info("ad workload computed", "ads", len(ads), "documents", total)
	return workload, nil
}

// ADDocuments is the ranked document list for one responsible party.
type ADDocuments struct {
	AD        domain.Person
	Rows      []DocumentRow
	Truncated bool
}

// DocsForAD returns one responsible party's documents ranked by dashboard sort key.
// nameKey is the party's Person.NameKey.
func (s *Service) DocsForAD(ctx context.Context, nameKey string) (ADDocuments, error) {
	started := s.clock()
	nameKey = strings.ToLower(strings.TrimSpace(nameKey))
	parties, err := s.ResponsibleParties(ctx)
	if err != nil {
		return ADDocuments{}, err
	}
	var (
		ad    domain.Person
		found bool
	)
	for _, p := range parties {
		if p.NameKey() == nameKey {
			ad, found = p, true
			break
		}
	}
	if !found {
		return ADDocuments{}, fmt.Errorf("ad %q: %w", nameKey, ErrNotFound)
	}

	q := responsibleQuery(ad.ID, SortStatus).Clean()
	docs, err := s.retrieve(ctx, q)
	if err != nil {
		return ADDocuments{}, err
	}
	rows, err := s.documentRows(ctx, docs)
	if err != nil {
		return ADDocuments{}, err
	}
	sortRows(rows, q.Sort)
	out := ADDocuments{AD: ad}
	rows, out.Truncated = capRows(rows, s.maxADResults)

	catalog, err := s.stateCatalog(ctx)
	if err != nil {
		return ADDocuments{}, err
	}
	keyer := dashboard.NewSortKeyer(catalog, storeSource{svc: s}, dashboard.Clock(s.clock), s.logger)
	keys := make(map[string]string, len(rows))
	for _, row := range rows {
		key, err := keyer.Key(ctx, row.Document)
		if err != nil {
			return ADDocuments{}, err
		}
		keys[row.Document.Name] = key
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return keys[rows[i].Document.Name] < keys[rows[j].Document.Name]
	})

	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return ADDocuments{}, fmt.Errorf("list groups: %w", err)
	}
	groupState := make(map[string]string, len(groups))
	for _, g := range groups {
		groupState[g.Acronym] = g.State
	}
	classifier := dashboard.NewClassifier(catalog)
	out.Rows = make([]DocumentRow, 0, len(rows))
	for _, row := range rows {
		if hiddenFromADList(row.Document, groupState) {
			continue
		}
		row.SearchHeading = classifier.BucketOf(row.Document).Label
		out.Rows = append(out.Rows, row)
	}
	s.metrics.observeView("docs_for_ad", started, s.clock())
	return out, nil
}

// hiddenFromADList reports documents dropped from the ranked list: abandoned or replaced
// charters and dead or replaced drafts.
func hiddenFromADList(doc domain.Document, groupState map[string]string) bool {
	switch doc.Type {
	case domain.DocTypeCharter:
		return groupState[doc.Group] == domain.GroupStateAbandon || doc.StateSlug(domain.StateTypeCharter) == "replaced"
	case domain.DocTypeDraft:
		return doc.StateSlug(domain.StateTypeDraftIESG) == domain.IESGDead || doc.StateSlug(domain.StateTypeDraft) == domain.DraftReplaced
	}
	return false
}

// DraftList is a document list with its total page count.
type DraftList struct {
	Rows  []DocumentRow
	Pages int
	Days  int
}

// DraftsInLastCall returns drafts currently in IETF last call.
func (s *Service) DraftsInLastCall(ctx context.Context) (DraftList, error) {
	result, err := s.Search(ctx, SearchQuery{
		By:           SearchByState,
		State:        domain.IESGLastCall,
		RFCs:         true,
		ActiveDrafts: true,
	})
	if err != nil {
		return DraftList{}, err
	}
	return DraftList{Rows: result.Rows, Pages: sumPages(result.Rows)}, nil
}

// IESGStateGroup holds the drafts in one IESG state.
type IESGStateGroup struct {
	State domain.State
	Rows  []DocumentRow
}

// iesgProcessExcluded lists IESG states outside the active process.
var iesgProcessExcluded = []string{domain.IESGIDExists, domain.IESGPublished, domain.IESGDead, domain.IESGWatching, domain.IESGRFCQueue}

// lastCallFallback orders drafts in last call without an expiry before all others.
var lastCallFallback = time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)

// DraftsInIESGProcess groups drafts by active IESG state in state order; each group is
// ordered by document time, except last call, which is ordered by expiry.
func (s *Service) DraftsInIESGProcess(ctx context.Context) ([]IESGStateGroup, error) {
	states, err := s.repo.ListStates(ctx, domain.StateTypeDraftIESG)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	sort.SliceStable(states, func(i, j int) bool { return states[i].Order < states[j].Order })

	out := []IESGStateGroup{}
	for _, state := range states {
		if slices.Contains(iesgProcessExcluded, state.Slug) {
			continue
		}
		docs, err := s.repo.ListDocuments(ctx, DocumentFilter{
			Types:  []domain.DocType{domain.DocTypeDraft},
			States: []StateRef{{Type: domain.StateTypeDraftIESG, Slug: state.Slug}},
			Order:  OrderByTime,
		})
		if err != nil {
			return nil, fmt.Errorf("list documents in %s: %w", state.Slug, err)
		}
		if len(docs) == 0 {
			continue
		}
		rows, err := s.documentRows(ctx, docs)
		if err != nil {
			return nil, err
		}
		if state.Slug == domain.IESGLastCall {
			if err := s.attachLastCallExpiry(ctx, rows); err != nil {
				return nil, err
			}
			sort.SliceStable(rows, func(i, j int) bool {
				return rows[i].LastCallExpires.Before(*rows[j].LastCallExpires)
			})
		}
		out = append(out, IESGStateGroup{State: state, Rows: rows})
	}
	return out, nil
}

// attachLastCallExpiry sets each row's last-call expiry from its latest sent_last_call event.
func (s *Service) attachLastCallExpiry(ctx context.Context, rows []DocumentRow) error {
	for i := range rows {
		expires := lastCallFallback
		ev, ok, err := storeSource{svc: s}.LatestEvent(ctx, rows[i].Document.Name, []domain.EventType{domain.EventSentLastCall})
		if err != nil {
			return fmt.Errorf("latest sent_last_call for %s: %w", rows[i].Document.Name, err)
		}
		if ok && ev.Expires != nil {
			expires = *ev.Expires
		}
		rows[i].LastCallExpires = &expires
	}
	return nil
}

// RecentDrafts returns active drafts with a new revision in the last days days, newest first.
func (s *Service) RecentDrafts(ctx context.Context, days int) (DraftList, error) {
	if days <= 0 {
		return DraftList{}, fmt.Errorf("%w: %d", ErrInvalidDays, days)
	}
	key := "recentdrafts:" + strconv.Itoa(days)
	if cached, ok := s.cache.get(key); ok {
		if list, ok := cached.(DraftList); ok {
			return list, nil
		}
	}

	events, err := s.repo.ListDocEvents(ctx, EventFilter{
		Types: []domain.EventType{domain.EventNewRevision},
		Since: daysAgo(s.clock(), days),
	})
	if err != nil {
		return DraftList{}, fmt.Errorf("list new revisions: %w", err)
	}
	names := []string{}
	for _, ev := range events {
		if !slices.Contains(names, ev.DocName) {
			names = append(names, ev.DocName)
		}
	}
	list := DraftList{Days: days, Rows: []DocumentRow{}}
	if len(names) > 0 {
		docs, err := s.repo.ListDocuments(ctx, DocumentFilter{
			Types:       []domain.DocType{domain.DocTypeDraft},
			Names:       names,
			DraftStates: []string{domain.DraftActive},
		})
		if err != nil {
			return DraftList{}, fmt.Errorf("list recent drafts: %w", err)
		}
		rows, err := s.documentRows(ctx, docs)
		if err != nil {
			return DraftList{}, err
		}
		sortRows(rows, "-"+SortDate)
		list.Rows = rows
		list.Pages = sumPages(rows)
	}
	s.cache.set(key, list, s.slowCacheTTL)
	return list, nil
}

// DraftIndexCategory lists every name in one draft state.
type DraftIndexCategory struct {
	State   domain.State
	Heading string
	Names   []string
}

// draftIndexStates lists the draft states of the full index, in display order.
var draftIndexStates = []string{domain.DraftActive, domain.DraftRFC, domain.DraftExpired, domain.DraftReplaced, domain.DraftAuthRm, domain.DraftIETFRm}

// IndexAllDrafts lists every draft name by draft state. RFC aliases replace the draft
// names they cover, print upper-cased, and sort newest first.
func (s *Service) IndexAllDrafts(ctx context.Context) ([]DraftIndexCategory, error) {
	catalog, err := s.stateCatalog(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DraftIndexCategory, 0, len(draftIndexStates))
	for _, slug := range draftIndexStates {
		state, ok := catalog.LookupState(domain.StateTypeDraft, slug)
		if !ok {
			s.logger.Warn("draft state missing from catalog", "slug", slug)
			continue
		}
		rows, err := s.repo.ListAliasesByDraftState(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("list aliases in %s: %w", slug, err)
		}
		out = append(out, DraftIndexCategory{
			State:   state,
			Heading: draftIndexHeading(state),
			Names:   indexNames(rows),
		})
	}
	return out, nil
}

func draftIndexHeading(state domain.State) string {
	switch state.Slug {
	case domain.DraftRFC:
		return "RFCs"
	case domain.DraftIETFRm, domain.DraftAuthRm:
		return "Internet-Drafts " + state.Name
	default:
		return state.Name + " Internet-Drafts"
	}
}

// indexNames orders alias rows for the draft index and drops draft names covered by another alias.
func indexNames(rows []AliasRow) []string {
	type entry struct {
		name string
		key  string
	}
	entries := make([]entry, 0, len(rows))
	skip := map[string]struct{}{}
	for _, row := range rows {
		name, doc := row.Name, row.DocName
		key := name
		if name != doc {
			if !strings.HasPrefix(name, "rfc") {
				name, doc = doc, name
			}
			skip[doc] = struct{}{}
		}
		if strings.HasPrefix(name, "rfc") {
			if n, err := strconv.Atoi(name[3:]); err == nil {
				name = strings.ToUpper(name)
				key = RFCIndexKey(n)
			}
		}
		entries = append(entries, entry{name: name, key: key})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := skip[e.name]; ok {
			continue
		}
		out = append(out, e.name)
	}
	return out
}

// RFCIndexKey encodes an RFC number so higher numbers sort first.
func RFCIndexKey(number int) string {
	return fmt.Sprintf("%09d", 100000000-number)
}

// ActiveDraftGroup lists the active drafts of one group. Acronym is empty for
// individual submissions.
type ActiveDraftGroup struct {
	Acronym string
	Name    string
	Rows    []DocumentRow
}

const activeIndexCacheKey = "index_active_drafts"

// IndexActiveDrafts lists every active draft grouped by owning group. Groups sort by
// acronym with individual submissions last; drafts sort by name within a group.
func (s *Service) IndexActiveDrafts(ctx context.Context) ([]ActiveDraftGroup, error) {
	if cached, ok := s.cache.get(activeIndexCacheKey); ok {
		if groups, ok := cached.([]ActiveDraftGroup); ok {
			return groups, nil
		}
	}
	started := s.clock()
	docs, err := s.repo.ListDocuments(ctx, DocumentFilter{
		Types:       []domain.DocType{domain.DocTypeDraft},
		DraftStates: []string{domain.DraftActive},
		Order:       OrderByName,
	})
	if err != nil {
		return nil, fmt.Errorf("list active drafts: %w", err)
	}
	rows, err := s.documentRows(ctx, docs)
	if err != nil {
		return nil, err
	}
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	groupNames := make(map[string]string, len(groups))
	for _, g := range groups {
		groupNames[g.Acronym] = g.Name
	}

	byGroup := map[string]*ActiveDraftGroup{}
	out := []*ActiveDraftGroup{}
	for _, row := range rows {
		acronym := row.Document.Group
		group, ok := byGroup[acronym]
		if !ok {
			name := groupNames[acronym]
			if acronym == "" {
				name = "Individual Submissions"
			}
			group = &ActiveDraftGroup{Acronym: acronym, Name: name}
			byGroup[acronym] = group
			out = append(out, group)
		}
		group.Rows = append(group.Rows, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Acronym, out[j].Acronym
		if a == "" || b == "" {
			return b == "" && a != ""
		}
		return a < b
	})
	result := make([]ActiveDraftGroup, 0, len(out))
	for _, group := range out {
		result = append(result, *group)
	}
	s.cache.set(activeIndexCacheKey, result, s.slowCacheTTL)
	s.metrics.observeView("index_active_drafts", started, s.clock())
	return result, nil
}

// Suggestion is one document completion.
type Suggestion struct {
	ID   string
	Text string
}

// SuggestDocuments returns up to 20 documents of docType whose names contain every token of q.
func (s *Service) SuggestDocuments(ctx context.Context, q string, docType domain.DocType) ([]Suggestion, error) {
	if !domain.IsValidDocType(docType) {
		return nil, fmt.Errorf("%w: unknown doctype %q", ErrInvalidSearch, docType)
	}
	tokens := strings.Fields(strings.ToLower(q))
	if len(tokens) == 0 {
		return []Suggestion{}, nil
	}
	docs, err := s.repo.ListDocuments(ctx, DocumentFilter{
		Types:      []domain.DocType{docType},
		NameTokens: tokens,
		Order:      OrderByName,
		Limit:      maxSuggestionResults,
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]Suggestion, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Suggestion{ID: doc.Name, Text: doc.Name})
	}
	return out, nil
}

// SuggestAliases returns up to 20 aliases of docType documents whose alias names
// contain every token of q. RFC aliases of published drafts complete this way.
func (s *Service) SuggestAliases(ctx context.Context, q string, docType domain.DocType) ([]Suggestion, error) {
	if !domain.IsValidDocType(docType) {
		return nil, fmt.Errorf("%w: unknown doctype %q", ErrInvalidSearch, docType)
	}
	tokens := strings.Fields(strings.ToLower(q))
	if len(tokens) == 0 {
		return []Suggestion{}, nil
	}
	rows, err := s.repo.SuggestAliases(ctx, docType, tokens, maxSuggestionResults)
	if err != nil {
		return nil, fmt.Errorf("suggest aliases: %w", err)
	}
	out := make([]Suggestion, 0, len(rows))
	for _, row := range rows {
		out = append(out, Suggestion{ID: row.Name, Text: row.Name})
	}
	return out, nil
}

// NameResolution is the outcome of resolving a free-form document name.
// Exactly one of Name or Query is set.
type NameResolution struct {
	Input    string
	Name     string
	Rev      string
	Query    *SearchQuery
	Location string
}

var (
	nameExtensionPattern = regexp.MustCompile(`^(.+)\.(txt|ps|pdf)$`)
	nameRevisionPattern  = regexp.MustCompile(`^(.+)-([0-9]{2})$`)
)

// ResolveName maps a name to one document, or to a search when no unique alias matches.
func (s *Service) ResolveName(ctx context.Context, name string) (NameResolution, error) {
	input := strings.TrimSpace(name)
	if input == "" {
		return NameResolution{}, fmt.Errorf("%w: empty name", ErrInvalidSearch)
	}
	key := "name:" + strings.ToLower(input)
	if cached, ok := s.cache.get(key); ok {
		if res, ok := cached.(NameResolution); ok {
			return res, nil
		}
	}

	n := strings.ToLower(input)
	if m := nameExtensionPattern.FindStringSubmatch(n); m != nil {
		n = m[1]
	}
	res, err := s.resolveName(ctx, n)
	if err != nil {
		return NameResolution{}, err
	}
	res.Input = input
	s.cache.set(key, res, s.cacheTTL)
	return res, nil
}

func (s *Service) resolveName(ctx context.Context, n string) (NameResolution, error) {
	alias, ok, err := s.findUnique(ctx, n)
	if err != nil {
		return NameResolution{}, err
	}
	if ok {
		return NameResolution{Name: alias.Name, Location: documentLocation(alias.Name, "")}, nil
	}

	if m := nameRevisionPattern.FindStringSubmatch(n); m != nil {
		alias, ok, err := s.findUnique(ctx, m[1])
		if err != nil {
			return NameResolution{}, err
		}
		if ok {
			rev := m[2]
			if !strings.HasPrefix(alias.Name, "rfc") {
				exists, err := s.revisionExists(ctx, alias.DocName, rev)
				if err != nil {
					return NameResolution{}, err
				}
				if exists {
					return NameResolution{Name: alias.Name, Rev: rev, Location: documentLocation(alias.Name, rev)}, nil
				}
			}
			return NameResolution{Name: alias.Name, Location: documentLocation(alias.Name, "")}, nil
		}
	}

	q := nameSearchQuery(n)
	return NameResolution{Query: &q, Location: "/search?" + q.Values().Encode()}, nil
}

// findUnique returns the alias matching n exactly, or the only alias that starts with or contains n.
func (s *Service) findUnique(ctx context.Context, n string) (AliasRow, bool, error) {
	for _, match := range []struct {
		mode  AliasMatch
		limit int
	}{{AliasExact, 1}, {AliasPrefix, 2}, {AliasContains, 2}} {
		rows, err := s.repo.FindAliases(ctx, match.mode, n, match.limit)
		if err != nil {
			return AliasRow{}, false, fmt.Errorf("find aliases: %w", err)
		}
		if match.mode == AliasExact && len(rows) > 0 {
			return rows[0], true, nil
		}
		if len(rows) == 1 {
			return rows[0], true, nil
		}
	}
	return AliasRow{}, false, nil
}

// revisionExists reports whether docName has a recorded revision rev.
func (s *Service) revisionExists(ctx context.Context, docName, rev string) (bool, error) {
	events, err := s.repo.ListDocEvents(ctx, EventFilter{DocName: docName, Types: []domain.EventType{domain.EventNewRevision}})
	if err != nil {
		return false, fmt.Errorf("list revisions: %w", err)
	}
	for _, ev := range events {
		if ev.Rev == rev {
			return true, nil
		}
	}
	return false, nil
}

// nameSearchQuery builds the fallback search for an unresolved name from its type prefix.
func nameSearchQuery(n string) SearchQuery {
	q := SearchQuery{Name: n}
	allDrafts := func() {
		q.RFCs, q.ActiveDrafts, q.OldDrafts = true, true, true
	}
	if strings.HasPrefix(n, "draft") {
		allDrafts()
		return q
	}
	for _, info := range domain.DocTypes() {
		if info.Prefix != "" && strings.HasPrefix(n, info.Prefix) {
			q.DocTypes = []domain.DocType{info.Slug}
			return q
		}
	}
	allDrafts()
	return q
}

// documentLocation returns the document page path for a name and optional revision.
func documentLocation(name, rev string) string {
	if rev != "" {
		return "/doc/" + url.PathEscape(name) + "/" + url.PathEscape(rev) + "/"
	}
	return "/doc/" + url.PathEscape(name) + "/"
}
