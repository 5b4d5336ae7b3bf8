package common

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/vidiannovantry/datatracker/internal/app"
	"github.com/vidiannovantry/datatracker/internal/dashboard"
	"github.com/vidiannovantry/datatracker/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service search and dashboard APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// SearchDocuments runs one document search.
func (a *AppServiceAdapter) SearchDocuments(ctx context.Context, in SearchRequest) (SearchResult, error) {
	if err := a.ready(); err != nil {
		return SearchResult{}, err
	}
	result, err := a.service.Search(ctx, in.toQuery())
	if err != nil {
		return SearchResult{}, mapAppError("search documents", err)
	}
	return SearchResult{
		Query:     result.Query.Values().Encode(),
		Total:     result.Total,
		Truncated: result.Truncated,
		Cached:    result.Cached,
		Rows:      mapDocumentRows(result.Rows),
	}, nil
}

// ADWorkload returns the workload dashboard across active ADs.
func (a *AppServiceAdapter) ADWorkload(ctx context.Context) (Workload, error) {
	if err := a.ready(); err != nil {
		return Workload{}, err
	}
	workload, err := a.service.ADWorkload(ctx)
	if err != nil {
		return Workload{}, mapAppError("ad workload", err)
	}
	return mapWorkload(workload), nil
}

// DocsForAD returns one responsible party's ranked documents.
func (a *AppServiceAdapter) DocsForAD(ctx context.Context, nameKey string) (ADDocuments, error) {
	if err := a.ready(); err != nil {
		return ADDocuments{}, err
	}
	nameKey = strings.TrimSpace(nameKey)
	if nameKey == "" {
		return ADDocuments{}, fmt.Errorf("docs for ad: name key is required: %w", ErrInvalidRequest)
	}
	docs, err := a.service.DocsForAD(ctx, nameKey)
	if err != nil {
		return ADDocuments{}, mapAppError("docs for ad", err)
	}
	return ADDocuments{
		AD:        mapParty(docs.AD),
		Truncated: docs.Truncated,
		Rows:      mapDocumentRows(docs.Rows),
	}, nil
}

// DraftsInLastCall lists drafts in IETF last call.
func (a *AppServiceAdapter) DraftsInLastCall(ctx context.Context) (DraftList, error) {
	if err := a.ready(); err != nil {
		return DraftList{}, err
	}
	list, err := a.service.DraftsInLastCall(ctx)
	if err != nil {
		return DraftList{}, mapAppError("drafts in last call", err)
	}
	return mapDraftList(list), nil
}

// DraftsInIESGProcess lists drafts grouped by active IESG state.
func (a *AppServiceAdapter) DraftsInIESGProcess(ctx context.Context) ([]IESGStateGroup, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	groups, err := a.service.DraftsInIESGProcess(ctx)
	if err != nil {
		return nil, mapAppError("drafts in iesg process", err)
	}
	out := make([]IESGStateGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, IESGStateGroup{
			State:     g.State.Slug,
			StateName: g.State.Name,
			Rows:      mapDocumentRows(g.Rows),
		})
	}
	return out, nil
}

// RecentDrafts lists drafts with a new revision in the last days days.
func (a *AppServiceAdapter) RecentDrafts(ctx context.Context, days int) (DraftList, error) {
	if err := a.ready(); err != nil {
		return DraftList{}, err
	}
	list, err := a.service.RecentDrafts(ctx, days)
	if err != nil {
		return DraftList{}, mapAppError("recent drafts", err)
	}
	return mapDraftList(list), nil
}

// IndexAllDrafts returns every draft name grouped by draft state.
func (a *AppServiceAdapter) IndexAllDrafts(ctx context.Context) ([]DraftIndexCategory, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	categories, err := a.service.IndexAllDrafts(ctx)
	if err != nil {
		return nil, mapAppError("index all drafts", err)
	}
	out := make([]DraftIndexCategory, 0, len(categories))
	for _, c := range categories {
		out = append(out, DraftIndexCategory{
			State:   c.State.Slug,
			Heading: c.Heading,
			Names:   append([]string{}, c.Names...),
		})
	}
	return out, nil
}

// IndexActiveDrafts returns active drafts grouped by owning group.
func (a *AppServiceAdapter) IndexActiveDrafts(ctx context.Context) ([]ActiveDraftGroup, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	groups, err := a.service.IndexActiveDrafts(ctx)
	if err != nil {
		return nil, mapAppError("index active drafts", err)
	}
	out := make([]ActiveDraftGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, ActiveDraftGroup{
			Acronym: g.Acronym,
			Name:    g.Name,
			Rows:    mapDocumentRows(g.Rows),
		})
	}
	return out, nil
}

// SuggestDocuments returns document or alias name completions for one document type.
func (a *AppServiceAdapter) SuggestDocuments(ctx context.Context, in SuggestRequest) ([]Suggestion, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	docType := strings.ToLower(strings.TrimSpace(in.DocType))
	if docType == "" {
		docType = string(domain.DocTypeDraft)
	}
	var (
		suggestions []app.Suggestion
		err         error
	)
	switch strings.ToLower(strings.TrimSpace(in.Model)) {
	case "", SuggestModelDocument:
		suggestions, err = a.service.SuggestDocuments(ctx, in.Query, domain.DocType(docType))
	case SuggestModelAlias:
		suggestions, err = a.service.SuggestAliases(ctx, in.Query, domain.DocType(docType))
	default:
		return nil, fmt.Errorf("%w: unknown suggest model %q", ErrInvalidRequest, in.Model)
	}
	if err != nil {
		return nil, mapAppError("suggest documents", err)
	}
	out := make([]Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, Suggestion{ID: s.ID, Text: s.Text})
	}
	return out, nil
}

// ResolveName maps a free-form name to one document or a fallback search.
func (a *AppServiceAdapter) ResolveName(ctx context.Context, name string) (NameResolution, error) {
	if err := a.ready(); err != nil {
		return NameResolution{}, err
	}
	res, err := a.service.ResolveName(ctx, name)
	if err != nil {
		return NameResolution{}, mapAppError("resolve name", err)
	}
	out := NameResolution{
		Input:    res.Input,
		Name:     res.Name,
		Rev:      res.Rev,
		Location: res.Location,
	}
	if res.Query != nil {
		out.Search = res.Query.Values().Encode()
	}
	return out, nil
}

// ready reports whether the adapter has a backing service.
func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrServiceUnavailable)
	}
	return nil
}

// parseSearchValues decodes form values through the app-level parser.
func parseSearchValues(values url.Values) app.SearchQuery {
	return app.ParseSearchQuery(values)
}

// searchRequestFromQuery maps one app query onto its transport form.
func searchRequestFromQuery(q app.SearchQuery) SearchRequest {
	req := SearchRequest{
		Name:         q.Name,
		RFCs:         q.RFCs,
		ActiveDrafts: q.ActiveDrafts,
		OldDrafts:    q.OldDrafts,
		By:           string(q.By),
		Author:       q.Author,
		Group:        q.Group,
		Area:         q.Area,
		AD:           q.AD,
		State:        q.State,
		Substate:     q.Substate,
		IRTFState:    q.IRTFState,
		Stream:       q.Stream,
		Sort:         q.Sort,
	}
	for _, t := range q.DocTypes {
		req.DocTypes = append(req.DocTypes, string(t))
	}
	return req
}

// toQuery maps one transport search onto the app query.
func (in SearchRequest) toQuery() app.SearchQuery {
	q := app.SearchQuery{
		Name:         in.Name,
		RFCs:         in.RFCs,
		ActiveDrafts: in.ActiveDrafts,
		OldDrafts:    in.OldDrafts,
		By:           app.SearchBy(strings.TrimSpace(in.By)),
		Author:       in.Author,
		Group:        in.Group,
		Area:         in.Area,
		AD:           in.AD,
		State:        in.State,
		Substate:     in.Substate,
		IRTFState:    in.IRTFState,
		Stream:       in.Stream,
		Sort:         in.Sort,
	}
	for _, t := range in.DocTypes {
		q.DocTypes = append(q.DocTypes, domain.DocType(t))
	}
	return q
}

// mapDocumentRows maps app result rows onto transport rows.
func mapDocumentRows(rows []app.DocumentRow) []DocumentRow {
	out := make([]DocumentRow, 0, len(rows))
	for _, row := range rows {
		doc := row.Document
		out = append(out, DocumentRow{
			Name:            doc.Name,
			Type:            string(doc.Type),
			Title:           doc.Title,
			Rev:             doc.Rev,
			RFCNumber:       doc.RFCNumber,
			Group:           doc.Group,
			Stream:          doc.Stream,
			Status:          row.Status,
			AD:              row.ADName,
			Pages:           doc.Pages,
			Tags:            append([]string(nil), doc.Tags...),
			Time:            doc.Time,
			Heading:         row.SearchHeading,
			LastCallExpires: row.LastCallExpires,
		})
	}
	return out
}

func mapDraftList(list app.DraftList) DraftList {
	return DraftList{
		Days:  list.Days,
		Pages: list.Pages,
		Rows:  mapDocumentRows(list.Rows),
	}
}

func mapParty(p domain.Person) Party {
	return Party{ID: p.ID, Name: p.PlainName(), NameKey: p.NameKey()}
}

// mapWorkload maps the dashboard aggregate onto its transport form.
func mapWorkload(w dashboard.Workload) Workload {
	out := Workload{
		ComputedAt: w.ComputedAt,
		WindowDays: int(w.Window.Hours() / 24),
		Parties:    make([]Party, 0, len(w.Parties)),
		Sections:   make([]WorkloadSection, 0, len(w.Sections)),
	}
	for _, p := range w.Parties {
		out.Parties = append(out.Parties, mapParty(p))
	}
	for _, section := range w.Sections {
		s := WorkloadSection{
			GroupType: string(section.GroupType),
			Buckets:   make([]BucketHeader, 0, len(section.Buckets)),
			Rows:      make([]WorkloadRow, 0, len(section.Rows)),
			Sums:      make([]WorkloadCell, 0, len(section.Sums)),
		}
		for _, b := range section.Buckets {
			s.Buckets = append(s.Buckets, mapBucketHeader(b))
		}
		for _, row := range section.Rows {
			r := WorkloadRow{Party: mapParty(row.Party), Cells: make([]WorkloadCell, 0, len(row.Cells))}
			for _, c := range row.Cells {
				r.Cells = append(r.Cells, WorkloadCell{
					Bucket:  string(c.Bucket.Key),
					Current: c.Current,
					Prior:   c.Prior,
					Diff:    append([]string(nil), c.Diff...),
				})
			}
			s.Rows = append(s.Rows, r)
		}
		for _, sum := range section.Sums {
			s.Sums = append(s.Sums, WorkloadCell{
				Bucket:  string(sum.Bucket.Key),
				Current: sum.Current,
				Prior:   sum.Prior,
			})
		}
		out.Sections = append(out.Sections, s)
	}
	return out
}

func mapBucketHeader(b dashboard.BucketHeader) BucketHeader {
	return BucketHeader{
		Key:   string(b.Key),
		Short: b.Short,
		Label: b.Label,
		Trend: string(b.Trend),
	}
}

// mapAppError maps app/domain errors onto transport sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, app.ErrInvalidSearch),
		errors.Is(err, app.ErrInvalidDays),
		errors.Is(err, domain.ErrInvalidDocType),
		errors.Is(err, domain.ErrInvalidState):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
