package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vidiannovantry/datatracker/internal/adapters/server/common"
)

// stubService provides deterministic datatracker responses for handler tests.
type stubService struct {
	err         error
	search      common.SearchResult
	workload    common.Workload
	adDocs      common.ADDocuments
	lastCall    common.DraftList
	iesg        []common.IESGStateGroup
	recent      common.DraftList
	index       []common.DraftIndexCategory
	activeIndex []common.ActiveDraftGroup
	suggestions []common.Suggestion
	resolution  common.NameResolution

	lastSearch  common.SearchRequest
	lastNameKey string
	lastDays    int
	lastSuggest common.SuggestRequest
	lastName    string
}

func (s *stubService) SearchDocuments(_ context.Context, req common.SearchRequest) (common.SearchResult, error) {
	s.lastSearch = req
	return s.search, s.err
}

func (s *stubService) ADWorkload(context.Context) (common.Workload, error) {
	return s.workload, s.err
}

func (s *stubService) DocsForAD(_ context.Context, nameKey string) (common.ADDocuments, error) {
	s.lastNameKey = nameKey
	return s.adDocs, s.err
}

func (s *stubService) DraftsInLastCall(context.Context) (common.DraftList, error) {
	return s.lastCall, s.err
}

func (s *stubService) DraftsInIESGProcess(context.Context) ([]common.IESGStateGroup, error) {
	return s.iesg, s.err
}

func (s *stubService) RecentDrafts(_ context.Context, days int) (common.DraftList, error) {
	s.lastDays = days
	return s.recent, s.err
}

func (s *stubService) IndexAllDrafts(context.Context) ([]common.DraftIndexCategory, error) {
	return s.index, s.err
}

func (s *stubService) IndexActiveDrafts(context.Context) ([]common.ActiveDraftGroup, error) {
	return s.activeIndex, s.err
}

func (s *stubService) SuggestDocuments(_ context.Context, req common.SuggestRequest) ([]common.Suggestion, error) {
	s.lastSuggest = req
	return s.suggestions, s.err
}

func (s *stubService) ResolveName(_ context.Context, name string) (common.NameResolution, error) {
	s.lastName = name
	return s.resolution, s.err
}

// serve runs one request through the handler.
func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeBody decodes one JSON response body into the requested type.
func decodeBody[T any](t *testing.T, body *strings.Reader) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return out
}

func decodeErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	return decodeBody[ErrorEnvelope](t, strings.NewReader(rec.Body.String()))
}

// TestHandlerSearch verifies query decoding and result rendering.
func TestHandlerSearch(t *testing.T) {
	svc := &stubService{search: common.SearchResult{
		Query: "name=foo",
		Total: 1,
		Rows:  []common.DocumentRow{{Name: "draft-foo", Type: "draft", Time: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}},
	}}
	rec := serve(t, NewHandler(svc), http.MethodGet, "/search?name=foo&activeDrafts=on&by=group&group=tls&doctypes=charter")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content-type = %q", got)
	}
	if !svc.lastSearch.ActiveDrafts || svc.lastSearch.Group != "tls" || svc.lastSearch.Name != "foo" {
		t.Fatalf("unexpected search request %#v", svc.lastSearch)
	}
	out := decodeBody[common.SearchResult](t, strings.NewReader(rec.Body.String()))
	if out.Total != 1 || len(out.Rows) != 1 || out.Rows[0].Name != "draft-foo" {
		t.Fatalf("unexpected body %#v", out)
	}
}

// TestHandlerRoutes verifies every read route reaches the service.
func TestHandlerRoutes(t *testing.T) {
	svc := &stubService{
		workload:    common.Workload{WindowDays: 120},
		adDocs:      common.ADDocuments{AD: common.Party{ID: "p1", NameKey: "alice.example"}},
		lastCall:    common.DraftList{Pages: 20},
		iesg:        []common.IESGStateGroup{{State: "lc"}},
		recent:      common.DraftList{Days: 14},
		index:       []common.DraftIndexCategory{{State: "active", Heading: "Active Internet-Drafts"}},
		activeIndex: []common.ActiveDraftGroup{{Acronym: "tls", Name: "TLS"}},
		suggestions: []common.Suggestion{{ID: "draft-foo", Text: "draft-foo"}},
		resolution:  common.NameResolution{Name: "draft-foo", Location: "/doc/draft-foo/"},
	}
	h := NewHandler(svc)
	cases := []struct {
		target string
		want   string
	}{
		{target: "/ad/workload", want: `"window_days":120`},
		{target: "/ad/alice.example/docs", want: `"name_key":"alice.example"`},
		{target: "/drafts/last-call", want: `"pages":20`},
		{target: "/drafts/iesg-process", want: `"states":[{"state":"lc"`},
		{target: "/drafts/recent?days=14", want: `"days":14`},
		{target: "/drafts/index/", want: `"categories":[`},
		{target: "/drafts/active-index", want: `"groups":[{"acronym":"tls","name":"TLS"`},
		{target: "/docs/suggest?q=foo&type=draft&model=docalias", want: `"suggestions":[{"id":"draft-foo"`},
		{target: "/search/name/draft-foo-03.txt", want: `"location":"/doc/draft-foo/"`},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			rec := serve(t, h, http.MethodGet, tc.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("body = %s, want substring %s", rec.Body.String(), tc.want)
			}
		})
	}
	if svc.lastNameKey != "alice.example" || svc.lastDays != 14 || svc.lastName != "draft-foo-03.txt" {
		t.Fatalf("unexpected recorded args %q %d %q", svc.lastNameKey, svc.lastDays, svc.lastName)
	}
	if svc.lastSuggest != (common.SuggestRequest{Query: "foo", DocType: "draft", Model: "docalias"}) {
		t.Fatalf("unexpected suggest request %#v", svc.lastSuggest)
	}
}

// TestHandlerRecentDraftsDays verifies the days parameter default and validation.
func TestHandlerRecentDraftsDays(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc)
	if rec := serve(t, h, http.MethodGet, "/drafts/recent"); rec.Code != http.StatusOK || svc.lastDays != defaultRecentDays {
		t.Fatalf("default days: status=%d days=%d", rec.Code, svc.lastDays)
	}
	rec := serve(t, h, http.MethodGet, "/drafts/recent?days=week")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env := decodeErrorEnvelope(t, rec); env.Error.Code != "invalid_request" {
		t.Fatalf("code = %q, want invalid_request", env.Error.Code)
	}
}

// TestHandlerRouteGuards verifies unknown routes, methods, and missing services.
func TestHandlerRouteGuards(t *testing.T) {
	h := NewHandler(&stubService{})
	cases := []struct {
		name   string
		method string
		target string
		status int
		code   string
	}{
		{name: "unknown", method: http.MethodGet, target: "/nope", status: http.StatusNotFound, code: "not_found"},
		{name: "empty ad", method: http.MethodGet, target: "/ad//docs", status: http.StatusNotFound, code: "not_found"},
		{name: "nested name", method: http.MethodGet, target: "/search/name/a/b", status: http.StatusNotFound, code: "not_found"},
		{name: "post", method: http.MethodPost, target: "/search", status: http.StatusMethodNotAllowed, code: "method_not_allowed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, h, tc.method, tc.target)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if env := decodeErrorEnvelope(t, rec); env.Error.Code != tc.code {
				t.Fatalf("code = %q, want %q", env.Error.Code, tc.code)
			}
		})
	}
	rec := serve(t, h, http.MethodPut, "/ad/workload")
	if got := rec.Header().Get("Allow"); got != "GET, HEAD" {
		t.Fatalf("Allow = %q", got)
	}

	rec = serve(t, NewHandler(nil), http.MethodGet, "/ad/workload")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

// TestWriteErrorFromMappingBranches verifies error classification.
func TestWriteErrorFromMappingBranches(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{err: nil, status: http.StatusInternalServerError, code: "internal_error"},
		{err: fmt.Errorf("docs for ad: %w", common.ErrNotFound), status: http.StatusNotFound, code: "not_found"},
		{err: fmt.Errorf("search: %w", common.ErrInvalidRequest), status: http.StatusBadRequest, code: "invalid_request"},
		{err: common.ErrServiceUnavailable, status: http.StatusServiceUnavailable, code: "service_unavailable"},
		{err: errors.New("boom"), status: http.StatusInternalServerError, code: "internal_error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeErrorFrom(rec, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("writeErrorFrom(%v) status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		if env := decodeErrorEnvelope(t, rec); env.Error.Code != tc.code {
			t.Fatalf("writeErrorFrom(%v) code = %q, want %q", tc.err, env.Error.Code, tc.code)
		}
	}
}

// TestHandlerServiceErrors verifies service failures surface as structured errors.
func TestHandlerServiceErrors(t *testing.T) {
	h := NewHandler(&stubService{err: fmt.Errorf("docs for ad: %w", common.ErrNotFound)})
	rec := serve(t, h, http.MethodGet, "/ad/nobody/docs")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// TestNormalizePath verifies trimming.
func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"/":                     "",
		" /search/ ":           "search",
		"/drafts/iesg-process/": "drafts/iesg-process",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
