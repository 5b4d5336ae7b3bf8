// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/vidiannovantry/datatracker/internal/adapters/server/common"
)

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	service common.DatatrackerService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the datatracker service.
func NewHandler(service common.DatatrackerService) *Handler {
	return &Handler{service: service}
}

// ServeHTTP routes one versioned API request to the matching handler. Every route is read-only.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)
	route, arg, ok := matchRoute(path)
	if !ok {
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeMethodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	if h.service == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "datatracker service is not configured",
		})
		return
	}

	switch route {
	case "search":
		h.handleSearch(w, r)
	case "search/name":
		h.handleResolveName(w, r, arg)
	case "ad/workload":
		h.handleWorkload(w, r)
	case "ad/docs":
		h.handleDocsForAD(w, r, arg)
	case "drafts/last-call":
		h.handleLastCall(w, r)
	case "drafts/iesg-process":
		h.handleIESGProcess(w, r)
	case "drafts/recent":
		h.handleRecentDrafts(w, r)
	case "drafts/index":
		h.handleIndex(w, r)
	case "drafts/active-index":
		h.handleActiveIndex(w, r)
	case "docs/suggest":
		h.handleSuggest(w, r)
	}
}

// matchRoute resolves one normalized path to a route name and its optional path argument.
func matchRoute(path string) (string, string, bool) {
	switch path {
	case "search", "ad/workload", "drafts/last-call", "drafts/iesg-process", "drafts/recent", "drafts/index", "drafts/active-index", "docs/suggest":
		return path, "", true
	}
	if name, ok := strings.CutPrefix(path, "search/name/"); ok {
		if validSegment(name) {
			return "search/name", name, true
		}
		return "", "", false
	}
	if rest, ok := strings.CutPrefix(path, "ad/"); ok {
		if nameKey, ok := strings.CutSuffix(rest, "/docs"); ok && validSegment(nameKey) {
			return "ad/docs", nameKey, true
		}
	}
	return "", "", false
}

// validSegment reports whether s is one non-empty path segment.
func validSegment(s string) bool {
	return strings.TrimSpace(s) != "" && !strings.Contains(s, "/")
}

// handleSearch serves GET `/search`.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SearchDocuments(r.Context(), common.SearchRequestFromValues(r.URL.Query()))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleWorkload serves GET `/ad/workload`.
func (h *Handler) handleWorkload(w http.ResponseWriter, r *http.Request) {
	workload, err := h.service.ADWorkload(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workload)
}

// handleDocsForAD serves GET `/ad/{name_key}/docs`.
func (h *Handler) handleDocsForAD(w http.ResponseWriter, r *http.Request, nameKey string) {
	docs, err := h.service.DocsForAD(r.Context(), nameKey)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleLastCall serves GET `/drafts/last-call`.
func (h *Handler) handleLastCall(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.DraftsInLastCall(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleIESGProcess serves GET `/drafts/iesg-process`.
func (h *Handler) handleIESGProcess(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.DraftsInIESGProcess(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"states": groups,
	})
}

// handleRecentDrafts serves GET `/drafts/recent?days=N`.
func (h *Handler) handleRecentDrafts(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r.URL.Query().Get("days"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	list, err := h.service.RecentDrafts(r.Context(), days)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleIndex serves GET `/drafts/index`.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.IndexAllDrafts(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
	})
}

// handleActiveIndex serves GET `/drafts/active-index`.
func (h *Handler) handleActiveIndex(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.IndexActiveDrafts(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": groups,
	})
}

// handleSuggest serves GET `/docs/suggest?q=&type=&model=`.
func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.SuggestDocuments(r.Context(), common.SuggestRequest{
		Query:   r.URL.Query().Get("q"),
		DocType: r.URL.Query().Get("type"),
		Model:   r.URL.Query().Get("model"),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
}

// handleResolveName serves GET `/search/name/{name}`.
func (h *Handler) handleResolveName(w http.ResponseWriter, r *http.Request, name string) {
	res, err := h.service.ResolveName(r.Context(), name)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// defaultRecentDays applies when the days parameter is absent.
const defaultRecentDays = 7

// parseDays decodes the days parameter.
func parseDays(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultRecentDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("days %q: %w", raw, errors.Join(common.ErrInvalidRequest, err))
	}
	return days, nil
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrServiceUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}
