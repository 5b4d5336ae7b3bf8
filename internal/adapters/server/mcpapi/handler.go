// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/vidiannovantry/datatracker/internal/adapters/server/common"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// defaultRecentDays applies when recent_drafts omits days.
const defaultRecentDays = 7

// NewHandler builds one stateless MCP adapter exposing the read-only datatracker tools.
func NewHandler(cfg Config, service common.DatatrackerService) (*Handler, error) {
	if service == nil {
		return nil, fmt.Errorf("datatracker service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerSearchTools(mcpSrv, service)
	registerWorkloadTools(mcpSrv, service)
	registerDraftListTools(mcpSrv, service)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "datatracker"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerSearchTools registers document search, completion, and name lookup tools.
func registerSearchTools(srv *mcpserver.MCPServer, service common.DatatrackerService) {
	srv.AddTool(
		mcp.NewTool(
			"datatracker.search_documents",
			mcp.WithDescription("Search documents by name and one optional field filter."),
			mcp.WithString("name", mcp.Description("Name fragment; a .txt extension and trailing revision are ignored")),
			mcp.WithBoolean("rfcs", mcp.Description("Include published RFCs")),
			mcp.WithBoolean("activedrafts", mcp.Description("Include active drafts")),
			mcp.WithBoolean("olddrafts", mcp.Description("Include expired, replaced, and withdrawn drafts")),
			mcp.WithString("by", mcp.Description("Field filter"), mcp.Enum("author", "group", "area", "ad", "state", "irtfstate", "stream")),
			mcp.WithString("author", mcp.Description("Author name or email fragment")),
			mcp.WithString("group", mcp.Description("Group acronym")),
			mcp.WithString("area", mcp.Description("Area acronym")),
			mcp.WithString("ad", mcp.Description("Responsible person id")),
			mcp.WithString("state", mcp.Description("IESG state slug")),
			mcp.WithString("substate", mcp.Description("IESG substate tag, or 0 for none")),
			mcp.WithString("irtfstate", mcp.Description("IRTF state slug")),
			mcp.WithString("stream", mcp.Description("Stream slug")),
			mcp.WithString("doctypes", mcp.Description("Comma-separated non-draft document types")),
			mcp.WithString("sort", mcp.Description("Sort field, prefixed with - for descending")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			search := common.SearchRequest{
				Name:         req.GetString("name", ""),
				RFCs:         req.GetBool("rfcs", false),
				ActiveDrafts: req.GetBool("activedrafts", false),
				OldDrafts:    req.GetBool("olddrafts", false),
				By:           req.GetString("by", ""),
				Author:       req.GetString("author", ""),
				Group:        req.GetString("group", ""),
				Area:         req.GetString("area", ""),
				AD:           req.GetString("ad", ""),
				State:        req.GetString("state", ""),
				Substate:     req.GetString("substate", ""),
				IRTFState:    req.GetString("irtfstate", ""),
				Stream:       req.GetString("stream", ""),
				Sort:         req.GetString("sort", ""),
			}
			for _, part := range strings.Split(req.GetString("doctypes", ""), ",") {
				if part = strings.TrimSpace(part); part != "" {
					search.DocTypes = append(search.DocTypes, part)
				}
			}
			result, err := service.SearchDocuments(ctx, search)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("search_documents", result)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"datatracker.suggest_documents",
			mcp.WithDescription("Complete document names of one type from space-separated tokens."),
			mcp.WithString("q", mcp.Required(), mcp.Description("Name tokens")),
			mcp.WithString("type", mcp.Description("Document type (defaults to draft)")),
			mcp.WithString("model", mcp.Description("Match document names (document, the default) or every alias (docalias)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			q, err := req.RequireString("q")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			suggestions, err := service.SuggestDocuments(ctx, common.SuggestRequest{
				Query:   q,
				DocType: req.GetString("type", ""),
				Model:   req.GetString("model", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("suggest_documents", map[string]any{
				"suggestions": suggestions,
			})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"datatracker.resolve_name",
			mcp.WithDescription("Resolve a free-form document name to one document or a fallback search."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Document name, alias, or file name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			res, err := service.ResolveName(ctx, name)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("resolve_name", res)
		},
	)
}

// registerWorkloadTools registers the AD dashboard tools.
func registerWorkloadTools(srv *mcpserver.MCPServer, service common.DatatrackerService) {
	srv.AddTool(
		mcp.NewTool(
			"datatracker.ad_workload",
			mcp.WithDescription("Return per-AD document counts by review bucket, with prior-window counts."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workload, err := service.ADWorkload(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("ad_workload", workload)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"datatracker.docs_for_ad",
			mcp.WithDescription("List one responsible party's documents in dashboard order."),
			mcp.WithString("name_key", mcp.Required(), mcp.Description("Dotted lower-case full name, e.g. alice.example")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			nameKey, err := req.RequireString("name_key")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			docs, err := service.DocsForAD(ctx, nameKey)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("docs_for_ad", docs)
		},
	)
}

// registerDraftListTools registers the fixed draft listing tools.
func registerDraftListTools(srv *mcpserver.MCPServer, service common.DatatrackerService) {
	srv.AddTool(
		mcp.NewTool(
			"datatracker.drafts_in_last_call",
			mcp.WithDescription("List drafts in IETF last call."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			list, err := service.DraftsInLastCall(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("drafts_in_last_call", list)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"datatracker.drafts_in_iesg_process",
			mcp.WithDescription("List drafts grouped by active IESG state."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			groups, err := service.DraftsInIESGProcess(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("drafts_in_iesg_process", map[string]any{
				"states": groups,
			})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"datatracker.recent_drafts",
			mcp.WithDescription("List active drafts with a new revision in the last N days."),
			mcp.WithNumber("days", mcp.Description("Window in days (defaults to 7)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			list, err := service.RecentDrafts(ctx, req.GetInt("days", defaultRecentDays))
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("recent_drafts", list)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"datatracker.index_all_drafts",
			mcp.WithDescription("List every draft name grouped by draft state."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			categories, err := service.IndexAllDrafts(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("index_all_drafts", map[string]any{
				"categories": categories,
			})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"datatracker.index_active_drafts",
			mcp.WithDescription("List active drafts grouped by owning group."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			groups, err := service.IndexActiveDrafts(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("index_active_drafts", map[string]any{
				"groups": groups,
			})
		},
	)
}

// jsonResult encodes one structured tool result.
func jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrServiceUnavailable):
		return mcp.NewToolResultError("service_unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
