// CLAUDE:SUMMARY MCP surface: run, list_reports, get_report and watchlist tools registered via kit.
package presswatch

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/presswatch/kit"
)

// RegisterMCP registers all presswatch tools on an MCP server.
func (svc *Service) RegisterMCP(srv *mcp.Server) {
	svc.registerRun(srv)
	svc.registerListReports(srv)
	svc.registerGetReport(srv)
	svc.registerWatchlist(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func (svc *Service) registerRun(srv *mcp.Server) {
	type req struct{}

	tool := &mcp.Tool{
		Name:        "presswatch_run",
		Description: "Run the full news pipeline for the configured watch-list and return the generated report",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return svc.Run(ctx)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: &req{}}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerListReports(srv *mcp.Server) {
	type req struct {
		Limit int `json:"limit"`
	}

	tool := &mcp.Tool{
		Name:        "presswatch_list_reports",
		Description: "List stored reports, newest first",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Maximum rows to return (default 50)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.ListReports(ctx, p.Limit)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if len(r.Params.Arguments) > 0 {
			if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerGetReport(srv *mcp.Server) {
	type req struct {
		ID       string `json:"report_id"`
		Markdown bool   `json:"markdown"`
	}

	tool := &mcp.Tool{
		Name:        "presswatch_get_report",
		Description: "Get one stored report by id, as structured JSON or rendered markdown",
		InputSchema: inputSchema(map[string]any{
			"report_id": map[string]any{"type": "string", "description": "Report ID"},
			"markdown":  map[string]any{"type": "boolean", "description": "Return rendered markdown instead of JSON"},
		}, []string{"report_id"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		if p.Markdown {
			md, err := svc.GetReportMarkdown(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			return map[string]string{"markdown": md}, nil
		}
		return svc.GetReport(ctx, p.ID)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerWatchlist(srv *mcp.Server) {
	type req struct{}

	tool := &mcp.Tool{
		Name:        "presswatch_watchlist",
		Description: "List the watched entities and their match keywords",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return svc.Watchlist(), nil
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: &req{}}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
