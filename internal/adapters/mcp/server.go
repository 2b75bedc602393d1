package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

const (
	serverName    = "job-search-assistant"
	serverVersion = "1.0.0"
)

// Tools exposes job search over the Model Context Protocol.
type Tools struct {
	search      ports.JobSearchService
	interpreter ports.QueryInterpreter
}

func NewTools(search ports.JobSearchService, interpreter ports.QueryInterpreter) *Tools {
	return &Tools{search: search, interpreter: interpreter}
}

func (t *Tools) Server() *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))

	s.AddTool(
		mcp.NewTool("search_jobs",
			mcp.WithDescription("Search the job corpus with a natural-language query. Structured constraints such as salary, location, visa sponsorship and remote work are applied as filters."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Free-text job query, e.g. \"python jobs in London over 60k\"")),
			mcp.WithNumber("result_budget", mcp.Description("Maximum number of records to return")),
		),
		t.SearchJobs,
	)
	s.AddTool(
		mcp.NewTool("analyze_query",
			mcp.WithDescription("Show how a job query is interpreted: skills, salary bounds, location, visa and remote flags, and category."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Free-text job query")),
		),
		t.AnalyzeQuery,
	)
	return s
}

func (t *Tools) SearchJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	budget := request.GetInt("result_budget", 0)

	result, err := t.search.Search(ctx, query, budget)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (t *Tools) AnalyzeQuery(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t.interpreter.Analyze(query))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
