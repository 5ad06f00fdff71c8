// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the codetrend MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Codetrend Index Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: list_revisions ---
	s.AddTool(mcp.NewTool("list_revisions",
		mcp.WithDescription("List the revisions stored in the code metrics index, newest first."),
		mcp.WithString("repo_path", mcp.Description("Path to the project (defaults to the server's project if not specified).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of revisions returned.")),
	), h.handleListRevisions)

	// --- 2. Tool: get_report ---
	s.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Show how metrics of a file, directory or 'file:function' changed across indexed revisions."),
		mcp.WithString("path", mcp.Description("Project relative file or directory, optionally followed by ':name' for a function or class."), mcp.Required()),
		mcp.WithString("metrics", mcp.Description("Comma separated metrics such as 'raw.loc,cyclomatic.complexity'.")),
		mcp.WithString("repo_path", mcp.Description("Path to the project.")),
		mcp.WithNumber("limit", mcp.Description("Number of revisions to include.")),
	), h.handleGetReport)

	// --- 3. Tool: rank_files ---
	s.AddTool(mcp.NewTool("rank_files",
		mcp.WithDescription("Rank the files of an indexed revision by one metric."),
		mcp.WithString("metric", mcp.Description("Metric to rank by. Defaults to 'maintainability.mi'.")),
		mcp.WithString("revision", mcp.Description("Revision key or prefix. Defaults to the newest indexed revision.")),
		mcp.WithString("path", mcp.Description("Only rank files under this project relative path.")),
		mcp.WithBoolean("asc", mcp.Description("Lowest values first.")),
		mcp.WithNumber("threshold", mcp.Description("Flag the ranking as breached when the total is worse than this value.")),
		mcp.WithString("repo_path", mcp.Description("Path to the project.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of files returned.")),
	), h.handleRankFiles)

	// --- 4. Tool: list_metrics ---
	s.AddTool(mcp.NewTool("list_metrics",
		mcp.WithDescription("List every metric the collectors can record."),
	), h.handleListMetrics)

	return s
}

// StartMCPServer starts the codetrend MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
