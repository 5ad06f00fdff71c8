package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/huangsam/codetrend/core"
	"github.com/huangsam/codetrend/internal/collector"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// requestConfig applies the arguments shared by every index tool to a copy of the base config.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid repo_path: %w", err)
		}
		cfg.RepoPath = abs
	}
	if l := request.GetInt("limit", cfg.ResultLimit); l != cfg.ResultLimit {
		if l <= 0 || l > contract.MaxResultLimit {
			return nil, fmt.Errorf("limit must be between 1 and %d", contract.MaxResultLimit)
		}
		cfg.ResultLimit = l
	}
	return cfg, nil
}

func toolJSON(data any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleListRevisions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	revisions, err := core.GetIndexResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing revisions failed: %v", err)), nil
	}
	return toolJSON(revisions), nil
}

func (h *toolHandler) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if m := request.GetString("metrics", ""); m != "" {
		cfg.Metrics = contract.SplitList(m)
	}

	report, err := core.GetReportResults(core.WithSuppressHeader(ctx), cfg, h.mgr, contract.NormalizePath(path))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}
	return toolJSON(report), nil
}

func (h *toolHandler) handleRankFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg.Metrics = nil
	if m := request.GetString("metric", ""); m != "" {
		cfg.Metrics = []string{m}
	}
	cfg.Revision = request.GetString("revision", "")
	cfg.PathFilter = contract.NormalizePath(request.GetString("path", ""))
	cfg.Ascending = request.GetBool("asc", false)
	cfg.HasThreshold = false
	if _, ok := request.GetArguments()["threshold"]; ok {
		cfg.Threshold = request.GetFloat("threshold", 0)
		cfg.HasThreshold = true
	}

	result, err := core.GetRankResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}
	return toolJSON(result), nil
}

func (h *toolHandler) handleListMetrics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolJSON(core.ListMetrics(collector.All(collector.OptionsFromConfig(h.baseCfg)))), nil
}
