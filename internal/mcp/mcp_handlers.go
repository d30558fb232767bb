package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/devian-archive/core"
	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

// configFor clones the base config and applies the per-call overrides.
func (h *toolHandler) configFor(request mcp.CallToolRequest, withOutput bool) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	cfg.ExcludeGenerated = request.GetBool("exclude_generated", cfg.ExcludeGenerated)
	cfg.ExcludeData = request.GetBool("exclude_data", cfg.ExcludeData)
	cfg.IncludeTemp = request.GetBool("include_temp", cfg.IncludeTemp)

	outputDir := ""
	if withOutput {
		outputDir = request.GetString("output_dir", "")
	}
	if err := contract.RevalidateRoot(cfg, request.GetString("root", ""), outputDir); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *toolHandler) handleFindProjectRoot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := request.GetString("start_path", ".")
	root, err := core.FindRoot(start)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("root detection failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(map[string]string{"root": root}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCollectFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid collect parameters: %v", err)), nil
	}

	files, err := core.GetCollectResults(core.WithSuppressHeader(ctx), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("collection failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(files, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCreateArchive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid archive parameters: %v", err)), nil
	}

	result, err := core.GetArchiveResult(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if errors.Is(err, core.ErrNoFiles) {
		return mcp.NewToolResultText("No files to archive."), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("archive failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
