// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the archive MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Devian Archive Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: find_project_root ---
	s.AddTool(mcp.NewTool("find_project_root",
		mcp.WithDescription("Find the project root above a path by looking for input/build.json, build.json, .git or skills."),
		mcp.WithString("start_path", mcp.Description("Directory to start from (defaults to the current directory).")),
	), h.handleFindProjectRoot)

	// --- 2. Tool: collect_files ---
	s.AddTool(mcp.NewTool("collect_files",
		mcp.WithDescription("List the files that would be archived after applying the exclusion patterns."),
		mcp.WithString("root", mcp.Description("Project root (defaults to the configured or detected root).")),
		mcp.WithBoolean("exclude_generated", mcp.Description("Exclude Generated directories at any depth.")),
		mcp.WithBoolean("exclude_data", mcp.Description("Exclude .ndjson data files.")),
		mcp.WithBoolean("include_temp", mcp.Description("Keep temp directories, which are excluded by default.")),
	), h.handleCollectFiles)

	// --- 3. Tool: create_archive ---
	s.AddTool(mcp.NewTool("create_archive",
		mcp.WithDescription("Create a zip archive of the project files after applying the exclusion patterns."),
		mcp.WithString("root", mcp.Description("Project root (defaults to the configured or detected root).")),
		mcp.WithString("output_dir", mcp.Description("Directory that receives the archive (defaults to the root).")),
		mcp.WithBoolean("exclude_generated", mcp.Description("Exclude Generated directories at any depth.")),
		mcp.WithBoolean("exclude_data", mcp.Description("Exclude .ndjson data files.")),
		mcp.WithBoolean("include_temp", mcp.Description("Keep temp directories, which are excluded by default.")),
	), h.handleCreateArchive)

	return s
}

// StartMCPServer starts the archive MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
