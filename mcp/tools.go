package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all rsscn MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	if h == nil {
		h = NewHandlerSet(nil)
	}

	// Tool 1: build_cfg - Control flow graph construction
	s.AddTool(mcp.NewTool("build_cfg",
		mcp.WithDescription("Build the expression-level control flow graph of Rust functions and closures in one file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the Rust source file")),
		mcp.WithArray("functions",
			mcp.WithStringItems(),
			mcp.Description("Qualified names to build, such as parse or Counter::bump or main::{closure#1}. Default: all functions")),
		mcp.WithString("format",
			mcp.Enum("json", "dot", "text"),
			mcp.Description("Result format: json (nodes, edges, statistics), dot (Graphviz) or text (depth-first trace). Default: json")),
	), h.HandleBuildCFG)

	// Tool 2: find_exit_points - Exit point analysis
	s.AddTool(mcp.NewTool("find_exit_points",
		mcp.WithDescription("List every way control leaves each Rust function: return, ?, diverging calls and tail expressions"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to Rust code (file or directory) to analyze")),
		mcp.WithBoolean("only_multiple",
			mcp.Description("Only report functions with more than one early exit (default: false)")),
		mcp.WithBoolean("report_tail",
			mcp.Description("Include tail expressions and statements (default: true)")),
		mcp.WithString("sort_by",
			mcp.Enum("location", "name", "exits"),
			mcp.Description("Function order (default: location)")),
		mcp.WithString("output_mode",
			mcp.Enum("summary", "detailed", "full"),
			mcp.Description("Amount of detail in the result (default: summary)")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of entries to list, 0 = no limit (default: 0)")),
	), h.HandleFindExitPoints)

	// Tool 3: find_dead_code - Dead code detection
	s.AddTool(mcp.NewTool("find_dead_code",
		mcp.WithDescription("Find unreachable Rust code using Control Flow Graph (CFG) analysis"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to Rust code (file or directory) to analyze")),
		mcp.WithString("min_severity",
			mcp.Enum("info", "warning", "critical"),
			mcp.Description("Minimum severity: info, warning, critical (default: warning)")),
		mcp.WithString("output_mode",
			mcp.Enum("summary", "detailed", "full"),
			mcp.Description("Amount of detail in the result (default: summary)")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of issues to list, 0 = no limit (default: 0)")),
	), h.HandleFindDeadCode)
}
