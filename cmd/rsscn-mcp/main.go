package main

import (
	"fmt"
	"log"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ludo-technologies/rsscn/internal/config"
	"github.com/ludo-technologies/rsscn/internal/version"
	"github.com/ludo-technologies/rsscn/mcp"
)

const serverName = "rsscn"

func main() {
	// Set up logging to stderr (MCP uses stdout for JSON-RPC)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Project configuration is discovered per analyzed path; the working
	// directory configuration only supplies server-wide settings
	cfg, err := config.LoadConfigWithTarget("", ".")
	if err != nil {
		log.Printf("Ignoring configuration: %v", err)
		cfg = nil
	}

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	mcp.RegisterTools(server, mcp.NewHandlerSet(mcp.NewDependencies(cfg, "")))

	log.Printf("Starting %s MCP server %s\n", serverName, version.Short())
	log.Println("Registered tools:")
	log.Println("  - build_cfg: Control flow graph construction")
	log.Println("  - find_exit_points: Exit point analysis")
	log.Println("  - find_dead_code: Dead code detection")
	log.Println("")
	log.Println("Server ready - waiting for MCP client connection...")

	// Blocks until the client disconnects
	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
