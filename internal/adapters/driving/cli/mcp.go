package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/semgate/internal/adapters/driven/config/file"
	"github.com/custodia-labs/semgate/internal/adapters/driving/mcp"
	"github.com/custodia-labs/semgate/internal/core/services"
	"github.com/custodia-labs/semgate/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  semgate mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  semgate mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "semgate": {
        "command": "/path/to/semgate",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Chat:   chatService,
		Ingest: ingestService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	// pick up cache and retrieval tuning edits while serving
	if configStore != nil && queryRouter != nil {
		go func() {
			err := configStore.Watch(cmd.Context(), func(cfg configfile.Config) {
				queryRouter.UpdateConfig(services.RouterConfig{
					CacheEnabled: cfg.Cache.Enabled,
					CacheTTL:     cfg.Cache.CacheTTL(),
					TopK:         cfg.RAG.TopK,
					Threshold:    cfg.RAG.Threshold,
				})
			})
			if err != nil && cmd.Context().Err() == nil {
				logger.Warn("config watcher stopped: %v", err)
			}
		}()
	}

	var addr string
	if port > 0 {
		addr = fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
	}
	return server.Serve(cmd.Context(), addr)
}
