// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes batch summaries and transcript retrieval to LLM agents via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/lecture-summarizer/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the summarizer as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to request lecture-grounded explanations and
inspect retrieved transcript context via stdio.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  summarizer mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "summarizer": {
  #       "command": "summarizer",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	server := mcpserver.NewMCPServer(
		"Lecture Summarizer",
		versionInfo.Version,
	)

	handlers := mcp.RegisterTools(server, c.orchestrator)

	if !quiet {
		log.Println("Lecture Summarizer MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
		handlers.Shutdown()
		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
