package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/aretw0/waypoint/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the trace engine as MCP tools (generate_trace, get_step,
shortest_path) and resources (waypoint://graph, waypoint://graph.json,
waypoint://listing).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		logger := newLogger(cfg)
		srv := mcp.NewServer(cfg.BuildGraph(), cfg.StartVertex(), mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Keep logs off Stdout, which carries JSON-RPC.
			log.SetOutput(cmd.ErrOrStderr())
			logger.Info("Starting Waypoint MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			sigCtx := cli.NewSignalContext(context.Background())
			defer sigCtx.Cancel()

			if err := srv.ServeSSE(sigCtx, port); err != nil {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
