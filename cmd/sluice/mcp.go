package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/internal/cli"
	"github.com/aretw0/sluice/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp <file>",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the editor as an MCP Server so agents can inspect and edit the graph as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		baseURL, _ := cmd.Flags().GetString("base-url")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		stack, err := cli.NewStack(sigCtx, args[0], cfg, logger)
		if err != nil {
			return err
		}
		defer stack.Close(context.Background())

		srv := mcp.NewServer(stack.Editor, strings.TrimSpace(sluice.Version), mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting Sluice MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			if baseURL == "" {
				baseURL = "http://localhost" + addr
			}
			logger.Info("Starting Sluice MCP Server (SSE)", "addr", addr, "base_url", baseURL)
			if err := srv.ServeSSE(sigCtx, addr, baseURL); err != nil {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
	mcpCmd.Flags().String("base-url", "", "Public base URL advertised to SSE clients")
}
