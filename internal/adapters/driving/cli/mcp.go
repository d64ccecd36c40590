package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrelay/internal/adapters/driving/mcp"
	"github.com/custodia-labs/docrelay/internal/logger"
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

The server exposes a process_submission tool, a history tool and the
docrelay://runs resources. By default it communicates over stdio using
JSON-RPC. Use --port to serve streamable HTTP instead.

Interactive consent is not available while serving: authorize first with
'docrelay auth login'. The token file is watched and reloaded when it changes.

Examples:
  # Stdio mode (default, for desktop assistants)
  docrelay mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  docrelay mcp serve --port 8090`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return errors.Wrap(err, "getting port flag")
	}

	processor, credentials := submissionProcessor, credentialService
	if buildServer != nil {
		processor, credentials, err = buildServer()
		if err != nil {
			return err
		}
	}
	if processor == nil {
		return unavailable("submission pipeline")
	}

	ports := &mcp.Ports{
		Submissions: processor,
		History:     runHistory,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if watchToken != nil && credentials != nil {
		err := watchToken(ctx, func() {
			logger.Infow("token file changed, reloading credential", logger.FieldPath, tokenPath)
			credentials.Invalidate()
		})
		if err != nil {
			logger.Warnw("token file watch unavailable", logger.FieldError, err)
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
