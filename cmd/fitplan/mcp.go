// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server exposing plan generation to AI assistants.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/fitplan/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout; logs go to stderr or the
configured log file.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "fitplan": {
        "command": "fitplan",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  set_profile          Create or update a profile
  generate_plan        Generate or regenerate a day's plan
  get_plan             Read a plan as JSON, YAML or Markdown
  swap_meal            Replace one meal on a plan
  get_rotation         Show the rotation cell for a cycle day
  reload_content       Drop cached catalogs
  log_water            Add water to a plan
  log_meal             Log a planned, alternative or manual meal
  daily_summary        Consumed versus target for a day
  activate_adaptation  Extend workouts for the next few days

AVAILABLE RESOURCES:

  fitplan://catalog/summary   Library sizes and workout categories
  fitplan://profiles          Stored profiles`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(plans, repo, loader, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case <-sigChan:
				cancel()
			case <-ctx.Done():
			}
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
