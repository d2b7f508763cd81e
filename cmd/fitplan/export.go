// ABOUTME: CLI commands for full JSON backup and restore.
// ABOUTME: Backups include profiles, plans with children, and meal logs.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitplan/internal/storage"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all data as JSON",
	Long: `Export every profile, plan and meal log as one JSON document, suitable
for backup and for 'fitplan import'. Use 'fitplan plan export' for a
single day.

EXAMPLES:

  fitplan export                   # Print to stdout
  fitplan export -o backup.json    # Save to file`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := storage.ExportJSON(cmd.Context(), repo)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return writeOutput(cmd, exportOutput, data)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import data from a JSON backup",
	Long: `Import a backup written by 'fitplan export'.

Duplicate entries (same ID or same user and date) cause an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		if err := storage.ImportJSON(cmd.Context(), repo, data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Imported from %s\n", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
