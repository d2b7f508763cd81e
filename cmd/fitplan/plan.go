// ABOUTME: CLI commands for reading stored plans.
// ABOUTME: Shows one day, lists recent days, or exports a day as JSON, YAML or Markdown.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitplan/internal/models"
	"github.com/harperreed/fitplan/internal/storage"
)

var (
	planDate   string
	planLimit  int
	planFormat string
	planOutput string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show stored plans",
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the plan for a day",
	Long: `Show a stored plan without regenerating it.

EXAMPLES:

  fitplan plan show                     # Today
  fitplan plan show --date 2026-03-10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPlan(cmd, planDate)
		if err != nil {
			return err
		}
		printPlan(cmd.OutOrStdout(), p)
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent plans",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := repo.ListPlans(cmd.Context(), userID, planLimit)
		if err != nil {
			return fmt.Errorf("failed to list plans: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No plans found.")
			return nil
		}
		faint := color.New(color.Faint)
		for _, p := range rows {
			adapt := ""
			if p.Adaptation.Active {
				adapt = faint.Sprintf(" (%s)", p.Adaptation)
			}
			fmt.Fprintf(out, "%s %s day %-2d %5d kcal %4d ml%s\n",
				faint.Sprint(p.ID.String()[:8]),
				p.Date, p.CycleDay, p.CaloriesTarget, p.WaterMl, adapt)
		}
		return nil
	},
}

var planExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the plan for a day",
	Long: `Export one day's plan.

FORMATS:

  json       Full plan with meal and workout records
  yaml       Compact, human-readable
  markdown   Tables for sharing

EXAMPLES:

  fitplan plan export --format markdown
  fitplan plan export --date 2026-03-10 -f yaml -o plan.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPlan(cmd, planDate)
		if err != nil {
			return err
		}

		var data []byte
		switch planFormat {
		case "json":
			data, err = storage.ExportPlanJSON(p)
		case "yaml":
			data, err = storage.ExportPlanYAML(p)
		case "markdown", "md":
			data = []byte(storage.ExportPlanMarkdown(p))
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", planFormat)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		return writeOutput(cmd, planOutput, data)
	},
}

// planDay parses a --date value into the stored plan key.
func planDay(raw string) (string, error) {
	date, err := models.ParseDate(raw)
	if err != nil {
		return "", err
	}
	return date.Format(models.DateLayout), nil
}

func loadPlan(cmd *cobra.Command, raw string) (*models.Plan, error) {
	day, err := planDay(raw)
	if err != nil {
		return nil, err
	}
	p, err := repo.GetPlan(cmd.Context(), userID, day)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no plan for %s; run 'fitplan generate --date %s' first", day, day)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return p, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", path)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{planShowCmd, planExportCmd} {
		c.Flags().StringVarP(&planDate, "date", "d", "", "plan date (YYYY-MM-DD, default today)")
	}
	planListCmd.Flags().IntVarP(&planLimit, "limit", "n", 14, "max number of plans")
	planExportCmd.Flags().StringVarP(&planFormat, "format", "f", "markdown", "json, yaml or markdown")
	planExportCmd.Flags().StringVarP(&planOutput, "output", "o", "", "output file (default: stdout)")

	planCmd.AddCommand(planShowCmd, planListCmd, planExportCmd)
	rootCmd.AddCommand(planCmd)
}
