// ABOUTME: CLI command for moving data between storage backends.
// ABOUTME: Copies profiles, plans with their meals and workouts, and meal logs.
package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitplan/internal/config"
	"github.com/harperreed/fitplan/internal/storage"
)

var (
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data to another storage backend",
	Long: `Copy all fitplan data from the configured backend to another one.

BACKENDS:

  sqlite     ~/.local/share/fitplan/fitplan.db (default)
  badger     ~/.local/share/fitplan/badger/
  postgres   database_url in config or FITPLAN_DATABASE_URL

IMPORTANT:

  - The destination must be empty
  - The source is left untouched
  - Run with --dry-run first to see what would be copied
  - Afterwards set "backend" in ~/.config/fitplan/config.json

USAGE:

  fitplan migrate --to badger --dry-run
  fitplan migrate --to badger
  fitplan --backend badger migrate --to sqlite`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		to := strings.ToLower(migrateTo)
		from := cfg.GetBackend()
		if to == from {
			return fmt.Errorf("source and destination are both %s", to)
		}
		switch to {
		case config.BackendSQLite, config.BackendBadger, config.BackendPostgres:
		default:
			return fmt.Errorf("unknown backend: %q (use sqlite, badger or postgres)", migrateTo)
		}

		if migrateDryRun {
			data, err := storage.GetAllData(ctx, repo)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", from, err)
			}
			color.New(color.FgYellow).Fprintln(out, "Dry run mode - no changes will be made")
			meals, workouts := 0, 0
			for _, p := range data.Plans {
				meals += len(p.Meals)
				workouts += len(p.Workouts)
			}
			fmt.Fprintf(out, "Would copy %s -> %s: %d profiles, %d plans (%d meals, %d workouts), %d meal logs\n",
				from, to, len(data.Profiles), len(data.Plans), meals, workouts, len(data.MealLogs))
			return nil
		}

		if to == config.BackendBadger {
			dir := filepath.Join(cfg.GetDataDir(), "badger")
			nonEmpty, err := storage.IsDirNonEmpty(dir)
			if err != nil {
				return err
			}
			if nonEmpty {
				return fmt.Errorf("destination %s is not empty", dir)
			}
		}

		dst, err := cfg.OpenBackend(ctx, to)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", to, err)
		}
		defer func() { _ = dst.Close() }()

		existing, err := dst.ListPlans(ctx, "", 1)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", to, err)
		}
		profiles, err := dst.ListProfiles(ctx)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", to, err)
		}
		if len(existing) > 0 || len(profiles) > 0 {
			return fmt.Errorf("destination %s already has data", to)
		}

		summary, err := storage.MigrateData(ctx, repo, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		color.New(color.FgGreen).Fprintf(out, "✓ Migrated %s -> %s\n", from, to)
		fmt.Fprintf(out, "  %d profiles, %d plans (%d meals, %d workouts), %d meal logs\n",
			summary.Profiles, summary.Plans, summary.Meals, summary.Workouts, summary.MealLogs)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend (sqlite, badger, postgres)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
