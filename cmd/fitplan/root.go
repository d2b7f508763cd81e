// ABOUTME: Root Cobra command for fitplan CLI.
// ABOUTME: Opens config, logging, storage, catalogs and the planner via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/harperreed/fitplan/internal/config"
	"github.com/harperreed/fitplan/internal/content"
	"github.com/harperreed/fitplan/internal/logging"
	"github.com/harperreed/fitplan/internal/planner"
	"github.com/harperreed/fitplan/internal/storage"
)

var (
	cfg     *config.Config
	repo    storage.Repository
	loader  *content.Loader
	plans   *planner.Planner
	logger  *slog.Logger
	userID  string
	backend string
)

var rootCmd = &cobra.Command{
	Use:   "fitplan",
	Short: "Daily meal and workout planner",
	Long: `Fitplan builds a deterministic daily plan of meals and a workout from your
profile, a 28-day meal rotation and an age/weight based workout catalog.

QUICK START:

  $ fitplan profile set --age 34 --weight 82 --height 172 --target 74 --diet veg --goal fat_loss
  $ fitplan generate                 # Build today's plan
  $ fitplan plan show                # See it again
  $ fitplan swap lunch               # Replace one meal
  $ fitplan log planned breakfast    # Record what you ate
  $ fitplan summary                  # Consumed vs target

EVERY DAY:

  Each date maps to a cycle day (1-28). Everyone on the same diet, age
  bracket and goal gets the same meals that day. Regenerating a day replaces
  its meals and workout but keeps water and adaptation.

SERVERS:

  $ fitplan serve    # HTTP API (gin) on :8080
  $ fitplan mcp      # Model Context Protocol server on stdio

DATA STORAGE:

  SQLite at ~/.local/share/fitplan/fitplan.db by default. Switch with
  "backend" in ~/.config/fitplan/config.json (sqlite, badger, postgres)
  or FITPLAN_BACKEND.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		// A failed RunE skips PersistentPostRunE.
		_ = closeRepo()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if backend != "" {
			cfg.Backend = backend
		}
		if userID == "" {
			userID = cfg.GetUser()
		}

		logger = logging.Init(cfg.Log)
		repo, err = cfg.OpenStorage(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		loader = cfg.OpenContent(logger)
		plans = planner.New(repo, loader, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeRepo()
	},
}

func closeRepo() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo = nil
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "profile id (default from config, or \"me\")")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend override (sqlite, badger, postgres)")
}
