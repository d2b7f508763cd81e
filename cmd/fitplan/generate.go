// ABOUTME: CLI command for generating a day's plan.
// ABOUTME: Regenerating an existing day replaces meals and workout but keeps water and adaptation.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitplan/internal/models"
	"github.com/harperreed/fitplan/internal/planner"
	"github.com/harperreed/fitplan/internal/workouts"
)

var generateDate string

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen", "g"},
	Short:   "Generate the plan for a day",
	Long: `Generate the meal and workout plan for a day (today by default).

Meals come from the 28-day rotation for your calorie tier. Meals your diet
excludes are swapped for the closest same-slot, same-tier alternative. If
the rotation cannot fill the day, the meal library and then a fixed set of
simple meals are used, and the output says so.

EXAMPLES:

  fitplan generate                     # Today
  fitplan generate --date 2026-03-10   # A specific day
  fitplan generate -u partner          # Another profile`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := models.ParseDate(generateDate)
		if err != nil {
			return err
		}

		gp, err := plans.GeneratePlan(cmd.Context(), userID, date)
		if errors.Is(err, planner.ErrProfileIncomplete) {
			return fmt.Errorf("%w; run 'fitplan profile set' first", err)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		verb := "Generated"
		if gp.Metadata.Regenerated {
			verb = "Regenerated"
		}
		color.New(color.FgGreen).Fprintf(out, "✓ %s plan for %s\n\n", verb, gp.Plan.Date)
		printPlan(out, gp.Plan)
		printMetadata(out, gp.Metadata)
		return nil
	},
}

func printMetadata(w writer, m planner.Metadata) {
	var notes []string
	if m.MealSource != planner.MealSourceRotation {
		notes = append(notes, fmt.Sprintf("meals from %s", m.MealSource))
	}
	if m.PartialMeals {
		notes = append(notes, "rotation was incomplete")
	}
	if m.Substitutions > 0 {
		notes = append(notes, fmt.Sprintf("%d diet substitution(s) marked *", m.Substitutions))
	}
	if m.WorkoutSource != workouts.SourceAgeMatch {
		notes = append(notes, fmt.Sprintf("workout via %s", m.WorkoutSource))
	}
	fmt.Fprintln(w)
	if len(notes) > 0 {
		color.New(color.FgYellow).Fprintf(w, "Note: %s\n", strings.Join(notes, "; "))
	}
	color.New(color.Faint).Fprintf(w, "generation %s\n", m.GenerationID)
}

func init() {
	generateCmd.Flags().StringVarP(&generateDate, "date", "d", "", "plan date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(generateCmd)
}
