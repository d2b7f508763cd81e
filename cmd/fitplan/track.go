// ABOUTME: CLI commands for tracking a day: water, meal logs, adaptation and summary.
// ABOUTME: Logged meals are planned, alternative (library id) or manual entries.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitplan/internal/models"
)

var (
	trackDate    string
	adaptDays    int
	adaptMinutes int
	manualMacros models.Macros
)

var waterCmd = &cobra.Command{
	Use:   "water <ml>",
	Short: "Log water intake",
	Long: `Add water to a day's plan. Totals survive plan regeneration.

EXAMPLES:

  fitplan water 250
  fitplan water 500 --date 2026-03-10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount: %s", args[0])
		}
		day, err := planDay(trackDate)
		if err != nil {
			return err
		}
		total, err := plans.LogWater(cmd.Context(), userID, day, ml)
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Added %d ml (total %d ml)\n", ml, total)
		return nil
	},
}

var adaptCmd = &cobra.Command{
	Use:   "adapt",
	Short: "Extend workouts for the next few days",
	Long: `Activate an adaptation on a day's plan. Each following day's plan adds
the extra minutes to its workout and counts one day down, until none remain.

EXAMPLES:

  fitplan adapt --days 3              # +5 minutes for three days
  fitplan adapt --days 5 --minutes 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := planDay(trackDate)
		if err != nil {
			return err
		}
		a, err := plans.ActivateAdaptation(cmd.Context(), userID, day, adaptDays, adaptMinutes)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !a.Active {
			color.New(color.FgYellow).Fprintf(out, "Adaptation cleared for %s\n", day)
			return nil
		}
		color.New(color.FgGreen).Fprintf(out, "✓ Adaptation on %s: %s\n", day, a)
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log what you ate",
	Long: `Record a meal you ate against a day.

KINDS:

  planned <slot>                 The meal on your plan for that slot
  alternative <slot> <meal-id>   A different meal from your diet's library
  manual <slot> <name>           Anything else, with --calories etc.`,
}

var logPlannedCmd = &cobra.Command{
	Use:   "planned <slot>",
	Short: "Log the planned meal for a slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, day, err := slotAndDay(args[0])
		if err != nil {
			return err
		}
		l, err := plans.LogPlannedMeal(cmd.Context(), userID, day, slot)
		if err != nil {
			return err
		}
		return printLogged(cmd, l)
	},
}

var logAlternativeCmd = &cobra.Command{
	Use:   "alternative <slot> <meal-id>",
	Short: "Log a library meal eaten instead",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, day, err := slotAndDay(args[0])
		if err != nil {
			return err
		}
		l, err := plans.LogAlternativeMeal(cmd.Context(), userID, day, slot, args[1])
		if err != nil {
			return err
		}
		return printLogged(cmd, l)
	},
}

var logManualCmd = &cobra.Command{
	Use:   "manual <slot> <name>",
	Short: "Log a free-form meal",
	Long: `Log a meal that is not in any library.

EXAMPLES:

  fitplan log manual lunch "Office canteen thali" --calories 650 --protein 22`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, day, err := slotAndDay(args[0])
		if err != nil {
			return err
		}
		l, err := plans.LogManualMeal(cmd.Context(), userID, day, slot, args[1], manualMacros)
		if err != nil {
			return err
		}
		return printLogged(cmd, l)
	},
}

var summaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"sum"},
	Short:   "Show consumed versus target for a day",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := planDay(trackDate)
		if err != nil {
			return err
		}
		s, err := plans.DailySummary(cmd.Context(), userID, day)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		color.New(color.Bold).Fprintf(out, "Summary for %s\n", s.Date)
		if !s.HasPlan {
			faint.Fprintln(out, "No plan for this day.")
		} else {
			fmt.Fprintf(out, "  %s %.0f / %d kcal (planned %.0f)\n", padRight("calories", 10),
				s.Consumed.Calories, s.CaloriesTarget, s.PlannedCalories)
			fmt.Fprintf(out, "  %s %.0f / %d g\n", padRight("protein", 10), s.Consumed.Protein, s.ProteinTarget)
			fmt.Fprintf(out, "  %s %.0f kcal\n", padRight("remaining", 10), s.RemainingCalories())
			fmt.Fprintf(out, "  %s %d ml\n", padRight("water", 10), s.WaterMl)
		}
		for _, l := range s.Logs {
			m := l.Meal.Nutrition()
			fmt.Fprintf(out, "  %s %s %s %s\n",
				faint.Sprint(l.LoggedAt.Format("15:04")),
				padRight(string(l.Slot), 14),
				truncate(l.Meal.Label(), 40),
				faint.Sprintf("[%s] %.0f kcal", l.Meal.Kind(), m.Calories))
		}
		return nil
	},
}

func slotAndDay(rawSlot string) (models.Slot, string, error) {
	slot, ok := models.ParseSlot(rawSlot)
	if !ok {
		return "", "", fmt.Errorf("unknown slot: %s", rawSlot)
	}
	day, err := planDay(trackDate)
	if err != nil {
		return "", "", err
	}
	return slot, day, nil
}

func printLogged(cmd *cobra.Command, l *models.MealLog) error {
	m := l.Meal.Nutrition()
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Logged %s: %s (%.0f kcal, %.0f g protein)\n",
		l.Slot, l.Meal.Label(), m.Calories, m.Protein)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{waterCmd, adaptCmd, summaryCmd, logCmd} {
		c.PersistentFlags().StringVarP(&trackDate, "date", "d", "", "plan date (YYYY-MM-DD, default today)")
	}
	adaptCmd.Flags().IntVar(&adaptDays, "days", 3, "number of following days to extend")
	adaptCmd.Flags().IntVar(&adaptMinutes, "minutes", models.DefaultAdaptationMinutes, "extra workout minutes per day")

	f := logManualCmd.Flags()
	f.Float64Var(&manualMacros.Calories, "calories", 0, "calories (kcal)")
	f.Float64Var(&manualMacros.Protein, "protein", 0, "protein (g)")
	f.Float64Var(&manualMacros.Carbs, "carbs", 0, "carbs (g)")
	f.Float64Var(&manualMacros.Fats, "fats", 0, "fats (g)")

	logCmd.AddCommand(logPlannedCmd, logAlternativeCmd, logManualCmd)
	rootCmd.AddCommand(waterCmd, adaptCmd, logCmd, summaryCmd)
}
