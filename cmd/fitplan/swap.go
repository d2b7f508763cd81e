// ABOUTME: CLI command for swapping one meal on a stored plan.
// ABOUTME: Picks the next same-slot, same-tier meal from the user's own library.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitplan/internal/models"
	"github.com/harperreed/fitplan/internal/planner"
)

var (
	swapDate    string
	swapExclude []string
)

var swapCmd = &cobra.Command{
	Use:   "swap <slot>",
	Short: "Replace one meal on a plan",
	Long: `Replace the meal in one slot with another from your diet's library.

The replacement keeps the slot and calorie tier. The current meal and any
meal already on the day are skipped, as are names passed with --exclude.

SLOTS:

  breakfast, lunch, snack, dinner, evening_snack

EXAMPLES:

  fitplan swap lunch
  fitplan swap dinner --exclude "Paneer Tikka" --exclude "Dal Makhani"
  fitplan swap breakfast --date 2026-03-10`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"breakfast", "lunch", "snack", "dinner", "evening_snack"},
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, ok := models.ParseSlot(args[0])
		if !ok {
			return fmt.Errorf("unknown slot: %s", args[0])
		}
		day, err := planDay(swapDate)
		if err != nil {
			return err
		}

		m, err := plans.SwapMeal(cmd.Context(), userID, day, slot, swapExclude)
		if errors.Is(err, planner.ErrNoAlternative) {
			return fmt.Errorf("no other %s fits your diet and calorie tier", slot)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintf(out, "✓ Swapped %s\n", slot)
		fmt.Fprintf(out, "  %s %s\n", m.Name,
			color.New(color.Faint).Sprintf("%.0f kcal  P%.0f C%.0f F%.0f", m.Calories, m.Protein, m.Carbs, m.Fats))
		return nil
	},
}

func init() {
	swapCmd.Flags().StringVarP(&swapDate, "date", "d", "", "plan date (YYYY-MM-DD, default today)")
	swapCmd.Flags().StringArrayVarP(&swapExclude, "exclude", "x", nil, "meal name to skip (repeatable)")
	rootCmd.AddCommand(swapCmd)
}
