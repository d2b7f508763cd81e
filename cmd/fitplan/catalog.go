// ABOUTME: CLI commands for inspecting the content catalogs without writing plans.
// ABOUTME: Rotation cells, dry-run meal selection, workout preview and a random diet spot check.
package main

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitplan/internal/meals"
	"github.com/harperreed/fitplan/internal/models"
	"github.com/harperreed/fitplan/internal/planner"
)

var (
	rotationTier string
	previewDay   int
	checkDiet    string
	checkSamples int
	checkSeed    uint64
)

var rotationCmd = &cobra.Command{
	Use:   "rotation <day>",
	Short: "Show the rotation cell for a cycle day",
	Long: `Show which baseline meals the 28-day rotation assigns to a cycle day.

Days outside 1-28 wrap around, so day 29 shows day 1.

EXAMPLES:

  fitplan rotation 1
  fitplan rotation 14 --tier 1800`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid day: %s", args[0])
		}
		day = meals.NormalizeCycleDay(day)

		tiers := models.AllTiers
		if rotationTier != "" {
			t, ok := models.ParseTier(rotationTier)
			if !ok {
				return fmt.Errorf("unknown tier: %s (use 1600, 1800 or 2000)", rotationTier)
			}
			tiers = []models.Tier{t}
		}

		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		table := plans.Selector().Rotation()
		baseline := loader.Library(meals.BaselineDiet)
		for _, tier := range tiers {
			color.New(color.Bold).Fprintf(out, "Day %d, tier %d\n", day, tier)
			cell, ok := table.Cell(day, tier)
			if !ok {
				faint.Fprintln(out, "  no rotation (a slot has no baseline meals)")
				continue
			}
			for _, e := range cell.Entries(baseline) {
				fmt.Fprintf(out, "  %s %s %s\n", padRight(string(e.Slot), 14), e.Name, faint.Sprint(e.MealID))
			}
		}
		return nil
	},
}

var mealsCmd = &cobra.Command{
	Use:   "meals [day]",
	Short: "Preview meal selection for your profile",
	Long: `Run meal selection for your profile without saving a plan. Defaults to
today's cycle day.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day := planner.CycleDay(time.Now())
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid day: %s", args[0])
			}
			day = n
		}
		p, err := plans.Profile(cmd.Context(), userID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		sels := plans.Selector().SelectDailyMeals(p.DietaryPreference, p.Age, p.PrimaryGoal, day)
		if len(sels) == 0 {
			color.New(color.FgYellow).Fprintln(out, "No rotation meals for this profile; generation would fall back.")
			return nil
		}
		faint := color.New(color.Faint)
		for _, s := range sels {
			mark := ""
			if s.Substituted {
				mark = color.New(color.FgYellow).Sprint(" *")
			}
			fmt.Fprintf(out, "%s %s%s %s\n", padRight(string(s.Slot), 14), s.Name, mark,
				faint.Sprintf("%.0f kcal  P%.0f  %s/%d", s.Calories, s.Protein, s.Diet, s.Tier))
			faint.Fprintf(out, "  %s\n", s.Reason)
		}
		return nil
	},
}

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Inspect workout matching",
}

var workoutPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the workout your profile maps to",
	Long: `Show the weight category, goal and session the matcher picks for your
profile. --day is the program day; it defaults to today's cycle day.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plans.Profile(cmd.Context(), userID)
		if err != nil {
			return err
		}
		day := previewDay
		if day == 0 {
			day = planner.CycleDay(time.Now())
		}

		out := cmd.OutOrStdout()
		m := plans.Matcher().Match(p.Age, p.CurrentWeight, p.TargetWeight, p.Height, day)
		if m == nil {
			color.New(color.FgYellow).Fprintln(out, "Workout catalog is empty; plans use the default walk.")
			return nil
		}
		faint := color.New(color.Faint)
		fmt.Fprintf(out, "BMI %.1f -> %s / %s %s\n", m.Classification.BMI,
			m.Classification.WeightCategory, m.Classification.Goal,
			faint.Sprintf("(ages %s, %s)", m.AgeRange, m.Source))
		fmt.Fprintf(out, "Day %d -> option %d\n", day, m.Index+1)
		printWorkout(out, m.Step.Name, m.Step.DayType, m.Step.Intensity, m.Step.Duration, 0, planner.PhaseTag(m.Step.Steps))
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Check the content catalogs",
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Spot-check a meal library against its diet",
	Long: `Sample random meals from a diet's library and report any that a user on
that diet could not eat. Also reports library sizes and workout categories.

Sampling is random; pass --seed to repeat a run.

EXAMPLES:

  fitplan catalog check
  fitplan catalog check --diet egg -n 50 --seed 7`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, d := range models.AllDiets {
			fmt.Fprintf(out, "%s %d meals\n", padRight(string(d), 8), loader.Library(d).Len())
		}
		workoutCatalog := loader.LoadWorkoutCatalog()
		if workoutCatalog.IsEmpty() {
			fmt.Fprintf(out, "%s 0 categories\n", padRight("workouts", 8))
		} else {
			fmt.Fprintf(out, "%s %d categories\n", padRight("workouts", 8), len(workoutCatalog.Categories))
		}

		seed := checkSeed
		if !cmd.Flags().Changed("seed") {
			seed = uint64(time.Now().UnixNano())
		}
		diet := models.NormalizeDiet(checkDiet)
		r := rand.New(rand.NewPCG(seed, seed))
		sampled, violations := meals.SpotCheck(r, loader, diet, checkSamples)

		fmt.Fprintln(out)
		if len(violations) == 0 {
			color.New(color.FgGreen).Fprintf(out, "✓ %d %s samples passed %s\n", sampled, diet,
				color.New(color.Faint).Sprintf("(seed %d)", seed))
			return nil
		}
		red := color.New(color.FgRed)
		for _, v := range violations {
			red.Fprintf(out, "✗ %s (%s) is %s\n", v.Name, v.ID, v.Diet)
		}
		return fmt.Errorf("%d of %d %s samples violate the diet", len(violations), sampled, diet)
	},
}

func init() {
	rotationCmd.Flags().StringVarP(&rotationTier, "tier", "t", "", "only show this calorie tier")
	workoutPreviewCmd.Flags().IntVar(&previewDay, "day", 0, "program day (default today's cycle day)")
	catalogCheckCmd.Flags().StringVar(&checkDiet, "diet", "veg", "diet library to check")
	catalogCheckCmd.Flags().IntVarP(&checkSamples, "samples", "n", 20, "number of random samples")
	catalogCheckCmd.Flags().Uint64Var(&checkSeed, "seed", 0, "random seed")

	workoutCmd.AddCommand(workoutPreviewCmd)
	catalogCmd.AddCommand(catalogCheckCmd)
	rootCmd.AddCommand(rotationCmd, mealsCmd, workoutCmd, catalogCmd)
}
