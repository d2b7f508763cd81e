// ABOUTME: CLI commands for creating and showing the user profile.
// ABOUTME: Plan generation reads age, weight, height, diet, goal and meal count from it.
package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitplan/internal/models"
	"github.com/harperreed/fitplan/internal/nutrition"
	"github.com/harperreed/fitplan/internal/storage"
)

var (
	profileAge     int
	profileWeight  float64
	profileHeight  float64
	profileTarget  float64
	profileDiet    string
	profileGoal    string
	profileMinutes int
	profileMeals   int
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"p"},
	Short:   "Manage your profile",
	Long: `Create, update and inspect the profile plans are generated from.

FIELDS:

  --age       years (sets the calorie tier: <30 2000, 30-45 1800, >45 1600)
  --weight    current weight in kg
  --height    height in cm
  --target    target weight in kg (above current weight selects weight gain)
  --diet      veg, egg or non-veg (free text like "eggetarian" is normalized)
  --goal      fat_loss, muscle_gain, maintain or weight_gain
  --minutes   minutes per day available for exercise
  --meals     meals per day (3, 4 or 5)`,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update your profile",
	Long: `Create or update your profile. Only the flags you pass are changed.

EXAMPLES:

  fitplan profile set --age 34 --weight 82 --height 172 --target 74
  fitplan profile set --diet eggetarian --goal "lose weight"
  fitplan profile set --meals 5 --minutes 45`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := repo.GetProfile(ctx, userID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			p = models.NewUserProfile(userID, 0, 0, 0)
		case err != nil:
			return fmt.Errorf("failed to load profile: %w", err)
		}

		flags := cmd.Flags()
		if flags.Changed("age") {
			p.Age = profileAge
		}
		if flags.Changed("weight") {
			p.CurrentWeight = profileWeight
		}
		if flags.Changed("height") {
			p.Height = profileHeight
		}
		if flags.Changed("target") {
			p.TargetWeight = profileTarget
		}
		if flags.Changed("diet") {
			p.DietaryPreference = string(models.NormalizeDiet(profileDiet))
		}
		if flags.Changed("goal") {
			p.PrimaryGoal = models.NormalizeGoal(profileGoal)
		}
		if flags.Changed("minutes") {
			p.TimeAvailability = profileMinutes
		}
		if flags.Changed("meals") {
			p.DailyMealCount = profileMeals
		}
		if p.TargetWeight <= 0 {
			p.TargetWeight = p.CurrentWeight
		}
		if err := p.Validate(); err != nil {
			return err
		}
		p.UpdatedAt = time.Now()

		if err := repo.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintf(out, "✓ Saved profile %s\n", p.UserID)
		printProfile(out, p)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile and daily targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := repo.GetProfile(cmd.Context(), userID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no profile for %q; run 'fitplan profile set' first", userID)
		}
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		printProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

func printProfile(w writer, p *models.UserProfile) {
	faint := color.New(color.Faint)
	targets := nutrition.CalculateTargets(p)
	fmt.Fprintf(w, "  %s %d\n", padRight("age", 10), p.Age)
	fmt.Fprintf(w, "  %s %.1f kg -> %.1f kg\n", padRight("weight", 10), p.CurrentWeight, p.TargetWeight)
	fmt.Fprintf(w, "  %s %.0f cm\n", padRight("height", 10), p.Height)
	fmt.Fprintf(w, "  %s %s\n", padRight("diet", 10), p.Diet())
	fmt.Fprintf(w, "  %s %s\n", padRight("goal", 10), p.PrimaryGoal)
	fmt.Fprintf(w, "  %s %d min/day\n", padRight("exercise", 10), p.TimeAvailability)
	fmt.Fprintf(w, "  %s %d\n", padRight("meals", 10), p.MealCount())
	fmt.Fprintf(w, "  %s %d kcal, %d g protein %s\n", padRight("targets", 10),
		targets.Calories, targets.Protein,
		faint.Sprintf("(tier %d)", nutrition.CalorieTier(p.Age)))
}

func init() {
	f := profileSetCmd.Flags()
	f.IntVar(&profileAge, "age", 0, "age in years")
	f.Float64Var(&profileWeight, "weight", 0, "current weight in kg")
	f.Float64Var(&profileHeight, "height", 0, "height in cm")
	f.Float64Var(&profileTarget, "target", 0, "target weight in kg")
	f.StringVar(&profileDiet, "diet", "", "veg, egg or non-veg")
	f.StringVar(&profileGoal, "goal", "", "fat_loss, muscle_gain, maintain or weight_gain")
	f.IntVar(&profileMinutes, "minutes", 30, "minutes per day available for exercise")
	f.IntVar(&profileMeals, "meals", 4, "meals per day (3-5)")

	profileCmd.AddCommand(profileSetCmd, profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}
