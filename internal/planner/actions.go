// ABOUTME: Day-to-day plan operations: meal swaps, adaptation, water and
// ABOUTME: consumption logging with a consumed-versus-target summary.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/fitplan/internal/meals"
	"github.com/harperreed/fitplan/internal/models"
	"github.com/harperreed/fitplan/internal/storage"
)

// SwapMeal replaces the meal in slot on the user's plan for date with the
// best other candidate from the user's library. The current meal and every
// name in exclude are skipped; the plan's other meals count as recent.
func (p *Planner) SwapMeal(ctx context.Context, userID, date string, slot models.Slot, exclude []string) (*models.PlanMeal, error) {
	profile, err := p.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan, err := p.repo.GetPlan(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("swap %s: %w", slot, err)
	}
	current, ok := plan.MealBySlot(slot)
	if !ok {
		return nil, fmt.Errorf("swap %s: no %s meal on plan: %w", slot, slot, storage.ErrNotFound)
	}

	skip := append([]string{current.Name}, exclude...)
	var recent []string
	for _, m := range plan.Meals {
		if m.Slot != slot {
			recent = append(recent, m.Name)
		}
	}

	rec := p.selector.SelectBestMealForSlot(profile.DietaryPreference, profile.Age, slot, skip, recent)
	if rec == nil {
		return nil, fmt.Errorf("swap %s: %w", slot, ErrNoAlternative)
	}

	replacement := toPlanMeal(meals.Selection(slot, *rec, profile.Age, profile.Diet(), profile.PrimaryGoal), current.Position)
	err = p.repo.InTx(ctx, func(tx storage.PlanTx) error {
		return tx.ReplaceMealRecord(ctx, plan.ID, &replacement)
	})
	if err != nil {
		return nil, &GenerationError{Op: "swap meal", Err: err}
	}

	p.logger.Info("meal swapped", "user", userID, "date", date, "slot", string(slot),
		"from", current.Name, "to", replacement.Name)
	return &replacement, nil
}

// ActivateAdaptation marks the plan for date as adapting. The following days
// earn the bonus minutes until the countdown runs out.
func (p *Planner) ActivateAdaptation(ctx context.Context, userID, date string, days, minutes int) (models.Adaptation, error) {
	plan, err := p.repo.GetPlan(ctx, userID, date)
	if err != nil {
		return models.Adaptation{}, fmt.Errorf("activate adaptation: %w", err)
	}
	a := models.NewAdaptation(days, minutes)
	if err := p.repo.SetAdaptation(ctx, plan.ID, a); err != nil {
		return models.Adaptation{}, fmt.Errorf("activate adaptation: %w", err)
	}
	p.logger.Info("adaptation set", "user", userID, "date", date, "state", a.String())
	return a, nil
}

// LogWater adds ml to the plan's water total and returns the new total.
func (p *Planner) LogWater(ctx context.Context, userID, date string, ml int) (int, error) {
	if ml <= 0 {
		return 0, fmt.Errorf("water amount must be positive, got %d", ml)
	}
	plan, err := p.repo.GetPlan(ctx, userID, date)
	if err != nil {
		return 0, fmt.Errorf("log water: %w", err)
	}
	return p.repo.AddWater(ctx, plan.ID, ml)
}

// LogPlannedMeal records eating the plan's own meal in slot.
func (p *Planner) LogPlannedMeal(ctx context.Context, userID, date string, slot models.Slot) (*models.MealLog, error) {
	plan, err := p.repo.GetPlan(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("log planned meal: %w", err)
	}
	pm, ok := plan.MealBySlot(slot)
	if !ok {
		return nil, fmt.Errorf("log planned meal: no %s meal on plan: %w", slot, storage.ErrNotFound)
	}
	return p.addLog(ctx, userID, date, slot, models.PlannedMeal{
		PlanMealID: pm.ID,
		Name:       pm.Name,
		Macros:     models.Macros{Calories: pm.Calories, Protein: pm.Protein, Carbs: pm.Carbs, Fats: pm.Fats},
	})
}

// LogAlternativeMeal records eating a catalog meal other than the planned one.
func (p *Planner) LogAlternativeMeal(ctx context.Context, userID, date string, slot models.Slot, mealID string) (*models.MealLog, error) {
	profile, err := p.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, ok := p.catalogs.Library(profile.Diet()).Find(mealID)
	if !ok {
		return nil, fmt.Errorf("log alternative meal: meal %q not in %s library: %w", mealID, profile.Diet(), storage.ErrNotFound)
	}
	return p.addLog(ctx, userID, date, slot, models.AlternativeMeal{
		MealID: rec.ID,
		Name:   rec.Name,
		Macros: models.Macros{Calories: rec.Calories, Protein: rec.Protein, Carbs: rec.Carbs, Fats: rec.Fats},
	})
}

// LogManualMeal records a free-form meal with user-supplied macros.
func (p *Planner) LogManualMeal(ctx context.Context, userID, date string, slot models.Slot, name string, macros models.Macros) (*models.MealLog, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("manual meal needs a name")
	}
	if macros.Calories < 0 || macros.Protein < 0 || macros.Carbs < 0 || macros.Fats < 0 {
		return nil, errors.New("manual meal macros cannot be negative")
	}
	return p.addLog(ctx, userID, date, slot, models.ManualMeal{Name: name, Macros: macros})
}

func (p *Planner) addLog(ctx context.Context, userID, date string, slot models.Slot, meal models.LoggedMeal) (*models.MealLog, error) {
	entry := models.NewMealLog(userID, date, slot, meal)
	if err := p.repo.AddMealLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("log %s meal: %w", meal.Kind(), err)
	}
	p.logger.Debug("meal logged", "user", userID, "date", date, "slot", string(slot), "kind", string(meal.Kind()))
	return entry, nil
}

// Summary compares what a user ate on a day with the plan's targets.
type Summary struct {
	UserID          string            `json:"user_id"`
	Date            string            `json:"date"`
	CaloriesTarget  int               `json:"calories_target"`
	ProteinTarget   int               `json:"protein_target"`
	PlannedCalories float64           `json:"planned_calories"`
	Consumed        models.Macros     `json:"consumed"`
	WaterMl         int               `json:"water_ml"`
	Logs            []*models.MealLog `json:"-"`
	HasPlan         bool              `json:"has_plan"`
}

// RemainingCalories is the target minus what was consumed; negative means over.
func (s Summary) RemainingCalories() float64 {
	return float64(s.CaloriesTarget) - s.Consumed.Calories
}

// DailySummary totals the day's meal logs against the plan for that date.
// A day without a plan still reports what was logged.
func (p *Planner) DailySummary(ctx context.Context, userID, date string) (*Summary, error) {
	logs, err := p.repo.ListMealLogs(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	s := &Summary{UserID: userID, Date: date, Logs: logs}
	for _, l := range logs {
		m := l.Meal.Nutrition()
		s.Consumed.Calories += m.Calories
		s.Consumed.Protein += m.Protein
		s.Consumed.Carbs += m.Carbs
		s.Consumed.Fats += m.Fats
	}

	plan, err := p.repo.GetPlan(ctx, userID, date)
	switch {
	case err == nil:
		s.HasPlan = true
		s.CaloriesTarget = plan.CaloriesTarget
		s.ProteinTarget = plan.ProteinTarget
		s.PlannedCalories = plan.TotalCalories()
		s.WaterMl = plan.WaterMl
	case errors.Is(err, storage.ErrNotFound):
	default:
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	return s, nil
}

