// ABOUTME: Meal selection engine: resolves a user's day into concrete meals.
// ABOUTME: Applies diet-compatibility substitution within the same slot and tier.
package meals

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/harperreed/fitplan/internal/models"
	"github.com/harperreed/fitplan/internal/nutrition"
)

// ServingQuantity is the fixed quantity label on every selection.
const ServingQuantity = "1 Serving"

// Libraries supplies meal libraries by diet. content.Loader satisfies it.
type Libraries interface {
	Library(diet models.Diet) *models.MealLibrary
}

// MealSelection is one resolved meal for a plan slot.
type MealSelection struct {
	Slot         models.Slot `json:"slot" yaml:"slot"`
	MealID       string      `json:"meal_id" yaml:"meal_id"`
	Name         string      `json:"name" yaml:"name"`
	Diet         models.Diet `json:"diet" yaml:"diet"`
	Tier         models.Tier `json:"calorie_tier" yaml:"calorie_tier"`
	Calories     float64     `json:"calories" yaml:"calories"`
	Protein      float64     `json:"protein" yaml:"protein"`
	Carbs        float64     `json:"carbs" yaml:"carbs"`
	Fats         float64     `json:"fats" yaml:"fats"`
	Ingredients  []string    `json:"ingredients" yaml:"ingredients"`
	Instructions string      `json:"instructions" yaml:"instructions"`
	Quantity     string      `json:"quantity" yaml:"quantity"`
	Reason       string      `json:"reason" yaml:"reason"`
	Substituted  bool        `json:"substituted" yaml:"substituted"`
}

// Selector resolves rotation cells into meal selections.
type Selector struct {
	libs   Libraries
	logger *slog.Logger
}

// NewSelector creates a selector over libs.
func NewSelector(libs Libraries, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{libs: libs, logger: logger}
}

// Rotation builds the rotation table from the current baseline library.
func (s *Selector) Rotation() RotationTable {
	return BuildRotation(s.libs.Library(BaselineDiet))
}

// SelectDailyMeals returns the four primary-slot meals for a cycle day, or
// nil when the rotation has no cell for the user's tier.
func (s *Selector) SelectDailyMeals(diet string, age int, goal models.Goal, cycleDay int) []MealSelection {
	userDiet := models.NormalizeDiet(diet)
	day := NormalizeCycleDay(cycleDay)
	tier := nutrition.CalorieTier(age)

	cell, ok := s.Rotation().Cell(day, tier)
	if !ok {
		s.logger.Warn("no rotation cell", "day", day, "tier", int(tier))
		return nil
	}

	libs := s.allLibraries()
	out := make([]MealSelection, 0, len(models.PrimarySlots))
	for _, slot := range models.PrimarySlots {
		sel, ok := s.resolve(libs, slot, cell.ID(slot), tier, userDiet, age, goal)
		if !ok {
			continue
		}
		out = append(out, sel)
	}
	return out
}

// SelectSecondarySnack resolves the rotation's secondary snack for a day.
// It is served in the evening_snack slot.
func (s *Selector) SelectSecondarySnack(diet string, age int, goal models.Goal, cycleDay int) (MealSelection, bool) {
	userDiet := models.NormalizeDiet(diet)
	tier := nutrition.CalorieTier(age)

	cell, ok := s.Rotation().Cell(cycleDay, tier)
	if !ok {
		return MealSelection{}, false
	}
	return s.resolve(s.allLibraries(), models.SlotEveningSnack, cell.SecondarySnack, tier, userDiet, age, goal)
}

// SelectBestMealForSlot returns the first meal in the user's own library for
// the slot and age tier whose name is not excluded. Meals named in recent are
// passed over while any other candidate remains. Returns nil when nothing is
// left.
func (s *Selector) SelectBestMealForSlot(diet string, age int, slot models.Slot, excludeNames, recentMeals []string) *models.MealRecord {
	userDiet := models.NormalizeDiet(diet)
	tier := nutrition.CalorieTier(age)
	lib := s.libs.Library(userDiet)

	excluded := nameSet(excludeNames)
	recent := nameSet(recentMeals)

	var fallback *models.MealRecord
	for _, m := range lib.Filter(slot.CatalogSlot(), tier) {
		if excluded[normalizeName(m.Name)] || !userDiet.Accepts(m.Diet) {
			continue
		}
		if !recent[normalizeName(m.Name)] {
			return &m
		}
		if fallback == nil {
			fallback = &m
		}
	}
	return fallback
}

// Selection flattens a catalog meal into a plan selection for slot.
func Selection(slot models.Slot, meal models.MealRecord, age int, diet models.Diet, goal models.Goal) MealSelection {
	return MealSelection{
		Slot:         slot,
		MealID:       meal.ID,
		Name:         meal.Name,
		Diet:         meal.Diet,
		Tier:         meal.CalorieTier,
		Calories:     meal.Calories,
		Protein:      meal.Protein,
		Carbs:        meal.Carbs,
		Fats:         meal.Fats,
		Ingredients:  []string{meal.Preparation},
		Instructions: fmt.Sprintf("Prepare %s: %s", meal.Name, meal.Preparation),
		Quantity:     ServingQuantity,
		Reason:       reason(meal, age, diet, goal),
	}
}

func (s *Selector) resolve(libs []*models.MealLibrary, slot models.Slot, id string, tier models.Tier, userDiet models.Diet, age int, goal models.Goal) (MealSelection, bool) {
	meal, found := findAcross(libs, id)
	if !found {
		s.logger.Warn("rotation meal not found", "meal_id", id, "slot", string(slot))
		// Substitute from the user's library as if the missing meal were
		// incompatible; the rotation still dictates slot and tier.
		meal = models.MealRecord{ID: id, Category: slot.CatalogSlot(), CalorieTier: tier}
		repl, ok := s.findReplacement(meal, userDiet, goal)
		if !ok {
			return MealSelection{}, false
		}
		sel := Selection(slot, repl, age, userDiet, goal)
		sel.Substituted = true
		return sel, true
	}

	substituted := false
	if !userDiet.Accepts(meal.Diet) {
		if repl, ok := s.findReplacement(meal, userDiet, goal); ok {
			meal = repl
			substituted = true
		} else {
			s.logger.Warn("no diet-compatible replacement, keeping original",
				"meal_id", meal.ID, "diet", string(userDiet), "tier", int(meal.CalorieTier))
		}
	}

	sel := Selection(slot, meal, age, userDiet, goal)
	sel.Substituted = substituted
	return sel, true
}

// findReplacement picks a same-slot, same-tier meal from the user's own
// library. Protein-focused goals take the highest-protein candidate; other
// goals take the alphabetically first name.
func (s *Selector) findReplacement(original models.MealRecord, userDiet models.Diet, goal models.Goal) (models.MealRecord, bool) {
	var candidates []models.MealRecord
	for _, m := range s.libs.Library(userDiet).Filter(original.Category, original.CalorieTier) {
		if userDiet.Accepts(m.Diet) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return original, false
	}

	if goal.PrefersProtein() {
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].Protein != candidates[j].Protein {
				return candidates[i].Protein > candidates[j].Protein
			}
			return candidates[i].Name < candidates[j].Name
		})
	} else {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Name < candidates[j].Name
		})
	}
	return candidates[0], true
}

func (s *Selector) allLibraries() []*models.MealLibrary {
	libs := make([]*models.MealLibrary, 0, len(models.AllDiets))
	for _, d := range models.AllDiets {
		libs = append(libs, s.libs.Library(d))
	}
	return libs
}

func findAcross(libs []*models.MealLibrary, id string) (models.MealRecord, bool) {
	if id == "" {
		return models.MealRecord{}, false
	}
	for _, lib := range libs {
		if m, ok := lib.Find(id); ok {
			return m, true
		}
	}
	return models.MealRecord{}, false
}

func reason(meal models.MealRecord, age int, diet models.Diet, goal models.Goal) string {
	goalText := strings.ReplaceAll(string(goal), "_", " ")
	if goalText == "" {
		goalText = string(models.GoalMaintain)
	}
	return fmt.Sprintf("%d kcal tier meal for a %d-year-old on a %s diet aiming to %s",
		int(meal.CalorieTier), age, diet, goalText)
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[normalizeName(n)] = true
	}
	return set
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
