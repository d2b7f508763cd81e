// ABOUTME: Hardcoded meals and workout used when the catalogs cannot serve a plan.
// ABOUTME: Also phase-tags workout instructions.
package planner

import (
	"github.com/harperreed/fitplan/internal/meals"
	"github.com/harperreed/fitplan/internal/models"
)

const fallbackReason = "Fallback meal served because the meal catalog had nothing for this day"

func staticMeal(slot models.Slot, name, prep string, kcal, protein, carbs, fats float64) meals.MealSelection {
	return meals.MealSelection{
		Slot:         slot,
		Name:         name,
		Diet:         models.DietVeg,
		Calories:     kcal,
		Protein:      protein,
		Carbs:        carbs,
		Fats:         fats,
		Ingredients:  []string{prep},
		Instructions: "Prepare " + name + ": " + prep,
		Quantity:     meals.ServingQuantity,
		Reason:       fallbackReason,
	}
}

// staticFallbackMeals returns breakfast, lunch and dinner, plus two snacks
// when the profile wants more than three meals.
func staticFallbackMeals(mealCount int) []meals.MealSelection {
	out := []meals.MealSelection{
		staticMeal(models.SlotBreakfast, "Oats with Banana and Peanuts",
			"Simmer rolled oats in milk, top with sliced banana and a spoon of peanuts", 380, 14, 58, 11),
		staticMeal(models.SlotLunch, "Dal, Rice and Cucumber Salad",
			"Serve a bowl of yellow dal over steamed rice with sliced cucumber", 520, 19, 82, 10),
	}
	if mealCount > 3 {
		out = append(out, staticMeal(models.SlotSnack, "Roasted Chana",
			"A handful of roasted chickpeas with a squeeze of lemon", 160, 8, 24, 3))
	}
	out = append(out, staticMeal(models.SlotDinner, "Vegetable Khichdi with Curd",
		"Pressure-cook rice, moong dal and mixed vegetables; serve with plain curd", 460, 17, 70, 11))
	if mealCount > 3 {
		out = append(out, staticMeal(models.SlotEveningSnack, "Fruit and Yogurt Bowl",
			"Chop a seasonal fruit into a bowl of plain yogurt", 180, 7, 30, 4))
	}
	return out
}

// defaultWorkout is served when the workout catalog is empty.
var defaultWorkout = models.WorkoutStep{
	DayType:   "workout",
	Name:      "Brisk Walk",
	Type:      "cardio",
	Intensity: "low",
	Duration:  30,
	Calories:  120,
	Steps: []string{
		"5 min easy walk to warm up",
		"20 min brisk walk, fast enough that talking takes effort",
		"5 min slow walk and calf stretch",
	},
	Week: 1,
}

// PhaseTag tags instructions by position: with three or more steps the first
// is warmup and the last cooldown; everything else is main.
func PhaseTag(steps []string) []models.PhaseStep {
	out := make([]models.PhaseStep, len(steps))
	for i, s := range steps {
		phase := models.PhaseMain
		if len(steps) >= 3 {
			switch i {
			case 0:
				phase = models.PhaseWarmup
			case len(steps) - 1:
				phase = models.PhaseCooldown
			}
		}
		out[i] = models.PhaseStep{Phase: phase, Text: s}
	}
	return out
}
