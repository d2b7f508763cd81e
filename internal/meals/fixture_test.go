// ABOUTME: Shared fixtures for the meals package tests.
// ABOUTME: Builds in-memory meal libraries keyed by diet.
package meals

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/harperreed/fitplan/internal/models"
)

type fakeLibs map[models.Diet]*models.MealLibrary

func (f fakeLibs) Library(d models.Diet) *models.MealLibrary { return f[d] }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func meal(id string, slot models.Slot, diet models.Diet, tier models.Tier, protein float64, name string) models.MealRecord {
	return models.MealRecord{
		ID:          id,
		Name:        name,
		Category:    slot,
		Diet:        diet,
		CalorieTier: tier,
		Calories:    float64(tier) / 4,
		Protein:     protein,
		Carbs:       40,
		Fats:        12,
		Preparation: "Cook " + name,
	}
}

var eggCurry = meal("e-2000-lunch", models.SlotLunch, models.DietEgg, models.Tier2000, 25, "Egg Curry")

// fixture returns libraries where every slot and tier has two veg meals and
// the baseline lists an egg dish first for 2000-tier lunch.
func fixture() fakeLibs {
	veg := &models.MealLibrary{Diet: models.DietVeg}
	veg.Meals = append(veg.Meals, eggCurry)
	for _, tier := range models.AllTiers {
		for _, slot := range models.PrimarySlots {
			for i := 0; i < 2; i++ {
				id := fmt.Sprintf("v-%d-%s-%d", tier, slot, i)
				name := fmt.Sprintf("Veg %s %d", slot, i)
				veg.Meals = append(veg.Meals, meal(id, slot, models.DietVeg, tier, float64(10+i), name))
			}
		}
	}

	egg := &models.MealLibrary{Diet: models.DietEgg, Meals: []models.MealRecord{
		eggCurry,
		meal("e-2000-lunch-2", models.SlotLunch, models.DietEgg, models.Tier2000, 30, "Egg Bhurji Wrap"),
	}}
	nonVeg := &models.MealLibrary{Diet: models.DietNonVeg, Meals: []models.MealRecord{
		meal("n-2000-lunch", models.SlotLunch, models.DietNonVeg, models.Tier2000, 40, "Chicken Rice Bowl"),
	}}

	return fakeLibs{models.DietVeg: veg, models.DietEgg: egg, models.DietNonVeg: nonVeg}
}
