// ABOUTME: Tests for daily meal selection, diet substitution and slot picks.
// ABOUTME: Uses small in-memory libraries built by the fixture helpers.
package meals

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/fitplan/internal/content"
	"github.com/harperreed/fitplan/internal/models"
)

func lunchOf(t *testing.T, sels []MealSelection) MealSelection {
	t.Helper()
	for _, s := range sels {
		if s.Slot == models.SlotLunch {
			return s
		}
	}
	t.Fatal("no lunch selected")
	return MealSelection{}
}

func TestSelectDailyMealsShape(t *testing.T) {
	sel := NewSelector(fixture(), quietLogger())
	got := sel.SelectDailyMeals("veg", 35, models.GoalMaintain, 3)

	require.Len(t, got, 4)
	for i, slot := range models.PrimarySlots {
		assert.Equal(t, slot, got[i].Slot)
		assert.Equal(t, ServingQuantity, got[i].Quantity)
		assert.Len(t, got[i].Ingredients, 1)
		assert.Contains(t, got[i].Reason, "35-year-old")
		assert.Contains(t, got[i].Reason, "veg")
		assert.Contains(t, got[i].Instructions, got[i].Name)
		assert.Equal(t, models.Tier1800, got[i].Tier)
	}
}

func TestSelectDailyMealsSubstitutesForVeg(t *testing.T) {
	sel := NewSelector(fixture(), quietLogger())

	lunch := lunchOf(t, sel.SelectDailyMeals("vegetarian", 25, models.GoalMaintain, 1))
	assert.True(t, lunch.Substituted)
	assert.Equal(t, models.DietVeg, lunch.Diet)
	assert.Equal(t, eggCurry.CalorieTier, lunch.Tier)
	assert.Equal(t, "Veg lunch 0", lunch.Name, "maintain sorts by name")

	lunch = lunchOf(t, sel.SelectDailyMeals("veg", 25, models.GoalFatLoss, 1))
	assert.True(t, lunch.Substituted)
	assert.Equal(t, "Veg lunch 1", lunch.Name, "fat loss prefers protein")
	assert.Equal(t, eggCurry.CalorieTier, lunch.Tier)
}

func TestSelectDailyMealsKeepsCompatible(t *testing.T) {
	sel := NewSelector(fixture(), quietLogger())

	for _, diet := range []string{"eggetarian", "non-veg", "meat eater"} {
		lunch := lunchOf(t, sel.SelectDailyMeals(diet, 25, models.GoalMuscleGain, 1))
		assert.False(t, lunch.Substituted, diet)
		assert.Equal(t, eggCurry.ID, lunch.MealID, diet)
	}
}

func TestSelectDailyMealsKeepsOriginalWithoutReplacement(t *testing.T) {
	libs := fixture()
	var meals []models.MealRecord
	for _, m := range libs[models.DietVeg].Meals {
		if m.CalorieTier == models.Tier2000 && m.Category == models.SlotLunch && m.Diet == models.DietVeg {
			continue
		}
		meals = append(meals, m)
	}
	libs[models.DietVeg] = &models.MealLibrary{Diet: models.DietVeg, Meals: meals}

	got := NewSelector(libs, quietLogger()).SelectDailyMeals("veg", 25, models.GoalMaintain, 1)
	require.Len(t, got, 4)
	lunch := lunchOf(t, got)
	assert.False(t, lunch.Substituted)
	assert.Equal(t, eggCurry.ID, lunch.MealID)
}

func TestSelectDailyMealsDeterministic(t *testing.T) {
	sel := NewSelector(fixture(), quietLogger())
	for day := 1; day <= CycleLength; day++ {
		a := sel.SelectDailyMeals("veg", 25, models.GoalFatLoss, day)
		b := sel.SelectDailyMeals("veg", 25, models.GoalFatLoss, day)
		assert.Equal(t, a, b, "day %d", day)
	}
}

func TestSelectDailyMealsWraparound(t *testing.T) {
	sel := NewSelector(fixture(), quietLogger())
	day1 := sel.SelectDailyMeals("egg", 40, models.GoalMaintain, 1)

	assert.Equal(t, day1, sel.SelectDailyMeals("egg", 40, models.GoalMaintain, 29))
	assert.Equal(t, day1, sel.SelectDailyMeals("egg", 40, models.GoalMaintain, 57))
	assert.Equal(t,
		sel.SelectDailyMeals("egg", 40, models.GoalMaintain, 28),
		sel.SelectDailyMeals("egg", 40, models.GoalMaintain, 0))
	assert.Equal(t,
		sel.SelectDailyMeals("egg", 40, models.GoalMaintain, 27),
		sel.SelectDailyMeals("egg", 40, models.GoalMaintain, -1))
}

func TestSelectDailyMealsMissingCell(t *testing.T) {
	libs := fixture()
	var meals []models.MealRecord
	for _, m := range libs[models.DietVeg].Meals {
		if m.CalorieTier != models.Tier1600 {
			meals = append(meals, m)
		}
	}
	libs[models.DietVeg] = &models.MealLibrary{Diet: models.DietVeg, Meals: meals}

	assert.Empty(t, NewSelector(libs, quietLogger()).SelectDailyMeals("veg", 60, models.GoalMaintain, 1))
}

func TestResolveUnknownID(t *testing.T) {
	sel := NewSelector(fixture(), quietLogger())

	got, ok := sel.resolve(sel.allLibraries(), models.SlotLunch, "ghost", models.Tier2000, models.DietVeg, 25, models.GoalMaintain)
	require.True(t, ok)
	assert.True(t, got.Substituted)
	assert.Equal(t, "Veg lunch 0", got.Name)
	assert.Equal(t, models.Tier2000, got.Tier)

	empty := NewSelector(fakeLibs{}, quietLogger())
	_, ok = empty.resolve(empty.allLibraries(), models.SlotLunch, "ghost", models.Tier2000, models.DietVeg, 25, models.GoalMaintain)
	assert.False(t, ok)
}

func TestSelectSecondarySnack(t *testing.T) {
	sel := NewSelector(fixture(), quietLogger())

	primary := sel.SelectDailyMeals("veg", 25, models.GoalMaintain, 1)
	snack, ok := sel.SelectSecondarySnack("veg", 25, models.GoalMaintain, 1)
	require.True(t, ok)
	assert.Equal(t, models.SlotEveningSnack, snack.Slot)
	assert.NotEqual(t, primary[2].MealID, snack.MealID)
	assert.Equal(t, models.Tier2000, snack.Tier)
}

func TestSelectBestMealForSlot(t *testing.T) {
	sel := NewSelector(fixture(), quietLogger())

	got := sel.SelectBestMealForSlot("veg", 25, models.SlotLunch, nil, nil)
	require.NotNil(t, got)
	assert.Equal(t, "Veg lunch 0", got.Name, "egg dish in the veg file is skipped")

	got = sel.SelectBestMealForSlot("veg", 25, models.SlotLunch, []string{"veg lunch 0"}, nil)
	require.NotNil(t, got)
	assert.Equal(t, "Veg lunch 1", got.Name)

	got = sel.SelectBestMealForSlot("veg", 25, models.SlotLunch, nil, []string{"Veg lunch 0"})
	require.NotNil(t, got)
	assert.Equal(t, "Veg lunch 1", got.Name, "recent meals are passed over")

	got = sel.SelectBestMealForSlot("veg", 25, models.SlotLunch, []string{"Veg lunch 1"}, []string{"Veg lunch 0"})
	require.NotNil(t, got)
	assert.Equal(t, "Veg lunch 0", got.Name, "recent is only a preference")

	got = sel.SelectBestMealForSlot("veg", 25, models.SlotLunch, []string{"Veg lunch 0", "Veg lunch 1"}, nil)
	assert.Nil(t, got)

	got = sel.SelectBestMealForSlot("veg", 25, models.SlotEveningSnack, nil, nil)
	require.NotNil(t, got)
	assert.Equal(t, models.SlotSnack, got.Category)
}

func TestSelectDailyMealsEmbeddedCatalogs(t *testing.T) {
	sel := NewSelector(content.NewLoader(content.Embedded(), content.WithLogger(quietLogger())), quietLogger())
	diets := map[string]models.Diet{"veg": models.DietVeg, "egg": models.DietEgg, "non-veg": models.DietNonVeg}
	goals := []models.Goal{models.GoalFatLoss, models.GoalMuscleGain, models.GoalMaintain}

	for input, diet := range diets {
		for _, age := range []int{18, 29, 30, 45, 46, 80} {
			for _, goal := range goals {
				for day := 1; day <= CycleLength; day++ {
					got := sel.SelectDailyMeals(input, age, goal, day)
					require.Len(t, got, 4, "%s age %d %s day %d", input, age, goal, day)
					for _, m := range got {
						assert.True(t, diet.Accepts(m.Diet), "%s got %s meal %s", input, m.Diet, m.MealID)
					}
				}
			}
		}
	}
}

func TestSelectRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	items := []string{"a", "b", "c"}
	for i := 0; i < 20; i++ {
		got, ok := SelectRandom(r, items)
		require.True(t, ok)
		assert.Contains(t, items, got)
	}

	_, ok := SelectRandom[string](r, nil)
	assert.False(t, ok)
	_, ok = SelectRandom(nil, items)
	assert.False(t, ok)
}

func TestSpotCheck(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))

	clean := fakeLibs{models.DietEgg: fixture()[models.DietEgg]}
	n, bad := SpotCheck(r, clean, models.DietEgg, 10)
	assert.Equal(t, 10, n)
	assert.Empty(t, bad)

	mislabeled := fakeLibs{models.DietVeg: {Diet: models.DietVeg, Meals: []models.MealRecord{eggCurry}}}
	n, bad = SpotCheck(r, mislabeled, models.DietVeg, 5)
	assert.Equal(t, 5, n)
	assert.Len(t, bad, 5)

	n, bad = SpotCheck(r, fakeLibs{}, models.DietVeg, 5)
	assert.Zero(t, n)
	assert.Empty(t, bad)
}
