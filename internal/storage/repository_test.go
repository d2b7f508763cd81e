// ABOUTME: Tests for Repository interface implementations.
// ABOUTME: Runs the same suite against SQLite, Badger and (when configured) Postgres.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/fitplan/internal/models"
)

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "fitplan-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := Open(filepath.Join(tmpDir, "fitplan.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// setupTestKV opens an in-memory Badger database.
func setupTestKV(t *testing.T) *KV {
	t.Helper()

	kv, err := OpenBadger("")
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

// setupTestPostgres connects to FITPLAN_TEST_DATABASE_URL and empties the tables.
func setupTestPostgres(t *testing.T) *Postgres {
	t.Helper()

	dsn := os.Getenv("FITPLAN_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FITPLAN_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pg, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to open postgres: %v", err)
	}
	if _, err := pg.pool.Exec(ctx, `TRUNCATE meal_logs, plan_meals, plan_workouts, plans, profiles`); err != nil {
		t.Fatalf("Failed to truncate: %v", err)
	}
	t.Cleanup(func() { pg.Close() })
	return pg
}

func forEachBackend(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestDB(t)) })
	t.Run("badger", func(t *testing.T) { fn(t, setupTestKV(t)) })
	t.Run("postgres", func(t *testing.T) { fn(t, setupTestPostgres(t)) })
}

func testPlan(userID, date string) *models.Plan {
	day, _ := time.Parse(models.DateLayout, date)
	p := models.NewPlan(userID, day)
	p.CycleDay = 3
	p.CalorieTier = models.Tier1800
	p.CaloriesTarget = 2100
	p.ProteinTarget = 90
	p.GenerationID = "gen-1"
	return p
}

func testMeals() []models.PlanMeal {
	var meals []models.PlanMeal
	for i, slot := range models.PrimarySlots {
		meals = append(meals, models.PlanMeal{
			Position:    i,
			Slot:        slot,
			MealID:      "veg-1800-" + string(slot),
			Name:        "Meal " + string(slot),
			Calories:    450,
			Protein:     20,
			Carbs:       50,
			Fats:        12,
			Ingredients: []string{"Cook it"},
			Quantity:    "1 Serving",
		})
	}
	return meals
}

func testWorkout() models.PlanWorkout {
	return models.PlanWorkout{
		Name:            "Full Body",
		Type:            "strength",
		DayType:         "workout",
		DurationMinutes: 40,
		Category:        models.WeightOverweight,
		Goal:            models.WorkoutFatLoss,
		Steps: []models.PhaseStep{
			{Phase: models.PhaseWarmup, Text: "march"},
			{Phase: models.PhaseMain, Text: "squats"},
			{Phase: models.PhaseCooldown, Text: "stretch"},
		},
	}
}

// seedPlan writes a plan with four meals and one workout.
func seedPlan(t *testing.T, repo Repository, userID, date string) *models.Plan {
	t.Helper()
	ctx := context.Background()
	p := testPlan(userID, date)
	err := repo.InTx(ctx, func(tx PlanTx) error {
		if err := tx.CreatePlan(ctx, p); err != nil {
			return err
		}
		for _, m := range testMeals() {
			if err := tx.CreateMealRecord(ctx, p.ID, &m); err != nil {
				return err
			}
		}
		w := testWorkout()
		return tx.CreateWorkoutRecord(ctx, p.ID, &w)
	})
	if err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return p
}

func TestProfileRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		if _, err := repo.GetProfile(ctx, "alice"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetProfile missing: got %v, want ErrNotFound", err)
		}

		p := models.NewUserProfile("alice", 31, 72, 168).WithDiet("eggetarian").WithGoal(models.GoalFatLoss)
		if err := repo.SaveProfile(ctx, p); err != nil {
			t.Fatalf("SaveProfile failed: %v", err)
		}

		got, err := repo.GetProfile(ctx, "alice")
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if got.Age != 31 || got.CurrentWeight != 72 || got.Height != 168 {
			t.Errorf("measurements mismatch: %+v", got)
		}
		if got.PrimaryGoal != models.GoalFatLoss {
			t.Errorf("goal = %q, want fat_loss", got.PrimaryGoal)
		}
		if got.Diet() != models.DietEgg {
			t.Errorf("diet = %q, want egg", got.Diet())
		}

		p.Age = 32
		if err := repo.SaveProfile(ctx, p); err != nil {
			t.Fatalf("SaveProfile update failed: %v", err)
		}
		got, _ = repo.GetProfile(ctx, "alice")
		if got.Age != 32 {
			t.Errorf("age after update = %d, want 32", got.Age)
		}

		if err := repo.SaveProfile(ctx, models.NewUserProfile("bob", 50, 90, 180)); err != nil {
			t.Fatalf("SaveProfile bob failed: %v", err)
		}
		all, err := repo.ListProfiles(ctx)
		if err != nil {
			t.Fatalf("ListProfiles failed: %v", err)
		}
		if len(all) != 2 || all[0].UserID != "alice" || all[1].UserID != "bob" {
			t.Errorf("ListProfiles = %v", all)
		}
	})
}

func TestPlanWithChildren(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := seedPlan(t, repo, "alice", "2024-03-01")

		got, err := repo.GetPlan(ctx, "alice", "2024-03-01")
		if err != nil {
			t.Fatalf("GetPlan failed: %v", err)
		}
		if got.ID != p.ID {
			t.Errorf("ID = %v, want %v", got.ID, p.ID)
		}
		if got.CaloriesTarget != 2100 || got.ProteinTarget != 90 || got.CalorieTier != models.Tier1800 {
			t.Errorf("targets mismatch: %+v", got)
		}
		if len(got.Meals) != 4 {
			t.Fatalf("meals = %d, want 4", len(got.Meals))
		}
		for i, slot := range models.PrimarySlots {
			if got.Meals[i].Slot != slot {
				t.Errorf("meal %d slot = %q, want %q", i, got.Meals[i].Slot, slot)
			}
		}
		if len(got.Meals[0].Ingredients) != 1 {
			t.Errorf("ingredients not round-tripped: %v", got.Meals[0].Ingredients)
		}
		if len(got.Workouts) != 1 || len(got.Workouts[0].Steps) != 3 {
			t.Fatalf("workouts = %+v", got.Workouts)
		}
		if got.Workouts[0].Steps[2].Phase != models.PhaseCooldown {
			t.Errorf("last phase = %q, want cooldown", got.Workouts[0].Steps[2].Phase)
		}

		byID, err := repo.GetPlanByID(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPlanByID failed: %v", err)
		}
		if len(byID.Meals) != 4 {
			t.Errorf("GetPlanByID meals = %d, want 4", len(byID.Meals))
		}

		if _, err := repo.GetPlan(ctx, "alice", "2024-03-02"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetPlan missing: got %v, want ErrNotFound", err)
		}
		if _, err := repo.GetPlanByID(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetPlanByID missing: got %v, want ErrNotFound", err)
		}
	})
}

func TestListPlans(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		seedPlan(t, repo, "alice", "2024-03-01")
		seedPlan(t, repo, "alice", "2024-03-03")
		seedPlan(t, repo, "bob", "2024-03-02")

		plans, err := repo.ListPlans(ctx, "alice", 0)
		if err != nil {
			t.Fatalf("ListPlans failed: %v", err)
		}
		if len(plans) != 2 || plans[0].Date != "2024-03-03" {
			t.Errorf("alice plans = %+v", plans)
		}

		all, err := repo.ListPlans(ctx, "", 2)
		if err != nil {
			t.Fatalf("ListPlans all failed: %v", err)
		}
		if len(all) != 2 || all[0].Date != "2024-03-03" || all[1].Date != "2024-03-02" {
			t.Errorf("all plans = %+v", all)
		}
	})
}

func TestInTxRollsBack(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		boom := errors.New("boom")

		err := repo.InTx(ctx, func(tx PlanTx) error {
			p := testPlan("alice", "2024-03-01")
			if err := tx.CreatePlan(ctx, p); err != nil {
				return err
			}
			m := testMeals()[0]
			if err := tx.CreateMealRecord(ctx, p.ID, &m); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("InTx error = %v, want boom", err)
		}
		if _, err := repo.GetPlan(ctx, "alice", "2024-03-01"); !errors.Is(err, ErrNotFound) {
			t.Errorf("plan survived rollback: %v", err)
		}
	})
}

func TestClearRollbackKeepsChildren(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := seedPlan(t, repo, "alice", "2024-03-01")

		err := repo.InTx(ctx, func(tx PlanTx) error {
			if err := tx.ClearPlanChildren(ctx, p.ID); err != nil {
				return err
			}
			return errors.New("insert failed")
		})
		if err == nil {
			t.Fatal("expected error")
		}

		meals, err := repo.ListPlanMeals(ctx, p.ID)
		if err != nil {
			t.Fatalf("ListPlanMeals failed: %v", err)
		}
		if len(meals) != 4 {
			t.Errorf("meals after failed regeneration = %d, want 4", len(meals))
		}
	})
}

func TestRegenerateInPlace(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := seedPlan(t, repo, "alice", "2024-03-01")
		if _, err := repo.AddWater(ctx, p.ID, 500); err != nil {
			t.Fatalf("AddWater failed: %v", err)
		}

		err := repo.InTx(ctx, func(tx PlanTx) error {
			existing, err := tx.GetPlan(ctx, "alice", "2024-03-01")
			if err != nil {
				return err
			}
			if err := tx.ClearPlanChildren(ctx, existing.ID); err != nil {
				return err
			}
			for _, m := range testMeals()[:3] {
				if err := tx.CreateMealRecord(ctx, existing.ID, &m); err != nil {
					return err
				}
			}
			return tx.UpdatePlanTargets(ctx, existing.ID, PlanTargets{
				CycleDay: 4, CalorieTier: models.Tier2000, Calories: 2500, Protein: 120, GenerationID: "gen-2",
			})
		})
		if err != nil {
			t.Fatalf("regenerate: %v", err)
		}

		got, err := repo.GetPlan(ctx, "alice", "2024-03-01")
		if err != nil {
			t.Fatalf("GetPlan failed: %v", err)
		}
		if got.ID != p.ID {
			t.Errorf("plan row replaced: %v != %v", got.ID, p.ID)
		}
		if len(got.Meals) != 3 || len(got.Workouts) != 0 {
			t.Errorf("children = %d meals, %d workouts", len(got.Meals), len(got.Workouts))
		}
		if got.CaloriesTarget != 2500 || got.ProteinTarget != 120 || got.CycleDay != 4 || got.GenerationID != "gen-2" {
			t.Errorf("targets not updated: %+v", got)
		}
		if got.WaterMl != 500 {
			t.Errorf("water = %d, want 500 preserved", got.WaterMl)
		}
	})
}

func TestUpdatePlanTargetsAdaptation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := seedPlan(t, repo, "alice", "2024-03-01")
		want := models.Adaptation{Active: true, DaysRemaining: 2, ExtraMinutes: 15}

		update := func(a *models.Adaptation) {
			t.Helper()
			err := repo.InTx(ctx, func(tx PlanTx) error {
				return tx.UpdatePlanTargets(ctx, p.ID, PlanTargets{
					CycleDay: 2, CalorieTier: models.Tier1800, Calories: 1800, Protein: 90,
					GenerationID: "gen-a", Adaptation: a,
				})
			})
			if err != nil {
				t.Fatalf("UpdatePlanTargets failed: %v", err)
			}
		}

		update(&want)
		got, err := repo.GetPlan(ctx, "alice", "2024-03-01")
		if err != nil {
			t.Fatalf("GetPlan failed: %v", err)
		}
		if got.Adaptation != want {
			t.Errorf("adaptation = %v, want %v", got.Adaptation, want)
		}

		update(nil)
		got, err = repo.GetPlan(ctx, "alice", "2024-03-01")
		if err != nil {
			t.Fatalf("GetPlan failed: %v", err)
		}
		if got.Adaptation != want {
			t.Errorf("nil adaptation overwrote state: %v", got.Adaptation)
		}
	})
}

func TestCreatePlanDuplicate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		seedPlan(t, repo, "alice", "2024-03-01")

		err := repo.InTx(ctx, func(tx PlanTx) error {
			return tx.CreatePlan(ctx, testPlan("alice", "2024-03-01"))
		})
		if err == nil {
			t.Error("expected duplicate (user, date) to fail")
		}
	})
}

func TestReplaceMealRecord(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := seedPlan(t, repo, "alice", "2024-03-01")

		swap := models.PlanMeal{Slot: models.SlotLunch, MealID: "veg-1800-l02", Name: "Swapped Lunch", Calories: 500}
		err := repo.InTx(ctx, func(tx PlanTx) error {
			return tx.ReplaceMealRecord(ctx, p.ID, &swap)
		})
		if err != nil {
			t.Fatalf("ReplaceMealRecord failed: %v", err)
		}

		meals, _ := repo.ListPlanMeals(ctx, p.ID)
		if len(meals) != 4 {
			t.Fatalf("meals = %d, want 4", len(meals))
		}
		if meals[1].Name != "Swapped Lunch" || meals[1].Position != 1 {
			t.Errorf("lunch = %+v", meals[1])
		}

		missing := models.PlanMeal{Slot: models.SlotEveningSnack, Name: "x"}
		err = repo.InTx(ctx, func(tx PlanTx) error {
			return tx.ReplaceMealRecord(ctx, p.ID, &missing)
		})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("replace missing slot: got %v, want ErrNotFound", err)
		}
	})
}

func TestWaterAndAdaptation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := seedPlan(t, repo, "alice", "2024-03-01")

		if total, err := repo.AddWater(ctx, p.ID, 250); err != nil || total != 250 {
			t.Fatalf("AddWater = %d, %v", total, err)
		}
		if total, err := repo.AddWater(ctx, p.ID, 300); err != nil || total != 550 {
			t.Fatalf("AddWater = %d, %v", total, err)
		}

		a := models.NewAdaptation(3, 10)
		if err := repo.SetAdaptation(ctx, p.ID, a); err != nil {
			t.Fatalf("SetAdaptation failed: %v", err)
		}
		got, _ := repo.GetPlan(ctx, "alice", "2024-03-01")
		if got.Adaptation != a {
			t.Errorf("adaptation = %+v, want %+v", got.Adaptation, a)
		}

		if _, err := repo.AddWater(ctx, uuid.New(), 100); !errors.Is(err, ErrNotFound) {
			t.Errorf("AddWater missing plan: got %v", err)
		}
		if err := repo.SetAdaptation(ctx, uuid.New(), a); !errors.Is(err, ErrNotFound) {
			t.Errorf("SetAdaptation missing plan: got %v", err)
		}
	})
}

func TestMealLogs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
		planMealID := uuid.New()

		entries := []*models.MealLog{
			models.NewMealLog("alice", "2024-03-01", models.SlotBreakfast,
				models.PlannedMeal{PlanMealID: planMealID, Name: "Poha", Macros: models.Macros{Calories: 350, Protein: 9}}),
			models.NewMealLog("alice", "2024-03-01", models.SlotLunch,
				models.AlternativeMeal{MealID: "veg-1800-l02", Name: "Rajma Rice", Macros: models.Macros{Calories: 520, Protein: 18}}),
			models.NewMealLog("alice", "2024-03-01", models.SlotSnack,
				models.ManualMeal{Name: "Office samosa", Macros: models.Macros{Calories: 260, Protein: 4}}),
			models.NewMealLog("alice", "2024-03-02", models.SlotBreakfast,
				models.ManualMeal{Name: "Toast", Macros: models.Macros{Calories: 200}}),
			models.NewMealLog("bob", "2024-03-01", models.SlotBreakfast,
				models.ManualMeal{Name: "Eggs", Macros: models.Macros{Calories: 300}}),
		}
		for i, l := range entries {
			l.LoggedAt = base.Add(time.Duration(i) * time.Hour)
			if err := repo.AddMealLog(ctx, l); err != nil {
				t.Fatalf("AddMealLog failed: %v", err)
			}
		}

		logs, err := repo.ListMealLogs(ctx, "alice", "2024-03-01")
		if err != nil {
			t.Fatalf("ListMealLogs failed: %v", err)
		}
		if len(logs) != 3 {
			t.Fatalf("logs = %d, want 3", len(logs))
		}

		planned, ok := logs[0].Meal.(models.PlannedMeal)
		if !ok || planned.PlanMealID != planMealID {
			t.Errorf("first log = %#v, want planned meal", logs[0].Meal)
		}
		alt, ok := logs[1].Meal.(models.AlternativeMeal)
		if !ok || alt.MealID != "veg-1800-l02" || alt.Macros.Calories != 520 {
			t.Errorf("second log = %#v, want alternative meal", logs[1].Meal)
		}
		if _, ok := logs[2].Meal.(models.ManualMeal); !ok {
			t.Errorf("third log = %#v, want manual meal", logs[2].Meal)
		}

		all, err := repo.ListMealLogs(ctx, "", "")
		if err != nil {
			t.Fatalf("ListMealLogs all failed: %v", err)
		}
		if len(all) != 5 {
			t.Errorf("all logs = %d, want 5", len(all))
		}

		byDate, _ := repo.ListMealLogs(ctx, "", "2024-03-01")
		if len(byDate) != 4 {
			t.Errorf("logs on 2024-03-01 = %d, want 4", len(byDate))
		}
	})
}
