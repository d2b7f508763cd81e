// ABOUTME: Plan assembly: merges meal and workout selection with targets and
// ABOUTME: persists the result with clear-then-insert semantics in one transaction.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/fitplan/internal/meals"
	"github.com/harperreed/fitplan/internal/models"
	"github.com/harperreed/fitplan/internal/nutrition"
	"github.com/harperreed/fitplan/internal/storage"
	"github.com/harperreed/fitplan/internal/workouts"
)

// MealSource records where a plan's meals came from.
type MealSource string

const (
	MealSourceRotation       MealSource = "rotation"
	MealSourceLibrary        MealSource = "library"
	MealSourceStaticFallback MealSource = "static_fallback"
)

// Catalogs is the content the planner reads. content.Loader satisfies it.
type Catalogs interface {
	meals.Libraries
	workouts.Catalogs
}

// Metadata describes how a plan was produced.
type Metadata struct {
	GenerationID   string                `json:"generation_id"`
	CycleDay       int                   `json:"cycle_day"`
	MealSource     MealSource            `json:"meal_source"`
	Substitutions  int                   `json:"substitutions"`
	PartialMeals   bool                  `json:"partial_meals"`
	WorkoutSource  workouts.Source       `json:"workout_source"`
	WeightCategory models.WeightCategory `json:"weight_category,omitempty"`
	WorkoutGoal    models.WorkoutGoal    `json:"workout_goal,omitempty"`
	FallbackUsed   bool                  `json:"fallback_used"`
	Regenerated    bool                  `json:"regenerated"`
}

// GeneratedPlan is a persisted plan plus its generation metadata.
type GeneratedPlan struct {
	Plan     *models.Plan `json:"plan"`
	Metadata Metadata     `json:"metadata"`
}

// Planner generates and persists daily plans.
type Planner struct {
	repo     storage.Repository
	catalogs Catalogs
	selector *meals.Selector
	matcher  *workouts.Matcher
	logger   *slog.Logger
}

// New creates a planner over repo and catalogs.
func New(repo storage.Repository, catalogs Catalogs, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		repo:     repo,
		catalogs: catalogs,
		selector: meals.NewSelector(catalogs, logger),
		matcher:  workouts.NewMatcher(catalogs, logger),
		logger:   logger,
	}
}

// Selector returns the meal selector the planner uses.
func (p *Planner) Selector() *meals.Selector { return p.selector }

// Matcher returns the workout matcher the planner uses.
func (p *Planner) Matcher() *workouts.Matcher { return p.matcher }

// CycleDay maps a calendar date to 1..28 as day-of-year mod 28, plus 1.
// Every user shares the same cycle day on a given date.
func CycleDay(date time.Time) int {
	return date.YearDay()%meals.CycleLength + 1
}

// Profile loads a user's profile, mapping a missing or incomplete profile to
// ErrProfileIncomplete.
func (p *Planner) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := p.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: no profile for %s", ErrProfileIncomplete, userID)
		}
		return nil, &GenerationError{Op: "load profile", Err: err}
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileIncomplete, err)
	}
	return profile, nil
}

type mealPick struct {
	selections    []meals.MealSelection
	source        MealSource
	substitutions int
	partial       bool
}

// GeneratePlan builds the plan for userID on date and stores it, replacing
// the meals and workout of any existing plan for that day.
func (p *Planner) GeneratePlan(ctx context.Context, userID string, date time.Time) (*GeneratedPlan, error) {
	profile, err := p.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	cycleDay := CycleDay(date)
	targets := nutrition.CalculateTargets(profile)
	tier := nutrition.CalorieTier(profile.Age)

	var (
		pick  mealPick
		match *workouts.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		pick = p.pickMeals(profile, cycleDay)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		match = p.matcher.Match(profile.Age, profile.CurrentWeight, profile.TargetWeight, profile.Height, cycleDay)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("select plan content: %w", err)
	}

	meta := Metadata{
		GenerationID:  ulid.Make().String(),
		CycleDay:      cycleDay,
		MealSource:    pick.source,
		Substitutions: pick.substitutions,
		PartialMeals:  pick.partial,
	}
	step := defaultWorkout
	meta.WorkoutSource = workouts.SourceDefault
	if match != nil {
		step = match.Step
		meta.WorkoutSource = match.Source
		meta.WeightCategory = match.Classification.WeightCategory
		meta.WorkoutGoal = match.Classification.Goal
	} else {
		p.logger.Warn("serving default workout", "user", userID)
	}
	meta.FallbackUsed = pick.source != MealSourceRotation || pick.partial ||
		meta.WorkoutSource != workouts.SourceAgeMatch

	dateKey := date.Format(models.DateLayout)
	err = p.repo.InTx(ctx, func(tx storage.PlanTx) error {
		inherited, bonus, err := carried(ctx, tx, userID, date)
		if err != nil {
			return err
		}

		var planID uuid.UUID

		existing, err := tx.GetPlan(ctx, userID, dateKey)
		switch {
		case err == nil:
			meta.Regenerated = true
			planID = existing.ID
			if err := tx.ClearPlanChildren(ctx, planID); err != nil {
				return err
			}
			tg := storage.PlanTargets{
				CycleDay:     cycleDay,
				CalorieTier:  tier,
				Calories:     targets.Calories,
				Protein:      targets.Protein,
				GenerationID: meta.GenerationID,
			}
			// An inactive row adopts a countdown activated after it was first generated.
			if !existing.Adaptation.Active && inherited.Active {
				tg.Adaptation = &inherited
			}
			if err := tx.UpdatePlanTargets(ctx, planID, tg); err != nil {
				return err
			}
		case errors.Is(err, storage.ErrNotFound):
			plan := models.NewPlan(userID, date)
			plan.CycleDay = cycleDay
			plan.CalorieTier = tier
			plan.CaloriesTarget = targets.Calories
			plan.ProteinTarget = targets.Protein
			plan.GenerationID = meta.GenerationID
			plan.Adaptation = inherited
			if err := tx.CreatePlan(ctx, plan); err != nil {
				return err
			}
			planID = plan.ID
		default:
			return err
		}

		for i, sel := range pick.selections {
			m := toPlanMeal(sel, i)
			if err := tx.CreateMealRecord(ctx, planID, &m); err != nil {
				return err
			}
		}
		w := toPlanWorkout(step, bonus, meta)
		return tx.CreateWorkoutRecord(ctx, planID, &w)
	})
	if err != nil {
		return nil, &GenerationError{Op: "save plan", Err: err}
	}

	plan, err := p.repo.GetPlan(ctx, userID, dateKey)
	if err != nil {
		return nil, &GenerationError{Op: "reload plan", Err: err}
	}

	p.logger.Info("plan generated",
		"user", userID,
		"date", dateKey,
		"cycle_day", cycleDay,
		"meals", len(plan.Meals),
		"meal_source", string(meta.MealSource),
		"workout_source", string(meta.WorkoutSource),
		"regenerated", meta.Regenerated,
		"generation_id", meta.GenerationID)

	return &GeneratedPlan{Plan: plan, Metadata: meta}, nil
}

// pickMeals walks the fallback chain: rotation, then per-slot picks from the
// user's own library, then the static menu. The result is shaped to the
// profile's meal count.
func (p *Planner) pickMeals(profile *models.UserProfile, cycleDay int) mealPick {
	diet := profile.DietaryPreference
	count := profile.MealCount()

	primary := p.selector.SelectDailyMeals(diet, profile.Age, profile.PrimaryGoal, cycleDay)
	source := MealSourceRotation
	if len(primary) == 0 {
		source = MealSourceLibrary
	}

	bySlot := make(map[models.Slot]meals.MealSelection, len(primary))
	for _, sel := range primary {
		bySlot[sel.Slot] = sel
	}
	partial := false
	for _, slot := range models.PrimarySlots {
		if _, ok := bySlot[slot]; ok {
			continue
		}
		if sel, ok := p.libraryPick(profile, slot, bySlot); ok {
			bySlot[slot] = sel
			if source == MealSourceRotation {
				partial = true
			}
		}
	}

	if len(bySlot) == 0 {
		p.logger.Warn("serving static fallback meals", "user", profile.UserID, "diet", diet)
		return mealPick{selections: staticFallbackMeals(count), source: MealSourceStaticFallback}
	}
	if len(bySlot) < len(models.PrimarySlots) {
		partial = true
	}

	var out []meals.MealSelection
	for _, slot := range models.PrimarySlots {
		if slot == models.SlotSnack && count <= 3 {
			continue
		}
		if sel, ok := bySlot[slot]; ok {
			out = append(out, sel)
		}
	}

	if count >= 5 {
		var extra meals.MealSelection
		ok := false
		if source == MealSourceRotation {
			extra, ok = p.selector.SelectSecondarySnack(diet, profile.Age, profile.PrimaryGoal, cycleDay)
		}
		if !ok {
			extra, ok = p.libraryPick(profile, models.SlotEveningSnack, bySlot)
		}
		if ok {
			out = append(out, extra)
		} else {
			partial = true
		}
	}

	subs := 0
	for _, sel := range out {
		if sel.Substituted {
			subs++
		}
	}
	return mealPick{selections: out, source: source, substitutions: subs, partial: partial}
}

func (p *Planner) libraryPick(profile *models.UserProfile, slot models.Slot, chosen map[models.Slot]meals.MealSelection) (meals.MealSelection, bool) {
	var taken []string
	for _, sel := range chosen {
		taken = append(taken, sel.Name)
	}
	rec := p.selector.SelectBestMealForSlot(profile.DietaryPreference, profile.Age, slot, nil, taken)
	if rec == nil {
		return meals.MealSelection{}, false
	}
	return meals.Selection(slot, *rec, profile.Age, profile.Diet(), profile.PrimaryGoal), true
}

// carried returns the adaptation state date inherits from the previous
// day's plan and the bonus minutes it earns.
func carried(ctx context.Context, tx storage.PlanTx, userID string, date time.Time) (models.Adaptation, int, error) {
	prev, err := tx.GetPlan(ctx, userID, date.AddDate(0, 0, -1).Format(models.DateLayout))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.InactiveAdaptation(), 0, nil
		}
		return models.Adaptation{}, 0, err
	}
	next, bonus := prev.Adaptation.Carry()
	return next, bonus, nil
}

func toPlanMeal(sel meals.MealSelection, position int) models.PlanMeal {
	return models.PlanMeal{
		Position:     position,
		Slot:         sel.Slot,
		MealID:       sel.MealID,
		Name:         sel.Name,
		Calories:     sel.Calories,
		Protein:      sel.Protein,
		Carbs:        sel.Carbs,
		Fats:         sel.Fats,
		Ingredients:  sel.Ingredients,
		Instructions: sel.Instructions,
		Quantity:     sel.Quantity,
		Reason:       sel.Reason,
		Substituted:  sel.Substituted,
	}
}

func toPlanWorkout(step models.WorkoutStep, bonus int, meta Metadata) models.PlanWorkout {
	return models.PlanWorkout{
		Name:            step.Name,
		Type:            step.Type,
		DayType:         step.DayType,
		Intensity:       step.Intensity,
		DurationMinutes: step.Duration + bonus,
		ExtraMinutes:    bonus,
		Calories:        step.Calories,
		Week:            step.Week,
		Category:        meta.WeightCategory,
		Goal:            meta.WorkoutGoal,
		Steps:           PhaseTag(step.Steps),
	}
}
