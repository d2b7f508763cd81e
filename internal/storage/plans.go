// ABOUTME: Plan operations for SQLite storage.
// ABOUTME: Shared by the connection and by transactions through querier.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/fitplan/internal/models"
)

const planColumns = `id, user_id, plan_date, cycle_day, calorie_tier, calories_target,
	protein_target, water_ml, adaptation_active, adaptation_days, adaptation_minutes,
	generation_id, created_at, updated_at`

const mealColumns = `id, plan_id, position, slot, meal_id, name, calories, protein, carbs,
	fats, ingredients, instructions, quantity, reason, substituted`

const workoutColumns = `id, plan_id, name, workout_type, day_type, intensity, duration_minutes,
	extra_minutes, calories, week, category, goal, steps`

// sqlTx adapts a querier to PlanTx.
type sqlTx struct {
	q querier
}

func (t *sqlTx) GetPlan(ctx context.Context, userID, date string) (*models.Plan, error) {
	return getPlanRow(ctx, t.q, userID, date)
}

func (t *sqlTx) CreatePlan(ctx context.Context, p *models.Plan) error {
	return createPlan(ctx, t.q, p)
}

func (t *sqlTx) ClearPlanChildren(ctx context.Context, planID uuid.UUID) error {
	for _, table := range []string{"plan_meals", "plan_workouts"} {
		if _, err := t.q.ExecContext(ctx, "DELETE FROM "+table+" WHERE plan_id = ?", planID.String()); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func (t *sqlTx) CreateMealRecord(ctx context.Context, planID uuid.UUID, m *models.PlanMeal) error {
	return insertMeal(ctx, t.q, planID, m)
}

func (t *sqlTx) CreateWorkoutRecord(ctx context.Context, planID uuid.UUID, w *models.PlanWorkout) error {
	return insertWorkout(ctx, t.q, planID, w)
}

func (t *sqlTx) UpdatePlanTargets(ctx context.Context, planID uuid.UUID, tg PlanTargets) error {
	res, err := t.q.ExecContext(ctx, `
		UPDATE plans
		SET cycle_day = ?, calorie_tier = ?, calories_target = ?, protein_target = ?,
			generation_id = ?, updated_at = ?
		WHERE id = ?`,
		tg.CycleDay, int(tg.CalorieTier), tg.Calories, tg.Protein, tg.GenerationID,
		formatTime(time.Now()), planID.String())
	if err != nil {
		return fmt.Errorf("update plan targets: %w", err)
	}
	if err := requireAffected(res, "update plan targets"); err != nil {
		return err
	}
	if a := tg.Adaptation; a != nil {
		if _, err := t.q.ExecContext(ctx, `
			UPDATE plans
			SET adaptation_active = ?, adaptation_days = ?, adaptation_minutes = ?
			WHERE id = ?`,
			boolInt(a.Active), a.DaysRemaining, a.ExtraMinutes, planID.String()); err != nil {
			return fmt.Errorf("update plan adaptation: %w", err)
		}
	}
	return nil
}

func (t *sqlTx) ReplaceMealRecord(ctx context.Context, planID uuid.UUID, m *models.PlanMeal) error {
	var position int
	err := t.q.QueryRowContext(ctx,
		`SELECT position FROM plan_meals WHERE plan_id = ? AND slot = ?`,
		planID.String(), string(m.Slot)).Scan(&position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("replace %s meal: %w", m.Slot, ErrNotFound)
		}
		return fmt.Errorf("replace %s meal: %w", m.Slot, err)
	}
	if _, err := t.q.ExecContext(ctx,
		`DELETE FROM plan_meals WHERE plan_id = ? AND slot = ?`,
		planID.String(), string(m.Slot)); err != nil {
		return fmt.Errorf("replace %s meal: %w", m.Slot, err)
	}
	m.Position = position
	return insertMeal(ctx, t.q, planID, m)
}

// GetPlan retrieves a user's plan for date with its children.
func (d *DB) GetPlan(ctx context.Context, userID, date string) (*models.Plan, error) {
	p, err := getPlanRow(ctx, d.db, userID, date)
	if err != nil {
		return nil, fmt.Errorf("get plan %s/%s: %w", userID, date, err)
	}
	return d.withChildren(ctx, p)
}

// GetPlanByID retrieves a plan by id with its children.
func (d *DB) GetPlanByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = ?`
	p, err := scanPlan(d.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", id, err)
	}
	return d.withChildren(ctx, p)
}

// ListPlans returns plan rows, newest date first. An empty userID lists all users.
func (d *DB) ListPlans(ctx context.Context, userID string, limit int) ([]*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY plan_date DESC, user_id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// ListPlanMeals returns a plan's meals in position order.
func (d *DB) ListPlanMeals(ctx context.Context, planID uuid.UUID) ([]models.PlanMeal, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+mealColumns+` FROM plan_meals WHERE plan_id = ? ORDER BY position`, planID.String())
	if err != nil {
		return nil, fmt.Errorf("list plan meals: %w", err)
	}
	defer rows.Close()

	var meals []models.PlanMeal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// ListPlanWorkouts returns a plan's workouts.
func (d *DB) ListPlanWorkouts(ctx context.Context, planID uuid.UUID) ([]models.PlanWorkout, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+workoutColumns+` FROM plan_workouts WHERE plan_id = ? ORDER BY rowid`, planID.String())
	if err != nil {
		return nil, fmt.Errorf("list plan workouts: %w", err)
	}
	defer rows.Close()

	var workouts []models.PlanWorkout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// AddWater adds ml to the plan's water total and returns the new total.
func (d *DB) AddWater(ctx context.Context, planID uuid.UUID, ml int) (int, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE plans SET water_ml = water_ml + ?, updated_at = ? WHERE id = ?`,
		ml, formatTime(time.Now()), planID.String())
	if err != nil {
		return 0, fmt.Errorf("add water: %w", err)
	}
	if err := requireAffected(res, "add water"); err != nil {
		return 0, err
	}

	var total int
	if err := d.db.QueryRowContext(ctx, `SELECT water_ml FROM plans WHERE id = ?`, planID.String()).Scan(&total); err != nil {
		return 0, fmt.Errorf("read water: %w", err)
	}
	return total, nil
}

// SetAdaptation stores the adaptation state on a plan.
func (d *DB) SetAdaptation(ctx context.Context, planID uuid.UUID, a models.Adaptation) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE plans
		SET adaptation_active = ?, adaptation_days = ?, adaptation_minutes = ?, updated_at = ?
		WHERE id = ?`,
		boolInt(a.Active), a.DaysRemaining, a.ExtraMinutes, formatTime(time.Now()), planID.String())
	if err != nil {
		return fmt.Errorf("set adaptation: %w", err)
	}
	return requireAffected(res, "set adaptation")
}

func (d *DB) withChildren(ctx context.Context, p *models.Plan) (*models.Plan, error) {
	meals, err := d.ListPlanMeals(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	workouts, err := d.ListPlanWorkouts(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Meals = meals
	p.Workouts = workouts
	return p, nil
}

func getPlanRow(ctx context.Context, q querier, userID, date string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE user_id = ? AND plan_date = ?`
	return scanPlan(q.QueryRowContext(ctx, query, userID, date))
}

func createPlan(ctx context.Context, q querier, p *models.Plan) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(),
		p.UserID,
		p.Date,
		p.CycleDay,
		int(p.CalorieTier),
		p.CaloriesTarget,
		p.ProteinTarget,
		p.WaterMl,
		boolInt(p.Adaptation.Active),
		p.Adaptation.DaysRemaining,
		p.Adaptation.ExtraMinutes,
		p.GenerationID,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func insertMeal(ctx context.Context, q querier, planID uuid.UUID, m *models.PlanMeal) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.PlanID = planID
	ingredients, err := encodeList(m.Ingredients)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO plan_meals (`+mealColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), planID.String(), m.Position, string(m.Slot), m.MealID, m.Name,
		m.Calories, m.Protein, m.Carbs, m.Fats, ingredients, m.Instructions,
		m.Quantity, m.Reason, boolInt(m.Substituted),
	)
	if err != nil {
		return fmt.Errorf("create meal record: %w", err)
	}
	return nil
}

func insertWorkout(ctx context.Context, q querier, planID uuid.UUID, w *models.PlanWorkout) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.PlanID = planID
	steps, err := encodeList(w.Steps)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO plan_workouts (`+workoutColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID.String(), planID.String(), w.Name, w.Type, w.DayType, w.Intensity,
		w.DurationMinutes, w.ExtraMinutes, w.Calories, w.Week,
		string(w.Category), string(w.Goal), steps,
	)
	if err != nil {
		return fmt.Errorf("create workout record: %w", err)
	}
	return nil
}

func scanPlan(row rowScanner) (*models.Plan, error) {
	var p models.Plan
	var id, createdAt, updatedAt string
	var tier, active int
	err := row.Scan(&id, &p.UserID, &p.Date, &p.CycleDay, &tier, &p.CaloriesTarget,
		&p.ProteinTarget, &p.WaterMl, &active, &p.Adaptation.DaysRemaining,
		&p.Adaptation.ExtraMinutes, &p.GenerationID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	p.ID, _ = uuid.Parse(id)
	p.CalorieTier = models.Tier(tier)
	p.Adaptation.Active = active != 0
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func scanMeal(row rowScanner) (models.PlanMeal, error) {
	var m models.PlanMeal
	var id, planID, slot, ingredients string
	var substituted int
	err := row.Scan(&id, &planID, &m.Position, &slot, &m.MealID, &m.Name, &m.Calories,
		&m.Protein, &m.Carbs, &m.Fats, &ingredients, &m.Instructions, &m.Quantity,
		&m.Reason, &substituted)
	if err != nil {
		return m, fmt.Errorf("scan plan meal: %w", err)
	}
	m.ID, _ = uuid.Parse(id)
	m.PlanID, _ = uuid.Parse(planID)
	m.Slot = models.Slot(slot)
	m.Ingredients = decodeStrings(ingredients)
	m.Substituted = substituted != 0
	return m, nil
}

func scanWorkout(row rowScanner) (models.PlanWorkout, error) {
	var w models.PlanWorkout
	var id, planID, category, goal, steps string
	err := row.Scan(&id, &planID, &w.Name, &w.Type, &w.DayType, &w.Intensity,
		&w.DurationMinutes, &w.ExtraMinutes, &w.Calories, &w.Week, &category, &goal, &steps)
	if err != nil {
		return w, fmt.Errorf("scan plan workout: %w", err)
	}
	w.ID, _ = uuid.Parse(id)
	w.PlanID, _ = uuid.Parse(planID)
	w.Category = models.WeightCategory(category)
	w.Goal = models.WorkoutGoal(goal)
	w.Steps = decodeSteps(steps)
	return w, nil
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
