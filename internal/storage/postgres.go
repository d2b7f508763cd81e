// ABOUTME: PostgreSQL storage backend using a pgx connection pool.
// ABOUTME: Same tables as SQLite with native timestamp and boolean columns.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/fitplan/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Repository = (*Postgres)(nil)

// Postgres is a Repository backed by PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OpenPostgres connects to dsn and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("open postgres: database_url not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	pg := &Postgres{pool: pool}
	if err := pg.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return pg, nil
}

// Close closes the pool.
func (pg *Postgres) Close() error {
	pg.pool.Close()
	return nil
}

func (pg *Postgres) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			age INTEGER NOT NULL,
			dietary_preferences TEXT NOT NULL DEFAULT '',
			primary_goal TEXT NOT NULL DEFAULT 'maintain',
			current_weight DOUBLE PRECISION NOT NULL,
			target_weight DOUBLE PRECISION NOT NULL,
			height DOUBLE PRECISION NOT NULL,
			time_availability INTEGER NOT NULL DEFAULT 30,
			daily_meal_count INTEGER NOT NULL DEFAULT 4,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS plans (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			plan_date TEXT NOT NULL,
			cycle_day INTEGER NOT NULL,
			calorie_tier INTEGER NOT NULL,
			calories_target INTEGER NOT NULL,
			protein_target INTEGER NOT NULL,
			water_ml INTEGER NOT NULL DEFAULT 0,
			adaptation_active BOOLEAN NOT NULL DEFAULT FALSE,
			adaptation_days INTEGER NOT NULL DEFAULT 0,
			adaptation_minutes INTEGER NOT NULL DEFAULT 0,
			generation_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, plan_date)
		)`,
		`CREATE TABLE IF NOT EXISTS plan_meals (
			id UUID PRIMARY KEY,
			plan_id UUID NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			slot TEXT NOT NULL,
			meal_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			calories DOUBLE PRECISION NOT NULL DEFAULT 0,
			protein DOUBLE PRECISION NOT NULL DEFAULT 0,
			carbs DOUBLE PRECISION NOT NULL DEFAULT 0,
			fats DOUBLE PRECISION NOT NULL DEFAULT 0,
			ingredients TEXT NOT NULL DEFAULT '[]',
			instructions TEXT NOT NULL DEFAULT '',
			quantity TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL DEFAULT '',
			substituted BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS plan_workouts (
			id UUID PRIMARY KEY,
			plan_id UUID NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			workout_type TEXT NOT NULL DEFAULT '',
			day_type TEXT NOT NULL DEFAULT '',
			intensity TEXT NOT NULL DEFAULT '',
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			extra_minutes INTEGER NOT NULL DEFAULT 0,
			calories INTEGER NOT NULL DEFAULT 0,
			week INTEGER NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT '',
			goal TEXT NOT NULL DEFAULT '',
			steps TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
		)`,
		`CREATE TABLE IF NOT EXISTS meal_logs (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			log_date TEXT NOT NULL,
			slot TEXT NOT NULL,
			kind TEXT NOT NULL,
			ref TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			calories DOUBLE PRECISION NOT NULL DEFAULT 0,
			protein DOUBLE PRECISION NOT NULL DEFAULT 0,
			carbs DOUBLE PRECISION NOT NULL DEFAULT 0,
			fats DOUBLE PRECISION NOT NULL DEFAULT 0,
			logged_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plans_user_date ON plans(user_id, plan_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_meals_plan ON plan_meals(plan_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_meal_logs_user_date ON meal_logs(user_id, log_date)`,
	}
	for _, stmt := range statements {
		if _, err := pg.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetProfile retrieves the profile for userID.
func (pg *Postgres) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	row := pg.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	p, err := scanPgProfile(row)
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return p, nil
}

// SaveProfile inserts or replaces the profile for p.UserID.
func (pg *Postgres) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	_, err := pg.pool.Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			dietary_preferences = EXCLUDED.dietary_preferences,
			primary_goal = EXCLUDED.primary_goal,
			current_weight = EXCLUDED.current_weight,
			target_weight = EXCLUDED.target_weight,
			height = EXCLUDED.height,
			time_availability = EXCLUDED.time_availability,
			daily_meal_count = EXCLUDED.daily_meal_count,
			updated_at = EXCLUDED.updated_at`,
		p.UserID, p.Age, p.DietaryPreference, string(p.PrimaryGoal), p.CurrentWeight,
		p.TargetWeight, p.Height, p.TimeAvailability, p.DailyMealCount, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// ListProfiles returns every profile ordered by user id.
func (pg *Postgres) ListProfiles(ctx context.Context) ([]*models.UserProfile, error) {
	rows, err := pg.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.UserProfile
	for rows.Next() {
		p, err := scanPgProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPlan retrieves a user's plan for date with its children.
func (pg *Postgres) GetPlan(ctx context.Context, userID, date string) (*models.Plan, error) {
	p, err := (&pgTx{q: pg.pool}).GetPlan(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("get plan %s/%s: %w", userID, date, err)
	}
	return pg.withChildren(ctx, p)
}

// GetPlanByID retrieves a plan by id with its children.
func (pg *Postgres) GetPlanByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	p, err := scanPgPlan(pg.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", id, err)
	}
	return pg.withChildren(ctx, p)
}

// ListPlans returns plan rows, newest date first. An empty userID lists all users.
func (pg *Postgres) ListPlans(ctx context.Context, userID string, limit int) ([]*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE ($1 = '' OR user_id = $1)
		ORDER BY plan_date DESC, user_id`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := pg.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.Plan
	for rows.Next() {
		p, err := scanPgPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// ListPlanMeals returns a plan's meals in position order.
func (pg *Postgres) ListPlanMeals(ctx context.Context, planID uuid.UUID) ([]models.PlanMeal, error) {
	rows, err := pg.pool.Query(ctx,
		`SELECT `+mealColumns+` FROM plan_meals WHERE plan_id = $1 ORDER BY position`, planID)
	if err != nil {
		return nil, fmt.Errorf("list plan meals: %w", err)
	}
	defer rows.Close()

	var meals []models.PlanMeal
	for rows.Next() {
		var m models.PlanMeal
		var slot, ingredients string
		if err := rows.Scan(&m.ID, &m.PlanID, &m.Position, &slot, &m.MealID, &m.Name,
			&m.Calories, &m.Protein, &m.Carbs, &m.Fats, &ingredients, &m.Instructions,
			&m.Quantity, &m.Reason, &m.Substituted); err != nil {
			return nil, fmt.Errorf("scan plan meal: %w", err)
		}
		m.Slot = models.Slot(slot)
		m.Ingredients = decodeStrings(ingredients)
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// ListPlanWorkouts returns a plan's workouts.
func (pg *Postgres) ListPlanWorkouts(ctx context.Context, planID uuid.UUID) ([]models.PlanWorkout, error) {
	rows, err := pg.pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM plan_workouts WHERE plan_id = $1 ORDER BY created_at`, planID)
	if err != nil {
		return nil, fmt.Errorf("list plan workouts: %w", err)
	}
	defer rows.Close()

	var workouts []models.PlanWorkout
	for rows.Next() {
		var w models.PlanWorkout
		var category, goal, steps string
		if err := rows.Scan(&w.ID, &w.PlanID, &w.Name, &w.Type, &w.DayType, &w.Intensity,
			&w.DurationMinutes, &w.ExtraMinutes, &w.Calories, &w.Week, &category, &goal, &steps); err != nil {
			return nil, fmt.Errorf("scan plan workout: %w", err)
		}
		w.Category = models.WeightCategory(category)
		w.Goal = models.WorkoutGoal(goal)
		w.Steps = decodeSteps(steps)
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// AddWater adds ml to the plan's water total and returns the new total.
func (pg *Postgres) AddWater(ctx context.Context, planID uuid.UUID, ml int) (int, error) {
	var total int
	err := pg.pool.QueryRow(ctx,
		`UPDATE plans SET water_ml = water_ml + $1, updated_at = now() WHERE id = $2 RETURNING water_ml`,
		ml, planID).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("add water: %w", ErrNotFound)
		}
		return 0, fmt.Errorf("add water: %w", err)
	}
	return total, nil
}

// SetAdaptation stores the adaptation state on a plan.
func (pg *Postgres) SetAdaptation(ctx context.Context, planID uuid.UUID, a models.Adaptation) error {
	tag, err := pg.pool.Exec(ctx, `
		UPDATE plans
		SET adaptation_active = $1, adaptation_days = $2, adaptation_minutes = $3, updated_at = now()
		WHERE id = $4`,
		a.Active, a.DaysRemaining, a.ExtraMinutes, planID)
	if err != nil {
		return fmt.Errorf("set adaptation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set adaptation: %w", ErrNotFound)
	}
	return nil
}

// AddMealLog stores a meal log entry.
func (pg *Postgres) AddMealLog(ctx context.Context, l *models.MealLog) error {
	macros := l.Meal.Nutrition()
	_, err := pg.pool.Exec(ctx, `
		INSERT INTO meal_logs (`+mealLogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		l.ID, l.UserID, l.Date, string(l.Slot), string(l.Meal.Kind()),
		models.LoggedMealRef(l.Meal), l.Meal.Label(),
		macros.Calories, macros.Protein, macros.Carbs, macros.Fats, l.LoggedAt,
	)
	if err != nil {
		return fmt.Errorf("add meal log: %w", err)
	}
	return nil
}

// ListMealLogs returns log entries in logging order.
func (pg *Postgres) ListMealLogs(ctx context.Context, userID, date string) ([]*models.MealLog, error) {
	rows, err := pg.pool.Query(ctx, `
		SELECT `+mealLogColumns+` FROM meal_logs
		WHERE ($1 = '' OR user_id = $1) AND ($2 = '' OR log_date = $2)
		ORDER BY logged_at, id`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list meal logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.MealLog
	for rows.Next() {
		var l models.MealLog
		var slot, kind, ref, name string
		var macros models.Macros
		if err := rows.Scan(&l.ID, &l.UserID, &l.Date, &slot, &kind, &ref, &name,
			&macros.Calories, &macros.Protein, &macros.Carbs, &macros.Fats, &l.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan meal log: %w", err)
		}
		meal, err := models.DecodeLoggedMeal(models.LoggedMealKind(kind), ref, name, macros)
		if err != nil {
			return nil, fmt.Errorf("decode meal log %s: %w", l.ID, err)
		}
		l.Slot = models.Slot(slot)
		l.Meal = meal
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// InTx runs fn inside a Postgres transaction.
func (pg *Postgres) InTx(ctx context.Context, fn func(PlanTx) error) error {
	tx, err := pg.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&pgTx{q: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (pg *Postgres) withChildren(ctx context.Context, p *models.Plan) (*models.Plan, error) {
	meals, err := pg.ListPlanMeals(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	workouts, err := pg.ListPlanWorkouts(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Meals = meals
	p.Workouts = workouts
	return p, nil
}

// pgTx adapts a pgQuerier to PlanTx.
type pgTx struct {
	q pgQuerier
}

func (t *pgTx) GetPlan(ctx context.Context, userID, date string) (*models.Plan, error) {
	return scanPgPlan(t.q.QueryRow(ctx,
		`SELECT `+planColumns+` FROM plans WHERE user_id = $1 AND plan_date = $2`, userID, date))
}

func (t *pgTx) CreatePlan(ctx context.Context, p *models.Plan) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.UserID, p.Date, p.CycleDay, int(p.CalorieTier), p.CaloriesTarget,
		p.ProteinTarget, p.WaterMl, p.Adaptation.Active, p.Adaptation.DaysRemaining,
		p.Adaptation.ExtraMinutes, p.GenerationID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (t *pgTx) ClearPlanChildren(ctx context.Context, planID uuid.UUID) error {
	for _, table := range []string{"plan_meals", "plan_workouts"} {
		if _, err := t.q.Exec(ctx, "DELETE FROM "+table+" WHERE plan_id = $1", planID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func (t *pgTx) CreateMealRecord(ctx context.Context, planID uuid.UUID, m *models.PlanMeal) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.PlanID = planID
	ingredients, err := encodeList(m.Ingredients)
	if err != nil {
		return err
	}
	_, err = t.q.Exec(ctx, `
		INSERT INTO plan_meals (`+mealColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		m.ID, planID, m.Position, string(m.Slot), m.MealID, m.Name, m.Calories, m.Protein,
		m.Carbs, m.Fats, ingredients, m.Instructions, m.Quantity, m.Reason, m.Substituted,
	)
	if err != nil {
		return fmt.Errorf("create meal record: %w", err)
	}
	return nil
}

func (t *pgTx) CreateWorkoutRecord(ctx context.Context, planID uuid.UUID, w *models.PlanWorkout) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.PlanID = planID
	steps, err := encodeList(w.Steps)
	if err != nil {
		return err
	}
	_, err = t.q.Exec(ctx, `
		INSERT INTO plan_workouts (`+workoutColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		w.ID, planID, w.Name, w.Type, w.DayType, w.Intensity, w.DurationMinutes,
		w.ExtraMinutes, w.Calories, w.Week, string(w.Category), string(w.Goal), steps,
	)
	if err != nil {
		return fmt.Errorf("create workout record: %w", err)
	}
	return nil
}

func (t *pgTx) UpdatePlanTargets(ctx context.Context, planID uuid.UUID, tg PlanTargets) error {
	tag, err := t.q.Exec(ctx, `
		UPDATE plans
		SET cycle_day = $1, calorie_tier = $2, calories_target = $3, protein_target = $4,
			generation_id = $5, updated_at = now()
		WHERE id = $6`,
		tg.CycleDay, int(tg.CalorieTier), tg.Calories, tg.Protein, tg.GenerationID, planID)
	if err != nil {
		return fmt.Errorf("update plan targets: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update plan targets: %w", ErrNotFound)
	}
	if a := tg.Adaptation; a != nil {
		if _, err := t.q.Exec(ctx, `
			UPDATE plans
			SET adaptation_active = $1, adaptation_days = $2, adaptation_minutes = $3
			WHERE id = $4`,
			a.Active, a.DaysRemaining, a.ExtraMinutes, planID); err != nil {
			return fmt.Errorf("update plan adaptation: %w", err)
		}
	}
	return nil
}

func (t *pgTx) ReplaceMealRecord(ctx context.Context, planID uuid.UUID, m *models.PlanMeal) error {
	var position int
	err := t.q.QueryRow(ctx,
		`DELETE FROM plan_meals WHERE plan_id = $1 AND slot = $2 RETURNING position`,
		planID, string(m.Slot)).Scan(&position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("replace %s meal: %w", m.Slot, ErrNotFound)
		}
		return fmt.Errorf("replace %s meal: %w", m.Slot, err)
	}
	m.Position = position
	return t.CreateMealRecord(ctx, planID, m)
}

func scanPgProfile(row rowScanner) (*models.UserProfile, error) {
	var p models.UserProfile
	var goal string
	err := row.Scan(&p.UserID, &p.Age, &p.DietaryPreference, &goal, &p.CurrentWeight,
		&p.TargetWeight, &p.Height, &p.TimeAvailability, &p.DailyMealCount, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	p.PrimaryGoal = models.Goal(goal)
	return &p, nil
}

func scanPgPlan(row rowScanner) (*models.Plan, error) {
	var p models.Plan
	var tier int
	err := row.Scan(&p.ID, &p.UserID, &p.Date, &p.CycleDay, &tier, &p.CaloriesTarget,
		&p.ProteinTarget, &p.WaterMl, &p.Adaptation.Active, &p.Adaptation.DaysRemaining,
		&p.Adaptation.ExtraMinutes, &p.GenerationID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	p.CalorieTier = models.Tier(tier)
	return &p, nil
}
