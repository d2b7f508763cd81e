// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for profiles, plans, plan children and meal logs.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		age INTEGER NOT NULL,
		dietary_preferences TEXT NOT NULL DEFAULT '',
		primary_goal TEXT NOT NULL DEFAULT 'maintain',
		current_weight REAL NOT NULL,
		target_weight REAL NOT NULL,
		height REAL NOT NULL,
		time_availability INTEGER NOT NULL DEFAULT 30,
		daily_meal_count INTEGER NOT NULL DEFAULT 4,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		plan_date TEXT NOT NULL,
		cycle_day INTEGER NOT NULL,
		calorie_tier INTEGER NOT NULL,
		calories_target INTEGER NOT NULL,
		protein_target INTEGER NOT NULL,
		water_ml INTEGER NOT NULL DEFAULT 0,
		adaptation_active INTEGER NOT NULL DEFAULT 0,
		adaptation_days INTEGER NOT NULL DEFAULT 0,
		adaptation_minutes INTEGER NOT NULL DEFAULT 0,
		generation_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (user_id, plan_date)
	);

	CREATE TABLE IF NOT EXISTS plan_meals (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		slot TEXT NOT NULL,
		meal_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		calories REAL NOT NULL DEFAULT 0,
		protein REAL NOT NULL DEFAULT 0,
		carbs REAL NOT NULL DEFAULT 0,
		fats REAL NOT NULL DEFAULT 0,
		ingredients TEXT NOT NULL DEFAULT '[]',
		instructions TEXT NOT NULL DEFAULT '',
		quantity TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		substituted INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS plan_workouts (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL,
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
		FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS meal_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		log_date TEXT NOT NULL,
		slot TEXT NOT NULL,
		kind TEXT NOT NULL,
		ref TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		calories REAL NOT NULL DEFAULT 0,
		protein REAL NOT NULL DEFAULT 0,
		carbs REAL NOT NULL DEFAULT 0,
		fats REAL NOT NULL DEFAULT 0,
		logged_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plans_user_date ON plans(user_id, plan_date DESC);
	CREATE INDEX IF NOT EXISTS idx_plan_meals_plan ON plan_meals(plan_id, position);
	CREATE INDEX IF NOT EXISTS idx_plan_workouts_plan ON plan_workouts(plan_id);
	CREATE INDEX IF NOT EXISTS idx_meal_logs_user_date ON meal_logs(user_id, log_date);
	`

	_, err := d.db.Exec(schema)
	return err
}
