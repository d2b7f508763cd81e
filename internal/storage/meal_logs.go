// ABOUTME: Meal log operations for SQLite storage.
// ABOUTME: Logged meals are stored with a kind discriminator and a reference column.
package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/fitplan/internal/models"
)

const mealLogColumns = `id, user_id, log_date, slot, kind, ref, name, calories, protein,
	carbs, fats, logged_at`

// AddMealLog stores a meal log entry.
func (d *DB) AddMealLog(ctx context.Context, l *models.MealLog) error {
	macros := l.Meal.Nutrition()
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO meal_logs (`+mealLogColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), l.UserID, l.Date, string(l.Slot), string(l.Meal.Kind()),
		models.LoggedMealRef(l.Meal), l.Meal.Label(),
		macros.Calories, macros.Protein, macros.Carbs, macros.Fats,
		formatTime(l.LoggedAt),
	)
	if err != nil {
		return fmt.Errorf("add meal log: %w", err)
	}
	return nil
}

// ListMealLogs returns log entries in logging order.
func (d *DB) ListMealLogs(ctx context.Context, userID, date string) ([]*models.MealLog, error) {
	query := `SELECT ` + mealLogColumns + ` FROM meal_logs WHERE 1 = 1`
	var args []any
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	if date != "" {
		query += ` AND log_date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY logged_at, id`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list meal logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.MealLog
	for rows.Next() {
		var id, slot, kind, ref, name, loggedAt string
		var l models.MealLog
		var macros models.Macros
		if err := rows.Scan(&id, &l.UserID, &l.Date, &slot, &kind, &ref, &name,
			&macros.Calories, &macros.Protein, &macros.Carbs, &macros.Fats, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan meal log: %w", err)
		}
		meal, err := models.DecodeLoggedMeal(models.LoggedMealKind(kind), ref, name, macros)
		if err != nil {
			return nil, fmt.Errorf("decode meal log %s: %w", id, err)
		}
		l.ID, _ = uuid.Parse(id)
		l.Slot = models.Slot(slot)
		l.Meal = meal
		l.LoggedAt = parseTime(loggedAt)
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
