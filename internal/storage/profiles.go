// ABOUTME: Profile operations for SQLite storage.
// ABOUTME: Profiles are upserted by user id.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/fitplan/internal/models"
)

const profileColumns = `user_id, age, dietary_preferences, primary_goal, current_weight,
	target_weight, height, time_availability, daily_meal_count, updated_at`

// GetProfile retrieves the profile for userID.
func (d *DB) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ?`
	p, err := scanProfile(d.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return p, nil
}

// SaveProfile inserts or replaces the profile for p.UserID.
func (d *DB) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			age = excluded.age,
			dietary_preferences = excluded.dietary_preferences,
			primary_goal = excluded.primary_goal,
			current_weight = excluded.current_weight,
			target_weight = excluded.target_weight,
			height = excluded.height,
			time_availability = excluded.time_availability,
			daily_meal_count = excluded.daily_meal_count,
			updated_at = excluded.updated_at
	`
	_, err := d.db.ExecContext(ctx, query,
		p.UserID,
		p.Age,
		p.DietaryPreference,
		string(p.PrimaryGoal),
		p.CurrentWeight,
		p.TargetWeight,
		p.Height,
		p.TimeAvailability,
		p.DailyMealCount,
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// ListProfiles returns every profile ordered by user id.
func (d *DB) ListProfiles(ctx context.Context) ([]*models.UserProfile, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProfile(row rowScanner) (*models.UserProfile, error) {
	var p models.UserProfile
	var goal, updatedAt string
	err := row.Scan(&p.UserID, &p.Age, &p.DietaryPreference, &goal, &p.CurrentWeight,
		&p.TargetWeight, &p.Height, &p.TimeAvailability, &p.DailyMealCount, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	p.PrimaryGoal = models.Goal(goal)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}
