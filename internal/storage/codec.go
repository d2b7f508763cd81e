// ABOUTME: Column encoding helpers shared by the SQL backends.
// ABOUTME: List-valued fields are stored as JSON text.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/fitplan/internal/models"
)

// rowScanner is satisfied by *sql.Row, *sql.Rows, pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func encodeList(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(data), nil
}

func decodeStrings(s string) []string {
	var out []string
	if s == "" {
		return out
	}
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func decodeSteps(s string) []models.PhaseStep {
	var out []models.PhaseStep
	if s == "" {
		return out
	}
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// mealLogRecord is the serialized shape of a MealLog for key-value storage
// and exports.
type mealLogRecord struct {
	ID       uuid.UUID             `json:"id" yaml:"id"`
	UserID   string                `json:"user_id" yaml:"user_id"`
	Date     string                `json:"date" yaml:"date"`
	Slot     models.Slot           `json:"slot" yaml:"slot"`
	Kind     models.LoggedMealKind `json:"kind" yaml:"kind"`
	Ref      string                `json:"ref,omitempty" yaml:"ref,omitempty"`
	Name     string                `json:"name" yaml:"name"`
	Macros   models.Macros         `json:"macros" yaml:"macros"`
	LoggedAt time.Time             `json:"logged_at" yaml:"logged_at"`
}

func newMealLogRecord(l *models.MealLog) mealLogRecord {
	return mealLogRecord{
		ID:       l.ID,
		UserID:   l.UserID,
		Date:     l.Date,
		Slot:     l.Slot,
		Kind:     l.Meal.Kind(),
		Ref:      models.LoggedMealRef(l.Meal),
		Name:     l.Meal.Label(),
		Macros:   l.Meal.Nutrition(),
		LoggedAt: l.LoggedAt,
	}
}

func (r mealLogRecord) decode() (*models.MealLog, error) {
	meal, err := models.DecodeLoggedMeal(r.Kind, r.Ref, r.Name, r.Macros)
	if err != nil {
		return nil, fmt.Errorf("decode meal log %s: %w", r.ID, err)
	}
	return &models.MealLog{
		ID:       r.ID,
		UserID:   r.UserID,
		Date:     r.Date,
		Slot:     r.Slot,
		Meal:     meal,
		LoggedAt: r.LoggedAt,
	}, nil
}
