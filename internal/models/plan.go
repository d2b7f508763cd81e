// ABOUTME: Persisted daily plan with its meal and workout child records.
// ABOUTME: A plan is a resolved snapshot; children never reference catalogs live.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for plan keys.
const DateLayout = "2006-01-02"

// ParseDate parses a plan date. Empty and "today" mean the current local date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "today" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// Plan is the parent record for one user's day.
type Plan struct {
	ID             uuid.UUID     `json:"id"`
	UserID         string        `json:"user_id"`
	Date           string        `json:"date"`
	CycleDay       int           `json:"cycle_day"`
	CalorieTier    Tier          `json:"calorie_tier"`
	CaloriesTarget int           `json:"calories_target"`
	ProteinTarget  int           `json:"protein_target"`
	WaterMl        int           `json:"water_ml"`
	Adaptation     Adaptation    `json:"adaptation"`
	GenerationID   string        `json:"generation_id"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Meals          []PlanMeal    `json:"meals,omitempty"`    // Populated when fetching full plan
	Workouts       []PlanWorkout `json:"workouts,omitempty"` // Populated when fetching full plan
}

// NewPlan creates an empty plan row for userID on date.
func NewPlan(userID string, date time.Time) *Plan {
	now := time.Now()
	return &Plan{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date.Format(DateLayout),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PlanMeal is one resolved meal on a plan.
type PlanMeal struct {
	ID           uuid.UUID `json:"id"`
	PlanID       uuid.UUID `json:"plan_id"`
	Position     int       `json:"position"`
	Slot         Slot      `json:"slot"`
	MealID       string    `json:"meal_id,omitempty"`
	Name         string    `json:"name"`
	Calories     float64   `json:"calories"`
	Protein      float64   `json:"protein"`
	Carbs        float64   `json:"carbs"`
	Fats         float64   `json:"fats"`
	Ingredients  []string  `json:"ingredients"`
	Instructions string    `json:"instructions"`
	Quantity     string    `json:"quantity"`
	Reason       string    `json:"reason"`
	Substituted  bool      `json:"substituted"`
}

// Phase tags a workout instruction.
type Phase string

const (
	PhaseWarmup   Phase = "warmup"
	PhaseMain     Phase = "main"
	PhaseCooldown Phase = "cooldown"
)

// PhaseStep is one ordered, phase-tagged workout instruction.
type PhaseStep struct {
	Phase Phase  `json:"phase" yaml:"phase"`
	Text  string `json:"text" yaml:"text"`
}

// PlanWorkout is the resolved workout session on a plan.
type PlanWorkout struct {
	ID              uuid.UUID      `json:"id"`
	PlanID          uuid.UUID      `json:"plan_id"`
	Name            string         `json:"name"`
	Type            string         `json:"type"`
	DayType         string         `json:"day_type"`
	Intensity       string         `json:"intensity"`
	DurationMinutes int            `json:"duration_minutes"`
	ExtraMinutes    int            `json:"extra_minutes"`
	Calories        int            `json:"calories"`
	Week            int            `json:"week"`
	Category        WeightCategory `json:"category"`
	Goal            WorkoutGoal    `json:"goal"`
	Steps           []PhaseStep    `json:"steps"`
}

// TotalCalories sums calories across the plan's meals.
func (p *Plan) TotalCalories() float64 {
	var total float64
	for _, m := range p.Meals {
		total += m.Calories
	}
	return total
}

// TotalProtein sums protein across the plan's meals.
func (p *Plan) TotalProtein() float64 {
	var total float64
	for _, m := range p.Meals {
		total += m.Protein
	}
	return total
}

// MealBySlot returns the plan meal in slot.
func (p *Plan) MealBySlot(slot Slot) (*PlanMeal, bool) {
	for i := range p.Meals {
		if p.Meals[i].Slot == slot {
			return &p.Meals[i], true
		}
	}
	return nil, false
}
