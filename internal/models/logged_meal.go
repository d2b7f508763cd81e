// ABOUTME: LoggedMeal sum type: what a user actually ate for a slot.
// ABOUTME: Planned, Alternative and Manual variants with exhaustive encode/decode.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LoggedMealKind discriminates LoggedMeal variants in storage.
type LoggedMealKind string

const (
	LoggedPlanned     LoggedMealKind = "planned"
	LoggedAlternative LoggedMealKind = "alternative"
	LoggedManual      LoggedMealKind = "manual"
)

// Macros is a nutrition snapshot.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// LoggedMeal is implemented only by PlannedMeal, AlternativeMeal and ManualMeal.
type LoggedMeal interface {
	Kind() LoggedMealKind
	Label() string
	Nutrition() Macros
	isLoggedMeal()
}

// PlannedMeal records eating the plan's own meal.
type PlannedMeal struct {
	PlanMealID uuid.UUID
	Name       string
	Macros     Macros
}

// AlternativeMeal records eating a different catalog meal instead.
type AlternativeMeal struct {
	MealID string
	Name   string
	Macros Macros
}

// ManualMeal records a free-form entry with user-supplied macros.
type ManualMeal struct {
	Name   string
	Macros Macros
}

func (PlannedMeal) Kind() LoggedMealKind     { return LoggedPlanned }
func (AlternativeMeal) Kind() LoggedMealKind { return LoggedAlternative }
func (ManualMeal) Kind() LoggedMealKind      { return LoggedManual }

func (m PlannedMeal) Label() string     { return m.Name }
func (m AlternativeMeal) Label() string { return m.Name }
func (m ManualMeal) Label() string      { return m.Name }

func (m PlannedMeal) Nutrition() Macros     { return m.Macros }
func (m AlternativeMeal) Nutrition() Macros { return m.Macros }
func (m ManualMeal) Nutrition() Macros      { return m.Macros }

func (PlannedMeal) isLoggedMeal()     {}
func (AlternativeMeal) isLoggedMeal() {}
func (ManualMeal) isLoggedMeal()      {}

// LoggedMealRef returns the storage reference column for a logged meal:
// the plan meal id, the catalog meal id, or empty for manual entries.
func LoggedMealRef(m LoggedMeal) string {
	switch v := m.(type) {
	case PlannedMeal:
		return v.PlanMealID.String()
	case AlternativeMeal:
		return v.MealID
	case ManualMeal:
		return ""
	default:
		panic(fmt.Sprintf("unknown logged meal %T", m))
	}
}

// DecodeLoggedMeal rebuilds a LoggedMeal from its stored columns.
func DecodeLoggedMeal(kind LoggedMealKind, ref, name string, macros Macros) (LoggedMeal, error) {
	switch kind {
	case LoggedPlanned:
		id, err := uuid.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("parse plan meal id %q: %w", ref, err)
		}
		return PlannedMeal{PlanMealID: id, Name: name, Macros: macros}, nil
	case LoggedAlternative:
		return AlternativeMeal{MealID: ref, Name: name, Macros: macros}, nil
	case LoggedManual:
		return ManualMeal{Name: name, Macros: macros}, nil
	default:
		return nil, fmt.Errorf("unknown logged meal kind: %q", kind)
	}
}

// MealLog is one consumption entry.
type MealLog struct {
	ID       uuid.UUID
	UserID   string
	Date     string
	Slot     Slot
	Meal     LoggedMeal
	LoggedAt time.Time
}

// NewMealLog creates a log entry stamped now.
func NewMealLog(userID, date string, slot Slot, meal LoggedMeal) *MealLog {
	return &MealLog{
		ID:       uuid.New(),
		UserID:   userID,
		Date:     date,
		Slot:     slot,
		Meal:     meal,
		LoggedAt: time.Now(),
	}
}
