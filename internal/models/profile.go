// ABOUTME: UserProfile model consumed by plan generation.
// ABOUTME: Goal parsing and profile completeness checks live here.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Goal is a user's primary fitness goal.
type Goal string

const (
	GoalFatLoss    Goal = "fat_loss"
	GoalMuscleGain Goal = "muscle_gain"
	GoalMaintain   Goal = "maintain"
	GoalWeightGain Goal = "weight_gain"
)

// NormalizeGoal maps free-form input onto a Goal, defaulting to maintain.
func NormalizeGoal(s string) Goal {
	l := strings.ToLower(strings.TrimSpace(s))
	l = strings.NewReplacer(" ", "_", "-", "_").Replace(l)
	switch {
	case strings.Contains(l, "loss"), strings.Contains(l, "lose"), strings.Contains(l, "cut"):
		return GoalFatLoss
	case strings.Contains(l, "muscle"), strings.Contains(l, "build"):
		return GoalMuscleGain
	case strings.Contains(l, "gain"), strings.Contains(l, "bulk"):
		return GoalWeightGain
	default:
		return GoalMaintain
	}
}

// PrefersProtein reports whether meal choices should favor protein.
func (g Goal) PrefersProtein() bool {
	return g == GoalFatLoss || g == GoalMuscleGain
}

// UserProfile holds the profile fields plan generation reads.
type UserProfile struct {
	UserID            string    `json:"user_id"`
	Age               int       `json:"age"`
	DietaryPreference string    `json:"dietary_preferences"`
	PrimaryGoal       Goal      `json:"primary_goal"`
	CurrentWeight     float64   `json:"current_weight"`
	TargetWeight      float64   `json:"target_weight"`
	Height            float64   `json:"height"`
	TimeAvailability  int       `json:"time_availability"`
	DailyMealCount    int       `json:"daily_meal_count"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewUserProfile creates a profile with the body measurements plan generation needs.
func NewUserProfile(userID string, age int, weightKg, heightCm float64) *UserProfile {
	return &UserProfile{
		UserID:            userID,
		Age:               age,
		DietaryPreference: string(DietVeg),
		PrimaryGoal:       GoalMaintain,
		CurrentWeight:     weightKg,
		TargetWeight:      weightKg,
		Height:            heightCm,
		TimeAvailability:  30,
		DailyMealCount:    4,
		UpdatedAt:         time.Now(),
	}
}

// WithDiet sets the free-form dietary preference.
func (p *UserProfile) WithDiet(diet string) *UserProfile {
	p.DietaryPreference = diet
	return p
}

// WithGoal sets the primary goal.
func (p *UserProfile) WithGoal(goal Goal) *UserProfile {
	p.PrimaryGoal = goal
	return p
}

// WithTargetWeight sets the target weight in kg.
func (p *UserProfile) WithTargetWeight(kg float64) *UserProfile {
	p.TargetWeight = kg
	return p
}

// WithTimeAvailability sets the minutes per day available for exercise.
func (p *UserProfile) WithTimeAvailability(minutes int) *UserProfile {
	p.TimeAvailability = minutes
	return p
}

// WithMealCount sets how many meals a day the user eats.
func (p *UserProfile) WithMealCount(n int) *UserProfile {
	p.DailyMealCount = n
	return p
}

// Diet returns the normalized diet classification.
func (p *UserProfile) Diet() Diet {
	return NormalizeDiet(p.DietaryPreference)
}

// MealCount returns the daily meal count clamped to 3..5.
func (p *UserProfile) MealCount() int {
	switch {
	case p.DailyMealCount <= 3:
		return 3
	case p.DailyMealCount >= 5:
		return 5
	default:
		return p.DailyMealCount
	}
}

// Validate checks that the fields plan generation depends on are present.
func (p *UserProfile) Validate() error {
	var missing []string
	if p.Age <= 0 {
		missing = append(missing, "age")
	}
	if p.CurrentWeight <= 0 {
		missing = append(missing, "current_weight")
	}
	if p.Height <= 0 {
		missing = append(missing, "height")
	}
	if len(missing) > 0 {
		return fmt.Errorf("profile missing %s", strings.Join(missing, ", "))
	}
	return nil
}
