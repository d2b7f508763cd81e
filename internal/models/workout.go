// ABOUTME: Workout catalog models: demographic categories and their day-by-day options.
// ABOUTME: Categories are keyed by age range, weight category and goal.
package models

// WeightCategory is the workout catalog's body-composition axis.
type WeightCategory string

const (
	WeightUnderweight WeightCategory = "underweight"
	WeightOverweight  WeightCategory = "overweight"
	WeightObese       WeightCategory = "obese"
)

// WorkoutGoal is the workout catalog's goal axis.
type WorkoutGoal string

const (
	WorkoutWeightGain  WorkoutGoal = "weight_gain"
	WorkoutFatLoss     WorkoutGoal = "fat_loss"
	WorkoutSafeFatLoss WorkoutGoal = "safe_fat_loss"
)

// WorkoutStep is one day of a workout program.
type WorkoutStep struct {
	DayType   string   `json:"day_type" yaml:"day_type"`
	Name      string   `json:"name" yaml:"name"`
	Type      string   `json:"type" yaml:"type"`
	Intensity string   `json:"intensity" yaml:"intensity"`
	Duration  int      `json:"duration" yaml:"duration"`
	Calories  int      `json:"calories" yaml:"calories"`
	Steps     []string `json:"steps" yaml:"steps"`
	Week      int      `json:"week" yaml:"week"`
}

// WorkoutCategory is a program for one demographic bucket.
type WorkoutCategory struct {
	AgeRange       string         `json:"age_range" yaml:"age_range"`
	WeightCategory WeightCategory `json:"weight_category" yaml:"weight_category"`
	Goal           WorkoutGoal    `json:"goal" yaml:"goal"`
	Options        []WorkoutStep  `json:"workout_options" yaml:"workout_options"`
}

// WorkoutCatalog is the parsed workout document.
type WorkoutCatalog struct {
	Meta       map[string]any    `json:"meta,omitempty"`
	Categories []WorkoutCategory `json:"workouts"`
}

// IsEmpty reports whether the catalog has no categories.
func (c *WorkoutCatalog) IsEmpty() bool {
	return c == nil || len(c.Categories) == 0
}
