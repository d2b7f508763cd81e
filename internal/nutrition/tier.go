// ABOUTME: Calorie tier and daily target calculation.
// ABOUTME: Pure functions: same profile in, same numbers out.
package nutrition

import (
	"math"

	"github.com/harperreed/fitplan/internal/models"
)

// CalorieTier maps an age onto one of the three calorie buckets.
func CalorieTier(age int) models.Tier {
	switch {
	case age < 30:
		return models.Tier2000
	case age <= 45:
		return models.Tier1800
	default:
		return models.Tier1600
	}
}

// Targets is a daily calorie and protein goal.
type Targets struct {
	Calories int `json:"calories_target"`
	Protein  int `json:"protein_target"`
}

const (
	fallbackWeightKg = 70
	fallbackHeightCm = 170
	fallbackAge      = 30
	minimumCalories  = 1200
)

// activityMultiplier maps daily minutes available for exercise to a TDEE multiplier.
func activityMultiplier(minutes int) float64 {
	switch {
	case minutes < 20:
		return 1.2
	case minutes < 45:
		return 1.375
	case minutes < 75:
		return 1.55
	default:
		return 1.725
	}
}

// goalAdjustment returns the calorie delta applied on top of maintenance.
func goalAdjustment(goal models.Goal) float64 {
	switch goal {
	case models.GoalFatLoss:
		return -500
	case models.GoalMuscleGain:
		return 300
	default:
		return 0
	}
}

// proteinPerKg returns grams of protein per kg of body weight.
func proteinPerKg(goal models.Goal) float64 {
	switch goal {
	case models.GoalFatLoss:
		return 1.8
	case models.GoalMuscleGain:
		return 2.0
	default:
		return 1.2
	}
}

// CalculateTargets estimates daily calories (Mifflin-St Jeor with the
// sex-neutral constant, scaled by activity and adjusted for goal) and
// protein from body weight. Missing measurements fall back to defaults so
// both values are always positive.
func CalculateTargets(p *models.UserProfile) Targets {
	weight, height, age := fallbackWeightKg*1.0, fallbackHeightCm*1.0, fallbackAge
	if p != nil {
		if p.CurrentWeight > 0 {
			weight = p.CurrentWeight
		}
		if p.Height > 0 {
			height = p.Height
		}
		if p.Age > 0 {
			age = p.Age
		}
	}

	var goal models.Goal
	var minutes int
	if p != nil {
		goal = p.PrimaryGoal
		minutes = p.TimeAvailability
	}

	bmr := 10*weight + 6.25*height - 5*float64(age) - 78
	calories := bmr*activityMultiplier(minutes) + goalAdjustment(goal)
	if calories < minimumCalories {
		calories = minimumCalories
	}

	protein := math.Round(weight * proteinPerKg(goal))
	if protein < 1 {
		protein = 1
	}

	return Targets{
		Calories: int(math.Round(calories)),
		Protein:  int(protein),
	}
}
