// ABOUTME: Workout category matcher: maps body measurements to a catalog program
// ABOUTME: and picks the day's session by cycling through its options.
package workouts

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/harperreed/fitplan/internal/models"
)

// ObeseBMI is the BMI at or above which the safe fat-loss program applies.
const ObeseBMI = 30.0

// Source records which rung of the fallback chain produced a match.
type Source string

const (
	SourceAgeMatch      Source = "age_match"
	SourceCategoryMatch Source = "category_match"
	SourceFirstEntry    Source = "first_entry"
	// SourceDefault is used by callers that substitute their own session.
	SourceDefault Source = "default"
)

// Catalogs supplies the workout catalog. content.Loader satisfies it.
type Catalogs interface {
	LoadWorkoutCatalog() *models.WorkoutCatalog
}

// Classification is the catalog bucket a profile falls into.
type Classification struct {
	BMI            float64
	WeightCategory models.WeightCategory
	Goal           models.WorkoutGoal
}

// Match is a selected session plus how it was found.
type Match struct {
	Step           models.WorkoutStep
	AgeRange       string
	Classification Classification
	Source         Source
	Index          int
}

// BMI returns weight / height_m^2, or 0 when height is not positive.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return weightKg / (m * m)
}

// Classify picks the weight category and goal. Anyone wanting to gain is
// underweight/weight_gain; otherwise BMI >= 30 is obese/safe_fat_loss and
// everyone else, normal BMI included, is overweight/fat_loss.
func Classify(currentWeight, targetWeight, heightCm float64) Classification {
	bmi := BMI(currentWeight, heightCm)
	switch {
	case targetWeight > currentWeight:
		return Classification{BMI: bmi, WeightCategory: models.WeightUnderweight, Goal: models.WorkoutWeightGain}
	case bmi >= ObeseBMI:
		return Classification{BMI: bmi, WeightCategory: models.WeightObese, Goal: models.WorkoutSafeFatLoss}
	default:
		return Classification{BMI: bmi, WeightCategory: models.WeightOverweight, Goal: models.WorkoutFatLoss}
	}
}

var dashes = strings.NewReplacer("–", "-", "—", "-")

// ParseAgeRange parses "18-35", "36 – 60", "61—90" or "65+".
func ParseAgeRange(s string) (lo, hi int, ok bool) {
	s = strings.TrimSpace(dashes.Replace(s))
	if strings.HasSuffix(s, "+") {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "+")))
		if err != nil {
			return 0, 0, false
		}
		return n, math.MaxInt, true
	}

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	hi, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

func ageInRange(age int, ageRange string) bool {
	lo, hi, ok := ParseAgeRange(ageRange)
	return ok && age >= lo && age <= hi
}

// Matcher selects workout sessions from the catalog.
type Matcher struct {
	catalogs Catalogs
	logger   *slog.Logger
}

// NewMatcher creates a matcher over catalogs.
func NewMatcher(catalogs Catalogs, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{catalogs: catalogs, logger: logger}
}

// SelectWorkoutForProfile returns the session for dayNumber, or nil when the
// catalog is empty or unreadable.
func (m *Matcher) SelectWorkoutForProfile(age int, currentWeight, targetWeight, height float64, dayNumber int) *models.WorkoutStep {
	match := m.Match(age, currentWeight, targetWeight, height, dayNumber)
	if match == nil {
		return nil
	}
	return &match.Step
}

// Match is SelectWorkoutForProfile with the fallback rung and bucket attached.
func (m *Matcher) Match(age int, currentWeight, targetWeight, height float64, dayNumber int) *Match {
	catalog := m.catalogs.LoadWorkoutCatalog()
	if catalog.IsEmpty() {
		m.logger.Warn("workout catalog empty")
		return nil
	}

	class := Classify(currentWeight, targetWeight, height)
	category, source := findCategory(catalog, age, class)
	if category == nil {
		m.logger.Warn("no workout category has options")
		return nil
	}
	if source != SourceAgeMatch {
		m.logger.Warn("workout category fallback",
			"source", string(source),
			"age", age,
			"weight_category", string(class.WeightCategory),
			"goal", string(class.Goal))
	}

	idx := dayIndex(dayNumber, len(category.Options))
	return &Match{
		Step:           category.Options[idx],
		AgeRange:       category.AgeRange,
		Classification: class,
		Source:         source,
		Index:          idx,
	}
}

func findCategory(catalog *models.WorkoutCatalog, age int, class Classification) (*models.WorkoutCategory, Source) {
	var sameBucket, first *models.WorkoutCategory
	for i := range catalog.Categories {
		c := &catalog.Categories[i]
		if len(c.Options) == 0 {
			continue
		}
		if first == nil {
			first = c
		}
		if !strings.EqualFold(string(c.WeightCategory), string(class.WeightCategory)) ||
			!strings.EqualFold(string(c.Goal), string(class.Goal)) {
			continue
		}
		if ageInRange(age, c.AgeRange) {
			return c, SourceAgeMatch
		}
		if sameBucket == nil {
			sameBucket = c
		}
	}
	if sameBucket != nil {
		return sameBucket, SourceCategoryMatch
	}
	if first != nil {
		return first, SourceFirstEntry
	}
	return nil, ""
}

// dayIndex maps a 1-based day onto 0..n-1 as (day-1) mod n.
func dayIndex(day, n int) int {
	idx := (day - 1) % n
	if idx < 0 {
		idx += n
	}
	return idx
}
