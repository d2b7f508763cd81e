// ABOUTME: Tests for BMI classification and workout matching.
// ABOUTME: Walks the age-range, first-entry and default fallbacks.
package workouts

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/fitplan/internal/content"
	"github.com/harperreed/fitplan/internal/models"
)

type staticCatalog struct {
	catalog *models.WorkoutCatalog
}

func (s staticCatalog) LoadWorkoutCatalog() *models.WorkoutCatalog { return s.catalog }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func options(prefix string, n int) []models.WorkoutStep {
	out := make([]models.WorkoutStep, n)
	for i := range out {
		out[i] = models.WorkoutStep{
			DayType:  "workout",
			Name:     fmt.Sprintf("%s %d", prefix, i+1),
			Duration: 30,
			Steps:    []string{"warm up", "work", "cool down"},
			Week:     1,
		}
	}
	return out
}

func testCatalog() *models.WorkoutCatalog {
	return &models.WorkoutCatalog{Categories: []models.WorkoutCategory{
		{AgeRange: "18-35", WeightCategory: models.WeightUnderweight, Goal: models.WorkoutWeightGain, Options: options("gain young", 3)},
		{AgeRange: "36 – 60", WeightCategory: models.WeightOverweight, Goal: models.WorkoutFatLoss, Options: options("loss mid", 5)},
		{AgeRange: "18–35", WeightCategory: models.WeightOverweight, Goal: models.WorkoutFatLoss, Options: options("loss young", 4)},
		{AgeRange: "46 — 90", WeightCategory: models.WeightObese, Goal: models.WorkoutSafeFatLoss, Options: options("safe older", 2)},
	}}
}

func TestBMI(t *testing.T) {
	assert.InDelta(t, 22.86, BMI(70, 175), 0.01)
	assert.InDelta(t, 32.87, BMI(95, 170), 0.01)
	assert.Zero(t, BMI(70, 0))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name                   string
		weight, target, height float64
		category               models.WeightCategory
		goal                   models.WorkoutGoal
	}{
		{"wants to gain", 55, 70, 170, models.WeightUnderweight, models.WorkoutWeightGain},
		{"obese", 95, 80, 170, models.WeightObese, models.WorkoutSafeFatLoss},
		{"obese maintaining", 95, 95, 170, models.WeightObese, models.WorkoutSafeFatLoss},
		{"normal bmi", 70, 70, 175, models.WeightOverweight, models.WorkoutFatLoss},
		{"overweight", 85, 75, 175, models.WeightOverweight, models.WorkoutFatLoss},
		{"obese but gaining", 100, 110, 170, models.WeightUnderweight, models.WorkoutWeightGain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.weight, tt.target, tt.height)
			assert.Equal(t, tt.category, c.WeightCategory)
			assert.Equal(t, tt.goal, c.Goal)
		})
	}
}

func TestParseAgeRange(t *testing.T) {
	tests := []struct {
		in     string
		lo, hi int
		ok     bool
	}{
		{"18-35", 18, 35, true},
		{"36 – 60", 36, 60, true},
		{"61—90", 61, 90, true},
		{" 46 — 90 ", 46, 90, true},
		{"65+", 65, math.MaxInt, true},
		{"adults", 0, 0, false},
		{"40-30", 0, 0, false},
		{"18-35-50", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		lo, hi, ok := ParseAgeRange(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.lo, lo, tt.in)
			assert.Equal(t, tt.hi, hi, tt.in)
		}
	}
}

func TestMatchScenarios(t *testing.T) {
	m := NewMatcher(staticCatalog{testCatalog()}, quietLogger())

	got := m.Match(25, 55, 70, 170, 1)
	require.NotNil(t, got)
	assert.Equal(t, models.WeightUnderweight, got.Classification.WeightCategory)
	assert.Equal(t, models.WorkoutWeightGain, got.Classification.Goal)
	assert.Equal(t, SourceAgeMatch, got.Source)
	assert.Equal(t, "gain young 1", got.Step.Name)

	got = m.Match(40, 95, 95, 170, 1)
	require.NotNil(t, got)
	assert.Equal(t, models.WeightObese, got.Classification.WeightCategory)
	assert.Equal(t, models.WorkoutSafeFatLoss, got.Classification.Goal)
	assert.Equal(t, SourceCategoryMatch, got.Source, "40 is outside 46-90")

	got = m.Match(30, 70, 70, 175, 2)
	require.NotNil(t, got)
	assert.Equal(t, models.WeightOverweight, got.Classification.WeightCategory)
	assert.Equal(t, models.WorkoutFatLoss, got.Classification.Goal)
	assert.Equal(t, SourceAgeMatch, got.Source)
	assert.Equal(t, "loss young 2", got.Step.Name, "en-dash range parsed")

	got = m.Match(50, 80, 70, 175, 1)
	require.NotNil(t, got)
	assert.Equal(t, "loss mid 1", got.Step.Name)
}

func TestMatchFirstEntryFallback(t *testing.T) {
	catalog := &models.WorkoutCatalog{Categories: []models.WorkoutCategory{
		{AgeRange: "18-35", WeightCategory: models.WeightObese, Goal: models.WorkoutSafeFatLoss},
		{AgeRange: "18-35", WeightCategory: models.WeightObese, Goal: models.WorkoutSafeFatLoss, Options: options("only", 2)},
	}}
	got := NewMatcher(staticCatalog{catalog}, quietLogger()).Match(25, 55, 70, 170, 1)
	require.NotNil(t, got)
	assert.Equal(t, SourceFirstEntry, got.Source)
	assert.Equal(t, "only 1", got.Step.Name, "categories without options are skipped")
}

func TestDayIndexWraps(t *testing.T) {
	m := NewMatcher(staticCatalog{testCatalog()}, quietLogger())
	n := 4 // young fat-loss options

	first := m.SelectWorkoutForProfile(30, 70, 70, 175, 1)
	require.NotNil(t, first)
	assert.Equal(t, first, m.SelectWorkoutForProfile(30, 70, 70, 175, n+1))
	assert.Equal(t, first, m.SelectWorkoutForProfile(30, 70, 70, 175, 2*n+1))

	last := m.SelectWorkoutForProfile(30, 70, 70, 175, n)
	assert.Equal(t, last, m.SelectWorkoutForProfile(30, 70, 70, 175, 0))
	assert.NotNil(t, m.SelectWorkoutForProfile(30, 70, 70, 175, -13))
}

func TestMatchEmptyCatalog(t *testing.T) {
	for _, c := range []*models.WorkoutCatalog{nil, {}, {Categories: []models.WorkoutCategory{{AgeRange: "18-35"}}}} {
		m := NewMatcher(staticCatalog{c}, quietLogger())
		assert.Nil(t, m.SelectWorkoutForProfile(30, 70, 70, 175, 1))
	}
}

func TestMatchEmbeddedCatalog(t *testing.T) {
	loader := content.NewLoader(content.Embedded(), content.WithLogger(quietLogger()))
	m := NewMatcher(loader, quietLogger())

	tests := []struct {
		age                    int
		weight, target, height float64
		ageRange               string
	}{
		{25, 55, 70, 170, "18-35"},
		{50, 55, 70, 170, "36–60"},
		{30, 70, 70, 175, "18-35"},
		{45, 85, 75, 175, "36 – 60"},
		{70, 85, 75, 175, "61—90"},
		{30, 110, 90, 170, "18-45"},
		{60, 110, 90, 170, "46 — 90"},
	}
	for _, tt := range tests {
		got := m.Match(tt.age, tt.weight, tt.target, tt.height, 1)
		require.NotNil(t, got, "age %d", tt.age)
		assert.Equal(t, SourceAgeMatch, got.Source, "age %d", tt.age)
		assert.Equal(t, tt.ageRange, got.AgeRange, "age %d", tt.age)
	}
}
