// ABOUTME: Parsers for the meal and workout catalog JSON documents.
// ABOUTME: Both accept a bare array or a wrapping object.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/fitplan/internal/models"
)

// ParseMealCatalog parses a meal catalog for diet. Entries without an id,
// with an unknown slot, or with an invalid calorie tier are dropped and
// counted in skipped. Entries with no diet inherit the library's diet.
func ParseMealCatalog(data []byte, diet models.Diet) (lib *models.MealLibrary, skipped int, err error) {
	var raw []models.MealRecord
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, 0, fmt.Errorf("parse meal catalog: %w", err)
		}
	} else {
		var doc struct {
			Meals []models.MealRecord `json:"meals"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, 0, fmt.Errorf("parse meal catalog: %w", err)
		}
		raw = doc.Meals
	}

	lib = &models.MealLibrary{Diet: diet, Meals: make([]models.MealRecord, 0, len(raw))}
	for _, m := range raw {
		slot, ok := models.ParseSlot(string(m.Category))
		if m.ID == "" || !ok || slot == models.SlotEveningSnack || !m.CalorieTier.IsValid() {
			skipped++
			continue
		}
		m.Category = slot
		if strings.TrimSpace(string(m.Diet)) == "" {
			m.Diet = diet
		} else {
			m.Diet = models.NormalizeDiet(string(m.Diet))
		}
		lib.Meals = append(lib.Meals, m)
	}
	return lib, skipped, nil
}

// ParseWorkoutCatalog parses a workout catalog given either as a bare array
// of categories or as {"meta": ..., "workouts": [...]}.
func ParseWorkoutCatalog(data []byte) (*models.WorkoutCatalog, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var cats []models.WorkoutCategory
		if err := json.Unmarshal(trimmed, &cats); err != nil {
			return nil, fmt.Errorf("parse workout catalog: %w", err)
		}
		return &models.WorkoutCatalog{Categories: cats}, nil
	}

	var catalog models.WorkoutCatalog
	if err := json.Unmarshal(trimmed, &catalog); err != nil {
		return nil, fmt.Errorf("parse workout catalog: %w", err)
	}
	return &catalog, nil
}
