// ABOUTME: Monthly meal rotation: a 28-day x 3-tier table of meal ids.
// ABOUTME: Rebuilt from the baseline library on every call; never cached.
package meals

import (
	"github.com/harperreed/fitplan/internal/models"
)

// CycleLength is the number of days in the meal rotation.
const CycleLength = 28

// BaselineDiet is the library the rotation is derived from.
const BaselineDiet = models.DietVeg

// RotationCell holds the meal ids assigned to one (day, tier).
type RotationCell struct {
	Breakfast      string `json:"breakfast"`
	Lunch          string `json:"lunch"`
	Snack          string `json:"snack"`
	Dinner         string `json:"dinner"`
	SecondarySnack string `json:"secondary_snack"`
}

// ID returns the meal id assigned to slot.
func (c RotationCell) ID(slot models.Slot) string {
	switch slot {
	case models.SlotBreakfast:
		return c.Breakfast
	case models.SlotLunch:
		return c.Lunch
	case models.SlotSnack:
		return c.Snack
	case models.SlotDinner:
		return c.Dinner
	case models.SlotEveningSnack:
		return c.SecondarySnack
	}
	return ""
}

// RotationEntry is one slot assignment of a cell with its meal name resolved.
type RotationEntry struct {
	Slot   models.Slot `json:"slot" yaml:"slot"`
	MealID string      `json:"meal_id" yaml:"meal_id"`
	Name   string      `json:"name,omitempty" yaml:"name,omitempty"`
}

// Entries lists the cell's five assignments in serving order, naming the
// meals found in lib.
func (c RotationCell) Entries(lib *models.MealLibrary) []RotationEntry {
	slots := append(append([]models.Slot{}, models.PrimarySlots...), models.SlotEveningSnack)
	out := make([]RotationEntry, 0, len(slots))
	for _, slot := range slots {
		e := RotationEntry{Slot: slot, MealID: c.ID(slot)}
		if rec, ok := lib.Find(e.MealID); ok {
			e.Name = rec.Name
		}
		out = append(out, e)
	}
	return out
}

// RotationKey addresses a rotation cell.
type RotationKey struct {
	Day  int
	Tier models.Tier
}

// RotationTable maps (cycle day, tier) to assigned meal ids. A missing cell
// means the baseline had no candidates for some slot in that tier.
type RotationTable map[RotationKey]RotationCell

// Cell returns the cell for day and tier. day is normalized into 1..28.
func (t RotationTable) Cell(day int, tier models.Tier) (RotationCell, bool) {
	cell, ok := t[RotationKey{Day: NormalizeCycleDay(day), Tier: tier}]
	return cell, ok
}

// NormalizeCycleDay maps any integer onto 1..28 via ((day-1) mod 28) + 1.
func NormalizeCycleDay(day int) int {
	m := (day - 1) % CycleLength
	if m < 0 {
		m += CycleLength
	}
	return m + 1
}

// BuildRotation derives the rotation from the baseline library. Day d takes
// candidate (d-1) of each slot's tier-filtered list, wrapping around its
// length; the secondary snack uses offset d so it differs from the primary
// snack whenever there is more than one snack.
func BuildRotation(baseline *models.MealLibrary) RotationTable {
	table := make(RotationTable)
	if baseline.Len() == 0 {
		return table
	}

	for _, tier := range models.AllTiers {
		partitions := make(map[models.Slot][]models.MealRecord, len(models.PrimarySlots))
		complete := true
		for _, slot := range models.PrimarySlots {
			candidates := baseline.Filter(slot, tier)
			if len(candidates) == 0 {
				complete = false
				break
			}
			partitions[slot] = candidates
		}
		if !complete {
			continue
		}

		pick := func(slot models.Slot, offset int) string {
			candidates := partitions[slot]
			return candidates[offset%len(candidates)].ID
		}

		for day := 1; day <= CycleLength; day++ {
			table[RotationKey{Day: day, Tier: tier}] = RotationCell{
				Breakfast:      pick(models.SlotBreakfast, day-1),
				Lunch:          pick(models.SlotLunch, day-1),
				Snack:          pick(models.SlotSnack, day-1),
				Dinner:         pick(models.SlotDinner, day-1),
				SecondarySnack: pick(models.SlotSnack, day),
			}
		}
	}
	return table
}
