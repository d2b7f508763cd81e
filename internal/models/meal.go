// ABOUTME: Meal catalog records plus the diet, slot and calorie-tier enums.
// ABOUTME: NormalizeDiet is the one fuzzy parser for free-form diet strings.
package models

import (
	"strconv"
	"strings"
)

// Diet is a dietary classification.
type Diet string

const (
	DietVeg    Diet = "veg"
	DietEgg    Diet = "egg"
	DietNonVeg Diet = "non-veg"
)

// AllDiets lists every diet classification, baseline first.
var AllDiets = []Diet{DietVeg, DietEgg, DietNonVeg}

// NormalizeDiet maps free-form input onto a Diet. Anything mentioning
// "non" or "meat" is non-veg, anything mentioning "egg" is egg, the rest veg.
func NormalizeDiet(s string) Diet {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "non"), strings.Contains(l, "meat"):
		return DietNonVeg
	case strings.Contains(l, "egg"):
		return DietEgg
	default:
		return DietVeg
	}
}

// Accepts reports whether a user on diet d may eat a meal classified as meal.
func (d Diet) Accepts(meal Diet) bool {
	switch d {
	case DietNonVeg:
		return true
	case DietEgg:
		return meal == DietVeg || meal == DietEgg
	default:
		return meal == DietVeg
	}
}

// Slot is a meal slot within a day.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotSnack     Slot = "snack"
	SlotDinner    Slot = "dinner"

	// SlotEveningSnack only appears on plans; catalog meals use SlotSnack.
	SlotEveningSnack Slot = "evening_snack"
)

// PrimarySlots are the four slots every rotation cell fills, in serving order.
var PrimarySlots = []Slot{SlotBreakfast, SlotLunch, SlotSnack, SlotDinner}

// ParseSlot parses a slot name, accepting any case and surrounding spaces.
func ParseSlot(s string) (Slot, bool) {
	slot := Slot(strings.ToLower(strings.TrimSpace(s)))
	switch slot {
	case SlotBreakfast, SlotLunch, SlotSnack, SlotDinner, SlotEveningSnack:
		return slot, true
	}
	return "", false
}

// CatalogSlot returns the catalog category a plan slot draws from.
func (s Slot) CatalogSlot() Slot {
	if s == SlotEveningSnack {
		return SlotSnack
	}
	return s
}

// Tier is a daily calorie bucket.
type Tier int

const (
	Tier1600 Tier = 1600
	Tier1800 Tier = 1800
	Tier2000 Tier = 2000
)

// AllTiers lists the calorie tiers in ascending order.
var AllTiers = []Tier{Tier1600, Tier1800, Tier2000}

// IsValid reports whether t is one of the fixed buckets.
func (t Tier) IsValid() bool {
	return t == Tier1600 || t == Tier1800 || t == Tier2000
}

// ParseTier parses a tier number such as "1800".
func ParseTier(s string) (Tier, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !Tier(n).IsValid() {
		return 0, false
	}
	return Tier(n), true
}

// MealRecord is one immutable catalog meal.
type MealRecord struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Category    Slot    `json:"category" yaml:"category"`
	Diet        Diet    `json:"diet" yaml:"diet"`
	CalorieTier Tier    `json:"calorie_tier" yaml:"calorie_tier"`
	Calories    float64 `json:"calories" yaml:"calories"`
	Protein     float64 `json:"protein" yaml:"protein"`
	Carbs       float64 `json:"carbs" yaml:"carbs"`
	Fats        float64 `json:"fats" yaml:"fats"`
	Preparation string  `json:"preparation" yaml:"preparation"`
}

// MealLibrary is the catalog for one diet classification.
type MealLibrary struct {
	Diet  Diet
	Meals []MealRecord
}

// Find returns the meal with the given id.
func (l *MealLibrary) Find(id string) (MealRecord, bool) {
	if l == nil {
		return MealRecord{}, false
	}
	for _, m := range l.Meals {
		if m.ID == id {
			return m, true
		}
	}
	return MealRecord{}, false
}

// Filter returns meals in the given slot and tier, in catalog order.
func (l *MealLibrary) Filter(slot Slot, tier Tier) []MealRecord {
	if l == nil {
		return nil
	}
	var out []MealRecord
	for _, m := range l.Meals {
		if m.Category == slot && m.CalorieTier == tier {
			out = append(out, m)
		}
	}
	return out
}

// Len returns the number of meals, treating a nil library as empty.
func (l *MealLibrary) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Meals)
}
