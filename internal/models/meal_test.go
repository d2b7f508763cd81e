// ABOUTME: Tests for diet normalization, diet compatibility and meal library helpers.
// ABOUTME: Covers the fuzzy diet parser used at every input boundary.
package models

import (
	"testing"
)

func TestNormalizeDiet(t *testing.T) {
	tests := []struct {
		input string
		want  Diet
	}{
		{"veg", DietVeg},
		{"Vegetarian", DietVeg},
		{"", DietVeg},
		{"vegan", DietVeg},
		{"egg", DietEgg},
		{"Eggetarian", DietEgg},
		{"non-veg", DietNonVeg},
		{"Non Vegetarian", DietNonVeg},
		{"meat eater", DietNonVeg},
		{"NONVEG", DietNonVeg},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeDiet(tt.input); got != tt.want {
				t.Errorf("NormalizeDiet(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDietAccepts(t *testing.T) {
	tests := []struct {
		user Diet
		meal Diet
		want bool
	}{
		{DietVeg, DietVeg, true},
		{DietVeg, DietEgg, false},
		{DietVeg, DietNonVeg, false},
		{DietEgg, DietVeg, true},
		{DietEgg, DietEgg, true},
		{DietEgg, DietNonVeg, false},
		{DietNonVeg, DietVeg, true},
		{DietNonVeg, DietEgg, true},
		{DietNonVeg, DietNonVeg, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.user)+"/"+string(tt.meal), func(t *testing.T) {
			if got := tt.user.Accepts(tt.meal); got != tt.want {
				t.Errorf("%s.Accepts(%s) = %v, want %v", tt.user, tt.meal, got, tt.want)
			}
		})
	}
}

func TestParseSlot(t *testing.T) {
	if s, ok := ParseSlot(" Dinner "); !ok || s != SlotDinner {
		t.Errorf("ParseSlot(Dinner) = %q, %v", s, ok)
	}
	if _, ok := ParseSlot("brunch"); ok {
		t.Error("expected brunch to be rejected")
	}
	if SlotEveningSnack.CatalogSlot() != SlotSnack {
		t.Error("evening snack should draw from snack catalog")
	}
}

func TestMealLibraryFilterAndFind(t *testing.T) {
	lib := &MealLibrary{Diet: DietVeg, Meals: []MealRecord{
		{ID: "a", Category: SlotBreakfast, CalorieTier: Tier1600},
		{ID: "b", Category: SlotBreakfast, CalorieTier: Tier2000},
		{ID: "c", Category: SlotBreakfast, CalorieTier: Tier1600},
		{ID: "d", Category: SlotLunch, CalorieTier: Tier1600},
	}}

	got := lib.Filter(SlotBreakfast, Tier1600)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Filter returned %+v", got)
	}
	if _, ok := lib.Find("d"); !ok {
		t.Error("expected to find d")
	}
	if _, ok := lib.Find("zzz"); ok {
		t.Error("did not expect to find zzz")
	}

	var nilLib *MealLibrary
	if nilLib.Len() != 0 || nilLib.Filter(SlotLunch, Tier1600) != nil {
		t.Error("nil library should behave as empty")
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
		ok   bool
	}{
		{"1600", Tier1600, true},
		{" 1800 ", Tier1800, true},
		{"2000", Tier2000, true},
		{"1700", 0, false},
		{"high", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseTier(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseTier(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
