// ABOUTME: Shared terminal rendering for plans, meals and workouts.
// ABOUTME: Also holds small string helpers used across commands.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harperreed/fitplan/internal/models"
)

type writer = io.Writer

func printPlan(w writer, p *models.Plan) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Fprintf(w, "Plan for %s", p.Date)
	fmt.Fprintf(w, " %s\n", faint.Sprintf("(cycle day %d, tier %d, %s)", p.CycleDay, p.CalorieTier, p.ID.String()[:8]))
	fmt.Fprintf(w, "Targets: %d kcal, %d g protein  Planned: %.0f kcal, %.0f g protein\n",
		p.CaloriesTarget, p.ProteinTarget, p.TotalCalories(), p.TotalProtein())
	if p.WaterMl > 0 {
		fmt.Fprintf(w, "Water: %d ml\n", p.WaterMl)
	}
	if p.Adaptation.Active {
		fmt.Fprintf(w, "Adaptation: %s\n", p.Adaptation)
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "Meals")
	for _, m := range p.Meals {
		mark := ""
		if m.Substituted {
			mark = color.New(color.FgYellow).Sprint(" *")
		}
		fmt.Fprintf(w, "  %s %s%s %s\n",
			padRight(string(m.Slot), 14),
			truncate(m.Name, 40), mark,
			faint.Sprintf("%.0f kcal  P%.0f C%.0f F%.0f", m.Calories, m.Protein, m.Carbs, m.Fats))
	}

	for _, wo := range p.Workouts {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Workout")
		printWorkout(w, wo.Name, wo.DayType, wo.Intensity, wo.DurationMinutes, wo.ExtraMinutes, wo.Steps)
	}
}

func printWorkout(w writer, name, dayType, intensity string, minutes, extra int, steps []models.PhaseStep) {
	faint := color.New(color.Faint)
	line := fmt.Sprintf("  %s %s", name, faint.Sprintf("(%s, %s, %d min", dayType, intensity, minutes))
	if extra > 0 {
		line += faint.Sprintf(" incl. +%d adaptation", extra)
	}
	fmt.Fprintln(w, line+faint.Sprint(")"))
	for i, s := range steps {
		fmt.Fprintf(w, "    %d. %s %s\n", i+1, faint.Sprintf("[%s]", s.Phase), s.Text)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
