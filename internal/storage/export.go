// ABOUTME: Export and import functionality for fitplan data.
// ABOUTME: Full JSON backups plus single-plan JSON, YAML and Markdown renderings.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/fitplan/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for fitplan data.
type ExportData struct {
	Version    string                `json:"version" yaml:"version"`
	ExportedAt time.Time             `json:"exported_at" yaml:"exported_at"`
	Tool       string                `json:"tool" yaml:"tool"`
	Profiles   []*models.UserProfile `json:"profiles" yaml:"profiles"`
	Plans      []*models.Plan        `json:"plans" yaml:"plans"`
	MealLogs   []mealLogRecord       `json:"meal_logs" yaml:"meal_logs"`
}

// GetAllData reads every profile, plan (with children) and meal log from repo.
func GetAllData(ctx context.Context, repo Repository) (*ExportData, error) {
	profiles, err := repo.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	rows, err := repo.ListPlans(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	plans := make([]*models.Plan, 0, len(rows))
	for _, row := range rows {
		p, err := repo.GetPlanByID(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("load plan %s: %w", row.ID, err)
		}
		plans = append(plans, p)
	}

	logs, err := repo.ListMealLogs(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("list meal logs: %w", err)
	}
	records := make([]mealLogRecord, 0, len(logs))
	for _, l := range logs {
		records = append(records, newMealLogRecord(l))
	}

	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "fitplan",
		Profiles:   profiles,
		Plans:      plans,
		MealLogs:   records,
	}, nil
}

// ImportData writes an export into repo. Each plan and its children are
// written in one transaction.
func ImportData(ctx context.Context, repo Repository, data *ExportData) error {
	for _, p := range data.Profiles {
		if err := repo.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("import profile %s: %w", p.UserID, err)
		}
	}

	for _, p := range data.Plans {
		err := repo.InTx(ctx, func(tx PlanTx) error {
			if err := tx.CreatePlan(ctx, p); err != nil {
				return err
			}
			for i := range p.Meals {
				if err := tx.CreateMealRecord(ctx, p.ID, &p.Meals[i]); err != nil {
					return err
				}
			}
			for i := range p.Workouts {
				if err := tx.CreateWorkoutRecord(ctx, p.ID, &p.Workouts[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("import plan %s: %w", p.ID, err)
		}
	}

	for _, r := range data.MealLogs {
		l, err := r.decode()
		if err != nil {
			return err
		}
		if err := repo.AddMealLog(ctx, l); err != nil {
			return fmt.Errorf("import meal log %s: %w", r.ID, err)
		}
	}
	return nil
}

// ExportJSON exports all data as JSON.
func ExportJSON(ctx context.Context, repo Repository) ([]byte, error) {
	data, err := GetAllData(ctx, repo)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(ctx context.Context, repo Repository, raw []byte) error {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return ImportData(ctx, repo, &data)
}

// ExportPlanJSON renders one plan with its children as JSON.
func ExportPlanJSON(p *models.Plan) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// ExportPlanYAML renders one plan in a compact, human-oriented YAML shape.
func ExportPlanYAML(p *models.Plan) ([]byte, error) {
	out := yamlPlan{
		ID:             p.ID.String()[:8],
		User:           p.UserID,
		Date:           p.Date,
		CycleDay:       p.CycleDay,
		CalorieTier:    int(p.CalorieTier),
		CaloriesTarget: p.CaloriesTarget,
		ProteinTarget:  p.ProteinTarget,
		WaterMl:        p.WaterMl,
		Adaptation:     p.Adaptation.String(),
		GenerationID:   p.GenerationID,
		Meals:          make([]yamlMeal, 0, len(p.Meals)),
	}
	for _, m := range p.Meals {
		out.Meals = append(out.Meals, yamlMeal{
			Slot:        string(m.Slot),
			Name:        m.Name,
			MealID:      m.MealID,
			Calories:    m.Calories,
			Protein:     m.Protein,
			Carbs:       m.Carbs,
			Fats:        m.Fats,
			Quantity:    m.Quantity,
			Substituted: m.Substituted,
		})
	}
	for _, w := range p.Workouts {
		yw := yamlWorkout{
			Name:     w.Name,
			Type:     w.Type,
			DayType:  w.DayType,
			Minutes:  w.DurationMinutes,
			Extra:    w.ExtraMinutes,
			Calories: w.Calories,
		}
		for _, s := range w.Steps {
			yw.Steps = append(yw.Steps, fmt.Sprintf("[%s] %s", s.Phase, s.Text))
		}
		out.Workouts = append(out.Workouts, yw)
	}
	return yaml.Marshal(out)
}

type yamlPlan struct {
	ID             string        `yaml:"id"`
	User           string        `yaml:"user"`
	Date           string        `yaml:"date"`
	CycleDay       int           `yaml:"cycle_day"`
	CalorieTier    int           `yaml:"calorie_tier"`
	CaloriesTarget int           `yaml:"calories_target"`
	ProteinTarget  int           `yaml:"protein_target"`
	WaterMl        int           `yaml:"water_ml"`
	Adaptation     string        `yaml:"adaptation"`
	GenerationID   string        `yaml:"generation_id,omitempty"`
	Meals          []yamlMeal    `yaml:"meals"`
	Workouts       []yamlWorkout `yaml:"workouts,omitempty"`
}

type yamlMeal struct {
	Slot        string  `yaml:"slot"`
	Name        string  `yaml:"name"`
	MealID      string  `yaml:"meal_id,omitempty"`
	Calories    float64 `yaml:"calories"`
	Protein     float64 `yaml:"protein"`
	Carbs       float64 `yaml:"carbs"`
	Fats        float64 `yaml:"fats"`
	Quantity    string  `yaml:"quantity"`
	Substituted bool    `yaml:"substituted,omitempty"`
}

type yamlWorkout struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	DayType  string   `yaml:"day_type"`
	Minutes  int      `yaml:"duration_minutes"`
	Extra    int      `yaml:"extra_minutes,omitempty"`
	Calories int      `yaml:"calories"`
	Steps    []string `yaml:"steps,omitempty"`
}

// ExportPlanMarkdown renders one plan as a Markdown document.
func ExportPlanMarkdown(p *models.Plan) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Plan for %s - %s\n\n", p.UserID, p.Date))
	sb.WriteString(fmt.Sprintf("Cycle day %d, %d kcal tier. Target %d kcal / %d g protein.\n\n",
		p.CycleDay, int(p.CalorieTier), p.CaloriesTarget, p.ProteinTarget))

	sb.WriteString("## Meals\n\n")
	sb.WriteString("| Slot | Meal | kcal | Protein | Carbs | Fats |\n")
	sb.WriteString("|------|------|------|---------|-------|------|\n")
	for _, m := range p.Meals {
		name := m.Name
		if m.Substituted {
			name += " (substituted)"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %.0f | %.1f | %.1f | %.1f |\n",
			m.Slot, name, m.Calories, m.Protein, m.Carbs, m.Fats))
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %.0f kcal, %.1f g protein\n", p.TotalCalories(), p.TotalProtein()))

	for _, w := range p.Workouts {
		sb.WriteString(fmt.Sprintf("\n## Workout: %s\n\n", w.Name))
		sb.WriteString(fmt.Sprintf("%s, %s intensity, %d min", w.Type, w.Intensity, w.DurationMinutes))
		if w.ExtraMinutes > 0 {
			sb.WriteString(fmt.Sprintf(" (includes +%d min adaptation)", w.ExtraMinutes))
		}
		sb.WriteString("\n\n")
		for i, s := range w.Steps {
			sb.WriteString(fmt.Sprintf("%d. **%s** %s\n", i+1, s.Phase, s.Text))
		}
	}

	if p.WaterMl > 0 {
		sb.WriteString(fmt.Sprintf("\nWater: %d ml\n", p.WaterMl))
	}
	return sb.String()
}
