// ABOUTME: MCP tool implementations for fitplan.
// ABOUTME: Profile setup, plan generation and lookup, swaps, logging and catalog reload.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/fitplan/internal/meals"
	"github.com/harperreed/fitplan/internal/models"
	"github.com/harperreed/fitplan/internal/storage"
)

func (s *Server) registerTools() {
	// set_profile
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_profile",
		Description: "Create or update a user's profile (age, diet, goal, body measurements)",
	}, s.handleSetProfile)

	// generate_plan
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "generate_plan",
		Description: "Generate (or regenerate) the meal and workout plan for a user and date",
	}, s.handleGeneratePlan)

	// get_plan
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_plan",
		Description: "Get a stored plan as JSON, YAML or markdown",
	}, s.handleGetPlan)

	// swap_meal
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "swap_meal",
		Description: "Replace one meal on a plan with another from the user's meal library",
	}, s.handleSwapMeal)

	// get_rotation
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_rotation",
		Description: "Show the meal rotation assignments for a cycle day (1-28)",
	}, s.handleGetRotation)

	// reload_content
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "reload_content",
		Description: "Drop cached meal and workout catalogs so edits on disk are picked up",
	}, s.handleReloadContent)

	// log_water
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_water",
		Description: "Add water intake in millilitres to a plan",
	}, s.handleLogWater)

	// log_meal
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_meal",
		Description: "Record what was eaten for a slot: the planned meal, a library alternative, or a manual entry",
	}, s.handleLogMeal)

	// daily_summary
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "daily_summary",
		Description: "Compare logged meals against the plan's calorie and protein targets",
	}, s.handleDailySummary)

	// activate_adaptation
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "activate_adaptation",
		Description: "Extend the following days' workouts by extra minutes for a number of days",
	}, s.handleActivateAdaptation)
}

// Tool input/output types

type setProfileInput struct {
	UserID           string  `json:"user_id" jsonschema:"the user's id"`
	Age              int     `json:"age" jsonschema:"age in years"`
	Diet             string  `json:"dietary_preferences" jsonschema:"free-form diet, e.g. vegetarian, eggetarian, non-veg"`
	Goal             string  `json:"primary_goal" jsonschema:"fat_loss, muscle_gain, maintain or weight_gain"`
	CurrentWeight    float64 `json:"current_weight" jsonschema:"current weight in kg"`
	TargetWeight     float64 `json:"target_weight,omitempty" jsonschema:"target weight in kg, defaults to current weight"`
	Height           float64 `json:"height" jsonschema:"height in cm"`
	TimeAvailability int     `json:"time_availability,omitempty" jsonschema:"minutes per day available for exercise"`
	DailyMealCount   int     `json:"daily_meal_count,omitempty" jsonschema:"meals per day, 3 to 5"`
}

type profileOutput struct {
	UserID  string `json:"user_id"`
	Diet    string `json:"diet"`
	Goal    string `json:"goal"`
	Message string `json:"message"`
}

type planInput struct {
	UserID string `json:"user_id" jsonschema:"the user's id"`
	Date   string `json:"date,omitempty" jsonschema:"plan date YYYY-MM-DD, defaults to today"`
}

type getPlanInput struct {
	UserID string `json:"user_id" jsonschema:"the user's id"`
	Date   string `json:"date,omitempty" jsonschema:"plan date YYYY-MM-DD, defaults to today"`
	Format string `json:"format,omitempty" jsonschema:"json (default), yaml or markdown"`
}

type swapMealInput struct {
	UserID  string   `json:"user_id" jsonschema:"the user's id"`
	Date    string   `json:"date,omitempty" jsonschema:"plan date YYYY-MM-DD, defaults to today"`
	Slot    string   `json:"slot" jsonschema:"breakfast, lunch, snack, dinner or evening_snack"`
	Exclude []string `json:"exclude,omitempty" jsonschema:"meal names that must not be chosen"`
}

type swapMealOutput struct {
	Slot     string  `json:"slot"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Message  string  `json:"message"`
}

type rotationInput struct {
	Day  int    `json:"day" jsonschema:"cycle day; values outside 1-28 wrap"`
	Tier string `json:"tier,omitempty" jsonschema:"calorie tier 1600, 1800 or 2000; all tiers when empty"`
}

type reloadOutput struct {
	BaselineMeals     int    `json:"baseline_meals"`
	WorkoutCategories int    `json:"workout_categories"`
	Message           string `json:"message"`
}

type logWaterInput struct {
	UserID string `json:"user_id" jsonschema:"the user's id"`
	Date   string `json:"date,omitempty" jsonschema:"plan date YYYY-MM-DD, defaults to today"`
	Ml     int    `json:"ml" jsonschema:"millilitres to add"`
}

type logMealInput struct {
	UserID   string  `json:"user_id" jsonschema:"the user's id"`
	Date     string  `json:"date,omitempty" jsonschema:"date YYYY-MM-DD, defaults to today"`
	Slot     string  `json:"slot" jsonschema:"breakfast, lunch, snack, dinner or evening_snack"`
	Kind     string  `json:"kind" jsonschema:"planned, alternative or manual"`
	MealID   string  `json:"meal_id,omitempty" jsonschema:"catalog meal id, for alternative"`
	Name     string  `json:"name,omitempty" jsonschema:"meal name, for manual"`
	Calories float64 `json:"calories,omitempty" jsonschema:"kcal, for manual"`
	Protein  float64 `json:"protein,omitempty" jsonschema:"grams, for manual"`
	Carbs    float64 `json:"carbs,omitempty" jsonschema:"grams, for manual"`
	Fats     float64 `json:"fats,omitempty" jsonschema:"grams, for manual"`
}

type adaptationInput struct {
	UserID  string `json:"user_id" jsonschema:"the user's id"`
	Date    string `json:"date,omitempty" jsonschema:"plan date YYYY-MM-DD, defaults to today"`
	Days    int    `json:"days" jsonschema:"how many following days get the bonus"`
	Minutes int    `json:"minutes,omitempty" jsonschema:"bonus minutes per day, default 5"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

func planDate(s string) (string, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return "", err
	}
	return d.Format(models.DateLayout), nil
}

func parseSlot(s string) (models.Slot, error) {
	slot, ok := models.ParseSlot(s)
	if !ok {
		return "", fmt.Errorf("unknown slot: %s", s)
	}
	return slot, nil
}

// Tool handlers

func (s *Server) handleSetProfile(ctx context.Context, req *mcp.CallToolRequest, input setProfileInput) (*mcp.CallToolResult, profileOutput, error) {
	p := models.NewUserProfile(input.UserID, input.Age, input.CurrentWeight, input.Height).
		WithDiet(string(models.NormalizeDiet(input.Diet))).
		WithGoal(models.NormalizeGoal(input.Goal))
	if input.TargetWeight > 0 {
		p.WithTargetWeight(input.TargetWeight)
	}
	if input.TimeAvailability > 0 {
		p.WithTimeAvailability(input.TimeAvailability)
	}
	if input.DailyMealCount > 0 {
		p.WithMealCount(input.DailyMealCount)
	}
	if strings.TrimSpace(p.UserID) == "" {
		return nil, profileOutput{}, fmt.Errorf("user_id is required")
	}
	if err := p.Validate(); err != nil {
		return nil, profileOutput{}, err
	}
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return nil, profileOutput{}, fmt.Errorf("failed to save profile: %w", err)
	}

	return nil, profileOutput{
		UserID:  p.UserID,
		Diet:    p.DietaryPreference,
		Goal:    string(p.PrimaryGoal),
		Message: fmt.Sprintf("Saved profile for %s (%s, %s)", p.UserID, p.DietaryPreference, p.PrimaryGoal),
	}, nil
}

func (s *Server) handleGeneratePlan(ctx context.Context, req *mcp.CallToolRequest, input planInput) (*mcp.CallToolResult, any, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, nil, err
	}
	got, err := s.planner.GeneratePlan(ctx, input.UserID, date)
	if err != nil {
		return nil, nil, err
	}
	return nil, got, nil
}

func (s *Server) handleGetPlan(ctx context.Context, req *mcp.CallToolRequest, input getPlanInput) (*mcp.CallToolResult, any, error) {
	date, err := planDate(input.Date)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.repo.GetPlan(ctx, input.UserID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("plan not found for %s on %s: %w", input.UserID, date, err)
	}

	switch strings.ToLower(input.Format) {
	case "", "json":
		return nil, plan, nil
	case "yaml":
		data, err := storage.ExportPlanYAML(plan)
		if err != nil {
			return nil, nil, err
		}
		return textResult(string(data)), nil, nil
	case "markdown", "md":
		return textResult(storage.ExportPlanMarkdown(plan)), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown format: %s", input.Format)
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func (s *Server) handleSwapMeal(ctx context.Context, req *mcp.CallToolRequest, input swapMealInput) (*mcp.CallToolResult, swapMealOutput, error) {
	slot, err := parseSlot(input.Slot)
	if err != nil {
		return nil, swapMealOutput{}, err
	}
	date, err := planDate(input.Date)
	if err != nil {
		return nil, swapMealOutput{}, err
	}
	m, err := s.planner.SwapMeal(ctx, input.UserID, date, slot, input.Exclude)
	if err != nil {
		return nil, swapMealOutput{}, err
	}
	return nil, swapMealOutput{
		Slot:     string(m.Slot),
		Name:     m.Name,
		Calories: m.Calories,
		Protein:  m.Protein,
		Message:  fmt.Sprintf("Swapped %s to %s", m.Slot, m.Name),
	}, nil
}

func (s *Server) handleGetRotation(ctx context.Context, req *mcp.CallToolRequest, input rotationInput) (*mcp.CallToolResult, any, error) {
	tiers := models.AllTiers
	if input.Tier != "" {
		tier, ok := models.ParseTier(input.Tier)
		if !ok {
			return nil, nil, fmt.Errorf("unknown tier: %s", input.Tier)
		}
		tiers = []models.Tier{tier}
	}

	day := meals.NormalizeCycleDay(input.Day)
	table := s.planner.Selector().Rotation()
	baseline := s.catalogs.Library(meals.BaselineDiet)

	result := map[string]any{"day": day}
	for _, tier := range tiers {
		if cell, ok := table.Cell(day, tier); ok {
			result[fmt.Sprintf("tier_%d", tier)] = cell.Entries(baseline)
		}
	}
	if len(result) == 1 {
		return nil, map[string]any{"message": fmt.Sprintf("No rotation for day %d.", day)}, nil
	}
	return nil, result, nil
}

func (s *Server) handleReloadContent(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, reloadOutput, error) {
	s.catalogs.Invalidate()
	baseline := s.catalogs.Library(meals.BaselineDiet).Len()
	categories := len(s.catalogs.LoadWorkoutCatalog().Categories)
	s.logger.Info("content reloaded", "baseline_meals", baseline, "workout_categories", categories)

	return nil, reloadOutput{
		BaselineMeals:     baseline,
		WorkoutCategories: categories,
		Message:           fmt.Sprintf("Reloaded catalogs: %d baseline meals, %d workout categories", baseline, categories),
	}, nil
}

func (s *Server) handleLogWater(ctx context.Context, req *mcp.CallToolRequest, input logWaterInput) (*mcp.CallToolResult, simpleOutput, error) {
	date, err := planDate(input.Date)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	total, err := s.planner.LogWater(ctx, input.UserID, date, input.Ml)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Logged %d ml (total %d ml on %s)", input.Ml, total, date)}, nil
}

func (s *Server) handleLogMeal(ctx context.Context, req *mcp.CallToolRequest, input logMealInput) (*mcp.CallToolResult, simpleOutput, error) {
	slot, err := parseSlot(input.Slot)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	date, err := planDate(input.Date)
	if err != nil {
		return nil, simpleOutput{}, err
	}

	var entry *models.MealLog
	switch models.LoggedMealKind(strings.ToLower(input.Kind)) {
	case models.LoggedPlanned:
		entry, err = s.planner.LogPlannedMeal(ctx, input.UserID, date, slot)
	case models.LoggedAlternative:
		entry, err = s.planner.LogAlternativeMeal(ctx, input.UserID, date, slot, input.MealID)
	case models.LoggedManual:
		entry, err = s.planner.LogManualMeal(ctx, input.UserID, date, slot, input.Name, models.Macros{
			Calories: input.Calories, Protein: input.Protein, Carbs: input.Carbs, Fats: input.Fats,
		})
	default:
		return nil, simpleOutput{}, fmt.Errorf("unknown kind: %s (want planned, alternative or manual)", input.Kind)
	}
	if err != nil {
		return nil, simpleOutput{}, err
	}

	n := entry.Meal.Nutrition()
	return nil, simpleOutput{
		Message: fmt.Sprintf("Logged %s %s: %s (%.0f kcal)", entry.Meal.Kind(), slot, entry.Meal.Label(), n.Calories),
	}, nil
}

func (s *Server) handleDailySummary(ctx context.Context, req *mcp.CallToolRequest, input planInput) (*mcp.CallToolResult, any, error) {
	date, err := planDate(input.Date)
	if err != nil {
		return nil, nil, err
	}
	summary, err := s.planner.DailySummary(ctx, input.UserID, date)
	if err != nil {
		return nil, nil, err
	}
	return nil, map[string]any{
		"summary":            summary,
		"logged_meals":       len(summary.Logs),
		"remaining_calories": summary.RemainingCalories(),
	}, nil
}

func (s *Server) handleActivateAdaptation(ctx context.Context, req *mcp.CallToolRequest, input adaptationInput) (*mcp.CallToolResult, simpleOutput, error) {
	date, err := planDate(input.Date)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	a, err := s.planner.ActivateAdaptation(ctx, input.UserID, date, input.Days, input.Minutes)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if !a.Active {
		return nil, simpleOutput{Message: "Adaptation cleared"}, nil
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Adaptation active from %s: +%d min for %d days", nextDay(date), a.ExtraMinutes, a.DaysRemaining),
	}, nil
}

func nextDay(date string) string {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, 1).Format(models.DateLayout)
}
