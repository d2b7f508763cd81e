// ABOUTME: MCP resource implementations for fitplan.
// ABOUTME: Provides fitplan://catalog/summary and fitplan://profiles resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/fitplan/internal/meals"
	"github.com/harperreed/fitplan/internal/models"
)

const (
	catalogSummaryURI = "fitplan://catalog/summary"
	profilesURI       = "fitplan://profiles"
)

func (s *Server) registerResources() {
	// fitplan://catalog/summary - meal counts per diet/slot/tier plus workout categories
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         catalogSummaryURI,
		Name:        "Catalog Summary",
		Description: "Meal counts per diet, slot and calorie tier, and the workout categories",
		MIMEType:    "application/json",
	}, s.handleCatalogSummaryResource)

	// fitplan://profiles - every stored profile with its latest plan date
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         profilesURI,
		Name:        "Profiles",
		Description: "Stored user profiles with their most recent plan date",
		MIMEType:    "application/json",
	}, s.handleProfilesResource)
}

type workoutCategorySummary struct {
	AgeRange       string                `json:"age_range"`
	WeightCategory models.WeightCategory `json:"weight_category"`
	Goal           models.WorkoutGoal    `json:"goal"`
	Options        int                   `json:"options"`
}

// Resource handlers

func (s *Server) handleCatalogSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	diets := make(map[string]any, len(models.AllDiets))
	for _, diet := range models.AllDiets {
		lib := s.catalogs.Library(diet)
		bySlot := make(map[string]map[string]int)
		for _, slot := range models.PrimarySlots {
			byTier := make(map[string]int)
			for _, tier := range models.AllTiers {
				byTier[fmt.Sprint(int(tier))] = len(lib.Filter(slot, tier))
			}
			bySlot[string(slot)] = byTier
		}
		diets[string(diet)] = map[string]any{
			"total":   lib.Len(),
			"by_slot": bySlot,
		}
	}

	catalog := s.catalogs.LoadWorkoutCatalog()
	categories := make([]workoutCategorySummary, 0, len(catalog.Categories))
	for _, c := range catalog.Categories {
		categories = append(categories, workoutCategorySummary{
			AgeRange:       c.AgeRange,
			WeightCategory: c.WeightCategory,
			Goal:           c.Goal,
			Options:        len(c.Options),
		})
	}

	result := map[string]any{
		"generated_at":       time.Now().Format(time.RFC3339),
		"baseline_diet":      meals.BaselineDiet,
		"cycle_length":       meals.CycleLength,
		"meals":              diets,
		"workout_categories": categories,
	}
	return jsonResource(catalogSummaryURI, result)
}

func (s *Server) handleProfilesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	entries := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		entry := map[string]any{"profile": p}
		plans, err := s.repo.ListPlans(ctx, p.UserID, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to list plans: %w", err)
		}
		if len(plans) > 0 {
			entry["latest_plan"] = plans[0].Date
		}
		entries = append(entries, entry)
	}

	return jsonResource(profilesURI, map[string]any{
		"profiles": entries,
		"count":    len(entries),
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
