// ABOUTME: HTTP handlers for profiles, plans, meal actions and catalogs.
// ABOUTME: Each handler delegates to the planner and reports failures via writeError.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harperreed/fitplan/internal/meals"
	"github.com/harperreed/fitplan/internal/models"
	"github.com/harperreed/fitplan/internal/storage"
)

// Health serves GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetProfile serves GET /users/:id/profile.
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.repo.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PutProfile serves PUT /users/:id/profile. The body carries models.UserProfile fields.
func (h *Handler) PutProfile(c *gin.Context) {
	var p models.UserProfile
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p.UserID = c.Param("id")
	p.DietaryPreference = string(models.NormalizeDiet(p.DietaryPreference))
	p.PrimaryGoal = models.NormalizeGoal(string(p.PrimaryGoal))
	p.UpdatedAt = time.Now()
	if err := p.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.repo.SaveProfile(c.Request.Context(), &p); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GeneratePlan serves POST /users/:id/plans/:date.
func (h *Handler) GeneratePlan(c *gin.Context) {
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	got, err := h.planner.GeneratePlan(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	status := http.StatusCreated
	if got.Metadata.Regenerated {
		status = http.StatusOK
	}
	c.JSON(status, got)
}

// GetPlan serves GET /users/:id/plans/:date.
func (h *Handler) GetPlan(c *gin.Context) {
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	plan, err := h.repo.GetPlan(c.Request.Context(), c.Param("id"), date.Format(models.DateLayout))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// SwapMeal serves POST /users/:id/plans/:date/swap with a body like
// {"slot":"lunch","exclude":["..."]}.
func (h *Handler) SwapMeal(c *gin.Context) {
	var req struct {
		Slot    string   `json:"slot"`
		Exclude []string `json:"exclude"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	slot, ok := models.ParseSlot(req.Slot)
	if !ok {
		badRequest(c, "unknown slot "+strconv.Quote(req.Slot))
		return
	}
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	meal, err := h.planner.SwapMeal(c.Request.Context(), c.Param("id"), date.Format(models.DateLayout), slot, req.Exclude)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

// LogWater serves POST /users/:id/plans/:date/water with a body like {"ml":250}.
func (h *Handler) LogWater(c *gin.Context) {
	var req struct {
		Ml int `json:"ml"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Ml <= 0 {
		badRequest(c, "ml must be a positive integer")
		return
	}
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	total, err := h.planner.LogWater(c.Request.Context(), c.Param("id"), date.Format(models.DateLayout), req.Ml)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"water_ml": total})
}

// Summary serves GET /users/:id/plans/:date/summary.
func (h *Handler) Summary(c *gin.Context) {
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	s, err := h.planner.DailySummary(c.Request.Context(), c.Param("id"), date.Format(models.DateLayout))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// Rotation serves GET /rotation/:day. An optional tier query narrows the cells.
func (h *Handler) Rotation(c *gin.Context) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		badRequest(c, "day must be an integer")
		return
	}
	tiers := models.AllTiers
	if q := c.Query("tier"); q != "" {
		tier, ok := models.ParseTier(q)
		if !ok {
			badRequest(c, "unknown tier "+strconv.Quote(q))
			return
		}
		tiers = []models.Tier{tier}
	}

	day = meals.NormalizeCycleDay(day)
	table := h.planner.Selector().Rotation()
	baseline := h.catalogs.Library(meals.BaselineDiet)

	out := make([]gin.H, 0, len(tiers))
	for _, tier := range tiers {
		if cell, ok := table.Cell(day, tier); ok {
			out = append(out, gin.H{"calorie_tier": tier, "meals": cell.Entries(baseline)})
		}
	}
	if len(out) == 0 {
		writeError(c, h.logger, fmt.Errorf("rotation day %d: %w", day, storage.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "tiers": out})
}

// ReloadContent serves POST /content/reload.
func (h *Handler) ReloadContent(c *gin.Context) {
	h.catalogs.Invalidate()
	lib := h.catalogs.Library(meals.BaselineDiet)
	catalog := h.catalogs.LoadWorkoutCatalog()
	h.logger.Info("content reloaded", "baseline_meals", lib.Len(), "workout_categories", len(catalog.Categories))
	c.JSON(http.StatusOK, gin.H{
		"reloaded":           true,
		"baseline_meals":     lib.Len(),
		"workout_categories": len(catalog.Categories),
	})
}
