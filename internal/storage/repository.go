// ABOUTME: Repository interface for fitplan persistence.
// ABOUTME: Profiles, plans with their meal/workout children, and meal logs.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/harperreed/fitplan/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// PlanTargets are the parent-row fields regeneration rewrites.
type PlanTargets struct {
	CycleDay     int
	CalorieTier  models.Tier
	Calories     int
	Protein      int
	GenerationID string
	// Adaptation, when set, replaces the row's adaptation state.
	Adaptation *models.Adaptation
}

// Repository defines the storage interface for fitplan data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Profile operations
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, p *models.UserProfile) error
	ListProfiles(ctx context.Context) ([]*models.UserProfile, error)

	// Plan operations. GetPlan and GetPlanByID populate Meals and Workouts;
	// ListPlans returns parent rows only, newest date first.
	GetPlan(ctx context.Context, userID, date string) (*models.Plan, error)
	GetPlanByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	ListPlans(ctx context.Context, userID string, limit int) ([]*models.Plan, error)
	ListPlanMeals(ctx context.Context, planID uuid.UUID) ([]models.PlanMeal, error)
	ListPlanWorkouts(ctx context.Context, planID uuid.UUID) ([]models.PlanWorkout, error)
	AddWater(ctx context.Context, planID uuid.UUID, ml int) (int, error)
	SetAdaptation(ctx context.Context, planID uuid.UUID, a models.Adaptation) error

	// Meal log operations. Empty userID or date lists across all values.
	AddMealLog(ctx context.Context, l *models.MealLog) error
	ListMealLogs(ctx context.Context, userID, date string) ([]*models.MealLog, error)

	// InTx runs fn in one transaction. An error from fn rolls back every
	// write fn made.
	InTx(ctx context.Context, fn func(PlanTx) error) error

	// Lifecycle
	Close() error
}

// PlanTx is the write surface plan assembly uses inside a transaction.
type PlanTx interface {
	// GetPlan returns the parent row only, or ErrNotFound.
	GetPlan(ctx context.Context, userID, date string) (*models.Plan, error)
	CreatePlan(ctx context.Context, p *models.Plan) error
	ClearPlanChildren(ctx context.Context, planID uuid.UUID) error
	CreateMealRecord(ctx context.Context, planID uuid.UUID, m *models.PlanMeal) error
	CreateWorkoutRecord(ctx context.Context, planID uuid.UUID, w *models.PlanWorkout) error
	UpdatePlanTargets(ctx context.Context, planID uuid.UUID, t PlanTargets) error
	// ReplaceMealRecord overwrites the meal stored at m.Slot.
	ReplaceMealRecord(ctx context.Context, planID uuid.UUID, m *models.PlanMeal) error
}
