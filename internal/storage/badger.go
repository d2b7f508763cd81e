// ABOUTME: Badger key-value storage backend.
// ABOUTME: Records are JSON values under type-prefixed keys; plan writes share one txn.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/harperreed/fitplan/internal/models"
)

const (
	ProfilePrefix     = "profile:"
	PlanPrefix        = "plan:"
	PlanIndexPrefix   = "plan_idx:"
	PlanMealPrefix    = "plan_meal:"
	PlanWorkoutPrefix = "plan_workout:"
	MealLogPrefix     = "meal_log:"
)

var _ Repository = (*KV)(nil)

// KV is a Repository backed by an embedded Badger database.
type KV struct {
	db  *badger.DB
	dir string
}

// OpenBadger opens or creates a Badger database in dir. An empty dir opens
// an in-memory database.
func OpenBadger(dir string) (*KV, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create badger directory: %w", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &KV{db: db, dir: dir}, nil
}

// Close closes the database.
func (k *KV) Close() error {
	if k.db != nil {
		return k.db.Close()
	}
	return nil
}

func planIndexKey(userID, date string) string {
	return PlanIndexPrefix + userID + ":" + date
}

func planMealKey(planID uuid.UUID, position int) string {
	return fmt.Sprintf("%s%s:%03d", PlanMealPrefix, planID, position)
}

func mealLogKey(l *models.MealLog) string {
	return fmt.Sprintf("%s%s:%s:%020d:%s", MealLogPrefix, l.UserID, l.Date, l.LoggedAt.UnixNano(), l.ID)
}

// GetProfile retrieves the profile for userID.
func (k *KV) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p *models.UserProfile
	err := k.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = getJSON[models.UserProfile](txn, ProfilePrefix+userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return p, nil
}

// SaveProfile inserts or replaces the profile for p.UserID.
func (k *KV) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	if err := k.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, ProfilePrefix+p.UserID, p)
	}); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// ListProfiles returns every profile ordered by user id.
func (k *KV) ListProfiles(ctx context.Context) ([]*models.UserProfile, error) {
	var out []*models.UserProfile
	err := k.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = scanPrefix[models.UserProfile](txn, ProfilePrefix)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

// GetPlan retrieves a user's plan for date with its children.
func (k *KV) GetPlan(ctx context.Context, userID, date string) (*models.Plan, error) {
	var p *models.Plan
	err := k.db.View(func(txn *badger.Txn) error {
		var err error
		if p, err = (&kvTx{txn: txn}).GetPlan(ctx, userID, date); err != nil {
			return err
		}
		return loadChildren(txn, p)
	})
	if err != nil {
		return nil, fmt.Errorf("get plan %s/%s: %w", userID, date, err)
	}
	return p, nil
}

// GetPlanByID retrieves a plan by id with its children.
func (k *KV) GetPlanByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	var p *models.Plan
	err := k.db.View(func(txn *badger.Txn) error {
		var err error
		if p, err = getJSON[models.Plan](txn, PlanPrefix+id.String()); err != nil {
			return err
		}
		return loadChildren(txn, p)
	})
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", id, err)
	}
	return p, nil
}

// ListPlans returns plan rows, newest date first. An empty userID lists all users.
func (k *KV) ListPlans(ctx context.Context, userID string, limit int) ([]*models.Plan, error) {
	var all []*models.Plan
	err := k.db.View(func(txn *badger.Txn) error {
		var err error
		all, err = scanPrefix[models.Plan](txn, PlanPrefix)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	var plans []*models.Plan
	for _, p := range all {
		if userID == "" || p.UserID == userID {
			plans = append(plans, p)
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].Date != plans[j].Date {
			return plans[i].Date > plans[j].Date
		}
		return plans[i].UserID < plans[j].UserID
	})
	if limit > 0 && len(plans) > limit {
		plans = plans[:limit]
	}
	return plans, nil
}

// ListPlanMeals returns a plan's meals in position order.
func (k *KV) ListPlanMeals(ctx context.Context, planID uuid.UUID) ([]models.PlanMeal, error) {
	var meals []models.PlanMeal
	err := k.db.View(func(txn *badger.Txn) error {
		var err error
		meals, err = listMeals(txn, planID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list plan meals: %w", err)
	}
	return meals, nil
}

// ListPlanWorkouts returns a plan's workouts.
func (k *KV) ListPlanWorkouts(ctx context.Context, planID uuid.UUID) ([]models.PlanWorkout, error) {
	var workouts []models.PlanWorkout
	err := k.db.View(func(txn *badger.Txn) error {
		var err error
		workouts, err = listWorkouts(txn, planID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list plan workouts: %w", err)
	}
	return workouts, nil
}

// AddWater adds ml to the plan's water total and returns the new total.
func (k *KV) AddWater(ctx context.Context, planID uuid.UUID, ml int) (int, error) {
	var total int
	err := k.db.Update(func(txn *badger.Txn) error {
		return updatePlan(txn, planID, func(p *models.Plan) {
			p.WaterMl += ml
			total = p.WaterMl
		})
	})
	if err != nil {
		return 0, fmt.Errorf("add water: %w", err)
	}
	return total, nil
}

// SetAdaptation stores the adaptation state on a plan.
func (k *KV) SetAdaptation(ctx context.Context, planID uuid.UUID, a models.Adaptation) error {
	err := k.db.Update(func(txn *badger.Txn) error {
		return updatePlan(txn, planID, func(p *models.Plan) { p.Adaptation = a })
	})
	if err != nil {
		return fmt.Errorf("set adaptation: %w", err)
	}
	return nil
}

// AddMealLog stores a meal log entry.
func (k *KV) AddMealLog(ctx context.Context, l *models.MealLog) error {
	stored := newMealLogRecord(l)
	if err := k.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, mealLogKey(l), stored)
	}); err != nil {
		return fmt.Errorf("add meal log: %w", err)
	}
	return nil
}

// ListMealLogs returns log entries in logging order.
func (k *KV) ListMealLogs(ctx context.Context, userID, date string) ([]*models.MealLog, error) {
	prefix := MealLogPrefix
	if userID != "" {
		prefix += userID + ":"
		if date != "" {
			prefix += date + ":"
		}
	}

	var stored []*mealLogRecord
	err := k.db.View(func(txn *badger.Txn) error {
		var err error
		stored, err = scanPrefix[mealLogRecord](txn, prefix)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list meal logs: %w", err)
	}

	var logs []*models.MealLog
	for _, s := range stored {
		if (userID != "" && s.UserID != userID) || (date != "" && s.Date != date) {
			continue
		}
		l, err := s.decode()
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].LoggedAt.Before(logs[j].LoggedAt) })
	return logs, nil
}

// InTx runs fn inside a single read-write Badger transaction.
func (k *KV) InTx(ctx context.Context, fn func(PlanTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return k.db.Update(func(txn *badger.Txn) error {
		return fn(&kvTx{txn: txn})
	})
}

// kvTx adapts a Badger transaction to PlanTx.
type kvTx struct {
	txn *badger.Txn
}

func (t *kvTx) GetPlan(ctx context.Context, userID, date string) (*models.Plan, error) {
	item, err := t.txn.Get([]byte(planIndexKey(userID, date)))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	id, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return getJSON[models.Plan](t.txn, PlanPrefix+string(id))
}

func (t *kvTx) CreatePlan(ctx context.Context, p *models.Plan) error {
	idx := planIndexKey(p.UserID, p.Date)
	if _, err := t.txn.Get([]byte(idx)); err == nil {
		return fmt.Errorf("create plan: %s/%s already exists", p.UserID, p.Date)
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("create plan: %w", err)
	}

	row := *p
	row.Meals, row.Workouts = nil, nil
	if err := setJSON(t.txn, PlanPrefix+p.ID.String(), row); err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	if err := t.txn.Set([]byte(idx), []byte(p.ID.String())); err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (t *kvTx) ClearPlanChildren(ctx context.Context, planID uuid.UUID) error {
	for _, prefix := range []string{PlanMealPrefix, PlanWorkoutPrefix} {
		keys, err := keysWithPrefix(t.txn, prefix+planID.String()+":")
		if err != nil {
			return fmt.Errorf("clear plan children: %w", err)
		}
		for _, key := range keys {
			if err := t.txn.Delete(key); err != nil {
				return fmt.Errorf("clear plan children: %w", err)
			}
		}
	}
	return nil
}

func (t *kvTx) CreateMealRecord(ctx context.Context, planID uuid.UUID, m *models.PlanMeal) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.PlanID = planID
	if err := setJSON(t.txn, planMealKey(planID, m.Position), m); err != nil {
		return fmt.Errorf("create meal record: %w", err)
	}
	return nil
}

func (t *kvTx) CreateWorkoutRecord(ctx context.Context, planID uuid.UUID, w *models.PlanWorkout) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.PlanID = planID
	key := PlanWorkoutPrefix + planID.String() + ":" + w.ID.String()
	if err := setJSON(t.txn, key, w); err != nil {
		return fmt.Errorf("create workout record: %w", err)
	}
	return nil
}

func (t *kvTx) UpdatePlanTargets(ctx context.Context, planID uuid.UUID, tg PlanTargets) error {
	err := updatePlan(t.txn, planID, func(p *models.Plan) {
		p.CycleDay = tg.CycleDay
		p.CalorieTier = tg.CalorieTier
		p.CaloriesTarget = tg.Calories
		p.ProteinTarget = tg.Protein
		p.GenerationID = tg.GenerationID
		if tg.Adaptation != nil {
			p.Adaptation = *tg.Adaptation
		}
	})
	if err != nil {
		return fmt.Errorf("update plan targets: %w", err)
	}
	return nil
}

func (t *kvTx) ReplaceMealRecord(ctx context.Context, planID uuid.UUID, m *models.PlanMeal) error {
	meals, err := listMeals(t.txn, planID)
	if err != nil {
		return fmt.Errorf("replace %s meal: %w", m.Slot, err)
	}
	for _, existing := range meals {
		if existing.Slot != m.Slot {
			continue
		}
		m.Position = existing.Position
		if err := t.txn.Delete([]byte(planMealKey(planID, existing.Position))); err != nil {
			return fmt.Errorf("replace %s meal: %w", m.Slot, err)
		}
		return t.CreateMealRecord(ctx, planID, m)
	}
	return fmt.Errorf("replace %s meal: %w", m.Slot, ErrNotFound)
}

func updatePlan(txn *badger.Txn, planID uuid.UUID, mutate func(*models.Plan)) error {
	key := PlanPrefix + planID.String()
	p, err := getJSON[models.Plan](txn, key)
	if err != nil {
		return err
	}
	mutate(p)
	p.UpdatedAt = time.Now()
	return setJSON(txn, key, p)
}

func loadChildren(txn *badger.Txn, p *models.Plan) error {
	meals, err := listMeals(txn, p.ID)
	if err != nil {
		return err
	}
	workouts, err := listWorkouts(txn, p.ID)
	if err != nil {
		return err
	}
	p.Meals = meals
	p.Workouts = workouts
	return nil
}

func listMeals(txn *badger.Txn, planID uuid.UUID) ([]models.PlanMeal, error) {
	ptrs, err := scanPrefix[models.PlanMeal](txn, PlanMealPrefix+planID.String()+":")
	if err != nil {
		return nil, err
	}
	meals := make([]models.PlanMeal, 0, len(ptrs))
	for _, m := range ptrs {
		meals = append(meals, *m)
	}
	return meals, nil
}

func listWorkouts(txn *badger.Txn, planID uuid.UUID) ([]models.PlanWorkout, error) {
	ptrs, err := scanPrefix[models.PlanWorkout](txn, PlanWorkoutPrefix+planID.String()+":")
	if err != nil {
		return nil, err
	}
	workouts := make([]models.PlanWorkout, 0, len(ptrs))
	for _, w := range ptrs {
		workouts = append(workouts, *w)
	}
	return workouts, nil
}

// getJSON decodes the value at key, mapping a missing key to ErrNotFound.
func getJSON[T any](txn *badger.Txn, key string) (*T, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var out T
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &out)
	}); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &out, nil
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

// scanPrefix decodes every value under prefix in key order.
func scanPrefix[T any](txn *badger.Txn, prefix string) ([]*T, error) {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	var out []*T
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		item := it.Item()
		var v T
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		}); err != nil {
			return nil, fmt.Errorf("decode %s: %w", item.Key(), err)
		}
		out = append(out, &v)
	}
	return out, nil
}

func keysWithPrefix(txn *badger.Txn, prefix string) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}
