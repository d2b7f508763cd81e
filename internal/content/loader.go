// ABOUTME: Content library loader with explicit-invalidation caching for both catalogs.
// ABOUTME: Never returns errors: failures are logged and degrade to empty results.
package content

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/harperreed/fitplan/internal/models"
)

// Loader turns raw catalogs into in-memory libraries.
//
// With caching enabled (the default) a successfully parsed meal library or
// workout catalog is kept until Invalidate is called. With caching disabled
// every call re-reads the store, so edits to a content directory show up on
// the next request. Failed loads are never cached.
type Loader struct {
	store  Store
	logger *slog.Logger
	cache  bool

	mu       sync.RWMutex
	meals    map[models.Diet]*models.MealLibrary
	workouts *models.WorkoutCatalog
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache enables or disables catalog caching.
func WithCache(enabled bool) Option {
	return func(l *Loader) { l.cache = enabled }
}

// WithLogger sets the logger used for content failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader reading from store.
func NewLoader(store Store, opts ...Option) *Loader {
	l := &Loader{
		store:  store,
		logger: slog.Default(),
		cache:  true,
		meals:  make(map[models.Diet]*models.MealLibrary),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadMealLibrary normalizes a free-form diet string and loads its library.
// Returns nil when the catalog is missing or unreadable.
func (l *Loader) LoadMealLibrary(diet string) *models.MealLibrary {
	return l.Library(models.NormalizeDiet(diet))
}

// Library loads the meal library for an already-normalized diet.
func (l *Loader) Library(diet models.Diet) *models.MealLibrary {
	if l.cache {
		l.mu.RLock()
		lib, ok := l.meals[diet]
		l.mu.RUnlock()
		if ok {
			return lib
		}
	}

	data, err := l.store.ReadMealCatalog(diet)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			l.logger.Warn("meal catalog missing", "diet", diet, "error", err)
		} else {
			l.logger.Error("meal catalog unreadable", "diet", diet, "error", err)
		}
		return nil
	}

	lib, skipped, err := ParseMealCatalog(data, diet)
	if err != nil {
		l.logger.Error("meal catalog malformed", "diet", diet, "error", err)
		return nil
	}
	if skipped > 0 {
		l.logger.Warn("meal catalog entries skipped", "diet", diet, "skipped", skipped)
	}

	if l.cache {
		l.mu.Lock()
		l.meals[diet] = lib
		l.mu.Unlock()
	}
	return lib
}

// LoadWorkoutCatalog returns the workout catalog. On failure it returns an
// empty, non-nil catalog.
func (l *Loader) LoadWorkoutCatalog() *models.WorkoutCatalog {
	if l.cache {
		l.mu.RLock()
		catalog := l.workouts
		l.mu.RUnlock()
		if catalog != nil {
			return catalog
		}
	}

	data, err := l.store.ReadWorkoutCatalog()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			l.logger.Warn("workout catalog missing", "error", err)
		} else {
			l.logger.Error("workout catalog unreadable", "error", err)
		}
		return &models.WorkoutCatalog{}
	}

	catalog, err := ParseWorkoutCatalog(data)
	if err != nil {
		l.logger.Error("workout catalog malformed", "error", err)
		return &models.WorkoutCatalog{}
	}

	if l.cache {
		l.mu.Lock()
		l.workouts = catalog
		l.mu.Unlock()
	}
	return catalog
}

// Invalidate drops every cached catalog.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.meals = make(map[models.Diet]*models.MealLibrary)
	l.workouts = nil
	l.logger.Info("content cache invalidated")
}

// Caching reports whether the loader caches catalogs.
func (l *Loader) Caching() bool {
	return l.cache
}
