// ABOUTME: Data migration between fitplan storage backends.
// ABOUTME: Copies profiles, plans with their children, and meal logs from source to destination.

package storage

import (
	"context"
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Profiles int
	Plans    int
	Meals    int
	Workouts int
	MealLogs int
}

// MigrateData copies all data from src to dst storage. The destination
// should be empty before calling this function.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	data, err := GetAllData(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if err := ImportData(ctx, dst, data); err != nil {
		return nil, fmt.Errorf("write destination: %w", err)
	}

	summary := &MigrateSummary{
		Profiles: len(data.Profiles),
		Plans:    len(data.Plans),
		MealLogs: len(data.MealLogs),
	}
	for _, p := range data.Plans {
		summary.Meals += len(p.Meals)
		summary.Workouts += len(p.Workouts)
	}
	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
