// ABOUTME: Tests for CLI helpers, command wiring and end-to-end command execution.
// ABOUTME: Commands run against a temporary SQLite database and the embedded catalogs.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harperreed/fitplan/internal/models"
	"github.com/harperreed/fitplan/internal/planner"
	"github.com/harperreed/fitplan/internal/workouts"
)

const cliDate = "2026-03-10"

// setupCLI points config and data at temp dirs and clears env overrides.
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	for _, key := range []string{
		"FITPLAN_BACKEND", "FITPLAN_DATA_DIR", "FITPLAN_DATABASE_URL", "FITPLAN_CONTENT_DIR",
		"FITPLAN_LISTEN_ADDR", "FITPLAN_USER", "FITPLAN_CACHE_CONTENT", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	return dir
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	userID, backend = "", ""
	generateDate, planDate, trackDate = "", "", ""
	planFormat, planOutput, exportOutput = "markdown", "", ""
	swapExclude = nil
	migrateTo, migrateDryRun = "", false
	rotationTier, previewDay = "", 0
	checkDiet, checkSamples, checkSeed = "veg", 20, 0
	adaptDays, adaptMinutes = 3, models.DefaultAdaptationMinutes
	manualMacros = models.Macros{}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	_ = closeRepo()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("fitplan %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func seedCLIProfile(t *testing.T) {
	t.Helper()
	mustRun(t, "profile", "set", "--age", "30", "--weight", "80", "--height", "175",
		"--target", "72", "--diet", "vegetarian", "--goal", "fat loss", "--meals", "4")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string no truncation", input: "hello", maxLen: 10, want: "hello"},
		{name: "exact length", input: "hello", maxLen: 5, want: "hello"},
		{name: "needs truncation", input: "hello world this is a long string", maxLen: 10, want: "hello w..."},
		{name: "empty string", input: "", maxLen: 10, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		length int
		want   string
	}{
		{name: "needs padding", input: "hi", length: 5, want: "hi   "},
		{name: "exact length", input: "hello", length: 5, want: "hello"},
		{name: "longer than length", input: "hello world", length: 5, want: "hello world"},
		{name: "empty string", input: "", length: 3, want: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := padRight(tt.input, tt.length)
			if got != tt.want {
				t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
			}
		})
	}
}

func TestPlanDay(t *testing.T) {
	got, err := planDay(cliDate)
	if err != nil {
		t.Fatalf("planDay failed: %v", err)
	}
	if got != cliDate {
		t.Errorf("planDay(%q) = %q", cliDate, got)
	}

	if _, err := planDay("10-03-2026"); err == nil {
		t.Error("expected error for non ISO date")
	}
}

func TestPrintMetadataWorkoutNote(t *testing.T) {
	tests := []struct {
		name string
		meta planner.Metadata
		want bool
	}{
		{"library meals with matched workout", planner.Metadata{
			MealSource: planner.MealSourceLibrary, FallbackUsed: true, WorkoutSource: workouts.SourceAgeMatch,
		}, false},
		{"rotation with first entry workout", planner.Metadata{
			MealSource: planner.MealSourceRotation, FallbackUsed: true, WorkoutSource: workouts.SourceFirstEntry,
		}, true},
		{"default workout", planner.Metadata{
			MealSource: planner.MealSourceStaticFallback, FallbackUsed: true, WorkoutSource: workouts.SourceDefault,
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printMetadata(&buf, tt.meta)
			if got := strings.Contains(buf.String(), "workout via"); got != tt.want {
				t.Errorf("workout note shown = %v, want %v in %q", got, tt.want, buf.String())
			}
		})
	}
}

func TestRootCmdFlags(t *testing.T) {
	if rootCmd.Use != "fitplan" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "fitplan")
	}
	if rootCmd.Short == "" {
		t.Error("Expected rootCmd.Short to be non-empty")
	}
	for _, name := range []string{"user", "backend"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent --%s flag", name)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{
		"profile", "generate", "plan", "swap", "rotation", "meals", "workout",
		"adapt", "water", "log", "summary", "catalog", "serve", "mcp", "migrate",
		"export", "import",
	} {
		if !names[want] {
			t.Errorf("Expected command %q to be registered", want)
		}
	}
}

func TestSubcommands(t *testing.T) {
	tests := []struct {
		parent string
		want   []string
	}{
		{parent: "profile", want: []string{"set", "show"}},
		{parent: "plan", want: []string{"show", "list", "export"}},
		{parent: "log", want: []string{"planned", "alternative", "manual"}},
		{parent: "workout", want: []string{"preview"}},
		{parent: "catalog", want: []string{"check"}},
	}
	for _, tt := range tests {
		t.Run(tt.parent, func(t *testing.T) {
			parent, _, err := rootCmd.Find([]string{tt.parent})
			if err != nil {
				t.Fatalf("Find(%q): %v", tt.parent, err)
			}
			names := make(map[string]bool)
			for _, c := range parent.Commands() {
				names[c.Name()] = true
			}
			for _, w := range tt.want {
				if !names[w] {
					t.Errorf("Expected %s subcommand %q", tt.parent, w)
				}
			}
		})
	}
}

func TestCommandFlags(t *testing.T) {
	if generateCmd.Flags().Lookup("date") == nil {
		t.Error("Expected --date flag on generate")
	}
	if swapCmd.Flags().Lookup("exclude") == nil {
		t.Error("Expected --exclude flag on swap")
	}
	limit := planListCmd.Flags().Lookup("limit")
	if limit == nil {
		t.Fatal("Expected --limit flag on plan list")
	}
	if limit.DefValue != "14" {
		t.Errorf("Expected default limit 14, got %s", limit.DefValue)
	}
	minutes := adaptCmd.Flags().Lookup("minutes")
	if minutes == nil || minutes.DefValue != "5" {
		t.Errorf("Expected --minutes flag defaulting to 5 on adapt")
	}
	if migrateCmd.Flags().Lookup("dry-run") == nil {
		t.Error("Expected --dry-run flag on migrate")
	}
}

func TestCommandAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{alias: "gen", want: "generate"},
		{alias: "g", want: "generate"},
		{alias: "p", want: "profile"},
		{alias: "w", want: "workout"},
		{alias: "sum", want: "summary"},
	}
	for _, tt := range tests {
		cmd, _, err := rootCmd.Find([]string{tt.alias})
		if err != nil {
			t.Errorf("Find(%q): %v", tt.alias, err)
			continue
		}
		if cmd.Name() != tt.want {
			t.Errorf("alias %q resolved to %q, want %q", tt.alias, cmd.Name(), tt.want)
		}
	}
}

func TestGenerateRequiresProfile(t *testing.T) {
	setupCLI(t)
	_, err := run(t, "generate", "--date", cliDate)
	if err == nil {
		t.Fatal("expected error without a profile")
	}
	if !strings.Contains(err.Error(), "profile set") {
		t.Errorf("error should point at profile set, got %v", err)
	}
}

func TestProfileSetAndShow(t *testing.T) {
	setupCLI(t)
	seedCLIProfile(t)

	out := mustRun(t, "profile", "show")
	for _, want := range []string{"veg", "fat_loss", "175 cm", "tier 1800"} {
		if !strings.Contains(out, want) {
			t.Errorf("profile show output missing %q:\n%s", want, out)
		}
	}

	// Only changed flags are applied.
	mustRun(t, "profile", "set", "--diet", "eggetarian")
	out = mustRun(t, "profile", "show")
	if !strings.Contains(out, "egg") || !strings.Contains(out, "175 cm") {
		t.Errorf("partial update lost fields:\n%s", out)
	}

	if _, err := run(t, "profile", "show", "-u", "nobody"); err == nil {
		t.Error("expected error for a user without a profile")
	}
}

func TestDailyFlow(t *testing.T) {
	setupCLI(t)
	seedCLIProfile(t)

	out := mustRun(t, "generate", "--date", cliDate)
	if !strings.Contains(out, "Generated plan for "+cliDate) {
		t.Errorf("unexpected generate output:\n%s", out)
	}
	out = mustRun(t, "generate", "--date", cliDate)
	if !strings.Contains(out, "Regenerated plan for "+cliDate) {
		t.Errorf("second generate should regenerate:\n%s", out)
	}

	out = mustRun(t, "water", "250", "--date", cliDate)
	if !strings.Contains(out, "total 250 ml") {
		t.Errorf("unexpected water output:\n%s", out)
	}

	mustRun(t, "swap", "lunch", "--date", cliDate)
	mustRun(t, "log", "planned", "breakfast", "--date", cliDate)
	mustRun(t, "log", "manual", "snack", "Apple", "--calories", "95", "--date", cliDate)

	out = mustRun(t, "summary", "--date", cliDate)
	for _, want := range []string{"Summary for " + cliDate, "250 ml", "Apple", "[manual]", "[planned]"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "plan", "show", "--date", cliDate)
	if !strings.Contains(out, "Plan for "+cliDate) || !strings.Contains(out, "Water: 250 ml") {
		t.Errorf("unexpected plan show output:\n%s", out)
	}

	out = mustRun(t, "plan", "list")
	if !strings.Contains(out, cliDate) {
		t.Errorf("plan list missing %s:\n%s", cliDate, out)
	}

	out = mustRun(t, "plan", "export", "--date", cliDate, "--format", "json")
	var plan models.Plan
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatalf("plan export json: %v\n%s", err, out)
	}
	if plan.Date != cliDate || len(plan.Meals) != 4 || len(plan.Workouts) != 1 {
		t.Errorf("exported plan = %s with %d meals, %d workouts", plan.Date, len(plan.Meals), len(plan.Workouts))
	}

	if _, err := run(t, "plan", "export", "--date", cliDate, "--format", "pdf"); err == nil {
		t.Error("expected error for unknown export format")
	}
}

func TestSwapUnknownSlot(t *testing.T) {
	setupCLI(t)
	_, err := run(t, "swap", "brunch")
	if err == nil || !strings.Contains(err.Error(), "unknown slot") {
		t.Errorf("expected unknown slot error, got %v", err)
	}
}

func TestAdaptCarriesToNextDay(t *testing.T) {
	setupCLI(t)
	seedCLIProfile(t)

	mustRun(t, "generate", "--date", cliDate)
	out := mustRun(t, "adapt", "--days", "2", "--minutes", "10", "--date", cliDate)
	if !strings.Contains(out, "Adaptation on "+cliDate) {
		t.Errorf("unexpected adapt output:\n%s", out)
	}

	out = mustRun(t, "generate", "--date", "2026-03-11")
	if !strings.Contains(out, "+10 adaptation") {
		t.Errorf("next day's workout should include the bonus:\n%s", out)
	}
}

func TestRotationCommand(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "rotation", "29", "--tier", "1800")
	if !strings.Contains(out, "Day 1, tier 1800") {
		t.Errorf("day 29 should wrap to day 1:\n%s", out)
	}
	for _, slot := range []string{"breakfast", "lunch", "snack", "dinner", "evening_snack"} {
		if !strings.Contains(out, slot) {
			t.Errorf("rotation output missing %s:\n%s", slot, out)
		}
	}

	if _, err := run(t, "rotation", "1", "--tier", "1700"); err == nil {
		t.Error("expected error for unknown tier")
	}
	if _, err := run(t, "rotation", "first"); err == nil {
		t.Error("expected error for non-numeric day")
	}
}

func TestPreviewCommands(t *testing.T) {
	setupCLI(t)
	seedCLIProfile(t)

	out := mustRun(t, "meals", "3")
	for _, slot := range []string{"breakfast", "lunch", "snack", "dinner"} {
		if !strings.Contains(out, slot) {
			t.Errorf("meals output missing %s:\n%s", slot, out)
		}
	}

	out = mustRun(t, "workout", "preview", "--day", "1")
	if !strings.Contains(out, "overweight / fat_loss") {
		t.Errorf("BMI 26 losing weight should map to overweight/fat_loss:\n%s", out)
	}
}

func TestCatalogCheck(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "catalog", "check", "--diet", "veg", "-n", "10", "--seed", "7")
	if !strings.Contains(out, "10 veg samples passed") {
		t.Errorf("unexpected catalog check output:\n%s", out)
	}
	if !strings.Contains(out, "categories") {
		t.Errorf("catalog check should report workout categories:\n%s", out)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := setupCLI(t)
	seedCLIProfile(t)
	mustRun(t, "generate", "--date", cliDate)

	backup := filepath.Join(dir, "backup.json")
	mustRun(t, "export", "-o", backup)
	if _, err := os.Stat(backup); err != nil {
		t.Fatalf("backup not written: %v", err)
	}

	// Fresh data dir, same backup.
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "restored"))
	mustRun(t, "import", backup)
	out := mustRun(t, "plan", "show", "--date", cliDate)
	if !strings.Contains(out, "Plan for "+cliDate) {
		t.Errorf("restored plan missing:\n%s", out)
	}
}

func TestMigrateToBadger(t *testing.T) {
	setupCLI(t)
	seedCLIProfile(t)
	mustRun(t, "generate", "--date", cliDate)

	out := mustRun(t, "migrate", "--to", "badger", "--dry-run")
	if !strings.Contains(out, "1 profiles, 1 plans (4 meals, 1 workouts)") {
		t.Errorf("unexpected dry run output:\n%s", out)
	}

	out = mustRun(t, "migrate", "--to", "badger")
	if !strings.Contains(out, "Migrated sqlite -> badger") {
		t.Errorf("unexpected migrate output:\n%s", out)
	}

	out = mustRun(t, "--backend", "badger", "plan", "show", "--date", cliDate)
	if !strings.Contains(out, "Plan for "+cliDate) {
		t.Errorf("plan not readable from badger:\n%s", out)
	}

	if _, err := run(t, "migrate", "--to", "badger"); err == nil {
		t.Error("expected error migrating into a non-empty destination")
	}
	if _, err := run(t, "migrate", "--to", "sqlite"); err == nil {
		t.Error("expected error migrating onto the source backend")
	}
}
