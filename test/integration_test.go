// ABOUTME: Integration tests for the fitplan CLI binary.
// ABOUTME: Builds the binary and drives a full profile -> plan -> tracking workflow per backend.
package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func buildBinary(t *testing.T) string {
	t.Helper()
	projectRoot, _ := filepath.Abs("..")
	binary := filepath.Join(t.TempDir(), "fitplan")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/fitplan")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}
	return binary
}

func TestFullWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	binary := buildBinary(t)

	for _, backend := range []string{"sqlite", "badger"} {
		t.Run(backend, func(t *testing.T) {
			tmpDir := t.TempDir()
			env := append(os.Environ(),
				"XDG_DATA_HOME="+filepath.Join(tmpDir, "data"),
				"XDG_CONFIG_HOME="+filepath.Join(tmpDir, "config"),
				"FITPLAN_BACKEND="+backend,
				"FITPLAN_CONTENT_DIR=",
				"FITPLAN_USER=",
			)

			run := func(args ...string) (string, error) {
				cmd := exec.Command(binary, args...)
				cmd.Env = env
				cmd.Dir = tmpDir
				output, err := cmd.CombinedOutput()
				return string(output), err
			}

			output, err := run("generate", "--date", "2026-03-10")
			if err == nil {
				t.Fatalf("Expected generate without profile to fail, got: %s", output)
			}
			if !strings.Contains(output, "complete your profile first") {
				t.Errorf("Expected profile hint, got: %s", output)
			}

			output, err = run("profile", "set", "--age", "52", "--weight", "95", "--height", "170",
				"--diet", "non vegetarian", "--goal", "fat_loss", "--meals", "5")
			if err != nil {
				t.Fatalf("Failed to set profile: %v\n%s", err, output)
			}
			if !strings.Contains(output, "Saved profile me") {
				t.Errorf("Expected 'Saved profile me', got: %s", output)
			}

			for i := 0; i < 2; i++ {
				output, err = run("generate", "--date", "2026-03-10")
				if err != nil {
					t.Fatalf("Failed to generate: %v\n%s", err, output)
				}
			}
			if !strings.Contains(output, "Regenerated plan for 2026-03-10") {
				t.Errorf("Expected regeneration, got: %s", output)
			}
			if !strings.Contains(output, "evening_snack") {
				t.Errorf("Expected five meals including evening_snack, got: %s", output)
			}

			output, err = run("plan", "list")
			if err != nil {
				t.Fatalf("Failed to list plans: %v\n%s", err, output)
			}
			if n := strings.Count(output, "2026-03-10"); n != 1 {
				t.Errorf("Expected exactly one plan row, got %d:\n%s", n, output)
			}

			output, err = run("plan", "export", "--date", "2026-03-10", "--format", "markdown")
			if err != nil {
				t.Fatalf("Failed to export: %v\n%s", err, output)
			}
			if !strings.Contains(output, "# Plan for me - 2026-03-10") {
				t.Errorf("Expected markdown heading, got: %s", output)
			}

			output, err = run("workout", "preview")
			if err != nil {
				t.Fatalf("Failed to preview workout: %v\n%s", err, output)
			}
			if !strings.Contains(output, "obese / safe_fat_loss") {
				t.Errorf("Expected obese/safe_fat_loss bucket, got: %s", output)
			}

			output, err = run("water", "500", "--date", "2026-03-10")
			if err != nil {
				t.Fatalf("Failed to log water: %v\n%s", err, output)
			}
			output, err = run("summary", "--date", "2026-03-10")
			if err != nil {
				t.Fatalf("Failed to summarize: %v\n%s", err, output)
			}
			if !strings.Contains(output, "500 ml") {
				t.Errorf("Expected water in summary, got: %s", output)
			}
		})
	}
}
