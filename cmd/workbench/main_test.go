package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunConfigValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	good := writeConfig(t, "cell_width: 9\nicon_columns: 3\n")
	if rc := runConfig([]string{"validate", "--path", good}); rc != 0 {
		t.Fatalf("validate good rc=%d, want 0", rc)
	}

	bad := writeConfig(t, "cell_width: 0\n")
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate bad rc=%d, want 1", rc)
	}

	unknown := writeConfig(t, "no_such_key: true\n")
	if rc := runConfig([]string{"validate", "--path", unknown}); rc != 1 {
		t.Fatalf("validate unknown key rc=%d, want 1", rc)
	}

	missing := filepath.Join(t.TempDir(), "absent.yaml")
	if rc := runConfig([]string{"validate", "--path", missing}); rc != 0 {
		t.Fatalf("validate missing file rc=%d, want 0", rc)
	}
}

func TestRunConfigUsage(t *testing.T) {
	if rc := runConfig(nil); rc != 2 {
		t.Fatalf("config without subcommand rc=%d, want 2", rc)
	}
	if rc := runConfig([]string{"explain"}); rc != 2 {
		t.Fatalf("unknown config subcommand rc=%d, want 2", rc)
	}
	if rc := runConfig([]string{"print", "--help"}); rc != 0 {
		t.Fatalf("config print --help rc=%d, want 0", rc)
	}
}

func TestCommandArgumentErrors(t *testing.T) {
	cases := []struct {
		name string
		run  func() int
	}{
		{"open without id", func() int { return runWindowCommand("open", nil) }},
		{"close with extra args", func() int { return runWindowCommand("close", []string{"a", "b"}) }},
		{"move with text coordinate", func() int { return runMove([]string{"terminal", "x", "10"}) }},
		{"resize missing height", func() int { return runResize([]string{"terminal", "300"}) }},
		{"viewport with text", func() int { return runViewport([]string{"800", "tall"}) }},
		{"status with args", func() int { return runStatus([]string{"now"}) }},
		{"unknown flag", func() int { return runWindows([]string{"--yaml"}) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rc := tc.run(); rc != 2 {
				t.Fatalf("rc=%d, want 2", rc)
			}
		})
	}
}

func TestControlCommandsWithoutDesktop(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	if rc := runStatus(nil); rc != 1 {
		t.Fatalf("status rc=%d, want 1 with no desktop running", rc)
	}
	if rc := runWindowCommand("focus", []string{"terminal"}); rc != 1 {
		t.Fatalf("focus rc=%d, want 1 with no desktop running", rc)
	}
}

func TestRunResetWithoutDesktopRemovesState(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	statePath := filepath.Join(t.TempDir(), "state.json")
	t.Setenv("WORKBENCH_STATE_FILE", statePath)
	if err := os.WriteFile(statePath, []byte(`{"topZIndex": 3}`), 0600); err != nil {
		t.Fatalf("write state: %v", err)
	}

	if rc := runReset(nil); rc != 0 {
		t.Fatalf("reset rc=%d, want 0", rc)
	}
	if _, err := os.Stat(statePath); !os.IsNotExist(err) {
		t.Fatalf("state file still present: %v", err)
	}

	if rc := runReset(nil); rc != 0 {
		t.Fatalf("second reset rc=%d, want 0 for a missing file", rc)
	}
}

func TestRunResizeFromChecksArguments(t *testing.T) {
	if rc := runResize([]string{"--from", "w", "terminal", "300"}); rc != 2 {
		t.Fatalf("resize missing height rc=%d, want 2", rc)
	}
}

func TestRunPrograms(t *testing.T) {
	if rc := runPrograms(nil); rc != 0 {
		t.Fatalf("programs rc=%d, want 0", rc)
	}
}
