package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.CellWidth != DefaultCellWidth || res.Config.CellHeight != DefaultCellHeight {
		t.Fatalf("expected default cell size, got %dx%d", res.Config.CellWidth, res.Config.CellHeight)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"cell_width: 10",
		"sounds: false",
		"feed:",
		"  enabled: true",
		"  url: wss://feed.example/ws",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.CellWidth != 10 {
		t.Fatalf("expected cell_width 10, got %d", cfg.CellWidth)
	}
	if cfg.CellHeight != DefaultCellHeight {
		t.Fatalf("expected untouched cell_height, got %d", cfg.CellHeight)
	}
	if cfg.Sounds {
		t.Fatalf("expected sounds disabled")
	}
	if !cfg.Feed.Enabled || cfg.Feed.URL != "wss://feed.example/ws" {
		t.Fatalf("unexpected feed config: %+v", cfg.Feed)
	}
	if cfg.Feed.ReconnectSeconds != DefaultFeedReconnect {
		t.Fatalf("expected default reconnect, got %d", cfg.Feed.ReconnectSeconds)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.d", "10-base.yaml"), "icon_columns: 5\ncell_width: 9\n")
	writeFile(t, filepath.Join(dir, "config.d", "20-override.yaml"), "icon_columns: 6\n")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include:\n  - config.d\nicon_columns: 7\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.IconColumns != 7 {
		t.Fatalf("expected main file to win, got %d", res.Config.IconColumns)
	}
	if res.Config.CellWidth != 9 {
		t.Fatalf("expected include value, got %d", res.Config.CellWidth)
	}
	if len(res.Files) != 3 || res.Files[2] != path {
		t.Fatalf("unexpected load order: %v", res.Files)
	}
	if res.Config.Include != nil {
		t.Fatalf("include list should not leak into the effective config")
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "include: [b.yaml]\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "include: [a.yaml]\n")

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestLoadFromPath_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "cell_width: 10\n")
	t.Setenv("WORKBENCH_CELL_WIDTH", "12")
	t.Setenv("WORKBENCH_LOG_LEVEL", "debug")
	t.Setenv("WORKBENCH_FEED_URL", "ws://other:9000")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.CellWidth != 12 {
		t.Fatalf("expected env override 12, got %d", res.Config.CellWidth)
	}
	if res.Config.Logging.Level != "debug" {
		t.Fatalf("expected log level debug, got %q", res.Config.Logging.Level)
	}
	if res.Config.Feed.URL != "ws://other:9000" {
		t.Fatalf("expected feed url override, got %q", res.Config.Feed.URL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero cell width", func(c *Config) { c.CellWidth = 0 }, "cell_width"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"frame interval", func(c *Config) { c.FrameIntervalMS = 0 }, "frame_interval_ms"},
		{"feed url scheme", func(c *Config) { c.Feed.Enabled = true; c.Feed.URL = "http://x" }, "feed.url"},
		{"auth needs address", func(c *Config) { c.Auth.Enabled = true; c.Auth.SignerCommand = "sign" }, "auth.address"},
		{"auth needs signer", func(c *Config) { c.Auth.Enabled = true; c.Auth.Address = "0xabc" }, "auth.signer_command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestStatePath_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	got, err := cfg.StatePath()
	if err != nil {
		t.Fatalf("StatePath: %v", err)
	}
	if got != filepath.Join(home, ".config", "workbench", "state.json") {
		t.Fatalf("unexpected default state path %q", got)
	}

	cfg.StateFile = "~/desk/state.cbor"
	got, err = cfg.StatePath()
	if err != nil {
		t.Fatalf("StatePath: %v", err)
	}
	if got != filepath.Join(home, "desk", "state.cbor") {
		t.Fatalf("unexpected expanded state path %q", got)
	}
}

func TestMarshal_RoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IconColumns = 3
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, string(data))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load marshaled config: %v", err)
	}
	if res.Config.IconColumns != 3 {
		t.Fatalf("expected icon_columns 3, got %d", res.Config.IconColumns)
	}
}
