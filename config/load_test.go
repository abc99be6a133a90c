package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noEnv(string) string { return "" }

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Log {
		t.Error("expected log to default to false")
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("expected default debounce 200ms, got %s", cfg.Watch.Debounce)
	}
	if !cfg.Web.Compression.Enabled || cfg.Web.Compression.Level != "default" {
		t.Errorf("unexpected compression defaults %+v", cfg.Web.Compression)
	}
	if cfg.Web.Logging.Format != "text" {
		t.Errorf("expected default log format 'text', got %q", cfg.Web.Logging.Format)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "TEST_FORMAT":
			return "json"
		case "TEST_SIZE":
			return "2048"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple substitution", "format: ${TEST_FORMAT}", "format: json"},
		{"with default (env set)", "format: ${TEST_FORMAT:-text}", "format: json"},
		{"with default (env not set)", "format: ${UNSET_VAR:-text}", "format: text"},
		{"unset without default", "format: ${UNSET_VAR}", "format: "},
		{"multiple substitutions", "x: ${TEST_FORMAT}/${TEST_SIZE}", "x: json/2048"},
		{"no substitution needed", "static: value", "static: value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(interpolateEnv([]byte(tt.input), getenv))
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
log: true
history_file: .history
watch:
  debounce: 50ms
web:
  compression:
    level: best
    min_size: ${MIN_SIZE:-512}
  logging:
    format: json
  markdown: false
db:
  max_open_conns: 4
`)

	cfg, resolved, err := LoadWithPath(path, noEnv)
	if err != nil {
		t.Fatalf("LoadWithPath: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if !cfg.Log {
		t.Error("expected log true")
	}
	if cfg.HistoryFile != filepath.Join(dir, ".history") {
		t.Errorf("history_file should resolve against the config dir, got %q", cfg.HistoryFile)
	}
	if cfg.Watch.Debounce != 50*time.Millisecond {
		t.Errorf("debounce = %s", cfg.Watch.Debounce)
	}
	if cfg.Web.Compression.Level != "best" || cfg.Web.Compression.MinSize != 512 {
		t.Errorf("compression = %+v", cfg.Web.Compression)
	}
	if !cfg.Web.Compression.Enabled {
		t.Error("unset keys should keep their defaults")
	}
	if cfg.Web.Logging.Format != "json" || cfg.Web.Markdown {
		t.Errorf("web = %+v", cfg.Web)
	}
	if cfg.DB.MaxOpenConns != 4 {
		t.Errorf("max_open_conns = %d", cfg.DB.MaxOpenConns)
	}
	if cfg.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, dir)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml"), noEnv); err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected not-found error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("web: [unclosed"), 0o644)
	if _, err := Load(bad, noEnv); err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("expected parse error, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("web:\n  logging:\n    format: xml\n"), 0o644)
	if _, err := Load(invalid, noEnv); err == nil || !strings.Contains(err.Error(), "invalid log format: xml") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"bad compression level", func(c *Config) { c.Web.Compression.Level = "max" }, "invalid compression level: max"},
		{"negative min size", func(c *Config) { c.Web.Compression.MinSize = -1 }, "invalid compression min_size"},
		{"bad log format", func(c *Config) { c.Web.Logging.Format = "xml" }, "invalid log format"},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, "invalid watch debounce"},
		{"negative pool", func(c *Config) { c.DB.MaxOpenConns = -2 }, "invalid db max_open_conns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	envPath := writeConfig(t, dir, "log: true\n")

	getenv := func(key string) string {
		if key == "MINQ_CONFIG" {
			return envPath
		}
		return ""
	}
	path, err := resolveConfigPath("", getenv)
	if err != nil || path != envPath {
		t.Errorf("MINQ_CONFIG: got %q, %v", path, err)
	}

	missing := func(key string) string {
		if key == "MINQ_CONFIG" {
			return filepath.Join(dir, "nope.yaml")
		}
		return ""
	}
	if _, err := resolveConfigPath("", missing); err == nil {
		t.Error("expected error for missing MINQ_CONFIG file")
	}

	explicit := filepath.Join(dir, "other.yaml")
	os.WriteFile(explicit, []byte("log: false\n"), 0o644)
	path, err = resolveConfigPath(explicit, getenv)
	if err != nil || path != explicit {
		t.Errorf("explicit path should win, got %q, %v", path, err)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := LoadWithPath("", noEnv)
	if err != nil {
		t.Fatalf("LoadWithPath: %v", err)
	}
	if path != "" {
		t.Errorf("expected no config path, got %q", path)
	}
	if cfg.Web.Logging.Format != "text" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}
