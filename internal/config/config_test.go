package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	if cfg.Form.URL == "" {
		t.Error("default form.url is empty")
	}
	if len(cfg.Scan.Alphabet) != 26 {
		t.Errorf("default alphabet has %d letters, want 26", len(cfg.Scan.Alphabet))
	}
	if cfg.Suite.Trials <= 0 {
		t.Errorf("default trials = %d", cfg.Suite.Trials)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Sqlite.Prefix != "formprobe_" {
		t.Errorf("Sqlite.Prefix = %q", cfg.Sqlite.Prefix)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("suite:\n  trials: 25\n  seed: 42\nlog:\n  level: warn\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Suite.Trials != 25 {
		t.Errorf("Suite.Trials = %d, want 25", cfg.Suite.Trials)
	}
	if cfg.Suite.Seed != 42 {
		t.Errorf("Suite.Seed = %d, want 42", cfg.Suite.Seed)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Form.URL == "" {
		t.Error("Form.URL lost its default")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("suite:\n  trials: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted trials: 0")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() accepted a missing file")
	}
}
