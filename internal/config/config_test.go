package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("STABLE_SAMPLES", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "")
	t.Setenv("AUDIT_DRIVER", "")
	t.Setenv("DEFAULT_CATEGORIES", "")
	t.Setenv("ALCHEMIST_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Fatalf("expected default poll interval, got %v", cfg.PollInterval)
	}
	if cfg.StableSamples != 2 {
		t.Fatalf("expected 2 stable samples, got %d", cfg.StableSamples)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("expected 3 retry attempts, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.AuditDriver != "sqlite3" {
		t.Fatalf("expected sqlite3 audit driver, got %q", cfg.AuditDriver)
	}
	if len(cfg.DefaultCategories) != 4 {
		t.Fatalf("expected 4 seed categories, got %v", cfg.DefaultCategories)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("WORKERS", "4")
	t.Setenv("DEFAULT_CATEGORIES", "Finance, Legal ,")
	t.Setenv("ALCHEMIST_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("expected poll override, got %v", cfg.PollInterval)
	}
	if cfg.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.Workers)
	}
	if len(cfg.DefaultCategories) != 2 || cfg.DefaultCategories[1] != "Legal" {
		t.Fatalf("unexpected categories: %v", cfg.DefaultCategories)
	}
}

func TestLoadAppliesYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alchemist.yaml")
	overlay := "drop_dir: /srv/drop\ncategories:\n  - Research\n  - Invoices\n"
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	t.Setenv("ALCHEMIST_CONFIG", path)
	t.Setenv("DROP_DIR", "")
	t.Setenv("DEFAULT_CATEGORIES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DropDir != "/srv/drop" {
		t.Fatalf("expected overlay drop dir, got %q", cfg.DropDir)
	}
	if len(cfg.DefaultCategories) != 2 || cfg.DefaultCategories[0] != "Research" {
		t.Fatalf("unexpected categories: %v", cfg.DefaultCategories)
	}
}

func TestLoadEnvWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alchemist.yaml")
	if err := os.WriteFile(path, []byte("drop_dir: /srv/drop\n"), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	t.Setenv("ALCHEMIST_CONFIG", path)
	t.Setenv("DROP_DIR", "/env/drop")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DropDir != "/env/drop" {
		t.Fatalf("env must win over file, got %q", cfg.DropDir)
	}
}
