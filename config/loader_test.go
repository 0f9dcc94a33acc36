package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TickRate != DefaultConfig().TickRate {
		t.Fatalf("tick rate = %v, want default %v", cfg.TickRate, DefaultConfig().TickRate)
	}
	if cfg.BaseURL != DefaultConfig().BaseURL {
		t.Fatalf("base url = %q, want default", cfg.BaseURL)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cricket.yaml")
	content := "base_url: http://example.test\ntick_rate: 5s\nparallelism: 2\nmatch_id: 33238\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CRICKET_PARALLELISM", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://example.test" {
		t.Fatalf("base url = %q, want file value", cfg.BaseURL)
	}
	if cfg.TickRate != 5*time.Second {
		t.Fatalf("tick rate = %v, want 5s", cfg.TickRate)
	}
	if cfg.MatchID != 33238 {
		t.Fatalf("match id = %d, want 33238", cfg.MatchID)
	}
	if cfg.Parallelism != 8 {
		t.Fatalf("parallelism = %d, want env override 8", cfg.Parallelism)
	}
	if cfg.UserAgent == "" {
		t.Fatalf("user agent should keep its default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
