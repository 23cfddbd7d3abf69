package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Capacity != 10 {
		t.Errorf("expected capacity 10, got %d", cfg.Capacity)
	}
	if cfg.MaxCharacters != 140 {
		t.Errorf("expected 140 characters, got %d", cfg.MaxCharacters)
	}
	if cfg.Messages.TooLong == "" || cfg.Messages.Unoriginal == "" || cfg.Messages.NoMatches == "" {
		t.Error("expected message table to be populated")
	}
	if cfg.Danbooru.Lenient {
		t.Error("strict external-failure posture must be the default")
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Capacity != 10 {
		t.Errorf("expected defaults, got capacity %d", cfg.Capacity)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lethe.yaml")
	yaml := `
secret: hushhush
max_characters: 280
messages:
  too_long: "Way too long!"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Secret != "hushhush" {
		t.Errorf("expected secret override, got %q", cfg.Secret)
	}
	if cfg.MaxCharacters != 280 {
		t.Errorf("expected 280, got %d", cfg.MaxCharacters)
	}
	if cfg.Messages.TooLong != "Way too long!" {
		t.Errorf("expected message override, got %q", cfg.Messages.TooLong)
	}
	// Untouched fields keep their defaults.
	if cfg.Capacity != 10 {
		t.Errorf("expected default capacity, got %d", cfg.Capacity)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LETHE_SECRET", "from-env")
	t.Setenv("LETHE_CAPACITY", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Secret != "from-env" {
		t.Errorf("expected env secret, got %q", cfg.Secret)
	}
	if cfg.Capacity != 5 {
		t.Errorf("expected env capacity 5, got %d", cfg.Capacity)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lethe.yaml")
	os.WriteFile(path, []byte("capacity: 0\n"), 0o644)

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for zero capacity")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lethe.yaml")
	os.WriteFile(path, []byte("secret: [unclosed\n"), 0o644)

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
