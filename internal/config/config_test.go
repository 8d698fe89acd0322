package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.MinGames != 10 {
		t.Errorf("MinGames = %d, want 10", cfg.MinGames)
	}
	if cfg.MinMoveCount != 4 {
		t.Errorf("MinMoveCount = %d, want 4", cfg.MinMoveCount)
	}
	if cfg.Engine.Path != "stockfish" {
		t.Errorf("Engine.Path = %q", cfg.Engine.Path)
	}
	if cfg.Engine.PoolSize != 4 || cfg.Engine.Workers != 4 {
		t.Errorf("pool sizing = (%d, %d), want (4, 4)", cfg.Engine.PoolSize, cfg.Engine.Workers)
	}
	if cfg.Engine.CallTimeout != 30*time.Second {
		t.Errorf("CallTimeout = %v", cfg.Engine.CallTimeout)
	}
	if cfg.Caches.Eval != 10000 {
		t.Errorf("Caches.Eval = %d", cfg.Caches.Eval)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad(t *testing.T) {
	yml := `
ecoDir: /srv/eco
minGames: 25
ratingMin: 1800
engine:
  path: /usr/bin/stockfish
  depth: 14
  poolSize: 2
caches:
  eval: 500
logLevel: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ECODir != "/srv/eco" {
		t.Errorf("ECODir = %q", cfg.ECODir)
	}
	if cfg.MinGames != 25 {
		t.Errorf("MinGames = %d, want 25", cfg.MinGames)
	}
	if cfg.RatingMin != 1800 {
		t.Errorf("RatingMin = %d, want 1800", cfg.RatingMin)
	}
	if cfg.Engine.Depth != 14 {
		t.Errorf("Engine.Depth = %d, want 14", cfg.Engine.Depth)
	}
	// Workers follows the explicit pool size.
	if cfg.Engine.Workers != 2 {
		t.Errorf("Engine.Workers = %d, want 2", cfg.Engine.Workers)
	}
	if cfg.Caches.Eval != 500 {
		t.Errorf("Caches.Eval = %d, want 500", cfg.Caches.Eval)
	}
	// Untouched knobs keep their defaults.
	if cfg.MinMoveCount != 4 {
		t.Errorf("MinMoveCount = %d, want 4", cfg.MinMoveCount)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("minGames: [not an int"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
