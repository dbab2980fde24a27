package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FABBRO_DIR", filepath.Join(t.TempDir(), ".fabbro"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel() != "warn" || cfg.StorageBackend() != "file" {
		t.Fatalf("unexpected defaults: level=%q backend=%q", cfg.LogLevel(), cfg.StorageBackend())
	}
	if cfg.RenderStyle() != RenderStyleAuto || cfg.RenderWidth() != 0 {
		t.Fatalf("unexpected render defaults: %q %d", cfg.RenderStyle(), cfg.RenderWidth())
	}
	if cfg.MaxInputBytes() != 10*1024*1024 {
		t.Fatalf("unexpected max input bytes: %d", cfg.MaxInputBytes())
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".fabbro")
	t.Setenv("FABBRO_DIR", dir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := []byte("[logging]\nlevel = \"debug\"\n\n[storage]\nbackend = \"BBOLT\"\n\n[render]\nstyle = \"plain\"\nwidth = 100\n\n[input]\nmax_bytes = 2048\n")
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel() != "debug" || cfg.StorageBackend() != "bbolt" {
		t.Fatalf("unexpected values: level=%q backend=%q", cfg.LogLevel(), cfg.StorageBackend())
	}
	if cfg.RenderStyle() != RenderStylePlain || cfg.RenderWidth() != 100 || cfg.MaxInputBytes() != 2048 {
		t.Fatalf("unexpected render/input values: %#v", cfg)
	}
}

func TestLoadRejectsInvalidTOML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".fabbro")
	t.Setenv("FABBRO_DIR", dir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[logging\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestAccessorsFallBack(t *testing.T) {
	cfg := Config{Render: RenderConfig{Style: "neon", Width: -5}}
	if cfg.RenderStyle() != RenderStyleAuto || cfg.RenderWidth() != 0 {
		t.Fatalf("unexpected fallbacks: %q %d", cfg.RenderStyle(), cfg.RenderWidth())
	}
	if cfg.LogLevel() != "warn" || cfg.StorageBackend() != "file" || cfg.MaxInputBytes() <= 0 {
		t.Fatalf("unexpected zero-value fallbacks")
	}
}
