package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"citemap/internal/config"
)

func TestLoadDefaultsExpandPathsAndEnvKey(t *testing.T) {
	t.Setenv("SCHOLAR_API_KEY", "env-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCache := filepath.Join(tempHome, ".local", "share", "citemap", "cache")
	if cfg.Paths.CacheDir != wantCache {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, wantCache)
	}
	if cfg.Scholar.APIKey != "env-key" {
		t.Fatalf("expected Scholar key from env, got %q", cfg.Scholar.APIKey)
	}
	if cfg.Scholar.BaseURL != config.Default().Scholar.BaseURL {
		t.Fatalf("unexpected scholar base url: %q", cfg.Scholar.BaseURL)
	}
	if cfg.Scrape.MaxRetryPasses != 3 {
		t.Fatalf("unexpected max retry passes: %d", cfg.Scrape.MaxRetryPasses)
	}
	if cfg.Geocode.Enabled {
		t.Fatal("expected geocoding disabled by default")
	}
	if cfg.GeocodeCachePath() != "" {
		t.Fatal("expected empty geocode cache path while disabled")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.LogDir, cfg.Paths.ResultsDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("expected directory %s to exist: %v", dir, err)
		}
	}
}

func TestLoadParsesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`cache_dir = "` + filepath.Join(dir, "cache") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`results_dir = "` + filepath.Join(dir, "results") + `"`,
		"",
		"[scholar]",
		`base_url = "https://scholar.example.com/"`,
		`scholar_id = "HNw5OdcAAAAJ"`,
		"conservative = true",
		"min_delay = 2",
		"max_delay = 4",
		"",
		"[scrape]",
		"workers = 3",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be used, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Scholar.BaseURL != "https://scholar.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Scholar.BaseURL)
	}
	if !cfg.Scholar.Conservative {
		t.Fatal("expected conservative mode enabled")
	}
	if cfg.Scrape.Workers != 3 {
		t.Fatalf("unexpected workers: %d", cfg.Scrape.Workers)
	}
	if cfg.Scrape.SaveInterval != 1 {
		t.Fatalf("expected save interval default, got %d", cfg.Scrape.SaveInterval)
	}
}

func TestValidateRejectsInvertedDelays(t *testing.T) {
	cfg := config.Default()
	cfg.Scholar.MinDelay = 10
	cfg.Scholar.MaxDelay = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when min_delay exceeds max_delay")
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

func TestValidateRequiresGeocodeURLWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Geocode.Enabled = true
	cfg.Geocode.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when geocoding enabled without base url")
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected sample log format: %q", cfg.Logging.Format)
	}
}
