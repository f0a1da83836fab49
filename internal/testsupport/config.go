package testsupport

import (
	"path/filepath"
	"testing"

	"citemap/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ResultsDir = filepath.Join(base, "results")
	cfg.Scholar.BaseURL = "https://scholar.invalid"
	cfg.Scholar.MinDelay = 0
	cfg.Scholar.MaxDelay = 0

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithConservative enables conservative affiliation selection.
func WithConservative() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scholar.Conservative = true
	}
}

// WithWorkers sets the scrape worker count.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scrape.Workers = n
	}
}
