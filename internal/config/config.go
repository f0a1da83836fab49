package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir   string `toml:"cache_dir"`
	LogDir     string `toml:"log_dir"`
	ResultsDir string `toml:"results_dir"`
}

// Scholar contains configuration for the Scholar author lookup API.
type Scholar struct {
	BaseURL      string `toml:"base_url"`
	APIKey       string `toml:"api_key"`
	ScholarID    string `toml:"scholar_id"`
	Conservative bool   `toml:"conservative"`
	Timeout      int    `toml:"request_timeout"`
	MinDelay     int    `toml:"min_delay"`
	MaxDelay     int    `toml:"max_delay"`
	UserAgent    string `toml:"user_agent"`
}

// Scrape contains configuration for the incremental scrape engine.
type Scrape struct {
	SaveInterval   int `toml:"save_interval"`
	MaxRetryPasses int `toml:"max_retry_passes"`
	Workers        int `toml:"workers"`
}

// Geocode contains configuration for affiliation geocoding.
type Geocode struct {
	Enabled     bool   `toml:"enabled"`
	BaseURL     string `toml:"base_url"`
	Email       string `toml:"email"`
	CacheFile   string `toml:"cache_file"`
	MinInterval int    `toml:"min_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for citemap.
//
// Configuration sections by subsystem:
//   - Paths: cache, log, and results directories
//   - Scholar: author lookup endpoint, credentials, and request pacing
//   - Scrape: retry passes, worker count, progress reporting cadence
//   - Geocode: affiliation geocoding endpoint and local cache
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Scholar Scholar `toml:"scholar"`
	Scrape  Scrape  `toml:"scrape"`
	Geocode Geocode `toml:"geocode"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/citemap/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("citemap.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for store and report output.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir, c.Paths.ResultsDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// GeocodeCachePath returns the absolute path of the geocode cache file, or
// empty when geocoding is disabled.
func (c *Config) GeocodeCachePath() string {
	if !c.Geocode.Enabled {
		return ""
	}
	name := strings.TrimSpace(c.Geocode.CacheFile)
	if name == "" {
		name = defaultGeocodeCacheFile
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.CacheDir, name)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
