package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScholar()
	c.normalizeScrape()
	c.normalizeGeocode()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		c.Paths.ResultsDir = defaultResultsDir
	}
	if c.Paths.ResultsDir, err = expandPath(c.Paths.ResultsDir); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScholar() {
	c.Scholar.BaseURL = strings.TrimRight(strings.TrimSpace(c.Scholar.BaseURL), "/")
	c.Scholar.ScholarID = strings.TrimSpace(c.Scholar.ScholarID)
	if c.Scholar.APIKey == "" {
		c.Scholar.APIKey = strings.TrimSpace(os.Getenv("SCHOLAR_API_KEY"))
	}
	if c.Scholar.Timeout <= 0 {
		c.Scholar.Timeout = defaultScholarTimeout
	}
	if strings.TrimSpace(c.Scholar.UserAgent) == "" {
		c.Scholar.UserAgent = defaultScholarUserAgent
	}
}

func (c *Config) normalizeScrape() {
	if c.Scrape.SaveInterval <= 0 {
		c.Scrape.SaveInterval = defaultSaveInterval
	}
	if c.Scrape.Workers <= 0 {
		c.Scrape.Workers = defaultScrapeWorkers
	}
}

func (c *Config) normalizeGeocode() {
	c.Geocode.BaseURL = strings.TrimRight(strings.TrimSpace(c.Geocode.BaseURL), "/")
	if c.Geocode.BaseURL == "" {
		c.Geocode.BaseURL = defaultGeocodeBaseURL
	}
	if c.Geocode.MinInterval <= 0 {
		c.Geocode.MinInterval = defaultGeocodeMinInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
