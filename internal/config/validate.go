package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScholar(); err != nil {
		return err
	}
	if err := c.validateScrape(); err != nil {
		return err
	}
	if err := c.validateGeocode(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateScholar() error {
	if c.Scholar.BaseURL == "" {
		return errors.New("scholar.base_url must be set")
	}
	if c.Scholar.MinDelay < 0 || c.Scholar.MaxDelay < 0 {
		return errors.New("scholar delays must not be negative")
	}
	if c.Scholar.MinDelay > c.Scholar.MaxDelay {
		return fmt.Errorf("scholar.min_delay (%d) must not exceed scholar.max_delay (%d)",
			c.Scholar.MinDelay, c.Scholar.MaxDelay)
	}
	if c.Scholar.Timeout <= 0 {
		return errors.New("scholar.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateScrape() error {
	if err := ensurePositiveMap(map[string]int{
		"scrape.save_interval": c.Scrape.SaveInterval,
		"scrape.workers":       c.Scrape.Workers,
	}); err != nil {
		return err
	}
	if c.Scrape.MaxRetryPasses < 0 {
		return errors.New("scrape.max_retry_passes must not be negative")
	}
	return nil
}

func (c *Config) validateGeocode() error {
	if !c.Geocode.Enabled {
		return nil
	}
	if c.Geocode.BaseURL == "" {
		return errors.New("geocode.base_url must be set when geocode.enabled is true")
	}
	if c.Geocode.MinInterval <= 0 {
		return errors.New("geocode.min_interval must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
