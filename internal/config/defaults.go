package config

const (
	defaultCacheDir           = "~/.local/share/citemap/cache"
	defaultLogDir             = "~/.local/share/citemap/logs"
	defaultResultsDir         = "~/citemap-results"
	defaultScholarBaseURL     = "https://scholar.archive.org/api/v1"
	defaultScholarTimeout     = 30
	defaultScholarMinDelay    = 1
	defaultScholarMaxDelay    = 5
	defaultScholarUserAgent   = "citemap/dev"
	defaultSaveInterval       = 1
	defaultMaxRetryPasses     = 3
	defaultScrapeWorkers      = 1
	defaultGeocodeBaseURL     = "https://nominatim.openstreetmap.org"
	defaultGeocodeCacheFile   = "geocode_cache.json"
	defaultGeocodeMinInterval = 1
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:   defaultCacheDir,
			LogDir:     defaultLogDir,
			ResultsDir: defaultResultsDir,
		},
		Scholar: Scholar{
			BaseURL:   defaultScholarBaseURL,
			Timeout:   defaultScholarTimeout,
			MinDelay:  defaultScholarMinDelay,
			MaxDelay:  defaultScholarMaxDelay,
			UserAgent: defaultScholarUserAgent,
		},
		Scrape: Scrape{
			SaveInterval:   defaultSaveInterval,
			MaxRetryPasses: defaultMaxRetryPasses,
			Workers:        defaultScrapeWorkers,
		},
		Geocode: Geocode{
			BaseURL:     defaultGeocodeBaseURL,
			CacheFile:   defaultGeocodeCacheFile,
			MinInterval: defaultGeocodeMinInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
