package geocode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"citemap/internal/logging"
)

// Location is one geocoding result, cached by normalized query string.
// Found is false for queries the geocoder could not resolve; caching those
// keeps repeat exports from re-querying known-bad affiliations.
type Location struct {
	Query       string    `json:"query"`
	DisplayName string    `json:"display_name,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Found       bool      `json:"found"`
	CachedAt    time.Time `json:"cached_at"`
}

// Cache provides thread-safe access to the geocode cache file.
type Cache struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]Location
}

// NewCache creates a cache instance. With an empty path every operation is
// a no-op. The cache file is created lazily on first Store call.
func NewCache(path string, logger *slog.Logger) *Cache {
	logger = logging.NewComponentLogger(logger, "geocode")

	c := &Cache{
		path:    path,
		logger:  logger,
		entries: make(map[string]Location),
	}
	if path == "" {
		return c
	}
	if err := c.load(); err != nil {
		logger.Warn("failed to load geocode cache",
			logging.String(logging.FieldEventType, "geocode_cache_load_failed"),
			logging.Error(err))
	}
	return c
}

func cacheKey(query string) string {
	return cases.Fold().String(strings.Join(strings.Fields(query), " "))
}

// Lookup returns the cached location for the query if present.
func (c *Cache) Lookup(query string) (Location, bool) {
	key := cacheKey(query)
	if key == "" || c.path == "" {
		return Location{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	location, found := c.entries[key]
	return location, found
}

// Store adds or updates a location and persists the cache to disk.
func (c *Cache) Store(location Location) error {
	key := cacheKey(location.Query)
	if key == "" {
		return errors.New("geocode query cannot be empty")
	}
	if c.path == "" {
		return nil
	}
	if location.CachedAt.IsZero() {
		location.CachedAt = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = location
	if err := c.save(); err != nil {
		return fmt.Errorf("persist geocode cache: %w", err)
	}

	c.logger.Debug("cached geocode result",
		logging.String("query", location.Query),
		logging.Bool("found", location.Found))
	return nil
}

// Count returns the number of cached locations.
func (c *Cache) Count() int {
	if c.path == "" {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var locations []Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	c.entries = make(map[string]Location, len(locations))
	for _, location := range locations {
		if key := cacheKey(location.Query); key != "" {
			c.entries[key] = location
		}
	}

	c.logger.Debug("loaded geocode cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

// save writes the cache to disk atomically.
func (c *Cache) save() error {
	locations := make([]Location, 0, len(c.entries))
	for _, location := range c.entries {
		locations = append(locations, location)
	}
	sort.Slice(locations, func(i, j int) bool {
		return locations[i].Query < locations[j].Query
	})

	data, err := json.MarshalIndent(locations, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
