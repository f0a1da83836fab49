package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"citemap/internal/services"
)

// Resolver locates affiliation strings. The export pipeline depends on
// this interface so tests can substitute a fake.
type Resolver interface {
	Locate(ctx context.Context, query string) (Location, error)
}

// Client queries a Nominatim-compatible search endpoint, consulting the
// cache first and pacing remote lookups by a minimum interval.
type Client struct {
	baseURL     string
	email       string
	userAgent   string
	httpClient  *http.Client
	minInterval time.Duration
	cache       *Cache

	mu   sync.Mutex
	next time.Time
}

// Option adjusts client construction.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache attaches a persistent result cache.
func WithCache(cache *Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithMinInterval sets the minimum spacing between remote lookups.
func WithMinInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval >= 0 {
			c.minInterval = interval
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// New creates a geocoding client. The email identifies the caller to the
// service as its usage policy asks.
func New(baseURL, email string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("geocode base URL must not be empty")
	}

	c := &Client{
		baseURL:     baseURL,
		email:       strings.TrimSpace(email),
		userAgent:   "citemap/1.0",
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		minInterval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Locate resolves a query to coordinates. Cache hits return immediately;
// misses wait out the pacing interval before hitting the remote service,
// and both found and not-found outcomes are cached.
func (c *Client) Locate(ctx context.Context, query string) (Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Location{}, services.Wrap(services.ErrValidation, "geocode", "locate", "query must not be empty", nil)
	}
	if c.cache != nil {
		if location, found := c.cache.Lookup(query); found {
			return location, nil
		}
	}

	if err := c.waitInterval(ctx); err != nil {
		return Location{}, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	if c.email != "" {
		params.Set("email", c.email)
	}
	endpoint := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Location{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return Location{}, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Location{}, services.Wrap(services.ErrTransient, "geocode", "locate",
			fmt.Sprintf("search returned %d (latency=%v)", resp.StatusCode, latency), nil)
	default:
		return Location{}, fmt.Errorf("geocode search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Location{}, fmt.Errorf("decode response: %w", err)
	}

	location := Location{Query: query, CachedAt: time.Now().UTC()}
	if len(results) > 0 {
		lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
		lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
		if latErr == nil && lonErr == nil {
			location.Found = true
			location.DisplayName = results[0].DisplayName
			location.Latitude = lat
			location.Longitude = lon
		}
	}

	if c.cache != nil {
		if err := c.cache.Store(location); err != nil {
			return location, err
		}
	}
	return location, nil
}

// waitInterval blocks until the next remote lookup slot, honoring context
// cancellation.
func (c *Client) waitInterval(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	wait := c.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	start := now.Add(wait)
	c.next = start.Add(c.minInterval)
	c.mu.Unlock()

	if wait == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
