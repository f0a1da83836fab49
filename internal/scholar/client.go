package scholar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"citemap/internal/services"
)

// NoAuthorFound is the marker the upstream collector stores for citing
// authors it could not resolve to a profile. Entries carrying it are recorded
// as skipped, with the marker in both the name and affiliation fields.
const NoAuthorFound = "No_author_found"

// Author represents one author profile returned by the API.
type Author struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Affiliation  string   `json:"affiliation"`
	Organization string   `json:"organization"`
	Interests    []string `json:"interests"`
}

// AffiliationFor returns the affiliation string the given mode records, and
// whether the profile carries one at all. Conservative mode only trusts the
// verified organization; aggressive mode uses the self-reported affiliation.
func (a *Author) AffiliationFor(conservative bool) (string, bool) {
	if a == nil {
		return "", false
	}
	if conservative {
		org := strings.TrimSpace(a.Organization)
		return org, org != ""
	}
	affiliation := strings.TrimSpace(a.Affiliation)
	return affiliation, affiliation != ""
}

// Lookup defines the author operations the scrape engine needs.
type Lookup interface {
	AuthorByID(ctx context.Context, id string) (*Author, error)
}

// Client provides access to a Scholar-compatible author API.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

var _ Lookup = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIKey sets the API key sent with each request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(agent); trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a Scholar client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("scholar base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "citemap",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// AuthorByID fetches a single author profile.
func (c *Client) AuthorByID(ctx context.Context, id string) (*Author, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrValidation, "scholar", "author_by_id", "author id must not be empty", nil)
	}

	endpoint, err := url.Parse(c.baseURL + "/author/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("parse scholar url: %w", err)
	}
	if c.apiKey != "" {
		params := url.Values{}
		params.Set("api_key", c.apiKey)
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "scholar", "author_by_id",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "scholar", "author_by_id",
			fmt.Sprintf("author %s not found", id), nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, services.Wrap(services.ErrTransient, "scholar", "author_by_id",
			fmt.Sprintf("scholar returned %d (latency=%v)", resp.StatusCode, latency), nil)
	default:
		return nil, services.Wrap(services.ErrTransient, "scholar", "author_by_id",
			fmt.Sprintf("unexpected status %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload Author
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode scholar response: %w", err)
	}
	if payload.ID == "" {
		payload.ID = id
	}
	return &payload, nil
}
