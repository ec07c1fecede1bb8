package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Searcher defines the catalog operations used by the scan workflow.
type Searcher interface {
	SearchReleases(ctx context.Context, query SearchQuery) (*SearchResponse, error)
	GetRelease(ctx context.Context, releaseID int64) (*Release, error)
	PriceStats(ctx context.Context, releaseID int64) (*PriceStats, error)
}

// Client provides access to the Discogs API for release search and pricing.
type Client struct {
	token      string
	baseURL    string
	currency   string
	userAgent  string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

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

// WithCurrency sets the currency used for price statistics.
func WithCurrency(currency string) Option {
	return func(c *Client) {
		currency = strings.ToUpper(strings.TrimSpace(currency))
		if currency != "" {
			c.currency = currency
		}
	}
}

// WithUserAgent sets the User-Agent header Discogs requires on all requests.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		agent = strings.TrimSpace(agent)
		if agent != "" {
			c.userAgent = agent
		}
	}
}

// New creates a Discogs client.
func New(token, baseURL string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("discogs token required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("discogs base url required")
	}
	client := &Client{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		currency:   "USD",
		userAgent:  "runout/dev",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchReleases queries the catalog database for releases matching the
// supplied identifiers. At least one query field must be set.
func (c *Client) SearchReleases(ctx context.Context, query SearchQuery) (*SearchResponse, error) {
	if query.isEmpty() {
		return nil, errors.New("search query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/database/search")
	if err != nil {
		return nil, fmt.Errorf("parse discogs url: %w", err)
	}
	params := url.Values{}
	params.Set("token", c.token)
	params.Set("type", "release")
	if query.CatalogNumber != "" {
		params.Set("catno", query.CatalogNumber)
	}
	if query.Barcode != "" {
		params.Set("barcode", query.Barcode)
	}
	if query.Artist != "" {
		params.Set("artist", query.Artist)
	}
	if query.Title != "" {
		params.Set("release_title", query.Title)
	}
	if query.Format != "" {
		params.Set("format", query.Format)
	}
	if query.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(query.PerPage))
	}
	endpoint.RawQuery = params.Encode()

	var payload SearchResponse
	if err := c.get(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetRelease fetches full details for a single release.
func (c *Client) GetRelease(ctx context.Context, releaseID int64) (*Release, error) {
	if releaseID <= 0 {
		return nil, fmt.Errorf("invalid release id %d", releaseID)
	}
	endpoint := fmt.Sprintf("%s/releases/%d?token=%s", c.baseURL, releaseID, url.QueryEscape(c.token))
	var payload Release
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// PriceStats fetches marketplace price statistics for a release. Pricing is
// purely additive: it never influences match state.
func (c *Client) PriceStats(ctx context.Context, releaseID int64) (*PriceStats, error) {
	if releaseID <= 0 {
		return nil, fmt.Errorf("invalid release id %d", releaseID)
	}
	endpoint := fmt.Sprintf("%s/marketplace/stats/%d?token=%s&curr_abbr=%s",
		c.baseURL, releaseID, url.QueryEscape(c.token), url.QueryEscape(c.currency))
	var payload PriceStats
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discogs returned %d (latency=%v)", resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode discogs response: %w", err)
	}
	return nil
}
