// CLAUDE:SUMMARY Search collaborator: Provider interface, news-API client with env-expanded key and bounded backoff retry.
// Package search defines the search collaborator and a JSON news-API client.
//
// The pipeline depends only on the Provider interface and the Hit shape;
// the concrete provider and its query semantics stay replaceable.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Hit is one raw search result.
type Hit struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Snippet     string  `json:"content"`
	PublishedAt string  `json:"published_date"`
	Score       float64 `json:"score"`
}

// Provider executes one news search scoped to a lookback window starting
// at since. Implementations may ignore since if the backend cannot filter.
type Provider interface {
	Search(ctx context.Context, query string, since time.Time) ([]Hit, error)
}

// Config configures the API client.
type Config struct {
	// Endpoint of the search API. Default: https://api.tavily.com/search.
	Endpoint string
	// APIKey for the provider. ${ENV_VAR} patterns are expanded.
	APIKey string
	// MaxResults per query. Default: 5.
	MaxResults int
	// Depth is the provider search depth. Default: "basic".
	Depth string
	// ExcludeDomains is forwarded to the provider as a server-side filter.
	// The collector applies its own blacklist regardless.
	ExcludeDomains []string
	// Timeout per HTTP call. Default: 30s.
	Timeout time.Duration
	// Retries is the number of attempts on transport errors, 429 and 5xx.
	// Default: 3.
	Retries int
}

func (c *Config) defaults() {
	if c.Endpoint == "" {
		c.Endpoint = "https://api.tavily.com/search"
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 5
	}
	if c.Depth == "" {
		c.Depth = "basic"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
}

// Client is a news-API Provider over plain HTTP JSON.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a Client. The HTTP client may be nil.
func NewClient(cfg Config, client *http.Client) *Client {
	cfg.defaults()
	cfg.APIKey = os.Expand(cfg.APIKey, os.Getenv)
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{config: cfg, client: client}
}

type searchRequest struct {
	Query          string   `json:"query"`
	Topic          string   `json:"topic"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	StartDate      string   `json:"start_date,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

type searchResponse struct {
	Results []Hit `json:"results"`
}

// Search issues one query. Transport errors, 429 and 5xx are retried with
// exponential backoff before the last error is returned; the caller then
// downgrades it to a soft failure for that entity.
func (c *Client) Search(ctx context.Context, query string, since time.Time) ([]Hit, error) {
	body := searchRequest{
		Query:          query,
		Topic:          "news",
		SearchDepth:    c.config.Depth,
		MaxResults:     c.config.MaxResults,
		ExcludeDomains: c.config.ExcludeDomains,
	}
	if !since.IsZero() {
		body.StartDate = since.UTC().Format("2006-01-02")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("search: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.config.Retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		hits, retryable, err := c.doSearch(ctx, payload)
		if err == nil {
			return hits, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, fmt.Errorf("search: %w", lastErr)
}

func (c *Client) doSearch(ctx context.Context, payload []byte) (hits []Hit, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("http %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("http %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false, fmt.Errorf("json decode: %w", err)
	}
	return parsed.Results, false, nil
}
