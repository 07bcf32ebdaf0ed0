// Package search queries a Programmable Search (Custom Search JSON API)
// engine.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/steam-tracker/internal/config"
	"github.com/steam-tracker/internal/domain"
)

// MaxResults is the most results a single query may return.
const MaxResults = 10

// Result is a single search hit
type Result struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Client is a web search client
type Client struct {
	httpClient *http.Client
	searchURL  string
	apiKey     string
	engineID   string
	logger     *slog.Logger
}

// NewClient creates a new search client
func NewClient(cfg *config.GuideConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		searchURL:  cfg.SearchURL,
		apiKey:     cfg.APIKey,
		engineID:   cfg.EngineID,
		logger:     logger,
	}
}

// Search runs query once and returns at most limit results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if c.apiKey == "" || c.engineID == "" {
		return nil, domain.ErrSearchNotConfigured
	}
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("search request: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Items []Result `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	if len(body.Items) > limit {
		body.Items = body.Items[:limit]
	}
	c.logger.Debug("search completed", "results", len(body.Items))
	return body.Items, nil
}
