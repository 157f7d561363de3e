package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Client fetches dataset snapshots from the FPL public API
type Client struct {
	httpClient *http.Client
	logger     *logrus.Logger
	baseURL    string
}

// NewClient creates a new FPL API client
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		baseURL: baseURL,
	}
}

// FetchBootstrap fetches the full bootstrap-static dataset
func (c *Client) FetchBootstrap(ctx context.Context) (json.RawMessage, error) {
	return c.fetch(ctx, "/bootstrap-static/")
}

// FetchFixtures fetches the full fixtures dataset
func (c *Client) FetchFixtures(ctx context.Context) (json.RawMessage, error) {
	return c.fetch(ctx, "/fixtures/")
}

// fetch performs a single GET of one dataset. Non-2xx responses are a hard
// failure for the attempt; retries and fallback are the coordinator's job.
func (c *Client) fetch(ctx context.Context, path string) (json.RawMessage, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fpl-data-service/1.0.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upstream returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("upstream returned invalid JSON from %s", url)
	}

	c.logger.WithFields(logrus.Fields{
		"component": "fpl_client",
		"path":      path,
		"bytes":     len(body),
		"duration":  time.Since(start),
	}).Debug("Fetched upstream dataset")

	return json.RawMessage(body), nil
}
