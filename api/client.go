package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client calls the sessiongate REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL, e.g. http://localhost:4000
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// CacheStats returns the session cache state
func (c *Client) CacheStats(ctx context.Context) (*CacheStats, error) {
	body, err := c.do(ctx, http.MethodGet, PathCacheStatsPath)
	if err != nil {
		return nil, err
	}

	var result CacheStats

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("can't parse response: %w", err)
	}

	return &result, nil
}

// DrainCache closes all idle sessions on the server
func (c *Client) DrainCache(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, PathCacheDrainPath)

	return err
}

func (c *Client) do(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't execute request: %w", err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("can't read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("response NOK, %s %s", resp.Status, errResp.Error)
		}

		return nil, fmt.Errorf("response NOK, %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return body, nil
}
