// Package cmdb provides a client for the CMDB host export API.
package cmdb

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"inventory-tool/internal/config"
)

// Client fetches the canonical hosts CSV export from the CMDB.
type Client struct {
	endpoint   string             // CMDB API endpoint
	exportPath string             // Path of the CSV export
	timeout    time.Duration      // Request timeout
	retry      config.RetryConfig // Retry configuration
	httpClient *resty.Client      // HTTP client
	logger     zerolog.Logger     // Logger
}

// NewClient creates a new CMDB export client.
func NewClient(cfg *config.CMDBConfig, logger zerolog.Logger) *Client {
	// Set default timeout if not specified
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	// Set default retry config if not specified
	retry := cfg.Retry
	if retry.MaxRetries == 0 && retry.BaseDelay == 0 {
		retry = config.RetryConfig{
			MaxRetries: 3,
			BaseDelay:  1 * time.Second,
		}
	}

	exportPath := cfg.ExportPath
	if exportPath == "" {
		exportPath = "/api/v1/hosts/export"
	}

	// Create resty client
	httpClient := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(timeout).
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.BaseDelay * 8). // Max wait time for exponential backoff
		AddRetryCondition(retryCondition)

	if cfg.Token != "" {
		httpClient.SetHeader("X-Auth-Token", cfg.Token)
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		exportPath: exportPath,
		timeout:    timeout,
		retry:      retry,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "cmdb-client").Logger(),
	}
}

// retryCondition determines whether a request should be retried.
// Only retry on timeout, 5xx errors, or connection failures.
// Do not retry on 4xx errors.
func retryCondition(resp *resty.Response, err error) bool {
	// Retry on error (timeout, connection failure, etc.)
	if err != nil {
		return true
	}

	// Retry on 5xx server errors
	if resp != nil && resp.StatusCode() >= 500 {
		return true
	}

	// Do not retry on 4xx client errors
	return false
}

// FetchHostsCSV retrieves the hosts CSV export. The payload is checked only
// for plausibility (non-empty, not an HTML error page); the caller performs
// the real CSV parse before the data replaces anything.
func (c *Client) FetchHostsCSV(ctx context.Context) ([]byte, error) {
	c.logger.Debug().Str("path", c.exportPath).Msg("fetching hosts export from CMDB")

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", "text/csv").
		Get(c.exportPath)

	if err != nil {
		c.logger.Error().Err(err).Msg("failed to fetch hosts export")
		return nil, fmt.Errorf("failed to fetch hosts export: %w", err)
	}

	// Check HTTP status code
	if resp.StatusCode() != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("body", string(resp.Body())).
			Msg("CMDB API returned non-200 status")
		return nil, fmt.Errorf("CMDB API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	body := resp.Body()
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		c.logger.Error().Msg("CMDB API returned empty export")
		return nil, fmt.Errorf("CMDB API returned empty export")
	}
	if trimmed[0] == '<' {
		c.logger.Error().Str("body", string(trimmed[:min(len(trimmed), 128)])).Msg("CMDB API returned non-CSV payload")
		return nil, fmt.Errorf("CMDB API returned non-CSV payload")
	}

	c.logger.Info().Int("bytes", len(body)).Msg("fetched hosts export successfully")
	return body, nil
}
