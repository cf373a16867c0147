package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kjstillabower/jma-weather-collector/internal/observability"
)

// Fetcher retrieves a document body by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ErrFetchFailure covers every way a GET can fail to produce a body: network errors,
// timeouts and non-200 responses. Callers only branch on this sentinel.
var ErrFetchFailure = errors.New("fetch failed")

// StatusError records the non-200 status behind an ErrFetchFailure.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

const defaultUserAgent = "jma-weather-collector/1.0"

// JMAClient fetches JMA bosai documents over HTTP.
type JMAClient struct {
	timeout   time.Duration
	userAgent string
	client    *http.Client
}

// NewJMAClient returns a client whose requests are bounded by timeout. There is no retry.
func NewJMAClient(timeout time.Duration, userAgent string) *JMAClient {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &JMAClient{
		timeout:   timeout,
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch performs a GET and returns the body on HTTP 200.
func (c *JMAClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	resource := ResourceLabel(url)
	start := time.Now()

	body, status, err := c.get(ctx, url)
	observability.UpstreamFetchDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	observability.UpstreamFetchesTotal.WithLabelValues(resource, status).Inc()
	if err != nil {
		observability.UpstreamFetchErrorsTotal.WithLabelValues(string(CategorizeError(err))).Inc()
		return nil, err
	}
	return body, nil
}

func (c *JMAClient) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "error", fmt.Errorf("%w: build request: %v", ErrFetchFailure, err)
	}
	req.Header.Set("Accept", "application/json, text/plain")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, "error", fmt.Errorf("%w: request timeout: %w", ErrFetchFailure, err)
		}
		return nil, "error", fmt.Errorf("%w: http request failed: %w", ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, status, fmt.Errorf("%w: %s: %w", ErrFetchFailure, url, &StatusError{StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "error", fmt.Errorf("%w: read response body: %w", ErrFetchFailure, err)
	}
	return body, status, nil
}

// ResourceLabel maps a JMA URL to a low-cardinality metric label.
func ResourceLabel(url string) string {
	switch {
	case strings.HasSuffix(url, "/latest_time.txt"):
		return "latest_time"
	case strings.Contains(url, "/amedas/data/map/"):
		return "snapshot"
	case strings.Contains(url, "/forecast/data/forecast/"):
		return "forecast"
	default:
		return "other"
	}
}

func statusLabel(statusCode int) string {
	if statusCode == http.StatusOK {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
