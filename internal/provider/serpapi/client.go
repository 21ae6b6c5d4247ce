// Package serpapi implements the flight and hotel providers on top of the
// SerpAPI search endpoint (google_flights and google_hotels engines).
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"

	"travel-planner/internal/config"
	"travel-planner/internal/metrics"
	"travel-planner/internal/provider"
)

const providerName = "SerpAPI"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *provider.RateLimiter
	maxRetries uint
}

func New(cfg config.SerpAPI) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		// retry.Attempts(0) means retry forever; zero config means one try.
		retries = 1
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    provider.NewRateLimiter(cfg.RateLimitInterval),
		maxRetries: retries,
	}, nil
}

func (c *Client) Name() string {
	return providerName
}

// apiError is an error reported by SerpAPI itself in the response body, as
// opposed to a transport or HTTP failure.
type apiError struct {
	Message string `json:"error"`
}

func (e *apiError) Error() string {
	return "serpapi: " + e.Message
}

// get performs one rate-limited, retried search call and decodes the
// response into dest. engine selects the upstream engine; params carries the
// engine-specific query values.
func (c *Client) get(ctx context.Context, engine string, params url.Values, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("engine", engine)
	params.Set("hl", "en")
	params.Set("gl", "us")
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + "?" + params.Encode()

	start := time.Now()
	defer func() {
		metrics.ProviderRequestDuration.WithLabelValues(engine).Observe(time.Since(start).Seconds())
	}()

	return retry.Do(
		func() error {
			return c.doOnce(ctx, reqURL, dest)
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) doOnce(ctx context.Context, reqURL string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", provider.ErrTemporary, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", provider.ErrTemporary, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", provider.ErrTemporary, resp.StatusCode)
	default:
		// Client errors carry a JSON error message worth surfacing.
		var apiErr apiError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Message != "" {
			return retry.Unrecoverable(&apiErr)
		}
		return retry.Unrecoverable(fmt.Errorf("serpapi: unexpected status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return retry.Unrecoverable(fmt.Errorf("serpapi: decode response: %w", err))
	}
	return nil
}

// IsTerminal reports whether err cannot be fixed by retrying the search
// (bad parameters, rejected key).
func IsTerminal(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr)
}
