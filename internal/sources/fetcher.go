package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rfpscout/internal/config"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

const maxBodyBytes = 4 << 20 // 4 MiB per response

// Fetcher performs HTTP requests for the adapters with config-driven
// retry logic and a browser fingerprint so state procurement portals
// don't reject the scanner with 403s.
type Fetcher struct {
	client *http.Client
	retry  *config.Retry
}

// NewFetcher creates a fetcher with the given retry policy.
func NewFetcher(retry *config.Retry) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: retry.GetTimeout(),
		},
		retry: retry,
	}
}

// Get performs a GET request with optional query parameters and extra
// headers, retrying per policy.
func (f *Fetcher) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) ([]byte, error) {
	return f.do(ctx, func() (*http.Request, error) {
		target := rawURL
		if len(params) > 0 {
			target = rawURL + "?" + params.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			return nil, err
		}

		applyHeaders(req, headers)

		return req, nil
	})
}

// GetJSON performs a GET request and unmarshals the JSON response into out.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, out any) error {
	body, err := f.Get(ctx, rawURL, params, headers)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}

// PostJSON performs a POST with a JSON body and unmarshals the JSON
// response into out.
func (f *Fetcher) PostJSON(ctx context.Context, rawURL string, headers map[string]string, payload any, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request payload: %w", err)
	}

	body, err := f.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(encoded))
		if err != nil {
			return nil, err
		}

		req.Header.Set("Content-Type", "application/json")
		applyHeaders(req, headers)

		return req, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}

// PostForm performs a POST with URL-encoded form data and returns the
// raw response body.
func (f *Fetcher) PostForm(ctx context.Context, rawURL string, headers map[string]string, form url.Values) ([]byte, error) {
	encoded := form.Encode()

	return f.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}

		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		applyHeaders(req, headers)

		return req, nil
	})
}

// do runs the request with retries. Transport errors and retryable
// status codes (408/429/503/504) are retried with exponential backoff;
// any other non-200 status fails immediately.
func (f *Fetcher) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, f.retry.GetRetryDelay(attempt)); err != nil {
				return nil, err
			}
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, f.retry.MaxAttempts, err)

			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)

			if !isRetryableStatus(resp.StatusCode) {
				return nil, lastErr
			}

			continue
		}

		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", readErr)

			continue
		}

		return body, nil
	}

	return nil, lastErr
}

func applyHeaders(req *http.Request, headers map[string]string) {
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")
	req.Header.Set("Accept",
		"text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	for key, value := range headers {
		req.Header.Set(key, value)
	}
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	}

	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
