// Package fetch downloads the accounts PDF submitted with an analysis
// request. Transient upstream statuses are retried with exponential backoff;
// anything else fails fast so no LLM budget is spent on a dead link.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"financial_insights/pkg/core/retry"
)

const (
	DefaultTimeout    = 120 * time.Second
	DefaultMaxRetries = 3

	// maxErrorBody bounds how much of an upstream error body is kept for
	// diagnostics.
	maxErrorBody = 2048
)

// DownloadFailedError is a terminal HTTP failure (non-transient status).
type DownloadFailedError struct {
	Status int
	Body   string
}

func (e *DownloadFailedError) Error() string {
	return fmt.Sprintf("pdf download failed: HTTP %d: %s", e.Status, e.Body)
}

// DownloadTimeoutError reports exhausted retries on timeouts or transient
// statuses.
type DownloadTimeoutError struct {
	Attempts int
	After    time.Duration
}

func (e *DownloadTimeoutError) Error() string {
	return fmt.Sprintf("pdf download timed out after %s (%d attempts)", e.After, e.Attempts)
}

// NetworkError wraps a connection-level failure.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("pdf download network error: %v", e.Cause) }
func (e *NetworkError) Unwrap() error { return e.Cause }

// Fetcher downloads PDFs with a per-request timeout and bounded retries.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	policy  retry.Policy
}

func NewFetcher(timeout time.Duration, maxRetries int) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Fetcher{
		client:  &http.Client{},
		timeout: timeout,
		policy:  retry.Policy{MaxRetries: maxRetries, BaseDelay: 1 * time.Second},
	}
}

func transientStatus(code int) bool {
	return code == http.StatusBadGateway || code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout
}

// Fetch retrieves url and returns the body bytes together with the number of
// attempts made. 502/503/504 and network errors are retried; any other
// non-200 status fails immediately.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	var body []byte

	attempts, err := retry.Do(ctx, f.policy, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			return retry.Permanent(reqErr)
		}

		resp, doErr := f.client.Do(req)
		if doErr != nil {
			return &NetworkError{Cause: doErr}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			data, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return &NetworkError{Cause: readErr}
			}
			body = data
			return nil
		}

		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		httpErr := &DownloadFailedError{Status: resp.StatusCode, Body: string(excerpt)}
		if transientStatus(resp.StatusCode) {
			return httpErr
		}
		return retry.Permanent(httpErr)
	})

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, attempts, &DownloadTimeoutError{Attempts: attempts, After: time.Since(start)}
		}
		var netErr *NetworkError
		if errors.As(err, &netErr) && errors.Is(netErr.Cause, context.DeadlineExceeded) {
			return nil, attempts, &DownloadTimeoutError{Attempts: attempts, After: time.Since(start)}
		}
		return nil, attempts, err
	}
	return body, attempts, nil
}
