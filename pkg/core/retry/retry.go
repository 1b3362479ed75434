// Package retry provides the two bounded-wait combinators shared by the
// pipeline: exponential-backoff retry for transient failures, and
// fixed-interval polling for asynchronous readiness checks.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy controls Do. Backoff doubles each attempt starting at BaseDelay.
type Policy struct {
	MaxRetries int           // retries after the first attempt
	BaseDelay  time.Duration // delay before the first retry
}

// DefaultPolicy matches the PDF download contract: 3 retries, 1s/2s/4s backoff.
var DefaultPolicy = Policy{MaxRetries: 3, BaseDelay: 1 * time.Second}

// permanentError marks an error as non-retryable.
type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so Do stops immediately instead of retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds, returns a Permanent error, the context is
// cancelled, or MaxRetries is exhausted. It returns the number of attempts
// made together with the last error.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) (int, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := policy.BaseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return attempts, ctx.Err()
			}
		}

		attempts++
		lastErr = fn(ctx)
		if lastErr == nil {
			return attempts, nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return attempts, perm.err
		}
		if ctx.Err() != nil {
			return attempts, lastErr
		}
	}

	return attempts, lastErr
}

// ErrPollTimeout is returned by PollUntil when the condition never became true
// within the allotted duration.
var ErrPollTimeout = errors.New("poll timed out")

// PollUntil calls fn at a fixed interval until it reports done, fn returns an
// error, the context is cancelled, or timeout elapses. The first call happens
// immediately.
func PollUntil(ctx context.Context, interval, timeout time.Duration, fn func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)

	for {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if time.Now().Add(interval).After(deadline) {
			return fmt.Errorf("%w after %s", ErrPollTimeout, timeout)
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
