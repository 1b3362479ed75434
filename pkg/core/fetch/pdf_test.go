package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testFetcher(maxRetries int) *Fetcher {
	f := NewFetcher(5*time.Second, maxRetries)
	// Shrink the backoff so retry tests finish quickly.
	f.policy.BaseDelay = time.Millisecond
	return f
}

func TestFetch_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	body, attempts, err := testFetcher(3).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 4 {
		t.Errorf("expected maxRetries+1 = 4 attempts, got %d", attempts)
	}
	if string(body) != "%PDF-1.4 fake" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestFetch_ExhaustedTransientFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, attempts, err := testFetcher(2).Fetch(context.Background(), srv.URL)
	var failed *DownloadFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected DownloadFailedError, got %v", err)
	}
	if failed.Status != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", failed.Status)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestFetch_ClientErrorDoesNotRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such document", http.StatusNotFound)
	}))
	defer srv.Close()

	_, attempts, err := testFetcher(3).Fetch(context.Background(), srv.URL)
	var failed *DownloadFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected DownloadFailedError, got %v", err)
	}
	if failed.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", failed.Status)
	}
	if attempts != 1 || atomic.LoadInt32(&calls) != 1 {
		t.Errorf("4xx must fail without retry, attempts=%d calls=%d", attempts, calls)
	}
}

func TestFetch_TimeoutSurfacesDownloadTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("too late"))
	}))
	defer srv.Close()

	f := NewFetcher(30*time.Millisecond, 1)
	f.policy.BaseDelay = time.Millisecond
	_, _, err := f.Fetch(context.Background(), srv.URL)
	var timeout *DownloadTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected DownloadTimeoutError, got %v", err)
	}
}

func TestFetch_ConnectionRefusedIsNetworkError(t *testing.T) {
	f := testFetcher(0)
	_, _, err := f.Fetch(context.Background(), "http://127.0.0.1:1/never.pdf")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}
