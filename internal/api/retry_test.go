package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func retryServer(t *testing.T, failures int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if int(n) <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"uptime_seconds": 1}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestHealthWithRetry_StopsOnFirstSuccess(t *testing.T) {
	srv, calls := retryServer(t, 2)

	c := NewClient(srv.URL, "")
	_, ok := c.HealthWithRetry(context.Background(), 5, time.Millisecond)
	if !ok {
		t.Fatal("expected success after retries")
	}
	if got := atomic.LoadInt32(calls); got != 3 {
		t.Fatalf("made %d attempts, want 3", got)
	}
}

func TestHealthWithRetry_NeverExceedsAttempts(t *testing.T) {
	srv, calls := retryServer(t, 100)

	c := NewClient(srv.URL, "")
	if _, ok := c.HealthWithRetry(context.Background(), 3, time.Millisecond); ok {
		t.Fatal("expected failure")
	}
	if got := atomic.LoadInt32(calls); got != 3 {
		t.Fatalf("made %d attempts, want 3", got)
	}
}

func TestHealthWithRetry_SingleAttempt(t *testing.T) {
	srv, calls := retryServer(t, 100)

	c := NewClient(srv.URL, "")
	if _, ok := c.HealthWithRetry(context.Background(), 1, time.Second); ok {
		t.Fatal("expected failure")
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("made %d attempts, want 1", got)
	}
}

func TestHealthWithRetry_ContextCancelled(t *testing.T) {
	srv, calls := retryServer(t, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "")
	if _, ok := c.HealthWithRetry(ctx, 5, 10*time.Second); ok {
		t.Fatal("expected failure")
	}
	if got := atomic.LoadInt32(calls); got > 1 {
		t.Fatalf("made %d attempts, want at most 1 before bailing", got)
	}
}
