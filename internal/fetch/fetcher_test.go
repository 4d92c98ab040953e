package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gapa64/async-web-monitoring/internal/config"
	"github.com/gapa64/async-web-monitoring/internal/domain/target"
)

func newTestFetcher(maxBody int64) *Fetcher {
	return New(config.HTTP{
		DefaultTimeout:  2 * time.Second,
		UserAgent:       "webmon-test",
		FollowRedirects: true,
		MaxBodyBytes:    maxBody,
	})
}

func TestFetchWellFormedResponse(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("welcome to Example Domain"))
	}))
	defer s.Close()

	f := newTestFetcher(0)
	out := f.Fetch(context.Background(), target.Target{URL: s.URL, Timeout: 2 * time.Second})

	if out.Err != nil || out.TimedOut {
		t.Fatalf("want well-formed outcome, got %+v", out)
	}
	if out.StatusCode != 200 {
		t.Fatalf("want status 200, got %d", out.StatusCode)
	}
	if !strings.Contains(string(out.Body), "Example Domain") {
		t.Fatalf("body not captured: %q", out.Body)
	}
	if out.Elapsed <= 0 {
		t.Fatalf("elapsed not recorded: %v", out.Elapsed)
	}
	if out.Start.IsZero() {
		t.Fatalf("start timestamp not recorded")
	}
}

func TestFetchAnyStatusIsWellFormed(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer s.Close()

	f := newTestFetcher(0)
	out := f.Fetch(context.Background(), target.Target{URL: s.URL, Timeout: 2 * time.Second})

	if out.Err != nil || out.TimedOut {
		t.Fatalf("404 must not be a transport failure: %+v", out)
	}
	if out.StatusCode != 404 {
		t.Fatalf("want status 404, got %d", out.StatusCode)
	}
}

func TestFetchTimeoutBoundsElapsed(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(200)
	}))
	defer s.Close()

	f := newTestFetcher(0)
	out := f.Fetch(context.Background(), target.Target{URL: s.URL, Timeout: 100 * time.Millisecond})

	if !out.TimedOut {
		t.Fatalf("want timeout, got %+v", out)
	}
	if out.Err != nil {
		t.Fatalf("timeout must not carry a transport error: %v", out.Err)
	}
	// Elapsed reflects the budget, not how long the server would have taken.
	if out.Elapsed > time.Second {
		t.Fatalf("elapsed %v exceeds the timeout boundary", out.Elapsed)
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := s.URL
	s.Close()

	f := newTestFetcher(0)
	out := f.Fetch(context.Background(), target.Target{URL: url, Timeout: 2 * time.Second})

	if out.TimedOut {
		t.Fatalf("refused connection classified as timeout: %+v", out)
	}
	if out.Err == nil {
		t.Fatalf("want transport error, got %+v", out)
	}
	if out.Reason != "connection-refused" {
		t.Fatalf("want connection-refused, got %q", out.Reason)
	}
}

func TestFetchBodyCapped(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer s.Close()

	f := newTestFetcher(64)
	out := f.Fetch(context.Background(), target.Target{URL: s.URL, Timeout: 2 * time.Second})

	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if len(out.Body) != 64 {
		t.Fatalf("want body capped at 64 bytes, got %d", len(out.Body))
	}
}

func TestFetchDefaultTimeoutApplies(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	f := New(config.HTTP{DefaultTimeout: 50 * time.Millisecond})
	out := f.Fetch(context.Background(), target.Target{URL: s.URL})

	if !out.TimedOut {
		t.Fatalf("default timeout not applied: %+v", out)
	}
}
