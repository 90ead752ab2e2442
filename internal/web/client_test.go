package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func testOptions() Options {
	return Options{
		MaxAttempts: 5,
		BackoffBase: time.Millisecond,
		Headers:     map[string]string{"User-Agent": "Mozilla/5.0"},
	}
}

func TestGetJSON_RetriesTransientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	js, err := NewClient(testOptions()).GetJSON(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !js.Get("ok").Bool() {
		t.Errorf("unexpected body: %s", js.Raw)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestGetJSON_NonRetriableStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(testOptions()).GetJSON(context.Background(), srv.URL, nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1 (404 must not be retried)", got)
	}
}

func TestGetJSON_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	opts := testOptions()
	opts.MaxAttempts = 3
	_, err := NewClient(opts).GetJSON(context.Background(), srv.URL, nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestGetJSON_InvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(testOptions()).GetJSON(context.Background(), srv.URL, nil)
	if !errors.Is(err, ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got %v", err)
	}
}

func TestGetJSON_SendsHeadersAndParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "Mozilla/5.0" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.URL.Query().Get("searchType"); got != "buy" {
			t.Errorf("searchType = %q, want buy", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	params := url.Values{}
	params.Set("searchType", "buy")
	if _, err := NewClient(testOptions()).GetJSON(context.Background(), srv.URL, params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetJSON_InsecureFallback(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	// Self-signed certificate: the strict client must fail without retrying.
	opts := testOptions()
	_, err := NewClient(opts).GetJSON(context.Background(), srv.URL, nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork for untrusted certificate, got %v", err)
	}

	// With the fallback enabled, one extra unverified attempt succeeds.
	opts.AllowInsecureFallback = true
	js, err := NewClient(opts).GetJSON(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error with fallback: %v", err)
	}
	if !js.Get("ok").Bool() {
		t.Errorf("unexpected body: %s", js.Raw)
	}
}
