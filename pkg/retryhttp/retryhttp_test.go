package retryhttp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSleep records backoff delays without actually sleeping.
func fakeSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestAlwaysRetryableExhaustsAttempts(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var delays []time.Duration
	c := New(srv.URL, Config{MaxRetries: 3, RetryDelay: time.Second})
	c.sleep = fakeSleep(&delays)

	resp, err := c.Get(context.Background(), "/", nil)
	if err != nil {
		t.Fatalf("expected final response, got error: %v", err)
	}
	defer resp.Body.Close()

	if got := atomic.LoadInt32(&attempts); got != 4 {
		t.Fatalf("expected 4 attempts (maxRetries+1), got %d", got)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected %d backoff waits, got %d", len(want), len(delays))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("backoff %d: expected %v, got %v", i, want[i], delays[i])
		}
	}
}

func TestNonRetryableStatusSingleAttempt(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var delays []time.Duration
	c := New(srv.URL, Config{MaxRetries: 3, RetryDelay: time.Second})
	c.sleep = fakeSleep(&delays)

	resp, err := c.Get(context.Background(), "/missing", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("expected exactly 1 attempt for 404, got %d", got)
	}
	if len(delays) != 0 {
		t.Fatalf("expected no backoff for 404, got %d waits", len(delays))
	}
}

func TestCancelledRequestNotRetried(t *testing.T) {
	var attempts int32
	started := make(chan struct{}, 8)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		started <- struct{}{}
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, Config{MaxRetries: 5, RetryDelay: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	if _, err := c.Get(ctx, "/", nil); err == nil {
		t.Fatal("expected error from cancelled request")
	}
	// Give any erroneous retry a chance to land.
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("cancelled request was retried: %d attempts", got)
	}
}

func TestTransportErrorRetriedThenReturned(t *testing.T) {
	// Nothing listens here; every attempt is a connection failure.
	var delays []time.Duration
	c := New("http://127.0.0.1:1", Config{MaxRetries: 2, RetryDelay: time.Second})
	c.sleep = fakeSleep(&delays)

	if _, err := c.Get(context.Background(), "/", nil); err == nil {
		t.Fatal("expected transport error after exhausting retries")
	}
	if len(delays) != 2 {
		t.Fatalf("expected 2 backoff waits, got %d", len(delays))
	}
}

func TestRecoversAfterTransientFailure(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	var delays []time.Duration
	c := New(srv.URL, Config{MaxRetries: 3, RetryDelay: time.Second})
	c.sleep = fakeSleep(&delays)

	resp, err := c.Get(context.Background(), "/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected eventual 200, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestPostJSONSetsContentType(t *testing.T) {
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	c := New(srv.URL, DefaultConfig())
	resp, err := c.PostJSON(context.Background(), "/", map[string]string{"name": "Lee"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if contentType != "application/json" {
		t.Fatalf("expected application/json, got %q", contentType)
	}
}

func TestPostMultipartCarriesBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("session_id"); got != "abc" {
			t.Errorf("expected session_id=abc, got %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		if hdr.Filename != "me.png" {
			t.Errorf("expected filename me.png, got %q", hdr.Filename)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, DefaultConfig())
	resp, err := c.PostMultipart(context.Background(), "/", map[string]string{"session_id": "abc"}, []File{
		{Field: "file", Name: "me.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
}
