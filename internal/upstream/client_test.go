package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pochi-app/pochi-web/pkg/retryhttp"
)

func newTestClient(srv *httptest.Server) *Client {
	return New(srv.URL, retryhttp.Config{MaxRetries: 0})
}

func TestPublicFeedbackDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/feedback" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"feedback":[{"id":1,"text":"hi","name":"Lee","timestamp":"2024-01-01T00:00:00Z"}],"total":1}`)
	}))
	defer srv.Close()

	items, err := newTestClient(srv).PublicFeedback(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Lee" {
		t.Fatalf("bad decode: %+v", items)
	}
}

func TestMalformedBodyIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>not json</html>`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).PublicFeedback(context.Background())
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %T: %v", err, err)
	}
}

func TestEmptyBodyIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := newTestClient(srv).PublicFeedback(context.Background())
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for empty body, got %T: %v", err, err)
	}
}

func TestNonOKStatusIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).AdminFeedback(context.Background(), "stale")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %T: %v", err, err)
	}
	if se.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", se.Code)
	}
}

func TestLoginParsesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON login body, got %s", r.Header.Get("Content-Type"))
		}
		io.WriteString(w, `{"access_token":"tok-123","token_type":"bearer"}`)
	}))
	defer srv.Close()

	tok, err := newTestClient(srv).Login(context.Background(), "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "tok-123" {
		t.Fatalf("expected tok-123, got %q", tok)
	}
}

func TestLoginMissingTokenIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"token_type":"bearer"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Login(context.Background(), "hunter2")
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %T: %v", err, err)
	}
}

func TestAdminCallsCarryBearer(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		io.WriteString(w, `{"announcements":[]}`)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).AllAnnouncements(context.Background(), "tok-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer tok-9" {
		t.Fatalf("expected bearer header, got %q", auth)
	}
}
