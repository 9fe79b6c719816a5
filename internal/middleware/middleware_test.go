package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing frame options header")
	}
}

func TestHostCheck(t *testing.T) {
	h := HostCheck("web.pochi.app")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "web.pochi.app:443"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("matching host should pass, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "evil.example.com"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign host should be rejected, got %d", rec.Code)
	}
}

func TestHostCheckEmptyAllowsAll(t *testing.T) {
	h := HostCheck("")(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "anything.example.com"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty allowed host should pass everything, got %d", rec.Code)
	}
}

func TestVisitorAssignsCookieOnce(t *testing.T) {
	var seen string
	h := Visitor(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = VisitorID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" {
		t.Fatal("visitor id missing from context")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != VisitorCookie || cookies[0].Value != seen {
		t.Fatalf("expected visitor cookie %q, got %+v", seen, cookies)
	}

	// Second request with the cookie keeps the id and sets nothing new.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	first := seen
	h.ServeHTTP(rec, req)
	if seen != first {
		t.Fatal("visitor id changed between requests")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("cookie should not be re-set for a known visitor")
	}
}

func TestVisitorRejectsForgedCookie(t *testing.T) {
	var seen string
	h := Visitor(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = VisitorID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "not-a-uuid"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen == "not-a-uuid" {
		t.Fatal("forged visitor id should be replaced")
	}
}

func TestRecoverTurnsPanicIntoRecoveryPayload(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("render blew up")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"recovery"`) {
		t.Fatalf("expected recovery payload, got %s", rec.Body.String())
	}
}

func TestLoginRateLimitOnlyGuardsLoginPath(t *testing.T) {
	h := LoginRateLimit(okHandler())

	// Non-login path is never limited.
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/feedback", nil)
		req.RemoteAddr = "10.1.1.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("non-login path should not be limited, got %d", rec.Code)
		}
	}

	// Login path has burst 2.
	limited := false
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.RemoteAddr = "10.1.1.2:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	if !limited {
		t.Fatal("rapid login attempts should hit the limiter")
	}
}
