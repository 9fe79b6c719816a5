package session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/pochi-app/pochi-web/internal/prefs"
	"github.com/pochi-app/pochi-web/internal/upstream"
	"github.com/pochi-app/pochi-web/pkg/utils"
)

type fakeUpstream struct {
	loginErr   error
	token      string
	logoutErr  error
	logoutSeen string
}

func (f *fakeUpstream) Login(ctx context.Context, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeUpstream) Logout(ctx context.Context, token string) error {
	f.logoutSeen = token
	return f.logoutErr
}

func newManager(t *testing.T, up *fakeUpstream) (*Manager, *prefs.Prefs) {
	t.Helper()
	key, err := utils.DeriveKey("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	p := prefs.New(prefs.NewMemoryStore())
	return NewManager(up, p, key), p
}

func TestLoginStoresEncryptedToken(t *testing.T) {
	m, p := newManager(t, &fakeUpstream{token: "tok-1"})
	ctx := context.Background()

	if err := m.Login(ctx, "v1", "hunter2"); err != nil {
		t.Fatal(err)
	}

	blob, _ := p.AdminToken(ctx, "v1")
	if blob == "" || blob == "tok-1" {
		t.Fatalf("token should be stored encrypted, got %q", blob)
	}
	tok, err := m.Token(ctx, "v1")
	if err != nil || tok != "tok-1" {
		t.Fatalf("expected round-trip token, got %q err %v", tok, err)
	}
}

func TestLoginFailureIsGeneric(t *testing.T) {
	m, _ := newManager(t, &fakeUpstream{
		loginErr: &upstream.StatusError{Code: http.StatusUnauthorized, Body: "password mismatch at row 3"},
	})

	err := m.Login(context.Background(), "v1", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected generic credentials error, got %v", err)
	}
	if err.Error() != "invalid credentials" {
		t.Fatalf("login error must not leak upstream detail: %v", err)
	}
}

func TestTokenPersistsAcrossLookups(t *testing.T) {
	m, _ := newManager(t, &fakeUpstream{token: "tok-1"})
	ctx := context.Background()
	m.Login(ctx, "v1", "pw")

	for i := 0; i < 3; i++ {
		if !m.LoggedIn(ctx, "v1") {
			t.Fatal("session should survive repeated lookups")
		}
	}
}

func TestCorruptTokenClearsSession(t *testing.T) {
	m, p := newManager(t, &fakeUpstream{token: "tok-1"})
	ctx := context.Background()

	p.SetAdminToken(ctx, "v1", "garbage-not-ciphertext")
	if _, err := m.Token(ctx, "v1"); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
	blob, _ := p.AdminToken(ctx, "v1")
	if blob != "" {
		t.Fatal("unreadable token should have been cleared")
	}
}

func TestLogoutAlwaysClears(t *testing.T) {
	up := &fakeUpstream{token: "tok-1", logoutErr: errors.New("backend down")}
	m, p := newManager(t, up)
	ctx := context.Background()
	m.Login(ctx, "v1", "pw")

	if err := m.Logout(ctx, "v1"); err != nil {
		t.Fatalf("logout must succeed client-side: %v", err)
	}
	if up.logoutSeen != "tok-1" {
		t.Fatalf("upstream logout should have been attempted with the token, got %q", up.logoutSeen)
	}
	blob, _ := p.AdminToken(ctx, "v1")
	if blob != "" {
		t.Fatal("token should be cleared even when upstream logout fails")
	}
}

func TestExpiredAuthInvalidates(t *testing.T) {
	m, p := newManager(t, &fakeUpstream{token: "tok-1"})
	ctx := context.Background()
	m.Login(ctx, "v1", "pw")

	authErr := &upstream.StatusError{Code: http.StatusUnauthorized, Body: "expired"}
	if !m.ExpiredAuth(ctx, "v1", authErr) {
		t.Fatal("401 should be treated as session-invalid")
	}
	blob, _ := p.AdminToken(ctx, "v1")
	if blob != "" {
		t.Fatal("401 should clear the stored token")
	}

	if m.ExpiredAuth(ctx, "v1", &upstream.StatusError{Code: http.StatusInternalServerError}) {
		t.Fatal("500 is not an auth rejection")
	}
	if m.ExpiredAuth(ctx, "v1", errors.New("plain error")) {
		t.Fatal("non-status errors are not auth rejections")
	}
}
