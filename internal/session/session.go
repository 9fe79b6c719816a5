// Package session manages the admin login state per visitor. The upstream
// bearer token never reaches the browser; it is encrypted and parked in the
// visitor's preference store, and every admin call decrypts it on the way
// through.
package session

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/pochi-app/pochi-web/internal/prefs"
	"github.com/pochi-app/pochi-web/internal/upstream"
	"github.com/pochi-app/pochi-web/pkg/utils"
)

// ErrInvalidCredentials is the only error a failed login surfaces. Upstream
// detail is logged, not returned, so login failures leak nothing about why.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNotLoggedIn means no usable token exists for this visitor.
var ErrNotLoggedIn = errors.New("not logged in")

// Upstream is the slice of the backend client the session layer needs.
type Upstream interface {
	Login(ctx context.Context, password string) (string, error)
	Logout(ctx context.Context, token string) error
}

type Manager struct {
	up    Upstream
	prefs *prefs.Prefs
	key   []byte
}

func NewManager(up Upstream, p *prefs.Prefs, key []byte) *Manager {
	return &Manager{up: up, prefs: p, key: key}
}

// Login exchanges the password for a bearer token and stores it encrypted.
// Any upstream failure, connectivity included, comes back as
// ErrInvalidCredentials.
func (m *Manager) Login(ctx context.Context, visitor, password string) error {
	token, err := m.up.Login(ctx, password)
	if err != nil {
		log.Printf("🔒 admin login failed: %v", err)
		return ErrInvalidCredentials
	}

	encrypted, err := utils.Encrypt(m.key, token)
	if err != nil {
		return err
	}
	return m.prefs.SetAdminToken(ctx, visitor, encrypted)
}

// Token returns the visitor's decrypted bearer token. Sessions survive
// navigation: the token stays put until logout, expiry, or an upstream
// auth rejection. A blob that no longer decrypts is cleared and treated as
// logged out.
func (m *Manager) Token(ctx context.Context, visitor string) (string, error) {
	encrypted, err := m.prefs.AdminToken(ctx, visitor)
	if err != nil {
		return "", err
	}
	if encrypted == "" {
		return "", ErrNotLoggedIn
	}
	token, err := utils.Decrypt(m.key, encrypted)
	if err != nil {
		log.Printf("🔒 stored admin token unreadable, clearing: %v", err)
		_ = m.prefs.ClearAdminToken(ctx, visitor)
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// LoggedIn reports whether the visitor holds a usable token.
func (m *Manager) LoggedIn(ctx context.Context, visitor string) bool {
	_, err := m.Token(ctx, visitor)
	return err == nil
}

// Logout tells the backend best-effort and always clears the local token.
// Logout never fails from the visitor's point of view.
func (m *Manager) Logout(ctx context.Context, visitor string) error {
	if token, err := m.Token(ctx, visitor); err == nil {
		if err := m.up.Logout(ctx, token); err != nil {
			log.Printf("⚠️ upstream logout failed (token cleared anyway): %v", err)
		}
	}
	return m.prefs.ClearAdminToken(ctx, visitor)
}

// Invalidate drops the stored token without touching upstream. Used when an
// admin call answers 401 or 403.
func (m *Manager) Invalidate(ctx context.Context, visitor string) error {
	return m.prefs.ClearAdminToken(ctx, visitor)
}

// ExpiredAuth reports whether err is an upstream auth rejection, and if so
// invalidates the visitor's session so the next request forces a re-login.
func (m *Manager) ExpiredAuth(ctx context.Context, visitor string, err error) bool {
	var se *upstream.StatusError
	if !errors.As(err, &se) {
		return false
	}
	if se.Code != http.StatusUnauthorized && se.Code != http.StatusForbidden {
		return false
	}
	if err := m.Invalidate(ctx, visitor); err != nil {
		log.Printf("⚠️ session invalidation failed for visitor %s: %v", visitor, err)
	}
	return true
}
