package upstream

import (
	"context"
	"net/http"

	"github.com/pochi-app/pochi-web/pkg/retryhttp"
)

// Login exchanges the admin password for a bearer token.
// Authoritative rejections (401/429) come back as *StatusError so the
// session layer can collapse them into a generic invalid-credentials
// message without leaking detail.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	resp, err := c.http.PostJSON(ctx, "/api/admin/login", map[string]string{"password": password}, nil)
	if err != nil {
		return "", err
	}
	var out adminTokenResponse
	if err := decodeJSON(resp, "admin login", &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &DecodeError{Op: "admin login", Err: errMissingField("access_token")}
	}
	return out.AccessToken, nil
}

// Logout invalidates the token server-side. Best effort only; callers clear
// local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context, token string) error {
	resp, err := c.http.Do(ctx, &retryhttp.Request{
		Method: http.MethodPost,
		Path:   "/api/admin/logout",
		Header: bearer(token),
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, "admin logout", nil)
}
