// Package upstream is the typed client for the Pochi API backend. Every
// response passes through a validating decode step so downstream code works
// with concrete structs, never duck-typed maps.
package upstream

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pochi-app/pochi-web/pkg/retryhttp"
)

// maxBodyBytes bounds how much of an upstream body is read. Generated
// avatars come back as base64 data URLs, so this has to be generous.
const maxBodyBytes = 32 << 20

type Client struct {
	http *retryhttp.Client
	// once skips retries entirely; used for the chat relay, which must
	// never replay a turn.
	once *retryhttp.Client
}

// New builds a client for the backend at baseURL with the given retry policy.
func New(baseURL string, cfg retryhttp.Config) *Client {
	rc := retryhttp.New(baseURL, cfg)
	return &Client{
		http: rc,
		once: rc.NoRetry(),
	}
}

// bearer returns headers carrying the admin token.
func bearer(token string) http.Header {
	h := make(http.Header, 1)
	h.Set("Authorization", "Bearer "+token)
	return h
}

// decodeJSON validates the response and decodes the body into v. Non-2xx
// statuses become *StatusError; unreadable or non-JSON bodies become
// *DecodeError. The response body is always consumed and closed.
func decodeJSON(resp *http.Response, op string, v interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &DecodeError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 300)}
	}

	if v == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &DecodeError{Op: op, Err: io.ErrUnexpectedEOF}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
