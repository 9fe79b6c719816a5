// Package retryhttp wraps one-shot HTTP requests with exponential-backoff
// retry for transient failures. Client errors (400/401/403/404, ...) are
// returned immediately; only statuses in the retryable set and transport
// errors are retried, and a cancelled request is never retried.
package retryhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultMaxRetries is the number of retries after the initial attempt.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the base backoff delay; attempt n waits delay * 2^n.
	DefaultRetryDelay = 1 * time.Second
)

// Config controls the retry policy.
type Config struct {
	MaxRetries        int
	RetryDelay        time.Duration
	RetryableStatuses map[int]bool
}

// DefaultConfig returns the standard policy: 3 retries, 1s base delay,
// retrying 408, 429 and the transient 5xx statuses.
func DefaultConfig() Config {
	return Config{
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		RetryableStatuses: map[int]bool{
			http.StatusRequestTimeout:      true, // 408
			http.StatusTooManyRequests:     true, // 429
			http.StatusInternalServerError: true, // 500
			http.StatusBadGateway:          true, // 502
			http.StatusServiceUnavailable:  true, // 503
			http.StatusGatewayTimeout:      true, // 504
		},
	}
}

// File is one part of a multipart upload.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Request describes a single logical request. Body is a byte slice so the
// request can be replayed on retry.
type Request struct {
	Method string
	// Path is either an absolute URL or a path resolved against the
	// client's base URL.
	Path   string
	Header http.Header
	Body   []byte
}

// Client performs requests against a base URL with the configured retry
// policy. The zero http.Client is used by default so per-call deadlines come
// from the caller's context.
type Client struct {
	base string
	cfg  Config
	hc   *http.Client

	// sleep waits for the backoff delay; swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a Client for the given base URL. An unset RetryDelay or
// RetryableStatuses falls back to the defaults; MaxRetries is taken as
// given (zero retries is a valid policy), with negatives clamped to zero.
func New(base string, cfg Config) *Client {
	def := DefaultConfig()
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.RetryableStatuses == nil {
		cfg.RetryableStatuses = def.RetryableStatuses
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		cfg:   cfg,
		hc:    &http.Client{},
		sleep: sleepCtx,
	}
}

// NoRetry returns a derived client that performs exactly one attempt. Used
// for calls that must never be replayed (chat relay).
func (c *Client) NoRetry() *Client {
	cp := *c
	cp.cfg.MaxRetries = 0
	return &cp
}

// Do performs the request, retrying per the configured policy. After
// exhausting retries it returns the last received response if one exists,
// otherwise the last transport error. The caller owns the response body.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	url := req.Path
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = c.base + "/" + strings.TrimLeft(url, "/")
	}

	var lastResp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			// Backoff: delay * 2^(attempt-1) after the attempt that failed.
			delay := c.cfg.RetryDelay * (1 << uint(attempt-1))
			if err := c.sleep(ctx, delay); err != nil {
				// Cancelled while backing off.
				closeBody(lastResp)
				return nil, err
			}
		}

		var body io.Reader
		if req.Body != nil {
			body = bytes.NewReader(req.Body)
		}
		hr, err := http.NewRequestWithContext(ctx, req.Method, url, body)
		if err != nil {
			closeBody(lastResp)
			return nil, err
		}
		for k, vs := range req.Header {
			for _, v := range vs {
				hr.Header.Add(k, v)
			}
		}

		resp, err := c.hc.Do(hr)
		if err != nil {
			// An aborted request must not be retried.
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				closeBody(lastResp)
				return nil, err
			}
			lastErr = err
			continue
		}

		if !c.cfg.RetryableStatuses[resp.StatusCode] {
			// Success, or a non-transient failure the caller must inspect.
			closeBody(lastResp)
			return resp, nil
		}

		// Retryable status: remember the response in case retries exhaust.
		closeBody(lastResp)
		lastResp = resp
		lastErr = nil
	}

	if lastResp != nil {
		return lastResp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("retryhttp: no attempts performed for %s %s", req.Method, url)
	}
	return nil, lastErr
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, header http.Header) (*http.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Header: header})
}

// PostJSON marshals v and POSTs it with Content-Type: application/json.
func (c *Client) PostJSON(ctx context.Context, path string, v interface{}, header http.Header) (*http.Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	h := cloneHeader(header)
	h.Set("Content-Type", "application/json")
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Header: h, Body: data})
}

// Multipart encodes fields and files into a multipart/form-data body and
// returns it with its boundary content type.
func Multipart(fields map[string]string, files ...File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		var (
			part io.Writer
			err  error
		)
		if f.ContentType != "" {
			h := make(map[string][]string)
			h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name)}
			h["Content-Type"] = []string{f.ContentType}
			part, err = w.CreatePart(h)
		} else {
			part, err = w.CreateFormFile(f.Field, f.Name)
		}
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// PostMultipart POSTs a form-data body. The Content-Type carries only the
// writer's boundary; nothing else is set so the encoding stays authoritative.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []File, header http.Header) (*http.Response, error) {
	return c.doMultipart(ctx, http.MethodPost, path, fields, files, header)
}

// PutMultipart is PostMultipart with the PUT method (announcement updates).
func (c *Client) PutMultipart(ctx context.Context, path string, fields map[string]string, files []File, header http.Header) (*http.Response, error) {
	return c.doMultipart(ctx, http.MethodPut, path, fields, files, header)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, files []File, header http.Header) (*http.Response, error) {
	body, contentType, err := Multipart(fields, files...)
	if err != nil {
		return nil, err
	}
	h := cloneHeader(header)
	h.Set("Content-Type", contentType)
	return c.Do(ctx, &Request{Method: method, Path: path, Header: h, Body: body})
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h)+1)
	for k, vs := range h {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
