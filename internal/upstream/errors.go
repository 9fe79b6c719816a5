package upstream

import "fmt"

// StatusError is an authoritative non-2xx answer from the backend. It is
// never produced for transport failures; those come back as plain errors
// from the retry client.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: status %d: %s", e.Code, e.Body)
}

// DecodeError marks a response body that could not be read as the expected
// schema: empty, truncated, non-JSON or missing required fields. Kept
// distinct from StatusError so callers can surface "could not read server
// response" instead of a connectivity error.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("upstream: decode %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
