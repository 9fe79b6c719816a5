package upstream

import (
	"context"
	"fmt"
)

func errMissingField(name string) error {
	return fmt.Errorf("response missing %s", name)
}

// Chat sends one assistant turn. Non-idempotent: issued without retries so
// the model never sees the same message twice.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	// The gateway consumes the non-streaming variant and does its own
	// delivery over the WebSocket.
	req.Stream = false

	resp, err := c.once.PostJSON(ctx, "/chat", req, nil)
	if err != nil {
		return nil, err
	}
	var out ChatReply
	if err := decodeJSON(resp, "chat", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	resp, err := c.http.Get(ctx, "/health", nil)
	if err != nil {
		return nil, err
	}
	var out Health
	if err := decodeJSON(resp, "health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
