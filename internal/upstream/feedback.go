package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pochi-app/pochi-web/pkg/retryhttp"
)

// PublicFeedback fetches the public feedback list.
func (c *Client) PublicFeedback(ctx context.Context) ([]FeedbackItem, error) {
	resp, err := c.http.Get(ctx, "/api/feedback", nil)
	if err != nil {
		return nil, err
	}
	var out feedbackListResponse
	if err := decodeJSON(resp, "public feedback", &out); err != nil {
		return nil, err
	}
	return out.Feedback, nil
}

// SubmitFeedback posts a new feedback entry. clientIP is forwarded so the
// backend records the browser's address rather than the gateway's.
func (c *Client) SubmitFeedback(ctx context.Context, req SubmitFeedbackRequest, clientIP string) (*FeedbackItem, error) {
	h := make(http.Header)
	if clientIP != "" {
		h.Set("X-Forwarded-For", clientIP)
	}
	resp, err := c.http.PostJSON(ctx, "/api/feedback", req, h)
	if err != nil {
		return nil, err
	}
	var out FeedbackItem
	if err := decodeJSON(resp, "submit feedback", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminFeedback lists all feedback, including fields hidden from the public
// view. Requires a bearer token.
func (c *Client) AdminFeedback(ctx context.Context, token string) ([]FeedbackItem, error) {
	resp, err := c.http.Get(ctx, "/api/admin/feedback", bearer(token))
	if err != nil {
		return nil, err
	}
	var out feedbackListResponse
	if err := decodeJSON(resp, "admin feedback", &out); err != nil {
		return nil, err
	}
	return out.Feedback, nil
}

// DeleteFeedback removes one entry by id.
func (c *Client) DeleteFeedback(ctx context.Context, token string, id int) error {
	resp, err := c.http.Do(ctx, &retryhttp.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/api/admin/feedback/%d", id),
		Header: bearer(token),
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, "delete feedback", nil)
}
