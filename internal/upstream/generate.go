package upstream

import (
	"context"

	"github.com/pochi-app/pochi-web/pkg/retryhttp"
)

// GenerateChibi submits a photo for chibi-style rendering. The result's
// ImageURL is a data URL; large responses are expected.
func (c *Client) GenerateChibi(ctx context.Context, image retryhttp.File, sessionID, style string) (*GenerateResult, error) {
	fields := map[string]string{}
	if sessionID != "" {
		fields["session_id"] = sessionID
	}
	if style != "" {
		fields["style"] = style
	}
	image.Field = "file"

	// Generation is slow and expensive; one attempt only so a timed-out
	// render is never kicked off twice.
	resp, err := c.once.PostMultipart(ctx, "/generate/chibi", fields, []retryhttp.File{image}, nil)
	if err != nil {
		return nil, err
	}
	var out GenerateResult
	if err := decodeJSON(resp, "generate chibi", &out); err != nil {
		return nil, err
	}
	if out.ImageURL == "" {
		return nil, &DecodeError{Op: "generate chibi", Err: errMissingField("image_url")}
	}
	return &out, nil
}
