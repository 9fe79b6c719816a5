// Package avatar publishes generated chibi images to Cloudinary so
// visitors get a stable share link instead of a multi-megabyte data URL.
package avatar

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const shareFolder = "pochi/avatars"

// ErrNotConfigured means Cloudinary credentials were absent at startup and
// sharing is disabled.
var ErrNotConfigured = errors.New("avatar sharing not configured")

type ShareService struct {
	cld *cloudinary.Cloudinary
}

// NewShareService initializes Cloudinary. Pass empty credentials to get a
// disabled service that answers ErrNotConfigured.
func NewShareService(cloudName, apiKey, apiSecret string) (*ShareService, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return &ShareService{}, nil
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &ShareService{cld: cld}, nil
}

// Enabled reports whether sharing can work.
func (s *ShareService) Enabled() bool { return s.cld != nil }

// Publish uploads a generated image and returns its public URL. The input
// is the data URL the generation endpoint produced.
func (s *ShareService) Publish(ctx context.Context, dataURL, sessionID string) (string, error) {
	if s.cld == nil {
		return "", ErrNotConfigured
	}

	raw, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(raw), uploader.UploadParams{
		Folder:   shareFolder,
		PublicID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	return result.SecureURL, nil
}

// decodeDataURL extracts the raw bytes from a base64 data URL.
func decodeDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, errors.New("not a data URL")
	}
	comma := strings.IndexByte(dataURL, ',')
	if comma == -1 {
		return nil, errors.New("malformed data URL")
	}
	meta := dataURL[5:comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("data URL is not base64 encoded")
	}
	raw, err := base64.StdEncoding.DecodeString(dataURL[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("decode data URL: %w", err)
	}
	return raw, nil
}
