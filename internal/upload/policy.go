// Package upload validates user file uploads and manages short-lived
// preview handles for them. The avatar flow and the chat attachment flow
// carry different rules; keep the two policies apart.
package upload

import (
	"fmt"
	"strings"
)

const (
	// MaxFileSize caps any single uploaded file.
	MaxFileSize = 10 << 20
	// MaxAttachmentCount caps files per chat message.
	MaxAttachmentCount = 10
)

// ValidationError reports why a file was rejected. Field names the failed
// check so the UI can pick the right translated message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("upload rejected (%s): %s", e.Field, e.Reason)
}

// Policy is one validation rule set. Checks run in order and the first
// failure wins.
type Policy struct {
	// RequireImage rejects anything whose MIME type lacks the image/ prefix
	// before the allow-list is consulted.
	RequireImage bool
	Allowed      map[string]bool
	MaxSize      int64
	MaxCount     int
}

// AvatarPolicy governs the single-photo chibi flow.
var AvatarPolicy = Policy{
	RequireImage: true,
	Allowed: map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	},
	MaxSize:  MaxFileSize,
	MaxCount: 1,
}

// AttachmentPolicy governs chat attachments, which also take documents.
var AttachmentPolicy = Policy{
	Allowed: map[string]bool{
		"image/jpeg":      true,
		"image/jpg":       true,
		"image/png":       true,
		"image/gif":       true,
		"image/webp":      true,
		"application/pdf": true,
		"application/vnd.ms-excel":                                                  true,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
		"application/msword": true,
		"text/plain":         true,
		"text/csv":           true,
		"application/csv":    true,
	},
	MaxSize:  MaxFileSize,
	MaxCount: MaxAttachmentCount,
}

// Check validates a single file against the policy.
func (p *Policy) Check(contentType string, size int64) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i != -1 {
		ct = strings.TrimSpace(ct[:i])
	}
	if p.RequireImage && !strings.HasPrefix(ct, "image/") {
		return &ValidationError{Field: "type", Reason: "not an image"}
	}
	if !p.Allowed[ct] {
		return &ValidationError{Field: "type", Reason: "unsupported type " + ct}
	}
	if size > p.MaxSize {
		return &ValidationError{Field: "size", Reason: fmt.Sprintf("%d bytes exceeds limit", size)}
	}
	return nil
}

// FileInfo is the metadata CheckBatch needs about one file.
type FileInfo struct {
	ContentType string
	Size        int64
}

// CheckBatch validates a set of files for one message.
func (p *Policy) CheckBatch(files []FileInfo) error {
	if len(files) > p.MaxCount {
		return &ValidationError{Field: "count", Reason: fmt.Sprintf("%d files exceeds limit of %d", len(files), p.MaxCount)}
	}
	for _, f := range files {
		if err := p.Check(f.ContentType, f.Size); err != nil {
			return err
		}
	}
	return nil
}
