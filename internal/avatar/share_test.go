package avatar

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
)

func TestDisabledServiceAnswersNotConfigured(t *testing.T) {
	s, err := NewShareService("", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Enabled() {
		t.Fatal("service without credentials should be disabled")
	}
	_, err = s.Publish(context.Background(), "data:image/png;base64,aGk=", "sess")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestDecodeDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	raw, err := decodeDataURL("data:image/png;base64," + payload)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "png-bytes" {
		t.Fatalf("bad decode: %q", raw)
	}
}

func TestDecodeDataURLRejectsBadInput(t *testing.T) {
	cases := []string{
		"https://example.com/image.png",
		"data:image/png;base64",
		"data:image/png,plain-not-base64",
		"data:image/png;base64,!!!not-base64!!!",
	}
	for _, c := range cases {
		if _, err := decodeDataURL(c); err == nil {
			t.Errorf("expected error for %q", c)
		}
	}
}
