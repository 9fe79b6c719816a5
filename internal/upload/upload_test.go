package upload

import (
	"errors"
	"testing"
	"time"
)

func TestAvatarPolicyRejectsTextPlain(t *testing.T) {
	err := AvatarPolicy.Check("text/plain", 100)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "type" {
		t.Fatalf("expected type rejection, got %s", ve.Field)
	}
}

func TestAvatarPolicyRejectsNonAllowedImage(t *testing.T) {
	// Passes the image/ prefix check but is not on the allow-list.
	if err := AvatarPolicy.Check("image/gif", 100); err == nil {
		t.Fatal("expected gif to be rejected for avatars")
	}
}

func TestAvatarPolicyRejectsOversize(t *testing.T) {
	if err := AvatarPolicy.Check("image/png", MaxFileSize+1); err == nil {
		t.Fatal("expected oversize rejection")
	}
	if err := AvatarPolicy.Check("image/png", MaxFileSize); err != nil {
		t.Fatalf("exactly-at-limit should pass, got %v", err)
	}
}

func TestPolicyNormalizesContentType(t *testing.T) {
	if err := AvatarPolicy.Check("IMAGE/JPEG; charset=binary", 100); err != nil {
		t.Fatalf("expected parameterized type to pass, got %v", err)
	}
}

func TestAttachmentPolicyAcceptsDocuments(t *testing.T) {
	for _, ct := range []string{"application/pdf", "text/plain", "image/gif", "text/csv"} {
		if err := AttachmentPolicy.Check(ct, 100); err != nil {
			t.Errorf("expected %s to pass attachment policy: %v", ct, err)
		}
	}
}

func TestAttachmentBatchCountCap(t *testing.T) {
	files := make([]FileInfo, MaxAttachmentCount+1)
	for i := range files {
		files[i] = FileInfo{ContentType: "image/png", Size: 10}
	}
	if err := AttachmentPolicy.CheckBatch(files); err == nil {
		t.Fatal("expected batch over the count cap to fail")
	}
	if err := AttachmentPolicy.CheckBatch(files[:MaxAttachmentCount]); err != nil {
		t.Fatalf("batch at the cap should pass: %v", err)
	}
}

func TestAcceptReplacesSlotPreview(t *testing.T) {
	s := NewPreviewStore()

	a, err := s.Accept("v1/avatar", "a.png", "image/png", []byte("aaa"), &AvatarPolicy)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Accept("v1/avatar", "b.png", "image/png", []byte("bbb"), &AvatarPolicy)
	if err != nil {
		t.Fatal(err)
	}

	if s.Get(a.ID) != nil {
		t.Fatal("first preview should have been released on replacement")
	}
	if cur := s.Current("v1/avatar"); cur == nil || cur.ID != b.ID {
		t.Fatal("slot should hold the replacement preview")
	}
}

func TestRejectedFileLeavesSlotUntouched(t *testing.T) {
	s := NewPreviewStore()

	a, _ := s.Accept("v1/avatar", "a.png", "image/png", []byte("aaa"), &AvatarPolicy)
	if _, err := s.Accept("v1/avatar", "notes.txt", "text/plain", []byte("hi"), &AvatarPolicy); err == nil {
		t.Fatal("expected rejection")
	}
	if cur := s.Current("v1/avatar"); cur == nil || cur.ID != a.ID {
		t.Fatal("rejection must not alter the currently selected file")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	s := NewPreviewStore()
	a, _ := s.Accept("v1/avatar", "a.png", "image/png", []byte("aaa"), &AvatarPolicy)

	s.Release(a.ID)
	s.Release(a.ID)
	s.Release("never-existed")

	if s.Get(a.ID) != nil || s.Current("v1/avatar") != nil {
		t.Fatal("preview should stay released")
	}
}

func TestSweepDropsStalePreviews(t *testing.T) {
	s := NewPreviewStore()
	now := time.Now()
	s.nowFunc = func() time.Time { return now }

	old, _ := s.Accept("v1/avatar", "a.png", "image/png", []byte("aaa"), &AvatarPolicy)

	now = now.Add(DefaultPreviewAge + time.Minute)
	fresh, _ := s.Accept("v2/avatar", "b.png", "image/png", []byte("bbb"), &AvatarPolicy)

	if n := s.Sweep(); n != 1 {
		t.Fatalf("expected 1 swept, got %d", n)
	}
	if s.Get(old.ID) != nil {
		t.Fatal("stale preview survived sweep")
	}
	if s.Get(fresh.ID) == nil {
		t.Fatal("fresh preview was swept")
	}
}
