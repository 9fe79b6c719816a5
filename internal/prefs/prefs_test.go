package prefs

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestLanguageRoundTrip(t *testing.T) {
	p := New(NewMemoryStore())
	ctx := context.Background()

	lang, err := p.Language(ctx, "v1")
	if err != nil || lang != "" {
		t.Fatalf("expected empty language, got %q err %v", lang, err)
	}
	if err := p.SetLanguage(ctx, "v1", "jp"); err != nil {
		t.Fatal(err)
	}
	lang, _ = p.Language(ctx, "v1")
	if lang != "jp" {
		t.Fatalf("expected jp, got %q", lang)
	}
}

func TestDismissMergesAcrossWrites(t *testing.T) {
	p := New(NewMemoryStore())
	ctx := context.Background()

	if err := p.Dismiss(ctx, "v1", 3, 1); err != nil {
		t.Fatal(err)
	}
	if err := p.Dismiss(ctx, "v1", 2, 3); err != nil {
		t.Fatal(err)
	}
	ids, err := p.Dismissed(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []int{1, 2, 3}) {
		t.Fatalf("expected merged [1 2 3], got %v", ids)
	}
}

func TestDismissedCorruptEntryReadsEmpty(t *testing.T) {
	store := NewMemoryStore()
	p := New(store)
	ctx := context.Background()

	store.Set(ctx, "v1", KeyClosed, "not json", time.Hour)
	ids, err := p.Dismissed(ctx, "v1")
	if err != nil || ids != nil {
		t.Fatalf("expected empty on corrupt entry, got %v err %v", ids, err)
	}
}

func TestVisitorsAreIsolated(t *testing.T) {
	p := New(NewMemoryStore())
	ctx := context.Background()

	p.SetLanguage(ctx, "v1", "ko")
	lang, _ := p.Language(ctx, "v2")
	if lang != "" {
		t.Fatalf("visitor v2 leaked v1's language %q", lang)
	}
}

func TestAdminTokenClear(t *testing.T) {
	p := New(NewMemoryStore())
	ctx := context.Background()

	p.SetAdminToken(ctx, "v1", "blob")
	if err := p.ClearAdminToken(ctx, "v1"); err != nil {
		t.Fatal(err)
	}
	tok, _ := p.AdminToken(ctx, "v1")
	if tok != "" {
		t.Fatalf("expected cleared token, got %q", tok)
	}
}
