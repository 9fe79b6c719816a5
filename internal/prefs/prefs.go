// Package prefs stores per-visitor preferences. Each browser gets a
// pochi_visitor cookie and its settings live in Redis under that id, so
// language choice and dismissed announcements survive page loads and
// follow the visitor across devices is explicitly not a goal.
package prefs

import (
	"context"
	"encoding/json"
	"sort"
	"time"
)

const (
	// KeyLanguage holds the visitor's chosen locale code.
	KeyLanguage = "pochi_language"
	// KeyClosed holds a JSON array of dismissed announcement ids.
	KeyClosed = "closed_announcements"
	// KeyAdminToken holds the encrypted admin bearer token.
	KeyAdminToken = "admin_token"

	// PrefTTL keeps idle visitors around for half a year.
	PrefTTL = 180 * 24 * time.Hour
	// TokenTTL matches the upstream admin token lifetime.
	TokenTTL = 24 * time.Hour
)

// Store is the raw key-value surface. Get returns "" with no error when the
// key is unset.
type Store interface {
	Get(ctx context.Context, visitor, key string) (string, error)
	Set(ctx context.Context, visitor, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, visitor, key string) error
}

// Prefs wraps a Store with the typed accessors the handlers use.
type Prefs struct {
	store Store
}

func New(store Store) *Prefs {
	return &Prefs{store: store}
}

// Language returns the visitor's stored locale, or "" when none was saved.
func (p *Prefs) Language(ctx context.Context, visitor string) (string, error) {
	return p.store.Get(ctx, visitor, KeyLanguage)
}

func (p *Prefs) SetLanguage(ctx context.Context, visitor, lang string) error {
	return p.store.Set(ctx, visitor, KeyLanguage, lang, PrefTTL)
}

// Dismissed returns the announcement ids this visitor has closed. A missing
// or corrupt entry reads as empty rather than an error, so announcements
// fail open.
func (p *Prefs) Dismissed(ctx context.Context, visitor string) ([]int, error) {
	raw, err := p.store.Get(ctx, visitor, KeyClosed)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, nil
	}
	return ids, nil
}

// Dismiss merges ids into the stored set. Existing entries are kept, so two
// tabs dismissing different announcements never clobber each other.
func (p *Prefs) Dismiss(ctx context.Context, visitor string, ids ...int) error {
	existing, err := p.Dismissed(ctx, visitor)
	if err != nil {
		return err
	}
	seen := make(map[int]bool, len(existing)+len(ids))
	merged := make([]int, 0, len(existing)+len(ids))
	for _, id := range existing {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	sort.Ints(merged)
	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, visitor, KeyClosed, string(data), PrefTTL)
}

// AdminToken returns the stored encrypted token blob, "" when logged out.
func (p *Prefs) AdminToken(ctx context.Context, visitor string) (string, error) {
	return p.store.Get(ctx, visitor, KeyAdminToken)
}

func (p *Prefs) SetAdminToken(ctx context.Context, visitor, encrypted string) error {
	return p.store.Set(ctx, visitor, KeyAdminToken, encrypted, TokenTTL)
}

func (p *Prefs) ClearAdminToken(ctx context.Context, visitor string) error {
	return p.store.Delete(ctx, visitor, KeyAdminToken)
}
