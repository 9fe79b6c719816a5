package upload

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Preview is one held file with a routable handle. The URL path serves the
// bytes back so the page can render a thumbnail without re-uploading.
type Preview struct {
	ID          string
	Slot        string
	ContentType string
	Name        string
	Data        []byte
	CreatedAt   time.Time
}

// PreviewStore holds at most one preview per upload slot. A slot is one
// visitor's one upload surface (for example "v123/avatar"). Accepting a new
// file into an occupied slot releases the old preview first, so a slot can
// never hold two live previews.
type PreviewStore struct {
	mu      sync.Mutex
	byID    map[string]*Preview
	bySlot  map[string]string
	maxAge  time.Duration
	nowFunc func() time.Time
}

// DefaultPreviewAge is how long an untouched preview survives before Sweep
// reclaims it. Covers the visitor walking away mid-upload.
const DefaultPreviewAge = 30 * time.Minute

func NewPreviewStore() *PreviewStore {
	return &PreviewStore{
		byID:    map[string]*Preview{},
		bySlot:  map[string]string{},
		maxAge:  DefaultPreviewAge,
		nowFunc: time.Now,
	}
}

// Accept validates the file under policy and stores it, replacing whatever
// the slot held. On validation failure the slot's current preview is left
// untouched.
func (s *PreviewStore) Accept(slot, name, contentType string, data []byte, policy *Policy) (*Preview, error) {
	if err := policy.Check(contentType, int64(len(data))); err != nil {
		return nil, err
	}

	p := &Preview{
		ID:          uuid.New().String(),
		Slot:        slot,
		ContentType: contentType,
		Name:        name,
		Data:        data,
		CreatedAt:   s.nowFunc(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if oldID, ok := s.bySlot[slot]; ok {
		delete(s.byID, oldID)
	}
	s.byID[p.ID] = p
	s.bySlot[slot] = p.ID
	return p, nil
}

// Get returns the preview by handle, nil if released or never created.
func (s *PreviewStore) Get(id string) *Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id]
}

// Current returns the live preview for a slot, nil when empty.
func (s *PreviewStore) Current(slot string) *Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.bySlot[slot]; ok {
		return s.byID[id]
	}
	return nil
}

// Release frees one preview by handle. Releasing an unknown or already
// released handle is a no-op.
func (s *PreviewStore) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	if s.bySlot[p.Slot] == id {
		delete(s.bySlot, p.Slot)
	}
}

// ReleaseSlot frees whatever the slot holds. Used on page teardown.
func (s *PreviewStore) ReleaseSlot(slot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.bySlot[slot]; ok {
		delete(s.byID, id)
		delete(s.bySlot, slot)
	}
}

// Sweep drops previews older than the max age. Runs on the shared
// scheduler.
func (s *PreviewStore) Sweep() int {
	cutoff := s.nowFunc().Add(-s.maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, p := range s.byID {
		if p.CreatedAt.Before(cutoff) {
			delete(s.byID, id)
			if s.bySlot[p.Slot] == id {
				delete(s.bySlot, p.Slot)
			}
			n++
		}
	}
	return n
}
