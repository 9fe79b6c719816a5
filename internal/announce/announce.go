// Package announce decides which announcements a visitor still sees and
// remembers dismissals for them.
package announce

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/pochi-app/pochi-web/internal/prefs"
	"github.com/pochi-app/pochi-web/internal/scheduler"
	"github.com/pochi-app/pochi-web/internal/upstream"
)

// AutoDismissDelay is how long the popup stays before everything shown is
// marked dismissed on the visitor's behalf.
const AutoDismissDelay = 20 * time.Second

// MaxVisible caps how many announcements the popup shows at once. The
// creation flow enforces the same cap, but the backend is not trusted to.
const MaxVisible = 3

type Service struct {
	prefs *prefs.Prefs
	sched *scheduler.Scheduler
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*scheduler.Task
}

func New(p *prefs.Prefs, sched *scheduler.Scheduler) *Service {
	return &Service{prefs: p, sched: sched, delay: AutoDismissDelay, timers: map[string]*scheduler.Task{}}
}

// Visible filters the fetched list down to what this visitor should see:
// active announcements whose id is not in their dismissed set, ordered by
// display order, at most MaxVisible of them. When the result is non-empty
// an auto-dismiss timer starts for exactly the ids shown.
func (s *Service) Visible(ctx context.Context, visitor string, all []upstream.Announcement) ([]upstream.Announcement, error) {
	dismissed, err := s.prefs.Dismissed(ctx, visitor)
	if err != nil {
		return nil, err
	}
	closed := make(map[int]bool, len(dismissed))
	for _, id := range dismissed {
		closed[id] = true
	}

	out := make([]upstream.Announcement, 0, len(all))
	for _, a := range all {
		if !a.IsActive || closed[a.ID] {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	if len(out) > MaxVisible {
		out = out[:MaxVisible]
	}

	if len(out) > 0 {
		s.armAutoDismiss(visitor, out)
	}
	return out, nil
}

// Dismiss records ids as closed for the visitor and cancels any pending
// auto-dismiss, since the visitor acted first.
func (s *Service) Dismiss(ctx context.Context, visitor string, ids ...int) error {
	s.cancelTimer(visitor)
	return s.prefs.Dismiss(ctx, visitor, ids...)
}

func (s *Service) armAutoDismiss(visitor string, shown []upstream.Announcement) {
	ids := make([]int, len(shown))
	for i, a := range shown {
		ids[i] = a.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.timers[visitor]; ok {
		old.Cancel()
	}
	s.timers[visitor] = s.sched.After("announce-dismiss:"+visitor, s.delay, func(ctx context.Context) {
		s.mu.Lock()
		delete(s.timers, visitor)
		s.mu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.prefs.Dismiss(ctx, visitor, ids...); err != nil {
			log.Printf("⚠️ auto-dismiss persist failed for visitor %s: %v", visitor, err)
		}
	})
}

func (s *Service) cancelTimer(visitor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[visitor]; ok {
		t.Cancel()
		delete(s.timers, visitor)
	}
}
