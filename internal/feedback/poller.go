package feedback

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pochi-app/pochi-web/internal/cache"
	"github.com/pochi-app/pochi-web/internal/scheduler"
	"github.com/pochi-app/pochi-web/internal/upstream"
)

const (
	// PollInterval is how long after one fetch settles the next begins.
	PollInterval = 90 * time.Second
	// FetchTimeout bounds a single poll independently of the retry policy.
	FetchTimeout = 10 * time.Second
	// RefreshDebounce drops manual refresh signals arriving too soon after
	// the last completed fetch.
	RefreshDebounce = 5 * time.Second

	snapshotKey = "feedback:latest"
	snapshotTTL = 10 * time.Minute
)

// FetchFunc fetches the raw public feedback list.
type FetchFunc func(ctx context.Context) ([]upstream.FeedbackItem, error)

// Poller keeps the processed feedback snapshot current. One instance runs
// for the whole process; handlers read Items.
type Poller struct {
	fetch FetchFunc

	mu        sync.RWMutex
	items     []upstream.FeedbackItem
	lastFetch time.Time

	now func() time.Time
}

func NewPoller(fetch FetchFunc) *Poller {
	return &Poller{fetch: fetch, now: time.Now}
}

// Start registers the poll loop on the scheduler. The first fetch happens
// immediately; each following one is chained interval after the previous
// settles, so slow upstreams never stack polls. Zero interval means
// PollInterval.
func (p *Poller) Start(sched *scheduler.Scheduler, interval time.Duration) *scheduler.Task {
	if interval <= 0 {
		interval = PollInterval
	}
	// Serve something before the first upstream round-trip completes.
	var cached []upstream.FeedbackItem
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if ok, _ := cache.Get(ctx, snapshotKey, &cached); ok {
		p.mu.Lock()
		p.items = cached
		p.mu.Unlock()
	}
	cancel()

	return sched.Every("feedback-poll", interval, p.poll)
}

func (p *Poller) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	raw, err := p.fetch(ctx)
	p.mu.Lock()
	p.lastFetch = p.now()
	p.mu.Unlock()
	if err != nil {
		// Soft failure. Keep showing the last good snapshot.
		log.Printf("⚠️ feedback poll failed: %v", err)
		return
	}

	items := Process(raw)
	p.mu.Lock()
	p.items = items
	p.mu.Unlock()

	if err := cache.Set(ctx, snapshotKey, items, snapshotTTL); err != nil {
		log.Printf("⚠️ feedback snapshot cache write failed: %v", err)
	}
}

// Refresh runs an immediate poll, typically fired after a successful
// submission. Calls within RefreshDebounce of the last completed fetch are
// dropped.
func (p *Poller) Refresh(ctx context.Context) bool {
	p.mu.RLock()
	last := p.lastFetch
	p.mu.RUnlock()
	if !last.IsZero() && p.now().Sub(last) < RefreshDebounce {
		return false
	}
	p.poll(ctx)
	return true
}

// Items returns the current processed snapshot, newest first.
func (p *Poller) Items() []upstream.FeedbackItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]upstream.FeedbackItem, len(p.items))
	copy(out, p.items)
	return out
}
