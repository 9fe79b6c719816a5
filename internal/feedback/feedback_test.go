package feedback

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pochi-app/pochi-web/internal/upstream"
)

func item(id int, ts string) upstream.FeedbackItem {
	return upstream.FeedbackItem{ID: id, Text: "t", Name: "n", Timestamp: ts}
}

func TestProcessDedupsAndSorts(t *testing.T) {
	in := []upstream.FeedbackItem{
		item(1, "2024-01-01T00:00:00Z"),
		item(2, "2024-01-02T00:00:00Z"),
		item(1, "2024-01-01T00:00:00Z"),
	}
	got := Process(in)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("expected [2 1], got %+v", got)
	}
}

func TestProcessDropsIncompleteItems(t *testing.T) {
	in := []upstream.FeedbackItem{
		{ID: 1, Text: "hi", Timestamp: "2024-01-01T00:00:00Z"}, // no name
		{ID: 2, Name: "a", Timestamp: "2024-01-01T00:00:00Z"}, // no text
		item(3, "2024-01-03T00:00:00Z"),
	}
	got := Process(in)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected only complete item, got %+v", got)
	}
}

func TestProcessDedupKeepsFirstOccurrence(t *testing.T) {
	a := item(7, "2024-03-01T00:00:00Z")
	a.Text = "first"
	b := item(7, "2024-03-01T00:00:00Z")
	b.Text = "second"
	got := Process([]upstream.FeedbackItem{a, b})
	if len(got) != 1 || got[0].Text != "first" {
		t.Fatalf("expected first occurrence kept, got %+v", got)
	}
}

func TestIconIndexStable(t *testing.T) {
	ts := "2024-01-02T03:04:05Z"
	first := IconIndex(ts, IconCount)
	for i := 0; i < 10; i++ {
		if IconIndex(ts, IconCount) != first {
			t.Fatal("icon index must be stable for a given timestamp")
		}
	}
	if first < 0 || first >= IconCount {
		t.Fatalf("icon index out of range: %d", first)
	}
}

func TestMarqueeItems(t *testing.T) {
	two := []upstream.FeedbackItem{item(1, "a"), item(2, "b")}
	got := MarqueeItems(two)
	// 2 distinct, padded to 6, tripled.
	if len(got) != 18 {
		t.Fatalf("expected 18 entries, got %d", len(got))
	}

	var many []upstream.FeedbackItem
	for i := 0; i < 40; i++ {
		many = append(many, item(i+1, "ts"))
	}
	got = MarqueeItems(many)
	if len(got) != 45 {
		t.Fatalf("expected 15 distinct tripled = 45, got %d", len(got))
	}

	if MarqueeItems(nil) != nil {
		t.Fatal("empty input should yield no marquee")
	}
}

func TestPollerKeepsSnapshotOnFailure(t *testing.T) {
	calls := int32(0)
	p := NewPoller(func(ctx context.Context) ([]upstream.FeedbackItem, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return []upstream.FeedbackItem{item(1, "2024-01-01T00:00:00Z")}, nil
		}
		return nil, errors.New("upstream down")
	})

	p.poll(context.Background())
	if len(p.Items()) != 1 {
		t.Fatal("first poll should populate snapshot")
	}
	p.now = func() time.Time { return time.Now().Add(time.Minute) }
	p.poll(context.Background())
	if len(p.Items()) != 1 {
		t.Fatal("failed poll must keep the previous snapshot")
	}
}

func TestRefreshDebounce(t *testing.T) {
	calls := int32(0)
	p := NewPoller(func(ctx context.Context) ([]upstream.FeedbackItem, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	})

	base := time.Now()
	p.now = func() time.Time { return base }
	if !p.Refresh(context.Background()) {
		t.Fatal("first refresh should run")
	}
	// Within the debounce window of the completed fetch.
	p.now = func() time.Time { return base.Add(2 * time.Second) }
	if p.Refresh(context.Background()) {
		t.Fatal("refresh inside debounce window should be dropped")
	}
	p.now = func() time.Time { return base.Add(6 * time.Second) }
	if !p.Refresh(context.Background()) {
		t.Fatal("refresh after debounce window should run")
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected 2 fetches, got %d", n)
	}
}

func TestProcessedSnapshotMatchesExample(t *testing.T) {
	in := []upstream.FeedbackItem{
		item(1, "2024-01-01T00:00:00Z"),
		item(2, "2024-01-02T00:00:00Z"),
		item(1, "2024-01-01T00:00:00Z"),
	}
	var ids []int
	for _, it := range Process(in) {
		ids = append(ids, it.ID)
	}
	if !reflect.DeepEqual(ids, []int{2, 1}) {
		t.Fatalf("expected ids [2 1], got %v", ids)
	}
}
