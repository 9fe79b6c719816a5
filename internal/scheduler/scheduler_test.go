package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestEveryRunsImmediatelyThenRepeats(t *testing.T) {
	s := New()
	defer s.Shutdown()

	var runs int32
	ran := make(chan struct{}, 16)
	s.Every("tick", 10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
		ran <- struct{}{}
	})

	for i := 0; i < 3; i++ {
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("run %d never happened", i+1)
		}
	}
	if n := atomic.LoadInt32(&runs); n < 3 {
		t.Fatalf("expected at least 3 runs, got %d", n)
	}
}

func TestCancelStopsRepeatingTask(t *testing.T) {
	s := New()
	defer s.Shutdown()

	ran := make(chan struct{}, 16)
	task := s.Every("tick", 5*time.Millisecond, func(ctx context.Context) {
		ran <- struct{}{}
	})

	<-ran
	task.Cancel()

	// Drain anything already in flight, then expect silence.
	time.Sleep(20 * time.Millisecond)
	for len(ran) > 0 {
		<-ran
	}
	select {
	case <-ran:
		t.Fatal("task ran after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAfterFiresOnce(t *testing.T) {
	s := New()
	defer s.Shutdown()

	ran := make(chan struct{}, 1)
	s.After("later", 5*time.Millisecond, func(ctx context.Context) {
		ran <- struct{}{}
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("deferred task never ran")
	}
}

func TestAfterCancelPreventsRun(t *testing.T) {
	s := New()
	defer s.Shutdown()

	ran := make(chan struct{}, 1)
	task := s.After("later", 100*time.Millisecond, func(ctx context.Context) {
		ran <- struct{}{}
	})
	task.Cancel()

	select {
	case <-ran:
		t.Fatal("cancelled task still ran")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestShutdownWaitsForInFlightRun(t *testing.T) {
	s := New()

	entered := make(chan struct{})
	var finished atomic.Bool
	s.Every("slow", time.Minute, func(ctx context.Context) {
		close(entered)
		time.Sleep(30 * time.Millisecond)
		finished.Store(true)
	})

	<-entered
	s.Shutdown()
	if !finished.Load() {
		t.Fatal("Shutdown returned before the in-flight run finished")
	}
}

func TestReregisterReplacesTask(t *testing.T) {
	s := New()
	defer s.Shutdown()

	first := make(chan struct{}, 16)
	second := make(chan struct{}, 16)
	s.Every("poll", 5*time.Millisecond, func(ctx context.Context) { first <- struct{}{} })
	<-first
	s.Every("poll", 5*time.Millisecond, func(ctx context.Context) { second <- struct{}{} })

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement task never ran")
	}
}

func TestReregisterKeepsReplacementCancellable(t *testing.T) {
	s := New()

	old := s.Every("poll", time.Hour, func(ctx context.Context) {})
	s.Every("poll", time.Hour, func(ctx context.Context) {})

	// A stale handle must not evict the replacement from the registry.
	old.Cancel()

	done := make(chan struct{})
	go func() {
		s.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown hung: replacement task was not cancellable")
	}
}
