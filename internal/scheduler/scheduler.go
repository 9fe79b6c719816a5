// Package scheduler centralizes the gateway's timers. Components register
// named tasks and get a cancel handle back, so lifecycle cleanup is uniform
// instead of each component hand-rolling timer bookkeeping.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]*Task
	wg     sync.WaitGroup
	closed bool
}

// Task is a cancel handle for one registered task.
type Task struct {
	name   string
	cancel context.CancelFunc
	once   sync.Once
	owner  *Scheduler
}

// Cancel stops the task. The task's context is cancelled so an in-flight
// run can abort. Safe to call more than once.
func (t *Task) Cancel() {
	t.once.Do(func() {
		t.cancel()
		t.owner.remove(t)
	})
}

func New() *Scheduler {
	return &Scheduler{tasks: map[string]*Task{}}
}

// Every runs fn immediately, then again interval after each run settles.
// Chained rescheduling means a slow run can never overlap the next one.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(ctx context.Context)) *Task {
	ctx, t := s.register(name)
	if t == nil {
		return nil
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(0) // fire the first run immediately
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			fn(ctx)
			timer.Reset(interval)
		}
	}()
	return t
}

// After runs fn once after d, unless cancelled first.
func (s *Scheduler) After(name string, d time.Duration, fn func(ctx context.Context)) *Task {
	ctx, t := s.register(name)
	if t == nil {
		return nil
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		fn(ctx)
		t.Cancel()
	}()
	return t
}

// Shutdown cancels every task and waits for in-flight runs to return.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.closed = true
	tasks := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) register(name string) (context.Context, *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil
	}
	// A task name is unique; re-registering replaces the old task. The old
	// context is cancelled here, under the lock, so its teardown can never
	// race with the slot being handed to the replacement.
	if old, ok := s.tasks[name]; ok {
		log.Printf("scheduler: replacing task %q", name)
		old.once.Do(old.cancel)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{name: name, cancel: cancel, owner: s}
	s.tasks[name] = t
	return ctx, t
}

// remove drops t from the registry. Identity-checked: a stale handle whose
// name has since been reused must not evict its replacement.
func (s *Scheduler) remove(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[t.name] == t {
		delete(s.tasks, t.name)
	}
}
