// Package tasks runs detached background work. Spawned tasks are
// fire-and-forget by default, but every task's handle sits in a registry
// keyed by message id for as long as it runs, so cancellation can be added
// to callers later without changing the spawn sites.
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handle refers to one in-flight task.
type Handle struct {
	key    int64
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel asks the task to stop. Tasks only observe it through their context.
func (h *Handle) Cancel() { h.cancel() }

// Done is closed when the task has finished.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Supervisor owns the registry of running tasks.
type Supervisor struct {
	mu     sync.Mutex
	tasks  map[int64]*Handle
	logger *zap.Logger
}

func NewSupervisor(logger *zap.Logger) *Supervisor {
	return &Supervisor{
		tasks:  make(map[int64]*Handle),
		logger: logger,
	}
}

// Spawn runs fn on its own goroutine, registered under key (one task per
// key; a second spawn with a live key replaces the registry entry but does
// not cancel the first task). Panics are contained and logged so a task can
// never take down the message loop.
func (s *Supervisor) Spawn(key int64, fn func(ctx context.Context)) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{key: key, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	s.tasks[key] = h
	s.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Background task panicked",
					zap.Int64("key", key),
					zap.Any("panic", r))
			}
			s.mu.Lock()
			if s.tasks[key] == h {
				delete(s.tasks, key)
			}
			s.mu.Unlock()
			cancel()
			close(h.done)
		}()
		fn(ctx)
	}()

	return h
}

// SpawnAfter runs fn after the given delay, unless the handle is cancelled
// first. Used for delayed notification cleanup.
func (s *Supervisor) SpawnAfter(key int64, delay time.Duration, fn func()) *Handle {
	return s.Spawn(key, func(ctx context.Context) {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			fn()
		}
	})
}

// Lookup returns the live handle for key, if any.
func (s *Supervisor) Lookup(key int64) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.tasks[key]
	return h, ok
}

// Running reports the number of live tasks.
func (s *Supervisor) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
