package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSpawn_RunsAndDeregisters(t *testing.T) {
	s := NewSupervisor(zap.NewNop())

	var ran atomic.Bool
	h := s.Spawn(1, func(ctx context.Context) {
		ran.Store(true)
	})

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}

	if !ran.Load() {
		t.Error("task body did not run")
	}
	if _, ok := s.Lookup(1); ok {
		t.Error("finished task still registered")
	}
}

func TestSpawn_HandleIsRegisteredWhileRunning(t *testing.T) {
	s := NewSupervisor(zap.NewNop())

	release := make(chan struct{})
	h := s.Spawn(7, func(ctx context.Context) {
		<-release
	})

	if got, ok := s.Lookup(7); !ok || got != h {
		t.Error("running task not found in registry")
	}
	if s.Running() != 1 {
		t.Errorf("Running() = %d, want 1", s.Running())
	}

	close(release)
	<-h.Done()
}

func TestSpawn_PanicIsContained(t *testing.T) {
	s := NewSupervisor(zap.NewNop())

	h := s.Spawn(2, func(ctx context.Context) {
		panic("boom")
	})

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("panicking task never completed")
	}
	if _, ok := s.Lookup(2); ok {
		t.Error("panicked task still registered")
	}
}

func TestCancel_StopsTask(t *testing.T) {
	s := NewSupervisor(zap.NewNop())

	h := s.Spawn(3, func(ctx context.Context) {
		<-ctx.Done()
	})

	h.Cancel()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("cancelled task did not stop")
	}
}

func TestSpawnAfter_FiresAfterDelay(t *testing.T) {
	s := NewSupervisor(zap.NewNop())

	var fired atomic.Bool
	h := s.SpawnAfter(4, 10*time.Millisecond, func() {
		fired.Store(true)
	})

	<-h.Done()
	if !fired.Load() {
		t.Error("delayed function did not fire")
	}
}

func TestSpawnAfter_CancelSuppressesFire(t *testing.T) {
	s := NewSupervisor(zap.NewNop())

	var fired atomic.Bool
	h := s.SpawnAfter(5, time.Hour, func() {
		fired.Store(true)
	})

	h.Cancel()
	<-h.Done()
	if fired.Load() {
		t.Error("cancelled delayed task still fired")
	}
}
