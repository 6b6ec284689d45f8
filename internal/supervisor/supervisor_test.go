package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNotifyLost_RebuildSucceedsFirstAttempt(t *testing.T) {
	var rebuilds, giveUps atomic.Int32

	s := New(Config{RebuildDelay: 10 * time.Millisecond, MaxAttempts: 3, Logger: quietLogger()},
		func() error { rebuilds.Add(1); return nil },
		func() { giveUps.Add(1) },
		nil,
	)

	s.NotifyLost()
	time.Sleep(100 * time.Millisecond)

	if got := rebuilds.Load(); got != 1 {
		t.Fatalf("rebuild attempts = %d, want 1", got)
	}
	if giveUps.Load() != 0 {
		t.Fatal("gave up despite a successful rebuild")
	}
}

func TestNotifyLost_BoundedRetriesThenGiveUp(t *testing.T) {
	var rebuilds, giveUps atomic.Int32

	s := New(Config{RebuildDelay: 5 * time.Millisecond, MaxAttempts: 3, Logger: quietLogger()},
		func() error { rebuilds.Add(1); return errors.New("no server") },
		func() { giveUps.Add(1) },
		nil,
	)

	s.NotifyLost()
	time.Sleep(200 * time.Millisecond)

	if got := rebuilds.Load(); got != 3 {
		t.Fatalf("rebuild attempts = %d, want exactly 3", got)
	}
	if got := giveUps.Load(); got != 1 {
		t.Fatalf("giveUp calls = %d, want 1", got)
	}
}

func TestNotifyLost_CollapsesWhilePending(t *testing.T) {
	var rebuilds atomic.Int32

	s := New(Config{RebuildDelay: 30 * time.Millisecond, MaxAttempts: 3, Logger: quietLogger()},
		func() error { rebuilds.Add(1); return nil },
		func() {},
		nil,
	)

	s.NotifyLost()
	s.NotifyLost()
	s.NotifyLost()
	time.Sleep(150 * time.Millisecond)

	if got := rebuilds.Load(); got != 1 {
		t.Fatalf("rebuild attempts = %d, want 1 (duplicate notifications collapsed)", got)
	}
}

func TestNotifyLost_FreshBudgetAfterRecovery(t *testing.T) {
	var rebuilds atomic.Int32

	s := New(Config{RebuildDelay: 5 * time.Millisecond, MaxAttempts: 3, Logger: quietLogger()},
		func() error { rebuilds.Add(1); return nil },
		func() {},
		nil,
	)

	s.NotifyLost()
	time.Sleep(60 * time.Millisecond)
	s.NotifyLost()
	time.Sleep(60 * time.Millisecond)

	if got := rebuilds.Load(); got != 2 {
		t.Fatalf("rebuild attempts = %d, want 2 (one per loss)", got)
	}
}

func TestStop_CancelsPendingRebuild(t *testing.T) {
	var rebuilds atomic.Int32

	s := New(Config{RebuildDelay: 50 * time.Millisecond, MaxAttempts: 3, Logger: quietLogger()},
		func() error { rebuilds.Add(1); return nil },
		func() {},
		nil,
	)

	s.NotifyLost()
	s.Stop()
	time.Sleep(120 * time.Millisecond)

	if got := rebuilds.Load(); got != 0 {
		t.Fatalf("rebuild ran %d times after Stop", got)
	}
}

func TestRun_ProbeRunsUntilCancelled(t *testing.T) {
	var probes atomic.Int32

	s := New(Config{ProbeInterval: 10 * time.Millisecond, Logger: quietLogger()},
		func() error { return nil },
		func() {},
		func() error { probes.Add(1); return nil },
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if probes.Load() < 2 {
		t.Fatalf("probe ran %d times, want at least 2", probes.Load())
	}
}

func TestRun_ProbePanicRecovered(t *testing.T) {
	s := New(Config{ProbeInterval: 10 * time.Millisecond, Logger: quietLogger()},
		func() error { return nil },
		func() {},
		func() error { panic("probe exploded") },
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Must not panic the test goroutine.
	s.Run(ctx)
}
