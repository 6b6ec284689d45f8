package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Config holds the rebuild and probe policy.
type Config struct {
	// RebuildDelay is the pause before each reconstruction attempt.
	RebuildDelay time.Duration
	// MaxAttempts bounds reconstruction attempts per loss before giving up.
	MaxAttempts int
	// ProbeInterval is how often the liveness probe runs.
	ProbeInterval time.Duration
	Logger        *slog.Logger
}

// Supervisor owns the surface reconstruction policy. The visibility
// controller only reports "surface is gone"; the supervisor retries the
// rebuild with a bounded delay and gives up after MaxAttempts, leaving the
// controller hidden. It also runs a periodic liveness probe so a surface
// that vanished without a DestroyNotify is still noticed.
type Supervisor struct {
	delay         time.Duration
	maxAttempts   int
	probeInterval time.Duration
	logger        *slog.Logger

	// rebuild attempts one surface reconstruction.
	rebuild func() error
	// giveUp tells the controller reconstruction is abandoned.
	giveUp func()
	// probe checks the current surface (and server) for liveness; it
	// returns nil when nothing needs rebuilding.
	probe func() error

	mu       sync.Mutex
	pending  *time.Timer
	attempts int
}

// New creates a supervisor. rebuild and giveUp are required; probe may be
// nil to disable periodic liveness checks.
func New(cfg Config, rebuild func() error, giveUp func(), probe func() error) *Supervisor {
	delay := cfg.RebuildDelay
	if delay <= 0 {
		delay = time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	probeInterval := cfg.ProbeInterval
	if probeInterval <= 0 {
		probeInterval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Supervisor{
		delay:         delay,
		maxAttempts:   maxAttempts,
		probeInterval: probeInterval,
		logger:        logger,
		rebuild:       rebuild,
		giveUp:        giveUp,
		probe:         probe,
	}
}

// NotifyLost schedules a reconstruction. Repeat notifications while an
// attempt is already pending are collapsed; a loss after a completed rebuild
// starts a fresh attempt budget.
func (s *Supervisor) NotifyLost() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return
	}
	s.attempts = 0
	s.scheduleLocked()
}

func (s *Supervisor) scheduleLocked() {
	s.attempts++
	attempt := s.attempts
	s.logger.Info("surface rebuild scheduled", "attempt", attempt, "max", s.maxAttempts, "delay", s.delay)

	s.pending = time.AfterFunc(s.delay, func() {
		err := s.rebuild()

		s.mu.Lock()
		s.pending = nil
		if err == nil {
			s.attempts = 0
			s.mu.Unlock()
			return
		}
		if s.attempts >= s.maxAttempts {
			s.attempts = 0
			s.mu.Unlock()
			s.logger.Error("surface rebuild abandoned", "attempts", attempt, "error", err)
			s.giveUp()
			return
		}
		s.scheduleLocked()
		s.mu.Unlock()
		s.logger.Warn("surface rebuild failed, retrying", "attempt", attempt, "error", err)
	})
}

// Stop cancels any pending reconstruction.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.attempts = 0
}

// Run executes the liveness probe loop until the context is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	if s.probe == nil {
		return
	}

	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	s.logger.Info("surface probe started", "interval", s.probeInterval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("surface probe stopped")
			return
		case <-ticker.C:
			s.runProbe()
		}
	}
}

func (s *Supervisor) runProbe() {
	// A panic in the probe must not take the daemon down with it.
	defer func() {
		if err := recover(); err != nil {
			s.logger.Error("surface probe panic recovered", "error", err)
		}
	}()

	if err := s.probe(); err != nil {
		s.logger.Warn("surface probe failed", "error", err)
	}
}
