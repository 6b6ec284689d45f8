package overlay

import (
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/1broseidon/glance/internal/bridge"
	"github.com/1broseidon/glance/internal/config"
	"github.com/1broseidon/glance/internal/surface"
)

// newTestController builds a controller with no X connection: the empty
// registry swallows every surface operation, so only the state and prompt
// logic runs.
func newTestController(t *testing.T, runner CommandRunner) *Controller {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	c := &Controller{
		registry:  surface.NewRegistry(nil, 0, logger),
		grab:      surface.NewInputGrab(nil, 0),
		logger:    logger,
		runner:    runner,
		cfg:       config.Overlay{Width: 600, MinHeight: 40, MaxHeight: 300},
		state:     StateHidden,
		resume:    StateHidden,
		startedAt: time.Now(),
	}
	c.timer = newAutoHide(c.timerFired)
	c.timer.setDurations(map[bridge.ResponseKind]time.Duration{
		bridge.KindPlain:     5 * time.Second,
		bridge.KindDetailed:  12 * time.Second,
		bridge.KindGenerated: 18 * time.Second,
	})
	c.grab.OnKey = c.handleKey
	t.Cleanup(c.timer.Cancel)
	return c
}

func TestHandleResult_DoesNotReleaseInFlightCommand(t *testing.T) {
	var done func(bridge.Result)
	calls := 0
	c := newTestController(t, func(command string, fn func(bridge.Result)) {
		calls++
		done = fn
	})
	c.state = StateShowing

	c.mu.Lock()
	c.prompt = []rune("list files")
	c.submitLocked()
	c.mu.Unlock()

	if calls != 1 {
		t.Fatalf("runner called %d times, want 1", calls)
	}
	if !c.Snapshot().CommandActive {
		t.Fatal("submit did not mark a command in flight")
	}

	// A capture (or IPC command) finishing must not release the guard held
	// by the typed command.
	c.HandleResult(bridge.Result{Success: true, Text: "Captured /tmp/shot.png", Kind: bridge.KindPlain})
	if !c.Snapshot().CommandActive {
		t.Fatal("unrelated result released the in-flight guard")
	}

	c.mu.Lock()
	c.prompt = []rune("second command")
	c.submitLocked()
	c.mu.Unlock()
	if calls != 1 {
		t.Fatal("second command submitted while the first was still in flight")
	}

	done(bridge.Result{Success: true, Text: "ok", Kind: bridge.KindPlain})
	if c.Snapshot().CommandActive {
		t.Fatal("completion did not release the in-flight guard")
	}
}

func TestOverlayHooks_DebugModeRoutesKeyPresses(t *testing.T) {
	c := newTestController(t, nil)

	if c.overlayHooks().OnKey != nil {
		t.Fatal("key hook attached without debug mode")
	}

	c.debug = true
	hooks := c.overlayHooks()
	if hooks.OnKey == nil {
		t.Fatal("debug mode left the overlay without a key press route")
	}

	c.state = StateShowing
	hooks.OnKey(surface.KeyEvent{Keysym: 'l', Text: "l"})
	hooks.OnKey(surface.KeyEvent{Keysym: 's', Text: "s"})

	c.mu.Lock()
	typed := string(c.prompt)
	c.mu.Unlock()
	if typed != "ls" {
		t.Fatalf("prompt = %q, want %q", typed, "ls")
	}
}

func TestContentLines_TruncatesPromptOnRuneBoundary(t *testing.T) {
	c := newTestController(t, nil)
	maxChars := surface.MaxLineChars(c.cfg.Width)

	c.mu.Lock()
	c.prompt = []rune(strings.Repeat("€", maxChars+10))
	lines := c.contentLinesLocked()
	c.mu.Unlock()

	got := lines[0]
	if !utf8.ValidString(got) {
		t.Fatalf("prompt line is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != maxChars {
		t.Fatalf("prompt line has %d runes, want %d", n, maxChars)
	}
	for _, r := range got {
		if r != '€' {
			t.Fatalf("prompt line contains mangled rune %q", r)
		}
	}
}
