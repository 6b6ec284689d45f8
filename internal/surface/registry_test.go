package surface

import (
	"errors"
	"fmt"
	"testing"
)

// testRegistry builds a registry with a hand-placed surface so the guard
// logic can be exercised without an X server.
func testRegistry(role Role, gen uint64) (*Registry, *Surface) {
	r := NewRegistry(nil, 0, nil)
	s := &Surface{win: 42}
	r.surfaces[role] = &liveSurface{surface: s, gen: gen}
	return r, s
}

func TestWithReturnsSentinelWhenNoSurface(t *testing.T) {
	r := NewRegistry(nil, 0, nil)

	invoked := false
	err := r.With(RoleOverlay, func(*Surface) error {
		invoked = true
		return nil
	})

	if !errors.Is(err, ErrNoSurface) {
		t.Fatalf("expected ErrNoSurface, got %v", err)
	}
	if invoked {
		t.Fatalf("op must not run without a live surface")
	}
}

func TestWithSwallowsOperationFaults(t *testing.T) {
	r, _ := testRegistry(RoleOverlay, 1)

	err := r.With(RoleOverlay, func(*Surface) error {
		return fmt.Errorf("window vanished mid-call")
	})
	if err != nil {
		t.Fatalf("operation faults must be swallowed, got %v", err)
	}
}

func TestWithGenDropsStaleGenerations(t *testing.T) {
	r, _ := testRegistry(RoleOverlay, 3)

	invoked := false
	err := r.WithGen(RoleOverlay, 2, func(*Surface) error {
		invoked = true
		return nil
	})
	if !errors.Is(err, ErrNoSurface) {
		t.Fatalf("expected ErrNoSurface for stale generation, got %v", err)
	}
	if invoked {
		t.Fatalf("op must not run for a stale generation")
	}

	if err := r.WithGen(RoleOverlay, 3, func(*Surface) error { return nil }); err != nil {
		t.Fatalf("current generation must pass, got %v", err)
	}
}

func TestMarkDestroyedGuardsLaterOperations(t *testing.T) {
	r, s := testRegistry(RoleOverlay, 1)

	role, ok := r.MarkDestroyed(42)
	if !ok || role != RoleOverlay {
		t.Fatalf("expected overlay destruction, got role=%q ok=%v", role, ok)
	}
	if !s.destroyed {
		t.Fatalf("surface must be flagged destroyed")
	}

	// Operations after destruction are no-ops, repeatedly.
	for i := 0; i < 2; i++ {
		err := r.With(RoleOverlay, func(*Surface) error {
			t.Fatalf("op ran against a destroyed surface")
			return nil
		})
		if !errors.Is(err, ErrNoSurface) {
			t.Fatalf("expected ErrNoSurface after destruction, got %v", err)
		}
	}

	if _, ok := r.Generation(RoleOverlay); ok {
		t.Fatalf("destroyed surface must not report a live generation")
	}
}

func TestMarkDestroyedIgnoresUnknownWindows(t *testing.T) {
	r, _ := testRegistry(RoleOverlay, 1)

	if _, ok := r.MarkDestroyed(7); ok {
		t.Fatalf("unknown window must not match")
	}
	if _, ok := r.Generation(RoleOverlay); !ok {
		t.Fatalf("live surface must survive unrelated DestroyNotify")
	}
}

func TestWindowReportsCurrentId(t *testing.T) {
	r, _ := testRegistry(RoleOverlay, 1)

	if got := r.Window(RoleOverlay); got != 42 {
		t.Fatalf("expected window 42, got %d", got)
	}
	if got := r.Window(RolePanel); got != 0 {
		t.Fatalf("expected 0 for absent role, got %d", got)
	}

	r.MarkDestroyed(42)
	if got := r.Window(RoleOverlay); got != 0 {
		t.Fatalf("expected 0 after destruction, got %d", got)
	}
}
