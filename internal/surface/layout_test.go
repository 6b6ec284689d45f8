package surface

import (
	"strings"
	"testing"
)

func TestWrapLinesBreaksAtWordBoundaries(t *testing.T) {
	lines := WrapLines("the quick brown fox jumps over the lazy dog", 15)

	for i, line := range lines {
		if len(line) > 15 {
			t.Fatalf("line %d exceeds 15 chars: %q", i, line)
		}
	}
	if got := strings.Join(lines, " "); got != "the quick brown fox jumps over the lazy dog" {
		t.Fatalf("wrap lost content: %q", got)
	}
}

func TestWrapLinesPreservesExplicitNewlines(t *testing.T) {
	lines := WrapLines("first\n\nsecond", 40)
	want := []string{"first", "", "second"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWrapLinesHardBreaksLongWords(t *testing.T) {
	lines := WrapLines("abcdefghijklmnop", 5)
	want := []string{"abcde", "fghij", "klmno", "p"}
	if len(lines) != len(want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWrapLinesEmptyInput(t *testing.T) {
	if lines := WrapLines("", 20); len(lines) != 0 {
		t.Fatalf("expected no lines for empty input, got %v", lines)
	}
	if lines := WrapLines("a\n", 20); len(lines) != 1 || lines[0] != "a" {
		t.Fatalf("expected trailing newline to be dropped, got %v", lines)
	}
}

func TestFitHeightClamps(t *testing.T) {
	if got := FitHeight(1, 96, 480); got != 96 {
		t.Fatalf("expected min clamp 96, got %d", got)
	}
	if got := FitHeight(100, 96, 480); got != 480 {
		t.Fatalf("expected max clamp 480, got %d", got)
	}

	// 10 lines: 10*16 + 2*8 = 176, inside the clamp window.
	if got := FitHeight(10, 96, 480); got != 176 {
		t.Fatalf("expected exact fit 176, got %d", got)
	}
}

func TestMaxLineCharsAndVisibleLinesRoundTrip(t *testing.T) {
	width := 560
	chars := MaxLineChars(width)
	if chars != (560-2*PadX)/CharWidth {
		t.Fatalf("unexpected chars for width %d: %d", width, chars)
	}
	if chars < 1 {
		t.Fatalf("chars must be positive")
	}

	height := FitHeight(5, 96, 480)
	if VisibleLines(height) < 5 {
		t.Fatalf("expected at least 5 visible lines in height %d, got %d", height, VisibleLines(height))
	}
}

func TestTopCenterCentersAndClamps(t *testing.T) {
	x, y := TopCenter(100, 50, 1000, 48, 560)
	if x != 100+(1000-560)/2 {
		t.Fatalf("expected centered x, got %d", x)
	}
	if y != 98 {
		t.Fatalf("expected y 98, got %d", y)
	}

	// Surface wider than the work area clamps to its left edge.
	x, _ = TopCenter(100, 50, 400, 48, 560)
	if x != 100 {
		t.Fatalf("expected clamp to work-area origin, got %d", x)
	}
}
