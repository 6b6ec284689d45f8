package x11

import "testing"

func TestRectIntersect(t *testing.T) {
	a := rect{x1: 0, y1: 0, x2: 100, y2: 100}
	b := rect{x1: 50, y1: 50, x2: 150, y2: 150}

	got := a.intersect(b)
	want := rect{x1: 50, y1: 50, x2: 100, y2: 100}
	if got != want {
		t.Fatalf("intersect = %+v, want %+v", got, want)
	}
	if got.width() != 50 || got.height() != 50 {
		t.Fatalf("intersect size = %dx%d, want 50x50", got.width(), got.height())
	}

	disjoint := rect{x1: 200, y1: 200, x2: 300, y2: 300}
	if isect := a.intersect(disjoint); !isect.empty() {
		t.Fatalf("expected empty intersection, got %+v", isect)
	}

	// Touching edges share no area.
	touching := rect{x1: 100, y1: 0, x2: 200, y2: 100}
	if isect := a.intersect(touching); !isect.empty() {
		t.Fatalf("expected empty intersection for touching rects, got %+v", isect)
	}
}

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, X: 1920, Y: 0, Width: 2560, Height: 1440},
	}

	if mon := monitorAt(monitors, 100, 100); mon == nil || mon.ID != 0 {
		t.Fatalf("expected monitor 0 at (100,100), got %+v", mon)
	}
	if mon := monitorAt(monitors, 1920, 0); mon == nil || mon.ID != 1 {
		t.Fatalf("expected monitor 1 at (1920,0), got %+v", mon)
	}
	// Right/bottom edges are exclusive.
	if mon := monitorAt(monitors, 4480, 0); mon != nil {
		t.Fatalf("expected no monitor at (4480,0), got %+v", mon)
	}
	if mon := monitorAt(monitors, -1, 5); mon != nil {
		t.Fatalf("expected no monitor at (-1,5), got %+v", mon)
	}
}
