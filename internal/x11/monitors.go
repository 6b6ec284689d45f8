package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// ActiveMonitor returns the monitor the user is currently working on. The
// pointer position wins; an overlay summoned by hotkey should appear where
// the user is, not where the focused window happens to sit. Falls back to
// the focused window's monitor, then the first monitor.
func (c *Connection) ActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		if mon := monitorAt(monitors, int(pointer.RootX), int(pointer.RootY)); mon != nil {
			return mon, nil
		}
	}

	if activeWin, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && activeWin != 0 {
		if cx, cy, ok := c.windowCenter(activeWin); ok {
			if mon := monitorAt(monitors, cx, cy); mon != nil {
				return mon, nil
			}
		}
	}

	return &monitors[0], nil
}

// ActiveWorkArea returns the active monitor's geometry clamped to its usable
// area, with panels and docks excluded. Dock struts are authoritative when
// any dock advertises them; otherwise the EWMH work area for the current
// desktop is intersected with the monitor.
func (c *Connection) ActiveWorkArea() (*Monitor, error) {
	mon, err := c.ActiveMonitor()
	if err != nil {
		return nil, err
	}

	if reserve, ok := c.dockReserve(mon); ok {
		mon.X += reserve.left
		mon.Y += reserve.top
		mon.Width -= reserve.left + reserve.right
		mon.Height -= reserve.top + reserve.bottom
		if mon.Width < 1 {
			mon.Width = 1
		}
		if mon.Height < 1 {
			mon.Height = 1
		}
		return mon, nil
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return mon, nil
	}

	desktopIndex := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
		desktopIndex = int(current)
	}
	wa := workArea[desktopIndex]

	isect := monRect(mon).intersect(rect{
		x1: int(wa.X),
		y1: int(wa.Y),
		x2: int(wa.X) + int(wa.Width),
		y2: int(wa.Y) + int(wa.Height),
	})
	if !isect.empty() {
		mon.X = isect.x1
		mon.Y = isect.y1
		mon.Width = isect.width()
		mon.Height = isect.height()
	}

	return mon, nil
}

func (c *Connection) windowCenter(windowID xproto.Window) (int, int, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, false
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, false
	}
	return int(translate.DstX) + int(geom.Width)/2, int(translate.DstY) + int(geom.Height)/2, true
}

func monitorAt(monitors []Monitor, x, y int) *Monitor {
	for i := range monitors {
		mon := &monitors[i]
		if x >= mon.X && x < mon.X+mon.Width && y >= mon.Y && y < mon.Y+mon.Height {
			return mon
		}
	}
	return nil
}

// rect is a half-open rectangle: [x1,x2) x [y1,y2).
type rect struct {
	x1, y1, x2, y2 int
}

func monRect(m *Monitor) rect {
	return rect{x1: m.X, y1: m.Y, x2: m.X + m.Width, y2: m.Y + m.Height}
}

func (r rect) intersect(o rect) rect {
	out := rect{
		x1: max(r.x1, o.x1),
		y1: max(r.y1, o.y1),
		x2: min(r.x2, o.x2),
		y2: min(r.y2, o.y2),
	}
	if out.empty() {
		return rect{}
	}
	return out
}

func (r rect) empty() bool { return r.x2 <= r.x1 || r.y2 <= r.y1 }
func (r rect) width() int  { return r.x2 - r.x1 }
func (r rect) height() int { return r.y2 - r.y1 }

type edgeReserve struct {
	left, right, top, bottom int
}

// dockReserve scans EWMH dock windows for strut reservations overlapping the
// monitor and returns the per-edge space to subtract. Returns false when no
// dock advertises struts; callers then fall back to the EWMH work area.
func (c *Connection) dockReserve(mon *Monitor) (edgeReserve, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return edgeReserve{}, false
	}
	rootW := int(rootGeom.Width)
	rootH := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return edgeReserve{}, false
	}

	var reserve edgeReserve
	mr := monRect(mon)

	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil || !isDockType(types) {
			continue
		}

		sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID)
		if err != nil {
			// Some docks only set _NET_WM_STRUT (no partial ranges).
			s, err := ewmh.WmStrutGet(c.XUtil, windowID)
			if err != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftStartY: 0, LeftEndY: uint(rootH - 1),
				RightStartY: 0, RightEndY: uint(rootH - 1),
				TopStartX: 0, TopEndX: uint(rootW - 1),
				BottomStartX: 0, BottomEndX: uint(rootW - 1),
			}
		}

		if sp.Top > 0 {
			band := rect{x1: int(sp.TopStartX), y1: 0, x2: int(sp.TopEndX) + 1, y2: int(sp.Top)}
			if isect := mr.intersect(band); !isect.empty() {
				reserve.top = max(reserve.top, isect.height())
			}
		}
		if sp.Bottom > 0 {
			band := rect{x1: int(sp.BottomStartX), y1: rootH - int(sp.Bottom), x2: int(sp.BottomEndX) + 1, y2: rootH}
			if isect := mr.intersect(band); !isect.empty() {
				reserve.bottom = max(reserve.bottom, isect.height())
			}
		}
		if sp.Left > 0 {
			band := rect{x1: 0, y1: int(sp.LeftStartY), x2: int(sp.Left), y2: int(sp.LeftEndY) + 1}
			if isect := mr.intersect(band); !isect.empty() {
				reserve.left = max(reserve.left, isect.width())
			}
		}
		if sp.Right > 0 {
			band := rect{x1: rootW - int(sp.Right), y1: int(sp.RightStartY), x2: rootW, y2: int(sp.RightEndY) + 1}
			if isect := mr.intersect(band); !isect.empty() {
				reserve.right = max(reserve.right, isect.width())
			}
		}
	}

	if reserve == (edgeReserve{}) {
		return edgeReserve{}, false
	}
	return reserve, true
}

func isDockType(types []string) bool {
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}
