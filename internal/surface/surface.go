package surface

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Default text color over the configured background.
const ColorText = 0xf5f7fa

const opacityAtom = "_NET_WM_WINDOW_OPACITY"

// Spec describes the realization of a surface: geometry, colors, and the
// server-side fonts to try in order.
type Spec struct {
	X, Y       int
	Width      int
	Height     int
	Background uint32
	Foreground uint32
	Opacity    float64
	FontNames  []string
	Title      string
}

// Surface is one override-redirect X window plus the drawing resources
// needed to render text into it. Override-redirect keeps the window manager
// out entirely: no decorations, no focus assignment, no restacking.
type Surface struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	win  xproto.Window
	gc   xproto.Gcontext
	font xproto.Font

	destroyed bool
	mapped    bool

	x, y          int
	width, height int
	background    uint32
	foreground    uint32
	opacity       float64

	lastLines []string
}

const surfaceEventMask = xproto.EventMaskButtonPress |
	xproto.EventMaskKeyPress |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskVisibilityChange |
	xproto.EventMaskFocusChange

// newSurface creates the window and its font/GC resources. The window is
// created unmapped; Show maps it.
func newSurface(xu *xgbutil.XUtil, root xproto.Window, spec Spec) (*Surface, error) {
	conn := xu.Conn()
	screen := xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	// Value list order follows the bit positions of the mask (low -> high):
	// CwBackPixel, CwOverrideRedirect, CwEventMask.
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		root,
		int16(spec.X), int16(spec.Y),
		uint16(spec.Width), uint16(spec.Height),
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{spec.Background, 1, surfaceEventMask},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	font, err := openFirstFont(conn, spec.FontNames)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, err
	}

	foreground := spec.Foreground
	if foreground == 0 {
		foreground = ColorText
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, wid)
		return nil, err
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(wid),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{foreground, spec.Background, uint32(font), 0},
	).Check()
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, wid)
		return nil, fmt.Errorf("create gc: %w", err)
	}

	s := &Surface{
		xu:         xu,
		root:       root,
		win:        wid,
		gc:         gc,
		font:       font,
		x:          spec.X,
		y:          spec.Y,
		width:      spec.Width,
		height:     spec.Height,
		background: spec.Background,
		foreground: foreground,
		opacity:    spec.Opacity,
	}

	// Best effort identification for tooling (xprop, task switchers that
	// inspect override-redirect windows anyway).
	icccm.WmNameSet(xu, wid, spec.Title)
	icccm.WmClassSet(xu, wid, &icccm.WmClass{Instance: "glance", Class: "Glance"})
	s.applyOpacity()

	return s, nil
}

func openFirstFont(conn *xgb.Conn, names []string) (xproto.Font, error) {
	font, err := xproto.NewFontId(conn)
	if err != nil {
		return 0, err
	}
	for _, name := range names {
		if err := xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check(); err == nil {
			return font, nil
		}
	}
	return 0, fmt.Errorf("no usable font among %v", names)
}

// Window returns the X window id, 0 after destruction.
func (s *Surface) Window() xproto.Window {
	if s.destroyed {
		return 0
	}
	return s.win
}

// Geometry returns the last applied geometry.
func (s *Surface) Geometry() (x, y, width, height int) {
	return s.x, s.y, s.width, s.height
}

// Mapped reports whether the surface is currently shown.
func (s *Surface) Mapped() bool {
	return s.mapped && !s.destroyed
}

// Show applies geometry, raises the surface above everything, and maps it.
func (s *Surface) Show() {
	if s.destroyed || s.xu == nil {
		return
	}
	conn := s.xu.Conn()

	s.configure()
	xproto.MapWindow(conn, s.win)
	s.applyOpacity()
	s.mapped = true
}

// Hide unmaps the surface without destroying it.
func (s *Surface) Hide() {
	if s.destroyed || s.xu == nil || !s.mapped {
		return
	}
	xproto.UnmapWindow(s.xu.Conn(), s.win)
	s.mapped = false
}

// Raise restacks the surface above all siblings. Used to re-assert
// always-on-top after another window covered it.
func (s *Surface) Raise() {
	if s.destroyed || s.xu == nil {
		return
	}
	xproto.ConfigureWindow(
		s.xu.Conn(),
		s.win,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	)
}

// MoveResize updates the geometry. Takes effect immediately when mapped.
func (s *Surface) MoveResize(x, y, width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s.x, s.y, s.width, s.height = x, y, width, height

	if s.destroyed || s.xu == nil {
		return
	}
	s.configure()
}

func (s *Surface) configure() {
	xproto.ConfigureWindow(
		s.xu.Conn(),
		s.win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(s.x),
			uint32(s.y),
			uint32(s.width),
			uint32(s.height),
			xproto.StackModeAbove,
		},
	)
}

// RenderLines clears the surface and draws the given lines top to bottom.
// Lines beyond the visible area are dropped; ImageText8 caps a line at 255
// bytes.
func (s *Surface) RenderLines(lines []string) {
	s.lastLines = lines
	if s.destroyed || s.xu == nil {
		return
	}
	conn := s.xu.Conn()

	xproto.ClearArea(conn, false, s.win, 0, 0, 0, 0)

	visible := VisibleLines(s.height)
	if len(lines) > visible {
		lines = lines[:visible]
	}

	baseline := PadY + LineHeight - 4
	for i, line := range lines {
		if line == "" {
			continue
		}
		if len(line) > 255 {
			line = line[:255]
		}
		xproto.ImageText8(
			conn,
			byte(len(line)),
			xproto.Drawable(s.win),
			s.gc,
			int16(PadX),
			int16(baseline+i*LineHeight),
			line,
		)
	}
}

// Redraw re-renders the last content, for Expose handling.
func (s *Surface) Redraw() {
	s.RenderLines(s.lastLines)
}

// Destroy frees the window and drawing resources.
func (s *Surface) Destroy() {
	if s.destroyed || s.xu == nil {
		return
	}
	conn := s.xu.Conn()

	xproto.FreeGC(conn, s.gc)
	xproto.CloseFont(conn, s.font)
	xproto.DestroyWindow(conn, s.win)

	s.finalize()
}

// markDestroyed releases client-side resources after the server already
// destroyed the window (DestroyNotify). The GC and font outlive the window
// and still need freeing; the window itself must not be touched again.
func (s *Surface) markDestroyed() {
	if s.destroyed {
		return
	}
	if s.xu != nil {
		conn := s.xu.Conn()
		xproto.FreeGC(conn, s.gc)
		xproto.CloseFont(conn, s.font)
	}
	s.finalize()
}

func (s *Surface) finalize() {
	s.win = 0
	s.gc = 0
	s.font = 0
	s.destroyed = true
	s.mapped = false
}

func (s *Surface) applyOpacity() {
	if s.opacity <= 0 || s.opacity >= 1 {
		return
	}
	value := uint(s.opacity * 0xffffffff)
	// Needs a compositor to take effect; harmless without one.
	xprop.ChangeProp32(s.xu, s.win, opacityAtom, "CARDINAL", value)
}
