package surface

import (
	"fmt"
	"unicode/utf8"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Keysyms the input grab translates specially.
const (
	KeysymReturn    = 0xff0d
	KeysymKPEnter   = 0xff8d
	KeysymEscape    = 0xff1b
	KeysymBackSpace = 0xff08
)

// KeyEvent is one translated key press delivered while the grab is active.
// Keysym is the unmodified (column 0) symbol; Text carries the printable
// text with shift applied, empty for specials.
type KeyEvent struct {
	Mods    uint16
	Keycode xproto.Keycode
	Keysym  uint32
	Text    string
}

// InputGrab captures the keyboard without moving input focus. The overlay
// never takes focus from the app the user was working in; instead the whole
// keyboard is grabbed while the overlay accepts input and key events are
// redirected to a hidden InputOnly window.
type InputGrab struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	grabWindow xproto.Window
	attached   bool
	active     bool

	// OnKey receives every key press while the grab is active.
	OnKey func(ev KeyEvent)
}

func NewInputGrab(xu *xgbutil.XUtil, root xproto.Window) *InputGrab {
	return &InputGrab{xu: xu, root: root}
}

// Active reports whether the keyboard is currently grabbed.
func (g *InputGrab) Active() bool {
	return g.active
}

// Start grabs the keyboard and routes key events to OnKey.
func (g *InputGrab) Start() error {
	if g.active {
		return nil
	}
	if err := g.ensureGrabWindow(); err != nil {
		return err
	}

	xu := g.xu
	grab := func() (*xproto.GrabKeyboardReply, error) {
		return xproto.GrabKeyboard(
			xu.Conn(),
			false,                  // owner_events
			g.root,                 // grab_window (must be viewable)
			xproto.TimeCurrentTime, // time
			xproto.GrabModeAsync,   // pointer_mode
			xproto.GrabModeAsync,   // keyboard_mode
		).Reply()
	}

	reply, err := grab()
	if err != nil {
		return err
	}

	// When the grab is started from a globally grabbed hotkey, the keyboard
	// may already be grabbed by this client. If so, ungrab and retry.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabKeyboard(xu.Conn(), xproto.TimeCurrentTime)
		reply, err = grab()
		if err != nil {
			return err
		}
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab failed with status %d", reply.Status)
	}

	xevent.RedirectKeyEvents(xu, g.grabWindow)

	if !g.attached {
		xevent.KeyPressFun(g.handleKeyPress).Connect(xu, g.grabWindow)
		g.attached = true
	}

	g.active = true
	return nil
}

// Stop releases the keyboard grab.
func (g *InputGrab) Stop() {
	if !g.active {
		return
	}

	xproto.UngrabKeyboard(g.xu.Conn(), xproto.TimeCurrentTime)
	xevent.RedirectKeyEvents(g.xu, 0)

	if g.attached && g.grabWindow != 0 {
		xevent.Detach(g.xu, g.grabWindow)
		g.attached = false
	}

	g.active = false
}

func (g *InputGrab) ensureGrabWindow() error {
	if g.grabWindow != 0 {
		return nil
	}

	conn := g.xu.Conn()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}

	// InputOnly window that never draws anything; used solely as a safe
	// target for key event callbacks while the keyboard is grabbed.
	err = xproto.CreateWindowChecked(
		conn,
		0, // depth (must be 0 for InputOnly)
		wid,
		g.root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOnly,
		xproto.Visualid(0), // CopyFromParent
		xproto.CwEventMask,
		[]uint32{uint32(xproto.EventMaskKeyPress)},
	).Check()
	if err != nil {
		return err
	}

	xproto.MapWindow(conn, wid)
	g.grabWindow = wid
	return nil
}

func (g *InputGrab) handleKeyPress(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
	if !g.active || g.OnKey == nil {
		return
	}
	g.OnKey(translateKey(xu, ev))
}

// translateKey turns a raw key press into a KeyEvent. Shared by the grab
// path and direct per-window delivery.
func translateKey(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) KeyEvent {
	keysym := uint32(keybind.KeysymGet(xu, ev.Detail, 0))
	text := keybind.LookupString(xu, ev.State, ev.Detail)
	if !printableText(text) {
		text = ""
	}
	return KeyEvent{
		Mods:    ev.State,
		Keycode: ev.Detail,
		Keysym:  keysym,
		Text:    text,
	}
}

func printableText(s string) bool {
	if s == "" {
		return false
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return false
	}
	return r >= 0x20 && r != 0x7f
}
