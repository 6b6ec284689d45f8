package surface

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Hooks receives the translated interaction signals for one surface window.
// Every callback is optional. Callbacks run on the X event loop goroutine;
// they must not block.
type Hooks struct {
	OnClicked    func()
	OnHoverEnter func()
	OnHoverExit  func()
	OnObscured   func()
	OnFocusLost  func()
	OnExpose     func()
	OnDestroyed  func(win xproto.Window)

	// OnKey receives key presses delivered to the window itself, which only
	// happens while it holds input focus.
	OnKey func(ev KeyEvent)
}

// AttachHooks wires X event callbacks for the window. DestroyNotify arrives
// through the window's own StructureNotify mask, so a server-side kill
// (xkill, client exit) is observed without polling.
func AttachHooks(xu *xgbutil.XUtil, win xproto.Window, hooks Hooks) {
	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, _ xevent.ButtonPressEvent) {
		if hooks.OnClicked != nil {
			hooks.OnClicked()
		}
	}).Connect(xu, win)

	xevent.EnterNotifyFun(func(_ *xgbutil.XUtil, _ xevent.EnterNotifyEvent) {
		if hooks.OnHoverEnter != nil {
			hooks.OnHoverEnter()
		}
	}).Connect(xu, win)

	xevent.LeaveNotifyFun(func(_ *xgbutil.XUtil, _ xevent.LeaveNotifyEvent) {
		if hooks.OnHoverExit != nil {
			hooks.OnHoverExit()
		}
	}).Connect(xu, win)

	xevent.VisibilityNotifyFun(func(_ *xgbutil.XUtil, ev xevent.VisibilityNotifyEvent) {
		if ev.State != xproto.VisibilityUnobscured && hooks.OnObscured != nil {
			hooks.OnObscured()
		}
	}).Connect(xu, win)

	xevent.FocusOutFun(func(_ *xgbutil.XUtil, _ xevent.FocusOutEvent) {
		if hooks.OnFocusLost != nil {
			hooks.OnFocusLost()
		}
	}).Connect(xu, win)

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		// Only redraw once per batch of expose rectangles.
		if ev.Count == 0 && hooks.OnExpose != nil {
			hooks.OnExpose()
		}
	}).Connect(xu, win)

	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		if hooks.OnKey != nil {
			hooks.OnKey(translateKey(xu, ev))
		}
	}).Connect(xu, win)

	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		if hooks.OnDestroyed != nil {
			hooks.OnDestroyed(ev.Window)
		}
	}).Connect(xu, win)
}

// DetachHooks removes every callback attached to the window. Must be called
// before the window id can be recycled by the server.
func DetachHooks(xu *xgbutil.XUtil, win xproto.Window) {
	xevent.Detach(xu, win)
}
