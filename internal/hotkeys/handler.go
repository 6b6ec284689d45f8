package hotkeys

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/glance/internal/x11"
)

// Handler manages the process-wide keyboard shortcuts: the overlay toggle
// and the screen capture action.
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	mu    sync.Mutex
	bound map[string]bool
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler on the given X connection.
func NewHandler(conn *x11.Connection) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:    conn.XUtil,
		root:  conn.Root,
		bound: make(map[string]bool),
	}
}

// Register binds a key sequence (e.g. "Control-space") to a callback.
// Registering a sequence that is already bound is a no-op, so startup and
// reload paths can both call it safely.
func (h *Handler) Register(keySequence string, callback func()) error {
	if keySequence == "" {
		return fmt.Errorf("empty key sequence")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.bound[keySequence] {
		return nil
	}

	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
	if err != nil {
		return fmt.Errorf("bind %q: %w", keySequence, err)
	}

	h.bound[keySequence] = true
	return nil
}

// Bound reports whether a sequence is currently registered.
func (h *Handler) Bound(keySequence string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bound[keySequence]
}

// Unregister releases every grab this handler owns. Called on shutdown and
// before re-registering changed bindings on reload; without it the X server
// keeps intercepting the keys after the daemon exits.
func (h *Handler) Unregister() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.bound) == 0 {
		return
	}
	keybind.Detach(h.xu, h.root)
	h.bound = make(map[string]bool)
}

// configureIgnoreMods widens hotkey matching so CapsLock, NumLock and
// ScrollLock states don't swallow the bindings.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
