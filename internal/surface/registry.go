package surface

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Role names a surface slot. Each role holds at most one live surface.
type Role string

const (
	RoleOverlay Role = "overlay"
	RolePanel   Role = "panel"
)

// ErrNoSurface is the sentinel returned when a role has no live surface.
// Callers treat it as "nothing to do", not as a failure.
var ErrNoSurface = errors.New("no live surface for role")

// Registry owns every surface and hands out access only through guarded
// callbacks. Surfaces die asynchronously (the server can destroy a window
// between deciding to act and acting), so components never hold a *Surface;
// they re-resolve through the registry on every operation. Each creation
// bumps the role's generation so stale work can be detected.
type Registry struct {
	mu     sync.Mutex
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger

	surfaces map[Role]*liveSurface
}

type liveSurface struct {
	surface *Surface
	gen     uint64
}

func NewRegistry(xu *xgbutil.XUtil, root xproto.Window, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		xu:       xu,
		root:     root,
		logger:   logger,
		surfaces: make(map[Role]*liveSurface),
	}
}

// Create realizes a fresh surface for the role, destroying any previous one,
// and returns the new generation.
func (r *Registry) Create(role Role, spec Spec) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.surfaces[role]
	var gen uint64 = 1
	if prev != nil {
		prev.surface.Destroy()
		gen = prev.gen + 1
	}

	s, err := newSurface(r.xu, r.root, spec)
	if err != nil {
		delete(r.surfaces, role)
		return 0, err
	}

	r.surfaces[role] = &liveSurface{surface: s, gen: gen}
	r.logger.Debug("surface created", "role", role, "generation", gen, "window", s.Window())
	return gen, nil
}

// Generation returns the role's current generation, false when no live
// surface exists.
func (r *Registry) Generation(role Role) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.surfaces[role]
	if live == nil || live.surface.destroyed {
		return 0, false
	}
	return live.gen, true
}

// Window returns the role's current window id for event matching and
// probing. Zero when no live surface exists.
func (r *Registry) Window(role Role) xproto.Window {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.surfaces[role]
	if live == nil || live.surface.destroyed {
		return 0
	}
	return live.surface.win
}

// With runs op against the role's current surface. When the role has no live
// surface it returns ErrNoSurface without invoking op. A fault inside op is
// logged and swallowed: the surface can vanish mid-operation and that must
// never propagate as a failure.
func (r *Registry) With(role Role, op func(*Surface) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.withLocked(role, 0, op)
}

// WithGen is With restricted to one generation: ops queued against an older
// realization of the surface are dropped with ErrNoSurface.
func (r *Registry) WithGen(role Role, gen uint64, op func(*Surface) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.withLocked(role, gen, op)
}

func (r *Registry) withLocked(role Role, gen uint64, op func(*Surface) error) error {
	live := r.surfaces[role]
	if live == nil || live.surface.destroyed {
		return ErrNoSurface
	}
	if gen != 0 && live.gen != gen {
		return ErrNoSurface
	}

	if err := op(live.surface); err != nil {
		r.logger.Debug("surface operation fault swallowed", "role", role, "generation", live.gen, "error", err)
	}
	return nil
}

// MarkDestroyed records that the server destroyed the given window. Returns
// the affected role and true when the window belonged to a live surface;
// DestroyNotify for windows we already tore down reports false.
func (r *Registry) MarkDestroyed(win xproto.Window) (Role, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for role, live := range r.surfaces {
		if live.surface.destroyed || live.surface.win != win {
			continue
		}
		live.surface.markDestroyed()
		r.logger.Debug("surface destroyed by server", "role", role, "generation", live.gen, "window", win)
		return role, true
	}
	return "", false
}

// Destroy tears down the role's surface if one is live.
func (r *Registry) Destroy(role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.surfaces[role]
	if live == nil {
		return
	}
	live.surface.Destroy()
	delete(r.surfaces, role)
}

// DestroyAll tears down every surface. Called on daemon shutdown.
func (r *Registry) DestroyAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for role, live := range r.surfaces {
		live.surface.Destroy()
		delete(r.surfaces, role)
	}
}
