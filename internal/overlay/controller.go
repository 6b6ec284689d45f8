package overlay

import (
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/glance/internal/bridge"
	"github.com/1broseidon/glance/internal/config"
	"github.com/1broseidon/glance/internal/surface"
	"github.com/1broseidon/glance/internal/x11"
)

// CommandRunner executes a typed command asynchronously and delivers the
// result to done. Satisfied by (*bridge.Client).Submit.
type CommandRunner func(command string, done func(bridge.Result))

// Controller is the effect interpreter around the Transition function. It
// owns the overlay surface (through the registry), the keyboard capture, the
// auto-hide timer, and the prompt buffer. Every entrypoint takes the
// controller mutex, so events from the X loop, timer callbacks, IPC handlers
// and bridge completions are serialized into strict arrival order.
type Controller struct {
	mu       sync.Mutex
	conn     *x11.Connection
	registry *surface.Registry
	grab     *surface.InputGrab
	logger   *slog.Logger
	timer    *autoHide
	runner   CommandRunner

	cfg   config.Overlay
	debug bool

	state  State
	resume State // state to re-enter after a rebuild

	// onSurfaceLost hands rebuild scheduling to the supervisor.
	onSurfaceLost func()

	prompt    []rune
	last      *bridge.Result
	inflight  bool
	lastX     int
	lastY     int
	placed    bool
	startedAt time.Time
}

// Status is a point-in-time snapshot for IPC status and the debug panel.
type Status struct {
	State         string `json:"state"`
	Generation    uint64 `json:"generation"`
	Visible       bool   `json:"visible"`
	TimerPending  bool   `json:"timer_pending"`
	CommandActive bool   `json:"command_active"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// NewController wires the controller to its collaborators. The runner
// executes typed commands; results come back through HandleResult.
func NewController(conn *x11.Connection, registry *surface.Registry, cfg *config.Config, runner CommandRunner, logger *slog.Logger, debug bool) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		conn:      conn,
		registry:  registry,
		grab:      surface.NewInputGrab(conn.XUtil, conn.Root),
		logger:    logger,
		runner:    runner,
		cfg:       cfg.Overlay,
		debug:     debug,
		state:     StateHidden,
		resume:    StateHidden,
		startedAt: time.Now(),
	}
	c.timer = newAutoHide(c.timerFired)
	c.timer.setDurations(durationTable(cfg))
	c.grab.OnKey = c.handleKey
	return c
}

func durationTable(cfg *config.Config) map[bridge.ResponseKind]time.Duration {
	return map[bridge.ResponseKind]time.Duration{
		bridge.KindPlain:     time.Duration(cfg.AutoHide.PlainSeconds) * time.Second,
		bridge.KindDetailed:  time.Duration(cfg.AutoHide.DetailedSeconds) * time.Second,
		bridge.KindGenerated: time.Duration(cfg.AutoHide.GeneratedSeconds) * time.Second,
	}
}

// SetOnSurfaceLost registers the supervisor's rebuild trigger.
func (c *Controller) SetOnSurfaceLost(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSurfaceLost = fn
}

// UpdateConfig applies a reloaded configuration.
func (c *Controller) UpdateConfig(cfg *config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg = cfg.Overlay
	c.timer.setDurations(durationTable(cfg))
	// Geometry changes apply on the next show; the current surface keeps
	// its realized size until then.
}

// State returns the current visibility state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current controller status.
func (c *Controller) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen, _ := c.registry.Generation(surface.RoleOverlay)
	return Status{
		State:         c.state.String(),
		Generation:    gen,
		Visible:       c.state.Visible(),
		TimerPending:  c.timer.Pending(),
		CommandActive: c.inflight,
		UptimeSeconds: int64(time.Since(c.startedAt).Seconds()),
	}
}

// Toggle processes the global hotkey (or an IPC TOGGLE).
func (c *Controller) Toggle() {
	c.dispatch(Event{Type: EventToggle})
}

// Show raises the overlay if it is hidden; no-op otherwise.
func (c *Controller) Show() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateHidden {
		c.dispatchLocked(Event{Type: EventToggle})
	}
}

// Hide lowers the overlay if it is visible; no-op otherwise. Idempotent.
func (c *Controller) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Visible() {
		c.dispatchLocked(Event{Type: EventToggle})
	}
}

// HandleResult feeds an externally produced result (IPC commands, capture
// completions) into the state machine. The in-flight guard belongs to typed
// submissions and is released only by their own completion.
func (c *Controller) HandleResult(res bridge.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatchLocked(Event{Type: EventResult, Result: &res})
}

// Shutdown releases the keyboard capture and destroys the surfaces.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timer.Cancel()
	c.grab.Stop()
	c.registry.DestroyAll()
	c.state = StateHidden
}

func (c *Controller) timerFired() {
	c.dispatch(Event{Type: EventTimerFired})
}

func (c *Controller) dispatch(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatchLocked(ev)
}

func (c *Controller) dispatchLocked(ev Event) {
	prev := c.state
	next, effects := Transition(prev, ev)
	c.state = next

	if prev != next {
		c.logger.Debug("visibility transition", "from", prev.String(), "to", next.String(), "event", ev.Type.String())
	}

	for _, eff := range effects {
		c.applyLocked(eff)
	}
	c.updatePanelLocked()
}

func (c *Controller) applyLocked(eff Effect) {
	switch eff.Type {
	case EffectShow:
		c.showLocked()
	case EffectHide:
		c.hideLocked()
	case EffectRender:
		if eff.Result != nil {
			c.last = eff.Result
		}
		c.renderLocked()
	case EffectStartTimer:
		if eff.Result != nil {
			c.timer.Schedule(eff.Result.Kind)
		}
	case EffectCancelTimer:
		c.timer.Cancel()
	case EffectRaise:
		c.registry.With(surface.RoleOverlay, func(s *surface.Surface) error {
			s.Raise()
			return nil
		})
	case EffectRebuild:
		c.resume = eff.Resume
		if c.onSurfaceLost != nil {
			c.onSurfaceLost()
		} else {
			// No supervisor wired (tests, degraded startup): give up
			// immediately rather than stall in Recreating.
			c.dispatchLocked(Event{Type: EventRebuildFailed})
		}
	}
}

func (c *Controller) showLocked() {
	if err := c.ensureSurfaceLocked(); err != nil {
		log.Printf("Overlay: failed to create surface: %v", err)
		c.state = StateHidden
		return
	}

	c.placeLocked()
	c.registry.With(surface.RoleOverlay, func(s *surface.Surface) error {
		s.Show()
		return nil
	})
	c.renderLocked()
	c.beginInputLocked()
}

func (c *Controller) hideLocked() {
	c.grab.Stop()
	c.prompt = c.prompt[:0]
	c.registry.With(surface.RoleOverlay, func(s *surface.Surface) error {
		s.Hide()
		return nil
	})
}

// beginInputLocked starts keyboard capture. The override-redirect surface
// never receives input focus, so the previously active application keeps it;
// in debug mode focus is transferred instead so the window behaves like a
// normal one under manual testing.
func (c *Controller) beginInputLocked() {
	if c.debug {
		if win := c.registry.Window(surface.RoleOverlay); win != 0 {
			xproto.SetInputFocus(c.conn.XUtil.Conn(), xproto.InputFocusPointerRoot, win, xproto.TimeCurrentTime)
		}
		return
	}
	if err := c.grab.Start(); err != nil {
		log.Printf("Overlay: keyboard capture failed: %v", err)
	}
}

// placeLocked computes the show geometry: horizontally centered near the top
// of the active monitor's work area, or the remembered position after a
// rebuild so the surface comes back where it was.
func (c *Controller) placeLocked() {
	width := c.cfg.Width
	height := surface.FitHeight(1, c.cfg.MinHeight, c.cfg.MaxHeight)

	x, y := c.lastX, c.lastY
	if !c.placed {
		work, err := c.conn.ActiveWorkArea()
		if err != nil {
			log.Printf("Overlay: work area lookup failed: %v", err)
			x, y = c.cfg.MarginTop, c.cfg.MarginTop
		} else {
			x, y = surface.TopCenter(work.X, work.Y, work.Width, c.cfg.MarginTop, width)
		}
		c.lastX, c.lastY = x, y
		c.placed = true
	}

	c.registry.With(surface.RoleOverlay, func(s *surface.Surface) error {
		_, _, _, curH := s.Geometry()
		if curH > height {
			height = curH
		}
		s.MoveResize(x, y, width, height)
		return nil
	})
}

func (c *Controller) surfaceSpecLocked() surface.Spec {
	return surface.Spec{
		X:          c.lastX,
		Y:          c.lastY,
		Width:      c.cfg.Width,
		Height:     c.cfg.MinHeight,
		Background: c.cfg.BackgroundPixel(),
		Opacity:    c.cfg.Opacity,
		FontNames:  c.cfg.FontNames,
		Title:      "glance",
	}
}

func (c *Controller) ensureSurfaceLocked() error {
	if _, ok := c.registry.Generation(surface.RoleOverlay); ok {
		return nil
	}

	gen, err := c.registry.Create(surface.RoleOverlay, c.surfaceSpecLocked())
	if err != nil {
		return err
	}

	win := c.registry.Window(surface.RoleOverlay)
	surface.AttachHooks(c.conn.XUtil, win, c.overlayHooks())

	c.logger.Info("overlay surface ready", "generation", gen, "window", win)
	return nil
}

func (c *Controller) overlayHooks() surface.Hooks {
	hooks := surface.Hooks{
		OnClicked:    func() { c.dispatch(Event{Type: EventClicked}) },
		OnHoverEnter: func() { c.dispatch(Event{Type: EventHoverEntered}) },
		OnHoverExit:  func() { c.dispatch(Event{Type: EventHoverExited}) },
		OnObscured:   func() { c.dispatch(Event{Type: EventBlur}) },
		OnFocusLost:  func() { c.dispatch(Event{Type: EventBlur}) },
		OnExpose: func() {
			c.registry.With(surface.RoleOverlay, func(s *surface.Surface) error {
				s.Redraw()
				return nil
			})
		},
		OnDestroyed: c.surfaceDestroyed,
	}
	// With the keyboard grabbed, key events arrive through the grab window.
	// In debug mode the overlay holds real focus instead, so key presses
	// land on the window itself.
	if c.debug {
		hooks.OnKey = c.handleKey
	}
	return hooks
}

// surfaceDestroyed handles DestroyNotify from the X server: something other
// than us tore the window down.
func (c *Controller) surfaceDestroyed(win xproto.Window) {
	role, live := c.registry.MarkDestroyed(win)
	surface.DetachHooks(c.conn.XUtil, win)
	if !live || role != surface.RoleOverlay {
		return
	}
	c.dispatch(Event{Type: EventSurfaceLost})
}

// SurfaceLost lets the liveness probe report a vanished surface that never
// produced a DestroyNotify (connection hiccups, missed events).
func (c *Controller) SurfaceLost() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if win := c.registry.Window(surface.RoleOverlay); win != 0 {
		c.registry.MarkDestroyed(win)
		surface.DetachHooks(c.conn.XUtil, win)
	}
	c.dispatchLocked(Event{Type: EventSurfaceLost})
}

// TryRebuild recreates the overlay surface at its last position with a fresh
// generation. Called by the supervisor from its retry loop; on success the
// state machine re-enters the pre-loss state.
func (c *Controller) TryRebuild() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecreating {
		return nil
	}

	gen, err := c.registry.Create(surface.RoleOverlay, c.surfaceSpecLocked())
	if err != nil {
		return err
	}

	win := c.registry.Window(surface.RoleOverlay)
	surface.AttachHooks(c.conn.XUtil, win, c.overlayHooks())

	c.logger.Info("overlay surface rebuilt", "generation", gen, "window", win)
	c.dispatchLocked(Event{Type: EventRebuildDone, Resume: c.resume})
	return nil
}

// RebuildGaveUp tells the state machine the supervisor exhausted its
// attempts; the overlay stays down until the next toggle.
func (c *Controller) RebuildGaveUp() {
	c.dispatch(Event{Type: EventRebuildFailed})
}

// OverlayWindow returns the current overlay window id for liveness probing.
func (c *Controller) OverlayWindow() xproto.Window {
	return c.registry.Window(surface.RoleOverlay)
}
