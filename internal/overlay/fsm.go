package overlay

import "github.com/1broseidon/glance/internal/bridge"

// State represents the overlay's visibility lifecycle state.
type State int

const (
	// StateHidden means the overlay is not shown.
	StateHidden State = iota
	// StateShowing means the overlay is visible and may auto-hide.
	StateShowing
	// StatePinned means the overlay is visible and auto-hide is suppressed
	// until an explicit dismissal.
	StatePinned
	// StateRecreating means the surface was lost and is being rebuilt.
	StateRecreating
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateHidden:
		return "hidden"
	case StateShowing:
		return "showing"
	case StatePinned:
		return "pinned"
	case StateRecreating:
		return "recreating"
	default:
		return "unknown"
	}
}

// Visible reports whether the state maps to a mapped surface.
func (s State) Visible() bool {
	return s == StateShowing || s == StatePinned
}

// EventType enumerates the inputs the state machine reacts to.
type EventType int

const (
	// EventToggle is the global hotkey (or an IPC TOGGLE).
	EventToggle EventType = iota
	// EventResult is a completed backend command carrying a response.
	EventResult
	// EventClicked is a pointer press on the surface.
	EventClicked
	// EventHoverEntered is the pointer entering the surface.
	EventHoverEntered
	// EventHoverExited is the pointer leaving the surface.
	EventHoverExited
	// EventKeyEscape is the Escape key while input is captured.
	EventKeyEscape
	// EventBlur is the surface losing focus or being covered.
	EventBlur
	// EventTimerFired is the auto-hide timer elapsing.
	EventTimerFired
	// EventSurfaceLost is the surface being destroyed out from under us.
	EventSurfaceLost
	// EventRebuildDone is the supervisor reporting a successful rebuild.
	EventRebuildDone
	// EventRebuildFailed is the supervisor giving up on rebuilding.
	EventRebuildFailed
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventToggle:
		return "toggle"
	case EventResult:
		return "result"
	case EventClicked:
		return "clicked"
	case EventHoverEntered:
		return "hover_entered"
	case EventHoverExited:
		return "hover_exited"
	case EventKeyEscape:
		return "key_escape"
	case EventBlur:
		return "blur"
	case EventTimerFired:
		return "timer_fired"
	case EventSurfaceLost:
		return "surface_lost"
	case EventRebuildDone:
		return "rebuild_done"
	case EventRebuildFailed:
		return "rebuild_failed"
	default:
		return "unknown"
	}
}

// Event is one input to the state machine.
type Event struct {
	Type EventType
	// Result carries the response for EventResult.
	Result *bridge.Result
	// Resume carries the state to re-enter for EventRebuildDone.
	Resume State
}

// EffectType enumerates the side effects a transition requests. Effects are
// interpreted by the Controller; Transition itself touches nothing.
type EffectType int

const (
	// EffectShow maps and raises the surface without taking input focus,
	// and begins keyboard capture.
	EffectShow EffectType = iota
	// EffectHide unmaps the surface and releases keyboard capture.
	EffectHide
	// EffectRender draws the current content and resizes the surface to fit.
	EffectRender
	// EffectStartTimer arms the auto-hide timer for the effect's result kind.
	EffectStartTimer
	// EffectCancelTimer disarms any pending auto-hide timer.
	EffectCancelTimer
	// EffectRaise re-asserts the surface above all other windows.
	EffectRaise
	// EffectRebuild hands the lost surface to the supervisor. Resume names
	// the state to re-enter once the rebuild completes.
	EffectRebuild
)

// Effect is one side effect requested by a transition.
type Effect struct {
	Type   EffectType
	Result *bridge.Result
	Resume State
}

// Transition is the pure transition function: given the current state and an
// event it returns the next state and the effects to apply, in order. Events
// that have no row for the current state are dropped.
func Transition(state State, ev Event) (State, []Effect) {
	switch state {
	case StateHidden:
		switch ev.Type {
		case EventToggle:
			// Clear any stale timer from a previous display before showing.
			return StateShowing, []Effect{
				{Type: EffectCancelTimer},
				{Type: EffectShow},
			}
		case EventResult:
			// A result landing after dismissal is kept for the next show;
			// it never raises the surface on its own.
			return StateHidden, []Effect{{Type: EffectRender, Result: ev.Result}}
		}
		// A surface dying while hidden needs no rebuild; the next show
		// creates a fresh one lazily.
		return StateHidden, nil

	case StateShowing:
		switch ev.Type {
		case EventToggle, EventKeyEscape:
			return StateHidden, []Effect{
				{Type: EffectCancelTimer},
				{Type: EffectHide},
			}
		case EventResult:
			return StateShowing, []Effect{
				{Type: EffectRender, Result: ev.Result},
				{Type: EffectStartTimer, Result: ev.Result},
			}
		case EventClicked, EventHoverEntered:
			return StatePinned, []Effect{{Type: EffectCancelTimer}}
		case EventBlur:
			return StateShowing, []Effect{{Type: EffectRaise}}
		case EventTimerFired:
			return StateHidden, []Effect{{Type: EffectHide}}
		case EventSurfaceLost:
			return StateRecreating, []Effect{
				{Type: EffectCancelTimer},
				{Type: EffectRebuild, Resume: StateShowing},
			}
		}
		return StateShowing, nil

	case StatePinned:
		switch ev.Type {
		case EventToggle, EventKeyEscape:
			return StateHidden, []Effect{{Type: EffectHide}}
		case EventResult:
			// Pinned suppresses timer creation entirely; the result is
			// rendered and stays until explicit dismissal.
			return StatePinned, []Effect{{Type: EffectRender, Result: ev.Result}}
		case EventBlur:
			return StatePinned, []Effect{{Type: EffectRaise}}
		case EventSurfaceLost:
			// The pin does not survive a rebuild: resuming as Showing with
			// no timer avoids reviving a cancelled timer race.
			return StateRecreating, []Effect{
				{Type: EffectRebuild, Resume: StateShowing},
			}
		}
		// HoverExited, Clicked, HoverEntered, TimerFired: the pin persists.
		return StatePinned, nil

	case StateRecreating:
		switch ev.Type {
		case EventRebuildDone:
			if ev.Resume.Visible() {
				return ev.Resume, []Effect{
					{Type: EffectShow},
					{Type: EffectRender},
				}
			}
			return ev.Resume, nil
		case EventRebuildFailed:
			return StateHidden, nil
		}
		// Interaction is suspended while rebuilding.
		return StateRecreating, nil
	}

	return state, nil
}
