package overlay

import (
	"strings"

	"github.com/1broseidon/glance/internal/bridge"
	"github.com/1broseidon/glance/internal/surface"
)

// handleKey receives translated key presses while the keyboard is captured.
// Runs on the X event loop goroutine.
func (c *Controller) handleKey(ev surface.KeyEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Visible() {
		return
	}

	switch ev.Keysym {
	case surface.KeysymEscape:
		c.dispatchLocked(Event{Type: EventKeyEscape})
		return
	case surface.KeysymReturn, surface.KeysymKPEnter:
		c.submitLocked()
		return
	case surface.KeysymBackSpace:
		if len(c.prompt) > 0 {
			c.prompt = c.prompt[:len(c.prompt)-1]
			c.renderLocked()
		}
		return
	}

	if ev.Text != "" {
		c.prompt = append(c.prompt, []rune(ev.Text)...)
		c.renderLocked()
	}
}

// submitLocked sends the typed command to the backend. The request runs on
// the bridge's goroutine; the prompt stays editable and the surface stays
// dismissible while it is in flight.
func (c *Controller) submitLocked() {
	command := strings.TrimSpace(string(c.prompt))
	if command == "" || c.runner == nil {
		return
	}
	if c.inflight {
		// One command at a time; the backend serializes context anyway.
		return
	}

	c.prompt = c.prompt[:0]
	c.inflight = true
	c.renderLocked()

	c.runner(command, func(res bridge.Result) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.inflight = false
		c.dispatchLocked(Event{Type: EventResult, Result: &res})
	})
}
