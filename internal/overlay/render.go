package overlay

import (
	"fmt"

	"github.com/1broseidon/glance/internal/surface"
)

// renderLocked draws the prompt and the last result, resizing the surface
// to fit the content within the configured height bounds.
func (c *Controller) renderLocked() {
	lines := c.contentLinesLocked()

	height := surface.FitHeight(len(lines), c.cfg.MinHeight, c.cfg.MaxHeight)
	c.registry.With(surface.RoleOverlay, func(s *surface.Surface) error {
		x, y, w, _ := s.Geometry()
		s.MoveResize(x, y, w, height)
		s.RenderLines(lines)
		return nil
	})
}

func (c *Controller) contentLinesLocked() []string {
	maxChars := surface.MaxLineChars(c.cfg.Width)

	prompt := "> " + string(c.prompt)
	if c.inflight {
		prompt += " ..."
	}
	if r := []rune(prompt); len(r) > maxChars {
		// Keep the tail visible while typing long commands.
		prompt = string(r[len(r)-maxChars:])
	}

	lines := []string{prompt}
	if c.last != nil {
		text := c.last.DisplayText()
		if !c.last.Success {
			text = "error: " + text
		}
		lines = append(lines, "")
		lines = append(lines, surface.WrapLines(text, maxChars)...)
		if c.last.RequiresConfirmation {
			lines = append(lines, "", "[needs confirmation: run 'glance send' to confirm]")
		}
	}
	return lines
}

// EnableDebugPanel creates the inspection panel surface. Debug only; the
// panel mirrors controller state after every transition.
func (c *Controller) EnableDebugPanel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	spec := surface.Spec{
		X:          0,
		Y:          0,
		Width:      320,
		Height:     surface.FitHeight(5, 40, 200),
		Background: c.cfg.BackgroundPixel(),
		Opacity:    c.cfg.Opacity,
		FontNames:  c.cfg.FontNames,
		Title:      "glance-debug",
	}
	if _, err := c.registry.Create(surface.RolePanel, spec); err != nil {
		return err
	}

	c.registry.With(surface.RolePanel, func(s *surface.Surface) error {
		s.Show()
		return nil
	})
	c.updatePanelLocked()
	return nil
}

// updatePanelLocked refreshes the debug panel when one exists. Without a
// panel surface this is a no-op through the registry sentinel.
func (c *Controller) updatePanelLocked() {
	if _, ok := c.registry.Generation(surface.RolePanel); !ok {
		return
	}

	gen, _ := c.registry.Generation(surface.RoleOverlay)
	lines := []string{
		"glance debug",
		fmt.Sprintf("state:      %s", c.state.String()),
		fmt.Sprintf("generation: %d", gen),
		fmt.Sprintf("timer:      %v", c.timer.Pending()),
		fmt.Sprintf("inflight:   %v", c.inflight),
	}
	c.registry.With(surface.RolePanel, func(s *surface.Surface) error {
		s.RenderLines(lines)
		return nil
	})
}
