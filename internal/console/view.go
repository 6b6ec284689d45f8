package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	commandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("36"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	confirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))
)

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := m.renderStatusBar()
	helpBar := dimStyle.Render("enter:run  ctrl+l:clear context  esc/ctrl+c:quit")
	inputLine := "> " + m.input.View()

	var prompt string
	switch {
	case m.pendingKey != "":
		prompt = confirmStyle.Render(m.pendingText + "  Confirm? [y/n]")
	case m.waiting:
		prompt = dimStyle.Render("waiting for backend...")
	default:
		prompt = inputLine
	}

	// History fills the space between the status bar and the prompt.
	used := lipgloss.Height(statusBar) + lipgloss.Height(prompt) + lipgloss.Height(helpBar)
	historyHeight := m.height - used
	if historyHeight < 1 {
		historyHeight = 1
	}
	history := m.renderHistory(historyHeight)

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		history,
		prompt,
		helpBar,
	)
}

func (m model) renderStatusBar() string {
	title := titleStyle.Render("glance console")

	var parts []string
	if m.daemonConnected {
		parts = append(parts, "daemon: up")
		if m.overlayState != "" {
			parts = append(parts, "overlay: "+m.overlayState)
		}
		if m.backendHealth != "" {
			parts = append(parts, "backend: "+m.backendHealth)
		}
		parts = append(parts, fmt.Sprintf("turns: %d", m.turnCount))
	} else {
		parts = append(parts, "daemon: down")
	}
	status := dimStyle.Render(strings.Join(parts, "  "))

	return title + " " + status
}

func (m model) renderHistory(height int) string {
	var lines []string
	for _, e := range m.history {
		if e.command != "" {
			lines = append(lines, commandStyle.Render("> "+e.command))
		}
		style := resultStyle
		if !e.success {
			style = failStyle
		}
		for _, l := range strings.Split(e.result, "\n") {
			lines = append(lines, style.Render("  "+l))
		}
	}
	if m.lastError != "" {
		lines = append(lines, failStyle.Render("error: "+m.lastError))
	}

	// Tail window: keep the most recent lines.
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
