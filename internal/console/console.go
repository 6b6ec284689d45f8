// Package console is an interactive terminal client for the glance daemon.
// It mirrors the overlay's command loop for sessions without a keyboard
// hotkey, such as SSH.
package console

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/glance/internal/ipc"
)

// daemonClient is the slice of the IPC client the console needs.
type daemonClient interface {
	Ping() error
	GetStatus() (*ipc.StatusData, error)
	Send(command string) (*ipc.ResultData, error)
	Confirm(cacheKey string, confirmed bool) (*ipc.ResultData, error)
	GetContext() (*ipc.ContextData, error)
	ClearContext() error
}

// Run starts the console loop, blocking until the user quits.
func Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("console requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	client := ipc.NewClient()
	if err := client.Ping(); err != nil {
		return fmt.Errorf("glance daemon is not running (start it with 'glance daemon'): %w", err)
	}
	// Backend commands can take a while.
	client.SetTimeout(60 * time.Second)

	p := tea.NewProgram(newModel(client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// entry is one line of console history.
type entry struct {
	command string
	result  string
	success bool
}

// resultMsg delivers a finished command back into the update loop.
type resultMsg struct {
	command string
	result  *ipc.ResultData
	err     error
}

// statusMsg delivers a daemon status refresh.
type statusMsg struct {
	status *ipc.StatusData
	err    error
}

type tickMsg time.Time

// model is the root bubbletea model for the console.
type model struct {
	client daemonClient
	input  textinput.Model

	history []entry
	waiting bool

	// Confirmation mode: a result came back held pending a yes/no.
	pendingKey  string
	pendingText string

	daemonConnected bool
	overlayState    string
	backendHealth   string
	turnCount       int

	lastError string

	width  int
	height int
}

func newModel(client daemonClient) model {
	ti := textinput.New()
	ti.Placeholder = "type a command, Enter to run"
	ti.CharLimit = 512
	ti.Focus()

	m := model{
		client: client,
		input:  ti,
	}
	m.loadHistory()
	return m
}

// loadHistory seeds the history from the daemon's conversation context so a
// new console session shows what the overlay already knows.
func (m *model) loadHistory() {
	data, err := m.client.GetContext()
	if err != nil {
		return
	}
	for _, t := range data.Turns {
		m.history = append(m.history, entry{
			command: t.Command,
			result:  t.Result,
			success: t.Success,
		})
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.refreshStatus(), statusTick())
}

func statusTick() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) refreshStatus() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		status, err := client.GetStatus()
		return statusMsg{status: status, err: err}
	}
}

func (m model) runCommand(command string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.Send(command)
		return resultMsg{command: command, result: result, err: err}
	}
}

func (m model) runConfirm(cacheKey string, confirmed bool) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.Confirm(cacheKey, confirmed)
		return resultMsg{command: "", result: result, err: err}
	}
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.width - 4
		return m, nil

	case resultMsg:
		m.waiting = false
		if msg.err != nil {
			m.lastError = msg.err.Error()
			return m, nil
		}
		m.lastError = ""
		if msg.result.RequiresConfirmation {
			m.pendingKey = msg.result.CacheKey
			m.pendingText = msg.result.Result
			return m, nil
		}
		text := msg.result.Result
		if !msg.result.Success && msg.result.Remedy != "" {
			text += "\n" + msg.result.Remedy
		}
		m.history = append(m.history, entry{
			command: msg.command,
			result:  text,
			success: msg.result.Success,
		})
		return m, m.refreshStatus()

	case statusMsg:
		if msg.err != nil {
			m.daemonConnected = false
			return m, nil
		}
		m.daemonConnected = true
		m.overlayState = msg.status.Overlay.State
		m.backendHealth = msg.status.BackendHealth
		m.turnCount = msg.status.TurnCount
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshStatus(), statusTick())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Confirmation mode swallows everything except y/n and quit.
	if m.pendingKey != "" {
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "y", "Y":
			key := m.pendingKey
			m.pendingKey = ""
			m.pendingText = ""
			m.waiting = true
			return m, m.runConfirm(key, true)
		case "n", "N":
			key := m.pendingKey
			m.pendingKey = ""
			m.pendingText = ""
			return m, m.runConfirm(key, false)
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "ctrl+l":
		if err := m.client.ClearContext(); err != nil {
			m.lastError = err.Error()
			return m, nil
		}
		m.history = nil
		m.lastError = ""
		return m, m.refreshStatus()

	case "enter":
		command := m.input.Value()
		if command == "" || m.waiting {
			return m, nil
		}
		m.input.Reset()
		m.waiting = true
		m.lastError = ""
		return m, m.runCommand(command)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
