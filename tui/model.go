// Package tui is the full-screen terminal front end for a chat.Controller.
// It renders the conversation snapshot, disables input while a turn is in
// flight, and re-renders when the controller reports a completed turn.
package tui

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/tailored-agentic-units/supportchat/chat"
	"github.com/tailored-agentic-units/supportchat/core/protocol"
)

// header (2) + error line (1) + input panel (3) + help (1)
const chromeHeight = 7

// Controller is the part of chat.Controller the UI drives.
type Controller interface {
	Submit(ctx context.Context, text string) (*chat.Turn, error)
	Snapshot() []protocol.Message
	Busy() bool
	LastError() string
	SessionID() string
	Cancel() bool
}

// TurnCompleteMsg tells the model a turn finished. Bridge delivers it from
// the controller's completion hook.
type TurnCompleteMsg struct {
	Outcome chat.Outcome
}

// Bridge forwards completion hook calls into a running tea.Program. The
// controller is built before the program exists, so the program is attached
// afterwards.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

// Attach sets the program that receives TurnCompleteMsg.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

// Hook is a chat.CompletionHook.
func (b *Bridge) Hook(o chat.Outcome) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()

	if p != nil {
		p.Send(TurnCompleteMsg{Outcome: o})
	}
}

// Model is the bubbletea model for one conversation.
type Model struct {
	ctrl  Controller
	cfg   Config
	theme theme

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model
	renderer   *glamour.TermRenderer

	width  int
	height int
	ready  bool

	shown   int
	wasBusy bool
}

// New creates a Model bound to ctrl. The input starts focused.
func New(ctrl Controller, cfg *Config) Model {
	merged := DefaultConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}

	th := newTheme()

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = merged.Placeholder
	input.CharLimit = merged.CharLimit
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = th.spinner

	return Model{
		ctrl:       ctrl,
		cfg:        merged,
		theme:      th,
		input:      input,
		transcript: viewport.New(0, 0),
		spinner:    sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.render()

	case TurnCompleteMsg:
		if !m.ctrl.Busy() {
			m.input.Focus()
		}
		m.render()
		cmds = append(cmds, textinput.Blink)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.wasBusy || m.ctrl.Busy() {
			m.render()
		}
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			m.ctrl.Cancel()
			return m, nil
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp:
			m.transcript.LineUp(m.transcript.Height / 2)
			return m, nil
		case tea.KeyPgDown:
			m.transcript.LineDown(m.transcript.Height / 2)
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit hands the input to the controller. Blank input and a submit while
// busy are silent no-ops that leave the field untouched.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.ctrl.Busy() {
		return m, nil
	}

	if _, err := m.ctrl.Submit(context.Background(), m.input.Value()); err != nil {
		return m, nil
	}

	m.input.SetValue("")
	m.input.Blur()
	m.render()
	return m, nil
}

func (m *Model) resize() {
	m.transcript.Width = m.width
	m.transcript.Height = max(1, m.height-chromeHeight)
	m.input.Width = max(10, m.width-6-len(m.input.Prompt))

	m.renderer = nil
	if m.cfg.MarkdownStyle == "none" {
		return
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(max(20, m.width-4))}
	if m.cfg.MarkdownStyle == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(m.cfg.MarkdownStyle))
	}
	if r, err := glamour.NewTermRenderer(opts...); err == nil {
		m.renderer = r
	}
}

// render refreshes the transcript and scrolls to the bottom whenever the
// conversation grew or the busy state changed. Input is refocused once the
// controller is idle again, even if no TurnCompleteMsg arrives.
func (m *Model) render() {
	if !m.ready {
		return
	}

	snap := m.ctrl.Snapshot()
	busy := m.ctrl.Busy()
	if m.wasBusy && !busy {
		m.input.Focus()
	}

	m.transcript.SetContent(m.renderTranscript(snap, busy))
	if len(snap) != m.shown || busy != m.wasBusy {
		m.transcript.GotoBottom()
	}
	m.shown = len(snap)
	m.wasBusy = busy
}

func (m *Model) renderTranscript(snap []protocol.Message, busy bool) string {
	if len(snap) == 0 && !busy {
		return lipgloss.Place(
			m.transcript.Width, m.transcript.Height,
			lipgloss.Center, lipgloss.Center,
			m.theme.hint.Render(m.cfg.EmptyHint),
		)
	}

	var b strings.Builder
	for _, msg := range snap {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n\n")
	}
	if busy {
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.typing.Render(" " + m.cfg.AssistantName + " is typing..."))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderMessage(msg protocol.Message) string {
	label := m.theme.userLabel.Render(m.cfg.UserLabel)
	if msg.Role == protocol.RoleAgent {
		label = m.theme.agentLabel.Render(m.cfg.AssistantName)
	}
	header := label + " " + m.theme.timestamp.Render(msg.Timestamp.Local().Format("15:04"))

	return header + "\n" + m.renderBody(msg)
}

func (m *Model) renderBody(msg protocol.Message) string {
	if msg.Role == protocol.RoleAgent && m.renderer != nil {
		if out, err := m.renderer.Render(msg.Content); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return m.theme.body.Width(max(10, m.width-2)).Render(msg.Content)
}

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	header := m.theme.header.Render(m.cfg.AssistantName+" · "+m.cfg.Title) +
		m.theme.session.Render("session "+shortID(m.ctrl.SessionID()))

	errLine := ""
	if notice := m.ctrl.LastError(); notice != "" {
		errLine = m.theme.errorLine.Render(notice)
	}

	help := m.theme.help.Render("enter send · esc cancel · pgup/pgdn scroll · ctrl+c quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.transcript.View(),
		errLine,
		m.theme.inputPanel.Width(max(10, m.width-2)).Render(m.input.View()),
		help,
	)
}

// InputValue returns the current contents of the input field.
func (m Model) InputValue() string {
	return m.input.Value()
}

// InputFocused reports whether the input field accepts keystrokes.
func (m Model) InputFocused() bool {
	return m.input.Focused()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
