// Package tui implements the interactive chat terminal client.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sangwajesly/legalhub-backend-sub000/internal/rag"
)

// Bubble Tea messages produced by the streaming pump

// streamStartedMsg carries the fragment channel of a started response.
type streamStartedMsg struct {
	fragments <-chan string
}

// streamDeltaMsg delivers one text fragment.
type streamDeltaMsg struct {
	delta string
}

// streamEndMsg signals that the fragment channel closed.
type streamEndMsg struct{}

// errMsg reports a failed request.
type errMsg struct {
	err error
}

// ModelConfig holds the configuration for creating a new TUI model
type ModelConfig struct {
	Conversation  *rag.Conversation
	SessionID     string
	UserID        string
	AssistantName string
}

// Model is the root Bubble Tea model
type Model struct {
	config ModelConfig
	styles Styles

	chat  ChatViewModel
	input textarea.Model

	width     int
	height    int
	streaming bool
	lastErr   error
	quitting  bool

	fragments <-chan string
}

// NewModel creates the root TUI model
func NewModel(config ModelConfig) Model {
	styles := DefaultStyles()

	ti := textarea.New()
	ti.Placeholder = "Ask a legal question... (Enter to send, Esc to quit)"
	ti.ShowLineNumbers = false
	ti.SetHeight(3)
	ti.SetWidth(80)
	ti.Focus()
	ti.CharLimit = 4000
	ti.Cursor.SetChar("█")
	ti.Cursor.Style = styles.WhiteCursor
	ti.Cursor.Blink = false

	assistantName := config.AssistantName
	if assistantName == "" {
		assistantName = "LegalHub"
	}

	chat := NewChatViewModel(styles, assistantName, config.UserID)
	chat.AddMessage("system", "Connected. Answers are grounded in the indexed legal documents.")

	return Model{
		config: config,
		styles: styles,
		chat:   chat,
		input:  ti,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.streaming {
				if cmd := m.sendMessage(); cmd != nil {
					cmds = append(cmds, cmd)
				}
				return m, tea.Batch(cmds...)
			}
		}

	case streamStartedMsg:
		m.fragments = msg.fragments
		m.chat.StartStreaming()
		cmds = append(cmds, waitForDelta(m.fragments))

	case streamDeltaMsg:
		m.chat.AppendDelta(msg.delta)
		cmds = append(cmds, waitForDelta(m.fragments))

	case streamEndMsg:
		m.chat.EndStreaming()
		m.streaming = false
		m.fragments = nil

	case errMsg:
		m.lastErr = msg.err
		m.streaming = false
		m.fragments = nil
		m.chat.EndStreaming()
		m.chat.AddMessage("system", fmt.Sprintf("Error: %v", msg.err))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.chat.Viewport, cmd = m.chat.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// sendMessage reads the input buffer and starts a streaming request.
func (m *Model) sendMessage() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	m.input.Reset()
	m.lastErr = nil
	m.streaming = true
	m.chat.AddMessage("user", text)

	conv := m.config.Conversation
	req := &rag.ChatRequest{
		SessionID: m.config.SessionID,
		UserID:    m.config.UserID,
		Message:   text,
	}
	return func() tea.Msg {
		fragments, err := conv.GenerateResponseStream(context.Background(), req)
		if err != nil {
			return errMsg{err: err}
		}
		return streamStartedMsg{fragments: fragments}
	}
}

// waitForDelta blocks on the fragment channel and converts it to messages.
func waitForDelta(fragments <-chan string) tea.Cmd {
	return func() tea.Msg {
		delta, ok := <-fragments
		if !ok {
			return streamEndMsg{}
		}
		return streamDeltaMsg{delta: delta}
	}
}

func (m *Model) updateLayout() {
	inputHeight := 4
	statusHeight := 1
	chatHeight := m.height - inputHeight - statusHeight
	if chatHeight < 3 {
		chatHeight = 3
	}
	m.chat.SetSize(m.width, chatHeight)
	m.input.SetWidth(m.width - 2)
}

// View renders the full UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.chat.View())
	b.WriteString("\n")
	b.WriteString(m.styles.InputBorder.Width(m.width).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) statusLine() string {
	status := m.styles.StatusOK.Render("ready")
	if m.streaming {
		status = m.styles.Muted.Render("answering...")
	}
	if m.lastErr != nil {
		status = m.styles.StatusError.Render("error")
	}
	session := m.config.SessionID
	if session == "" {
		session = "stateless"
	}
	line := fmt.Sprintf("%s │ session %s │ %s", status, session, m.config.UserID)
	return m.styles.StatusBar.Width(m.width).Render(line)
}
