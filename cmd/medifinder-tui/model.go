package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

type chatEntry struct {
	role    string // "user", "assistant", "tool", "error"
	content string
}

// chatModel implements tea.Model for the chat client.
type chatModel struct {
	client   *apiClient
	renderer *glamour.TermRenderer

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	entries []chatEntry
	// partial accumulates streamed chunks of the in-progress assistant
	// message until the end event lands. Kept as a plain string because
	// bubbletea copies the model on every Update; a strings.Builder
	// panics when a non-zero copy is written to.
	partial string

	stream <-chan streamEvent
	cancel context.CancelFunc

	busy   bool
	status string
	width  int
	height int
	ready  bool
}

// Bubble Tea messages
type streamEventMsg streamEvent
type streamClosedMsg struct{}
type resetDoneMsg struct{ err error }
type healthMsg struct {
	summary string
	err     error
}

func newChatModel(client *apiClient) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Pregunta por un medicamento..."
	ti.Focus()
	ti.CharLimit = 2000

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return chatModel{
		client:   client,
		renderer: renderer,
		input:    ti,
		spinner:  sp,
		status:   "Ready",
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.checkHealth())
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-5)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 5
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case healthMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("offline: %v", msg.err))
		} else {
			m.status = msg.summary
		}
		return m, nil

	case startedMsg:
		m.stream = msg.stream
		return m.handleStreamEvent(msg.first)

	case streamEventMsg:
		return m.handleStreamEvent(streamEvent(msg))

	case streamClosedMsg:
		m.finishTurn("")
		return m, nil

	case resetDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.entries = append(m.entries, chatEntry{role: "error", content: msg.err.Error()})
		} else {
			m.entries = nil
			m.status = "Conversation reset"
		}
		m.refreshViewport()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m chatModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case "esc":
		// Cancel the in-flight turn but keep the app running.
		if m.busy && m.cancel != nil {
			m.cancel()
			return m, nil
		}

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.busy {
			return m, nil
		}
		m.input.Reset()

		if text == "/reset" {
			m.busy = true
			m.status = "Resetting..."
			return m, m.doReset()
		}
		if text == "/quit" {
			return m, tea.Quit
		}

		m.entries = append(m.entries, chatEntry{role: "user", content: text})
		m.partial = ""
		m.busy = true
		m.status = "Thinking"
		m.refreshViewport()
		return m, m.startTurn(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleStreamEvent(ev streamEvent) (tea.Model, tea.Cmd) {
	switch ev.Type {
	case "start":
		m.status = "Thinking"

	case "chunk":
		m.partial += ev.Content
		m.refreshViewport()

	case "tool_use":
		// Flush any text produced before the tool call so ordering is
		// preserved in the transcript view.
		m.flushPartial()
		m.entries = append(m.entries, chatEntry{
			role:    "tool",
			content: fmt.Sprintf("consultando %s...", ev.Name),
		})
		m.status = fmt.Sprintf("Running %s", ev.Name)
		m.refreshViewport()

	case "tool_result":
		m.status = "Thinking"

	case "tool_error":
		m.entries = append(m.entries, chatEntry{
			role:    "error",
			content: fmt.Sprintf("%s failed: %s", ev.Name, ev.Error),
		})
		m.refreshViewport()

	case "end":
		m.finishTurn(ev.Error)
		return m, nil
	}

	return m, m.waitForEvent()
}

func (m *chatModel) finishTurn(errText string) {
	m.flushPartial()
	if errText != "" {
		m.entries = append(m.entries, chatEntry{role: "error", content: errText})
	}
	m.busy = false
	m.stream = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.status = "Ready"
	m.refreshViewport()
}

func (m *chatModel) flushPartial() {
	if m.partial == "" {
		return
	}
	m.entries = append(m.entries, chatEntry{role: "assistant", content: m.partial})
	m.partial = ""
}

func (m *chatModel) startTurn(text string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	return func() tea.Msg {
		stream, err := m.client.SendMessage(ctx, text)
		if err != nil {
			return streamEventMsg{Type: "end", Error: err.Error()}
		}
		ev, ok := <-stream
		if !ok {
			return streamClosedMsg{}
		}
		// Hand the channel to the model; waitForEvent pulls the rest.
		return startedMsg{first: ev, stream: stream}
	}
}

type startedMsg struct {
	first  streamEvent
	stream <-chan streamEvent
}

func (m *chatModel) waitForEvent() tea.Cmd {
	stream := m.stream
	if stream == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-stream
		if !ok {
			return streamClosedMsg{}
		}
		return streamEventMsg(ev)
	}
}

func (m *chatModel) doReset() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return resetDoneMsg{err: m.client.Reset(ctx)}
	}
}

func (m *chatModel) checkHealth() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.client.Health(context.Background())
		return healthMsg{summary: summary, err: err}
	}
}

func (m *chatModel) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m *chatModel) renderEntries() string {
	var b strings.Builder
	for _, e := range m.entries {
		switch e.role {
		case "user":
			b.WriteString(userStyle.Render("Tú: ") + e.content + "\n")
		case "assistant":
			b.WriteString(assistantStyle.Render("Medifinder:") + "\n" + m.renderMarkdown(e.content))
		case "tool":
			b.WriteString(toolStyle.Render(e.content) + "\n")
		case "error":
			b.WriteString(errorStyle.Render("Error: "+e.content) + "\n")
		}
		b.WriteString("\n")
	}
	if m.partial != "" {
		b.WriteString(assistantStyle.Render("Medifinder:") + "\n" + m.partial + "\n")
	}
	return b.String()
}

func (m *chatModel) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text + "\n"
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

func (m chatModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}

	return fmt.Sprintf(
		"%s\n%s\n%s",
		m.viewport.View(),
		inputBoxStyle.Width(m.width-2).Render(m.input.View()),
		statusStyle.Render(status),
	)
}
